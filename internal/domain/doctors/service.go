package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-dashboard/internal/middleware"
	"health-dashboard/internal/ports/auth"
	"health-dashboard/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("doctor not found")

	// ErrUnauthorized: sin sesión, o sesión sin perfil de doctor.
	ErrUnauthorized = errors.New("unauthorized")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Current resuelve el doctor de la sesión del request.
func (s *Service) Current(ctx context.Context) (Doctor, error) {
	session := middleware.SessionFrom(ctx)
	if !session.Authenticated || strings.TrimSpace(session.Claims.UserID) == "" {
		return Doctor{}, ErrUnauthorized
	}

	d, err := s.repo.GetByUserID(ctx, session.Claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Doctor{}, ErrUnauthorized
		}
		return Doctor{}, fmt.Errorf("lookup doctor: %w", err)
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Doctor{}, ErrInvalidInput
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, err
	}
	return d, nil
}

type ProfileInput struct {
	FirstName      string
	LastName       string
	Email          string
	Specialization string
	LicenseNumber  string
}

// Upsert crea o actualiza el perfil del doctor de la identidad verificada.
// Devuelve created=true si el perfil no existía.
func (s *Service) Upsert(ctx context.Context, claims auth.Claims, in ProfileInput) (Doctor, bool, error) {
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return Doctor{}, false, ErrUnauthorized
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return Doctor{}, false, ErrInvalidInput
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = strings.TrimSpace(claims.Email)
	}

	now := s.now()
	existing, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		existing.FirstName = strings.TrimSpace(in.FirstName)
		existing.LastName = strings.TrimSpace(in.LastName)
		existing.Email = email
		existing.Specialization = strings.TrimSpace(in.Specialization)
		existing.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Doctor{}, false, err
		}
		return existing, false, nil

	case errors.Is(err, storage.ErrNotFound):
		d := Doctor{
			ID:             uuid.NewString(),
			UserID:         userID,
			Email:          email,
			FirstName:      strings.TrimSpace(in.FirstName),
			LastName:       strings.TrimSpace(in.LastName),
			Specialization: strings.TrimSpace(in.Specialization),
			LicenseNumber:  strings.TrimSpace(in.LicenseNumber),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Create(ctx, d); err != nil {
			return Doctor{}, false, err
		}
		return d, true, nil

	default:
		return Doctor{}, false, err
	}
}
