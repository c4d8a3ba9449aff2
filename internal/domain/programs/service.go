package programs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-dashboard/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("program not found")
	ErrConflict        = errors.New("conflict")
	ErrClientNotFound  = errors.New("client not found")
	ErrAlreadyEnrolled = fmt.Errorf("%w: client already has an active enrollment in this program", ErrConflict)
	ErrDuplicateName   = fmt.Errorf("%w: a program with this name already exists", ErrConflict)
)

// ClientLookup evita importar el paquete clients (solo necesitamos saber si existe).
type ClientLookup interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

type Service struct {
	repo        Repository
	enrollments EnrollmentRepository
	clients     ClientLookup
	now         func() time.Time
}

func NewService(repo Repository, enrollments EnrollmentRepository, clients ClientLookup) *Service {
	return &Service{
		repo:        repo,
		enrollments: enrollments,
		clients:     clients,
		now:         time.Now,
	}
}

type CreateInput struct {
	Name        string
	Description string
}

func (s *Service) Create(ctx context.Context, doctorID string, in CreateInput) (Program, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Program{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Program{}, ErrDuplicateName
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Program{}, err
	}

	p := Program{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   doctorID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Program{}, ErrDuplicateName
		}
		return Program{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Program, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Program{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Program{}, ErrNotFound
		}
		return Program{}, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Program, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

type EnrollInput struct {
	ProgramID string
	Notes     string
}

// Enroll inscribe un cliente en un programa. Una sola inscripción ACTIVE por par.
func (s *Service) Enroll(ctx context.Context, doctorID, clientID string, in EnrollInput) (Enrollment, error) {
	clientID = strings.TrimSpace(clientID)
	programID := strings.TrimSpace(in.ProgramID)
	if programID == "" {
		return Enrollment{}, fmt.Errorf("%w: programId is required", ErrInvalidInput)
	}

	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return Enrollment{}, err
	}
	if !ok {
		return Enrollment{}, ErrClientNotFound
	}
	if _, err := s.GetByID(ctx, programID); err != nil {
		return Enrollment{}, err
	}

	if _, err := s.enrollments.GetActive(ctx, clientID, programID); err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Enrollment{}, err
	}

	e := Enrollment{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		ProgramID:  programID,
		Status:     EnrollmentActive,
		Notes:      strings.TrimSpace(in.Notes),
		EnrolledBy: doctorID,
		EnrolledAt: s.now(),
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		// carrera entre dos inscripciones simultáneas: la gana el índice único
		if errors.Is(err, storage.ErrConflict) {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, err
	}
	return e, nil
}

func (s *Service) ListEnrollments(ctx context.Context, clientID string) ([]Enrollment, error) {
	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClientNotFound
	}
	return s.enrollments.ListByClient(ctx, clientID)
}

func (s *Service) CountActiveEnrollments(ctx context.Context) (int, error) {
	return s.enrollments.CountActive(ctx)
}
