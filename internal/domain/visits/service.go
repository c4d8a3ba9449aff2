package visits

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
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("visit not found")
	ErrClientNotFound = errors.New("client not found")
)

type ClientLookup interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

type Service struct {
	repo    Repository
	clients ClientLookup
	now     func() time.Time
}

func NewService(repo Repository, clients ClientLookup) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		now:     time.Now,
	}
}

type CreateInput struct {
	VisitDate time.Time // zero => ahora
	Reason    string
	Diagnosis string
	Notes     string
}

func (s *Service) Create(ctx context.Context, doctorID, clientID string, in CreateInput) (Visit, error) {
	if strings.TrimSpace(doctorID) == "" {
		return Visit{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Reason) == "" {
		return Visit{}, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return Visit{}, err
	}
	if !ok {
		return Visit{}, ErrClientNotFound
	}

	now := s.now()
	visitDate := in.VisitDate
	if visitDate.IsZero() {
		visitDate = now
	}

	v := Visit{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		DoctorID:  doctorID,
		VisitDate: visitDate,
		Reason:    strings.TrimSpace(in.Reason),
		Diagnosis: strings.TrimSpace(in.Diagnosis),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Visit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Visit{}, ErrNotFound
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Visit{}, ErrNotFound
		}
		return Visit{}, err
	}
	return v, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Visit, error) {
	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClientNotFound
	}
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]Visit, error) {
	return s.repo.ListByDoctorSince(ctx, doctorID, since)
}
