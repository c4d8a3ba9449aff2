package clients

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
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("client not found")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
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

type CreateInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Gender      Gender
	Phone       string
	Email       string
	Address     string
}

func (s *Service) Create(ctx context.Context, doctorID string, in CreateInput) (Client, error) {
	if strings.TrimSpace(doctorID) == "" {
		return Client{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return Client{}, fmt.Errorf("%w: firstName and lastName are required", ErrInvalidInput)
	}

	gender := Gender(strings.ToUpper(strings.TrimSpace(string(in.Gender))))
	switch gender {
	case "":
		gender = GenderUnknown
	case GenderFemale, GenderMale, GenderOther, GenderUnknown:
	default:
		return Client{}, fmt.Errorf("%w: gender must be one of FEMALE, MALE, OTHER, UNKNOWN", ErrInvalidInput)
	}

	now := s.now()
	if in.DateOfBirth != nil && in.DateOfBirth.After(now) {
		return Client{}, fmt.Errorf("%w: dateOfBirth cannot be in the future", ErrInvalidInput)
	}

	c := Client{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		DateOfBirth: in.DateOfBirth,
		Gender:      gender,
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Address:     strings.TrimSpace(in.Address),
		CreatedBy:   doctorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
