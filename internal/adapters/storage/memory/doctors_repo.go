package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"health-dashboard/internal/domain/doctors"
)

type doctorRepo struct {
	mu       sync.RWMutex
	byID     map[string]doctors.Doctor
	byUserID map[string]string // user_id -> id
}

func NewDoctorRepo() doctors.Repository {
	return &doctorRepo{
		byID:     make(map[string]doctors.Doctor),
		byUserID: make(map[string]string),
	}
}

func (r *doctorRepo) Create(ctx context.Context, d doctors.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("doctor id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return ErrConflict
	}
	if _, exists := r.byUserID[d.UserID]; exists {
		return ErrConflict
	}
	r.byID[d.ID] = d
	r.byUserID[d.UserID] = d.ID
	return nil
}

func (r *doctorRepo) Update(ctx context.Context, d doctors.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[d.ID]
	if !exists {
		return ErrNotFound
	}
	// user_id es inmutable
	d.UserID = prev.UserID
	r.byID[d.ID] = d
	return nil
}

func (r *doctorRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doctors.Doctor{}, ErrNotFound
	}
	return d, nil
}

func (r *doctorRepo) GetByUserID(ctx context.Context, userID string) (doctors.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUserID[userID]
	if !ok {
		return doctors.Doctor{}, ErrNotFound
	}
	return r.byID[id], nil
}
