package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"health-dashboard/internal/domain/visits"
)

type visitRepo struct {
	mu   sync.RWMutex
	byID map[string]visits.Visit
}

func NewVisitRepo() visits.Repository {
	return &visitRepo{byID: make(map[string]visits.Visit)}
}

func (r *visitRepo) Create(ctx context.Context, v visits.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("visit id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return ErrConflict
	}
	r.byID[v.ID] = v
	return nil
}

func (r *visitRepo) GetByID(ctx context.Context, id string) (visits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return visits.Visit{}, ErrNotFound
	}
	return v, nil
}

func (r *visitRepo) ListByClient(ctx context.Context, clientID string) ([]visits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]visits.Visit, 0)
	for _, v := range r.byID {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out, nil
}

func (r *visitRepo) ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]visits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]visits.Visit, 0)
	for _, v := range r.byID {
		if v.DoctorID == doctorID && !v.VisitDate.Before(since) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}
