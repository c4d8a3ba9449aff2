package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"health-dashboard/internal/domain/programs"
)

type programRepo struct {
	mu   sync.RWMutex
	byID map[string]programs.Program
}

func NewProgramRepo() programs.Repository {
	return &programRepo{byID: make(map[string]programs.Program)}
}

func (r *programRepo) Create(ctx context.Context, p programs.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("program id required")
	}
	for _, existing := range r.byID {
		if existing.ID == p.ID || strings.EqualFold(existing.Name, p.Name) {
			return ErrConflict
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *programRepo) GetByID(ctx context.Context, id string) (programs.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return programs.Program{}, ErrNotFound
	}
	return p, nil
}

func (r *programRepo) GetByName(ctx context.Context, name string) (programs.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, p := range r.byID {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return programs.Program{}, ErrNotFound
}

func (r *programRepo) List(ctx context.Context) ([]programs.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]programs.Program, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *programRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

type enrollmentRepo struct {
	mu    sync.RWMutex
	items []programs.Enrollment
}

func NewEnrollmentRepo() programs.EnrollmentRepository {
	return &enrollmentRepo{}
}

func (r *enrollmentRepo) Create(ctx context.Context, e programs.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Status == programs.EnrollmentActive {
		for _, existing := range r.items {
			if existing.ClientID == e.ClientID && existing.ProgramID == e.ProgramID &&
				existing.Status == programs.EnrollmentActive {
				return ErrConflict
			}
		}
	}
	r.items = append(r.items, e)
	return nil
}

func (r *enrollmentRepo) ListByClient(ctx context.Context, clientID string) ([]programs.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]programs.Enrollment, 0)
	for _, e := range r.items {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (r *enrollmentRepo) GetActive(ctx context.Context, clientID, programID string) (programs.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.items {
		if e.ClientID == clientID && e.ProgramID == programID && e.Status == programs.EnrollmentActive {
			return e, nil
		}
	}
	return programs.Enrollment{}, ErrNotFound
}

func (r *enrollmentRepo) CountActive(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.items {
		if e.Status == programs.EnrollmentActive {
			n++
		}
	}
	return n, nil
}
