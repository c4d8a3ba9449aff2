package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"health-dashboard/internal/domain/laborders"
)

type labOrderRepo struct {
	mu      sync.RWMutex
	byID    map[string]laborders.LabOrder
	results map[string][]laborders.Result // por lab order id
}

func NewLabOrderRepo() laborders.Repository {
	return &labOrderRepo{
		byID:    make(map[string]laborders.LabOrder),
		results: make(map[string][]laborders.Result),
	}
}

func (r *labOrderRepo) Create(ctx context.Context, o laborders.LabOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("lab order id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return ErrConflict
	}
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *labOrderRepo) GetByID(ctx context.Context, id string) (laborders.LabOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return laborders.LabOrder{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *labOrderRepo) ListByDoctor(ctx context.Context, doctorID string, status laborders.Status) ([]laborders.LabOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]laborders.LabOrder, 0)
	for _, o := range r.byID {
		if o.DoctorID != doctorID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderedAt.After(out[j].OrderedAt) })
	return out, nil
}

func (r *labOrderRepo) ListResults(ctx context.Context, orderID string) ([]laborders.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]laborders.Result{}, r.results[orderID]...), nil
}

// RecordResult corre bajo el lock de escritura: apply ve un estado consistente.
func (r *labOrderRepo) RecordResult(ctx context.Context, res laborders.Result, apply laborders.ApplyFunc) (laborders.LabOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[res.LabOrderID]
	if !ok {
		return laborders.LabOrder{}, ErrNotFound
	}

	all := append(append([]laborders.Result{}, r.results[o.ID]...), res)
	updated := apply(cloneOrder(o), all)

	r.results[o.ID] = all
	r.byID[o.ID] = cloneOrder(updated)
	return updated, nil
}

func (r *labOrderRepo) CountByStatus(ctx context.Context, doctorID string) (map[laborders.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[laborders.Status]int{}
	for _, o := range r.byID {
		if o.DoctorID == doctorID {
			out[o.Status]++
		}
	}
	return out, nil
}

func cloneOrder(o laborders.LabOrder) laborders.LabOrder {
	o.Tests = append([]string(nil), o.Tests...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		o.CompletedAt = &t
	}
	return o
}
