package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"health-dashboard/internal/domain/prescriptions"
)

type prescriptionRepo struct {
	mu   sync.RWMutex
	byID map[string]prescriptions.Prescription
}

func NewPrescriptionRepo() prescriptions.Repository {
	return &prescriptionRepo{byID: make(map[string]prescriptions.Prescription)}
}

func (r *prescriptionRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("prescription id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return ErrConflict
	}
	r.byID[p.ID] = clonePrescription(p)
	return nil
}

func (r *prescriptionRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return prescriptions.Prescription{}, ErrNotFound
	}
	return clonePrescription(p), nil
}

func (r *prescriptionRepo) ListByDoctor(ctx context.Context, doctorID string, status prescriptions.Status) ([]prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prescriptions.Prescription, 0)
	for _, p := range r.byID {
		if p.DoctorID != doctorID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, clonePrescription(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (r *prescriptionRepo) UpdateStatus(ctx context.Context, id string, status prescriptions.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = updatedAt
	r.byID[id] = p
	return nil
}

func (r *prescriptionRepo) CountByStatus(ctx context.Context, doctorID string) (map[prescriptions.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[prescriptions.Status]int{}
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			out[p.Status]++
		}
	}
	return out, nil
}

func clonePrescription(p prescriptions.Prescription) prescriptions.Prescription {
	p.Items = append([]prescriptions.Item(nil), p.Items...)
	return p
}

type medicineRepo struct {
	mu   sync.RWMutex
	byID map[string]prescriptions.Medicine
}

func NewMedicineRepo() prescriptions.MedicineRepository {
	return &medicineRepo{byID: make(map[string]prescriptions.Medicine)}
}

func (r *medicineRepo) Create(ctx context.Context, m prescriptions.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medicine id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return ErrConflict
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicineRepo) GetByID(ctx context.Context, id string) (prescriptions.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return prescriptions.Medicine{}, ErrNotFound
	}
	return m, nil
}

func (r *medicineRepo) List(ctx context.Context, query string) ([]prescriptions.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]prescriptions.Medicine, 0)
	for _, m := range r.byID {
		if q != "" &&
			!strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.GenericName), q) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
