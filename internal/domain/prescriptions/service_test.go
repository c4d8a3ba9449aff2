package prescriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-dashboard/internal/domain/clients"
	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/domain/visits"
	"health-dashboard/internal/ports/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	byID map[string]Prescription
}

func (r *testRepo) Create(ctx context.Context, p Prescription) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Prescription, error) {
	p, ok := r.byID[id]
	if !ok {
		return Prescription{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByDoctor(ctx context.Context, doctorID string, status Status) ([]Prescription, error) {
	out := make([]Prescription, 0)
	for _, p := range r.byID {
		if p.DoctorID == doctorID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = updatedAt
	r.byID[id] = p
	return nil
}

func (r *testRepo) CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error) {
	out := map[Status]int{}
	for _, p := range r.byID {
		if p.DoctorID == doctorID {
			out[p.Status]++
		}
	}
	return out, nil
}

type testMedicineRepo struct {
	byID map[string]Medicine
}

func (r *testMedicineRepo) Create(ctx context.Context, m Medicine) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testMedicineRepo) GetByID(ctx context.Context, id string) (Medicine, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medicine{}, storage.ErrNotFound
	}
	return m, nil
}

func (r *testMedicineRepo) List(ctx context.Context, query string) ([]Medicine, error) {
	out := make([]Medicine, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

type fakeVisits map[string]visits.Visit

func (f fakeVisits) GetByID(ctx context.Context, id string) (visits.Visit, error) {
	v, ok := f[id]
	if !ok {
		return visits.Visit{}, visits.ErrNotFound
	}
	return v, nil
}

type fakeClients map[string]clients.Client

func (f fakeClients) GetByID(ctx context.Context, id string) (clients.Client, error) {
	c, ok := f[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

type fakeDoctors map[string]doctors.Doctor

func (f fakeDoctors) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	d, ok := f[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	return d, nil
}

type recorder struct {
	statuses []string
}

func (r *recorder) PrescriptionStatusUpdated(status string) {
	r.statuses = append(r.statuses, status)
}

type fixture struct {
	svc  *Service
	repo *testRepo
	rec  *recorder
	now  time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	repo := &testRepo{byID: map[string]Prescription{}}
	meds := &testMedicineRepo{byID: map[string]Medicine{
		"med_1": {ID: "med_1", Name: "Metformin", Strength: "850 mg"},
	}}
	rec := &recorder{}

	svc := NewService(repo, meds,
		fakeVisits{"visit_1": {ID: "visit_1", ClientID: "client_1", DoctorID: "doc_1", Reason: "Control"}},
		fakeClients{"client_1": {ID: "client_1", FirstName: "Ana", LastName: "Pérez"}},
		fakeDoctors{"doc_1": {ID: "doc_1", FirstName: "Gregory", LastName: "House"}},
	).WithRecorder(rec)

	now := time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return fixture{svc: svc, repo: repo, rec: rec, now: now}
}

func (f fixture) createOne(t *testing.T) Detail {
	t.Helper()
	d, err := f.svc.Create(context.Background(), "doc_1", CreateInput{
		VisitID: "visit_1",
		Items: []ItemInput{
			{MedicineID: "med_1", Dosage: "850 mg", Frequency: "BID", Duration: "30 days", Quantity: 60},
		},
	})
	require.NoError(t, err)
	return d
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ExpandsRelations(t *testing.T) {
	f := newFixture(t)
	d := f.createOne(t)

	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, "client_1", d.ClientID, "client comes from the visit")
	assert.Equal(t, "House", d.Doctor.LastName)
	assert.Equal(t, "Ana", d.Client.FirstName)
	assert.Equal(t, "Control", d.Visit.Reason)
	require.Len(t, d.Items, 1)
	assert.Equal(t, d.ID, d.Items[0].PrescriptionID)
	assert.Equal(t, "Metformin", d.Medicines["med_1"].Name)
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "doc_1", CreateInput{VisitID: "visit_1"})
	assert.ErrorIs(t, err, ErrInvalidInput, "no items")

	_, err = f.svc.Create(ctx, "doc_1", CreateInput{
		VisitID: "visit_1",
		Items:   []ItemInput{{MedicineID: "ghost", Dosage: "1", Frequency: "QD"}},
	})
	assert.ErrorIs(t, err, ErrMedicineNotFound)

	_, err = f.svc.Create(ctx, "doc_1", CreateInput{
		VisitID: "nope",
		Items:   []ItemInput{{MedicineID: "med_1", Dosage: "1", Frequency: "QD"}},
	})
	assert.ErrorIs(t, err, ErrVisitNotFound)

	assert.Empty(t, f.repo.byID)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	d := f.createOne(t)

	later := f.now.Add(2 * time.Hour)
	f.svc.now = func() time.Time { return later }

	got, err := f.svc.UpdateStatus(context.Background(), d.ID, "DISPENSED")
	require.NoError(t, err)
	assert.Equal(t, StatusDispensed, got.Status)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, "House", got.Doctor.LastName, "response stays expanded")
	assert.Equal(t, []string{"DISPENSED"}, f.rec.statuses)

	// sin reglas de transición: se puede volver a PENDING
	got, err = f.svc.UpdateStatus(context.Background(), d.ID, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestService_UpdateStatus_Errors(t *testing.T) {
	f := newFixture(t)
	d := f.createOne(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		status string
		want   error
	}{
		{"missing status", d.ID, "  ", ErrStatusRequired},
		{"unknown status", d.ID, "SHIPPED", ErrInvalidStatus},
		{"lowercase is not in the enum", d.ID, "dispensed", ErrInvalidStatus},
		{"unknown id", "ghost", "CANCELLED", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateStatus(ctx, tt.id, tt.status)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	assert.Equal(t, StatusPending, f.repo.byID[d.ID].Status)
	assert.Empty(t, f.rec.statuses)
}

func TestService_ListByDoctor_FiltersStatus(t *testing.T) {
	f := newFixture(t)
	a := f.createOne(t)
	f.createOne(t)

	_, err := f.svc.UpdateStatus(context.Background(), a.ID, "CANCELLED")
	require.NoError(t, err)

	items, err := f.svc.ListByDoctor(context.Background(), "doc_1", "CANCELLED")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	_, err = f.svc.ListByDoctor(context.Background(), "doc_1", "LOST")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	counts, err := f.svc.CountByStatus(context.Background(), "doc_1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[StatusCancelled])
	assert.Equal(t, 1, counts[StatusPending])
}

func TestValidStatusNames(t *testing.T) {
	assert.Equal(t, []string{"PENDING", "DISPENSED", "CANCELLED"}, ValidStatusNames())
}
