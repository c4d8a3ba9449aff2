package programs

import (
	"context"
	"strings"
	"testing"
	"time"

	"health-dashboard/internal/ports/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProgramRepo struct {
	byID map[string]Program
}

func (r *testProgramRepo) Create(ctx context.Context, p Program) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testProgramRepo) GetByID(ctx context.Context, id string) (Program, error) {
	p, ok := r.byID[id]
	if !ok {
		return Program{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *testProgramRepo) GetByName(ctx context.Context, name string) (Program, error) {
	for _, p := range r.byID {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Program{}, storage.ErrNotFound
}

func (r *testProgramRepo) List(ctx context.Context) ([]Program, error) {
	out := make([]Program, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testProgramRepo) Count(ctx context.Context) (int, error) { return len(r.byID), nil }

type testEnrollmentRepo struct {
	items []Enrollment
}

func (r *testEnrollmentRepo) Create(ctx context.Context, e Enrollment) error {
	r.items = append(r.items, e)
	return nil
}

func (r *testEnrollmentRepo) ListByClient(ctx context.Context, clientID string) ([]Enrollment, error) {
	out := make([]Enrollment, 0)
	for _, e := range r.items {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testEnrollmentRepo) GetActive(ctx context.Context, clientID, programID string) (Enrollment, error) {
	for _, e := range r.items {
		if e.ClientID == clientID && e.ProgramID == programID && e.Status == EnrollmentActive {
			return e, nil
		}
	}
	return Enrollment{}, storage.ErrNotFound
}

func (r *testEnrollmentRepo) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, e := range r.items {
		if e.Status == EnrollmentActive {
			n++
		}
	}
	return n, nil
}

type fakeClients map[string]bool

func (f fakeClients) Exists(ctx context.Context, clientID string) (bool, error) {
	return f[clientID], nil
}

func newTestService() (*Service, *testEnrollmentRepo) {
	enr := &testEnrollmentRepo{}
	svc := NewService(&testProgramRepo{byID: map[string]Program{}}, enr, fakeClients{"client_1": true})
	svc.now = func() time.Time { return time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC) }
	return svc, enr
}

func TestService_Create_UniqueNameIgnoresCase(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "doc_1", CreateInput{Name: "  Hypertension Care "})
	require.NoError(t, err)
	assert.Equal(t, "Hypertension Care", p.Name)

	_, err = svc.Create(ctx, "doc_1", CreateInput{Name: "HYPERTENSION care"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(ctx, "doc_1", CreateInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Enroll(t *testing.T) {
	svc, enr := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "doc_1", CreateInput{Name: "Diabetes"})
	require.NoError(t, err)

	e, err := svc.Enroll(ctx, "doc_1", "client_1", EnrollInput{ProgramID: p.ID, Notes: "HbA1c 8.1"})
	require.NoError(t, err)
	assert.Equal(t, EnrollmentActive, e.Status)
	assert.Equal(t, "doc_1", e.EnrolledBy)

	_, err = svc.Enroll(ctx, "doc_1", "client_1", EnrollInput{ProgramID: p.ID})
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	// una inscripción cerrada no bloquea una nueva
	enr.items[0].Status = EnrollmentCompleted
	_, err = svc.Enroll(ctx, "doc_1", "client_1", EnrollInput{ProgramID: p.ID})
	require.NoError(t, err)

	n, err := svc.CountActiveEnrollments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_Enroll_Errors(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "doc_1", "client_1", EnrollInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Enroll(ctx, "doc_1", "ghost", EnrollInput{ProgramID: "p"})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.Enroll(ctx, "doc_1", "client_1", EnrollInput{ProgramID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListEnrollments(ctx, "ghost")
	assert.ErrorIs(t, err, ErrClientNotFound)
}
