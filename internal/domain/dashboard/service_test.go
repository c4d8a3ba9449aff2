package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-dashboard/internal/domain/laborders"
	"health-dashboard/internal/domain/prescriptions"
	"health-dashboard/internal/domain/visits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounts struct {
	clients, programs, enrollments int
	err                            error
}

func (f fakeCounts) Count(ctx context.Context) (int, error) { return f.clients, f.err }

type fakePrograms struct{ programs, enrollments int }

func (f fakePrograms) Count(ctx context.Context) (int, error) { return f.programs, nil }
func (f fakePrograms) CountActiveEnrollments(ctx context.Context) (int, error) {
	return f.enrollments, nil
}

type fakeRx map[prescriptions.Status]int

func (f fakeRx) CountByStatus(ctx context.Context, doctorID string) (map[prescriptions.Status]int, error) {
	return f, nil
}

type fakeLabs map[laborders.Status]int

func (f fakeLabs) CountByStatus(ctx context.Context, doctorID string) (map[laborders.Status]int, error) {
	return f, nil
}

type fakeVisits struct {
	items []visits.Visit
	since time.Time
}

func (f *fakeVisits) ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]visits.Visit, error) {
	f.since = since
	out := make([]visits.Visit, 0)
	for _, v := range f.items {
		if !v.VisitDate.Before(since) {
			out = append(out, v)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestService_Stats(t *testing.T) {
	fv := &fakeVisits{items: []visits.Visit{
		{VisitDate: day(2025, 12, 31)}, // fuera de la ventana
		{VisitDate: day(2026, 1, 2)},
		{VisitDate: day(2026, 1, 20)},
		{VisitDate: day(2026, 6, 1)},
	}}
	svc := NewService(
		fakeCounts{clients: 12},
		fakePrograms{programs: 3, enrollments: 7},
		fakeRx{prescriptions.StatusPending: 4, prescriptions.StatusDispensed: 2},
		fakeLabs{laborders.StatusCompleted: 5},
		fv,
	)
	svc.now = func() time.Time { return day(2026, 6, 15) }

	stats, err := svc.Stats(context.Background(), "doc_1")
	require.NoError(t, err)

	assert.Equal(t, Totals{Clients: 12, Programs: 3, ActiveEnrollments: 7}, stats.Totals)
	assert.Equal(t, map[string]int{"PENDING": 4, "DISPENSED": 2, "CANCELLED": 0}, stats.Prescriptions)
	assert.Equal(t, 0, stats.LabOrders["IN_PROGRESS"])
	assert.Equal(t, 5, stats.LabOrders["COMPLETED"])
	assert.Len(t, stats.LabOrders, 4)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), fv.since)
	assert.Equal(t, []MonthCount{
		{Month: "2026-01", Count: 2},
		{Month: "2026-02"},
		{Month: "2026-03"},
		{Month: "2026-04"},
		{Month: "2026-05"},
		{Month: "2026-06", Count: 1},
	}, stats.VisitsByMonth)
}

func TestService_Stats_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(
		fakeCounts{err: boom},
		fakePrograms{},
		fakeRx{},
		fakeLabs{},
		&fakeVisits{},
	)

	_, err := svc.Stats(context.Background(), "doc_1")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count clients")
}
