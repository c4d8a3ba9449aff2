package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"health-dashboard/internal/domain/laborders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabOrderRepo_RecordResult_SerializesApply(t *testing.T) {
	repo := NewLabOrderRepo()
	ctx := context.Background()
	ts := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, laborders.LabOrder{
		ID: "o1", DoctorID: "d1", Status: laborders.StatusPending, OrderedAt: ts,
	}))

	const n = 50
	var wg sync.WaitGroup
	seen := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordResult(ctx, laborders.Result{ID: "r", LabOrderID: "o1"},
				func(o laborders.LabOrder, results []laborders.Result) laborders.LabOrder {
					seen <- len(results)
					o.Status = laborders.StatusCompleted
					return o
				})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(seen)

	// cada apply ve un conteo distinto: 1..n
	counts := map[int]bool{}
	for c := range seen {
		counts[c] = true
	}
	assert.Len(t, counts, n)

	results, err := repo.ListResults(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, results, n)

	o, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, laborders.StatusCompleted, o.Status)
}

func TestLabOrderRepo_RecordResult_UnknownOrder(t *testing.T) {
	repo := NewLabOrderRepo()
	_, err := repo.RecordResult(context.Background(), laborders.Result{LabOrderID: "ghost"},
		func(o laborders.LabOrder, _ []laborders.Result) laborders.LabOrder { return o })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabOrderRepo_ReturnsCopies(t *testing.T) {
	repo := NewLabOrderRepo()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, laborders.LabOrder{ID: "o1", Tests: []string{"glucose"}}))

	o, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	o.Tests[0] = "mutated"

	again, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"glucose"}, again.Tests)
}
