package clients

import (
	"context"
	"strings"
	"testing"
	"time"

	"health-dashboard/internal/ports/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byID map[string]Client
	last ListFilter
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) error {
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, storage.ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	r.last = filter
	out := make([]Client, 0, len(r.byID))
	for _, c := range r.byID {
		if filter.Query == "" || strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(filter.Query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context) (int, error) {
	return len(r.byID), nil
}

func TestService_Create(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	now := time.Date(2026, 4, 10, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	dob := time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)
	c, err := svc.Create(context.Background(), "doc_1", CreateInput{
		FirstName:   " Ana ",
		LastName:    "Pérez",
		DateOfBirth: &dob,
		Gender:      "female",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Ana", c.FirstName)
	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, "doc_1", c.CreatedBy)
	assert.Equal(t, now, c.CreatedAt)
	assert.Contains(t, repo.byID, c.ID)
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2026, 4, 10, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	future := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing last name", CreateInput{FirstName: "Ana"}},
		{"unknown gender", CreateInput{FirstName: "Ana", LastName: "P", Gender: "robot"}},
		{"future birth date", CreateInput{FirstName: "Ana", LastName: "P", DateOfBirth: &future}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "doc_1", tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := NewService(newTestRepo())
	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_List_ClampsLimit(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.List(context.Background(), ListFilter{Limit: 10_000, Query: "  ana "})
	require.NoError(t, err)
	assert.Equal(t, maxListLimit, repo.last.Limit)
	assert.Equal(t, "ana", repo.last.Query)

	_, err = svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, repo.last.Limit)
}
