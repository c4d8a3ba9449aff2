package doctors

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-dashboard/internal/middleware"
	"health-dashboard/internal/ports/auth"
	"health-dashboard/internal/ports/storage"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Doctor
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Doctor{}}
}

func (r *testRepo) Create(ctx context.Context, d Doctor) error {
	for _, existing := range r.byID {
		if existing.UserID == d.UserID {
			return storage.ErrConflict
		}
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) Update(ctx context.Context, d Doctor) error {
	if _, ok := r.byID[d.ID]; !ok {
		return storage.ErrNotFound
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Doctor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Doctor{}, storage.ErrNotFound
	}
	return d, nil
}

func (r *testRepo) GetByUserID(ctx context.Context, userID string) (Doctor, error) {
	for _, d := range r.byID {
		if d.UserID == userID {
			return d, nil
		}
	}
	return Doctor{}, storage.ErrNotFound
}

// -------------------------
// Tests
// -------------------------

func TestService_Upsert_CreatesThenUpdates(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	claims := auth.Claims{UserID: "user_1", Email: "house@ppth.org"}
	d, created, err := svc.Upsert(context.Background(), claims, ProfileInput{
		FirstName: " Gregory ",
		LastName:  "House",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first upsert")
	}
	if d.Email != "house@ppth.org" {
		t.Fatalf("expected email from claims, got %q", d.Email)
	}
	if d.FirstName != "Gregory" {
		t.Fatalf("expected trimmed first name, got %q", d.FirstName)
	}

	t1 := t0.Add(time.Hour)
	svc.now = func() time.Time { return t1 }

	d2, created, err := svc.Upsert(context.Background(), claims, ProfileInput{
		FirstName:      "Gregory",
		LastName:       "House",
		Specialization: "Diagnostics",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created {
		t.Fatalf("expected created=false on second upsert")
	}
	if d2.ID != d.ID {
		t.Fatalf("expected same doctor id, got %q vs %q", d2.ID, d.ID)
	}
	if !d2.UpdatedAt.Equal(t1) || !d2.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", d2.CreatedAt, d2.UpdatedAt)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 doctor stored, got %d", len(repo.byID))
	}
}

func TestService_Upsert_RequiresNames(t *testing.T) {
	svc := NewService(newTestRepo())

	_, _, err := svc.Upsert(context.Background(), auth.Claims{UserID: "u"}, ProfileInput{FirstName: "Only"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, _, err = svc.Upsert(context.Background(), auth.Claims{}, ProfileInput{FirstName: "A", LastName: "B"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestService_Current(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	// sin sesión
	if _, err := svc.Current(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without session, got %v", err)
	}

	// sesión sin perfil
	ctx := middleware.WithSession(context.Background(), auth.Authenticated(auth.Claims{UserID: "user_2"}))
	if _, err := svc.Current(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without profile, got %v", err)
	}

	repo.byID["doc_2"] = Doctor{ID: "doc_2", UserID: "user_2", FirstName: "Lisa", LastName: "Cuddy"}
	d, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.ID != "doc_2" || d.FullName() != "Lisa Cuddy" {
		t.Fatalf("unexpected doctor: %+v", d)
	}
}
