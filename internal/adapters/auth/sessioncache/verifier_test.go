package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"health-dashboard/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingVerifier struct {
	calls  atomic.Int32
	claims auth.Claims
	err    error
}

func (f *countingVerifier) Verify(context.Context, string) (auth.Claims, error) {
	f.calls.Add(1)
	if f.err != nil {
		return auth.Claims{}, f.err
	}
	return f.claims, nil
}

func TestVerifier_CachesSuccess(t *testing.T) {
	inner := &countingVerifier{claims: auth.Claims{UserID: "u1"}}
	v := New(inner, NewMemoryStore(), time.Minute)

	for i := 0; i < 3; i++ {
		c, err := v.Verify(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", c.UserID)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err := v.Verify(context.Background(), "other-tok")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestVerifier_DoesNotCacheErrors(t *testing.T) {
	inner := &countingVerifier{err: errors.New("rejected")}
	store := NewMemoryStore()
	v := New(inner, store, time.Minute)

	_, err := v.Verify(context.Background(), "tok")
	require.Error(t, err)
	_, err = v.Verify(context.Background(), "tok")
	require.Error(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, store.Len())
}

func TestVerifier_TTLBoundedBySessionExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	store := NewMemoryStore()
	store.now = func() time.Time { return clock }

	inner := &countingVerifier{claims: auth.Claims{UserID: "u1", ExpiresAt: now.Add(10 * time.Second)}}
	v := New(inner, store, time.Minute)
	v.now = func() time.Time { return clock }

	_, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)

	clock = now.Add(5 * time.Second)
	_, err = v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())

	// la sesión venció: no se sirve desde caché
	clock = now.Add(11 * time.Second)
	_, _ = v.Verify(context.Background(), "tok")
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestVerifier_ZeroTTLBypasses(t *testing.T) {
	inner := &countingVerifier{claims: auth.Claims{UserID: "u1"}}
	v := New(inner, NewMemoryStore(), 0)

	_, _ = v.Verify(context.Background(), "tok")
	_, _ = v.Verify(context.Background(), "tok")
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestMemoryStore_SetPurgesExpired(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("old-%d", i), auth.Claims{UserID: "u"}, time.Second))
	}
	assert.Equal(t, 1000, s.Len())

	clock = clock.Add(time.Hour)
	require.NoError(t, s.Set(ctx, "fresh", auth.Claims{UserID: "u2"}, time.Minute))
	assert.Equal(t, 1, s.Len())

	got, ok, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u2", got.UserID)
}

func TestMemoryStore_SweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Set(ctx, "short", auth.Claims{UserID: "a"}, time.Second))
	require.NoError(t, s.Set(ctx, "long", auth.Claims{UserID: "b"}, time.Hour))

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, "new", auth.Claims{UserID: "c"}, time.Minute))
	assert.Equal(t, 2, s.Len())

	_, ok, _ := s.Get(ctx, "long")
	assert.True(t, ok)
}

func TestCacheKey_DoesNotLeakToken(t *testing.T) {
	k := cacheKey("secret-token")
	assert.Len(t, k, 64)
	assert.NotContains(t, k, "secret-token")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	s, err := NewRedisStoreFromURL(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	want := auth.Claims{UserID: "u1", Email: "a@b.c", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	require.NoError(t, s.Set(ctx, "k-"+t.Name(), want, time.Minute))

	got, ok, err := s.Get(ctx, "k-"+t.Name())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.UserID, got.UserID)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	_, ok, err = s.Get(ctx, "missing-"+t.Name())
	require.NoError(t, err)
	assert.False(t, ok)
}
