package sessioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"health-dashboard/internal/ports/auth"

	"github.com/rs/zerolog"
)

// Verifier envuelve otro SessionVerifier y cachea las verificaciones exitosas.
// Los errores no se cachean. El TTL nunca supera la expiración de la sesión.
type Verifier struct {
	next  auth.SessionVerifier
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func New(next auth.SessionVerifier, store Store, ttl time.Duration) *Verifier {
	return &Verifier{next: next, store: store, ttl: ttl, now: time.Now}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v.ttl <= 0 || v.store == nil {
		return v.next.Verify(ctx, token)
	}

	log := zerolog.Ctx(ctx)
	key := cacheKey(token)

	if c, ok, err := v.store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("session cache get failed")
	} else if ok {
		if c.ExpiresAt.IsZero() || c.ExpiresAt.After(v.now()) {
			return c, nil
		}
	}

	c, err := v.next.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	ttl := v.ttl
	if !c.ExpiresAt.IsZero() {
		if left := c.ExpiresAt.Sub(v.now()); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		if err := v.store.Set(ctx, key, c, ttl); err != nil {
			log.Warn().Err(err).Msg("session cache set failed")
		}
	}
	return c, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
