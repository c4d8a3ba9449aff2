package idp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-dashboard/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.SessionVerifier contra el proveedor de identidad.
type Verifier struct {
	client *Client
	now    func() time.Time
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client, now: time.Now}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifySession(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("idp verify failed: %w", err)
	}

	if claims.UserID == "" {
		return auth.Claims{}, errors.New("idp claims missing user id")
	}
	if !claims.ExpiresAt.IsZero() && !claims.ExpiresAt.After(v.now()) {
		return auth.Claims{}, fmt.Errorf("idp verify failed: %w", ErrUnauthorized)
	}
	return claims, nil
}
