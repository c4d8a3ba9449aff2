package jwtsession

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"health-dashboard/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt session verifier not configured")
	ErrInvalidToken  = errors.New("invalid session token")
)

type Config struct {
	Secret   string
	Issuer   string // opcional
	Audience string // opcional
}

// Claims del token de sesión. sub = user id.
type Claims struct {
	Email    string `json:"email,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Verifier valida tokens de sesión firmados con HS256.
type Verifier struct {
	key  []byte
	opts []jwt.ParserOption
}

func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	if aud := strings.TrimSpace(cfg.Audience); aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}
	return &Verifier{key: []byte(secret), opts: opts}, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	out := auth.Claims{
		UserID:   sub,
		Email:    claims.Email,
		TenantID: claims.TenantID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Sign emite un token de sesión con la misma clave. Lo usan el comando de dev y los tests.
func Sign(secret string, c Claims) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrNotConfigured
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(strings.TrimSpace(secret)))
}
