package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"health-dashboard/internal/platform/httpclient"
	"health-dashboard/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity provider not configured")
	ErrUnauthorized  = errors.New("identity provider rejected the session")
	ErrUpstream      = errors.New("identity provider upstream error")
)

const verifyPath = "/v1/sessions/verify"

// Config del cliente del proveedor de identidad.
type Config struct {
	BaseURL string
	APIKey  string

	// Header donde va la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return newClient(hc, cfg), nil
}

func newClient(hc *httpclient.Client, cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TenantID  string    `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifySession pregunta al proveedor por el token de sesión y devuelve sus claims.
func (c *Client) VerifySession(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   verifyPath,
		Header: map[string]string{
			c.apiKeyHeader:  c.apiKey,
			"Authorization": "Bearer " + token,
		},
		Body: verifyRequest{Token: token},
	}, &out)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return auth.Claims{
		UserID:    strings.TrimSpace(out.UserID),
		Email:     strings.TrimSpace(out.Email),
		TenantID:  strings.TrimSpace(out.TenantID),
		ExpiresAt: out.ExpiresAt,
	}, nil
}
