package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-dashboard/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	calls  int
	tokens map[string]auth.Claims
}

func (s *stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	s.calls++
	c, ok := s.tokens[token]
	if !ok {
		return auth.Claims{}, errors.New("bad token")
	}
	return c, nil
}

type decision struct {
	class   RouteClass
	outcome string
}

func gateHandler(opts GateOptions, seen *auth.Session, decisions *[]decision) http.Handler {
	opts.OnDecision = func(c RouteClass, o string) { *decisions = append(*decisions, decision{c, o}) }
	return Gate(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestGate_Decisions(t *testing.T) {
	v := &stubVerifier{tokens: map[string]auth.Claims{"good": {UserID: "u1"}}}

	tests := []struct {
		name         string
		path         string
		cookie       string
		bearer       string
		wantStatus   int
		wantLocation string
		wantClass    RouteClass
		wantOutcome  string
	}{
		{"dashboard anonymous", "/dashboard/clients?x=1", "", "", http.StatusTemporaryRedirect, "/sign-in?redirect_url=%2Fdashboard%2Fclients%3Fx%3D1", RouteDashboard, "redirect_sign_in"},
		{"dashboard bad token", "/dashboard", "bad", "", http.StatusTemporaryRedirect, "/sign-in?redirect_url=%2Fdashboard", RouteDashboard, "redirect_sign_in"},
		{"dashboard authenticated", "/dashboard", "good", "", http.StatusOK, "", RouteDashboard, "pass"},
		{"root authenticated", "/", "good", "", http.StatusTemporaryRedirect, "/dashboard", RoutePublic, "redirect_dashboard"},
		{"sign-in nested authenticated", "/sign-in/sso-callback", "good", "", http.StatusTemporaryRedirect, "/dashboard", RoutePublic, "redirect_dashboard"},
		{"sign-up anonymous", "/sign-up", "", "", http.StatusOK, "", RoutePublic, "pass"},
		{"api anonymous", "/api/prescriptions/1", "", "", http.StatusOK, "", RouteOther, "pass"},
		{"other authenticated", "/about", "good", "", http.StatusOK, "", RouteOther, "pass"},
		{"dashboard bearer only", "/dashboard", "", "good", http.StatusOK, "", RouteDashboard, "pass"},
		{"dashboard stale cookie with bearer", "/dashboard", "stale", "good", http.StatusOK, "", RouteDashboard, "pass"},
		{"dashboard bad bearer ignores cookie", "/dashboard", "good", "bad", http.StatusTemporaryRedirect, "/sign-in?redirect_url=%2Fdashboard", RouteDashboard, "redirect_sign_in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen auth.Session
			var decisions []decision
			h := gateHandler(GateOptions{Verifier: v}, &seen, &decisions)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			require.Len(t, decisions, 1)
			assert.Equal(t, decision{tt.wantClass, tt.wantOutcome}, decisions[0])
		})
	}
}

func TestGate_BearerWinsOverStaleCookie(t *testing.T) {
	v := &stubVerifier{tokens: map[string]auth.Claims{"good": {UserID: "u1"}}}
	var seen auth.Session
	var decisions []decision
	h := gateHandler(GateOptions{Verifier: v}, &seen, &decisions)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "stale"})
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, seen.Authenticated)
	assert.Equal(t, "u1", seen.Claims.UserID)
	assert.Equal(t, 1, v.calls)
}

func TestGate_VerifiesOncePerRequest(t *testing.T) {
	v := &stubVerifier{tokens: map[string]auth.Claims{"good": {UserID: "u1", Email: "a@b.c"}}}
	var seen auth.Session
	var decisions []decision
	h := gateHandler(GateOptions{Verifier: v}, &seen, &decisions)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, v.calls)
	assert.True(t, seen.Authenticated)
	assert.Equal(t, "a@b.c", seen.Claims.Email)
}

func TestGate_SkipsStaticAssets(t *testing.T) {
	v := &stubVerifier{}
	var seen auth.Session
	var decisions []decision
	h := gateHandler(GateOptions{Verifier: v}, &seen, &decisions)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/logo.png", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "whatever"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, v.calls)
	assert.Empty(t, decisions)
}

func TestGate_DevModeDebugHeader(t *testing.T) {
	var seen auth.Session
	var decisions []decision
	h := gateHandler(GateOptions{}, &seen, &decisions)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-Debug-User-ID", " dev-1 ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, seen.Authenticated)
	assert.Equal(t, "dev-1", seen.Claims.UserID)
}

func TestGate_ExternalSignInURL(t *testing.T) {
	var seen auth.Session
	var decisions []decision
	h := gateHandler(GateOptions{SignInURL: "https://auth.example/sign-in?app=hd"}, &seen, &decisions)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://auth.example/sign-in?app=hd&redirect_url=%2Fdashboard", rec.Header().Get("Location"))
}

func TestShouldRun(t *testing.T) {
	tests := map[string]bool{
		"/":                   true,
		"/dashboard":          true,
		"/api/swagger":        true,
		"/api/files/x.png":    true,
		"/trpc/foo.json":      true,
		"/static/app.css":     false,
		"/_next/chunk":        false,
		"/favicon.ico":        false,
		"/reports/export.csv": false,
		"/sign-in":            true,
	}
	for p, want := range tests {
		assert.Equal(t, want, ShouldRun(p), p)
	}
}

func TestGetClaims(t *testing.T) {
	_, ok := GetClaims(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), auth.Authenticated(auth.Claims{UserID: "u"}))
	c, ok := GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", c.UserID)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken(""))
}
