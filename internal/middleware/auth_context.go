package middleware

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"health-dashboard/internal/ports/auth"

	"github.com/rs/zerolog"
)

type ctxKey string

const sessionKey ctxKey = "session"

const (
	DefaultSessionCookie = "__session"
	DefaultSignInPath    = "/sign-in"
	DefaultDashboardPath = "/dashboard"
)

// RouteClass es la clasificación del path que hace el gate.
type RouteClass int

const (
	RouteOther RouteClass = iota
	RoutePublic
	RouteDashboard
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteDashboard:
		return "dashboard"
	default:
		return "other"
	}
}

type GateOptions struct {
	// Verifier puede ser nil (modo dev): X-Debug-User-ID o el valor crudo de la cookie
	// se toman como user id.
	Verifier auth.SessionVerifier

	SessionCookie string // default "__session"
	SignInURL     string // default "/sign-in"; puede ser absoluta (proveedor externo)
	DashboardPath string // default "/dashboard"

	// Patrones estilo "/sign-in(.*)": sufijo "(.*)" = prefijo, si no, match exacto.
	PublicRoutes    []string // default "/", "/sign-in(.*)", "/sign-up(.*)"
	DashboardRoutes []string // default "/dashboard(.*)"

	// OnDecision (opcional) recibe cada decisión: "redirect_sign_in", "redirect_dashboard", "pass".
	OnDecision func(class RouteClass, outcome string)
}

type gate struct {
	verifier      auth.SessionVerifier
	cookie        string
	signInURL     string
	dashboardPath string
	public        routeMatcher
	dashboard     routeMatcher
	onDecision    func(RouteClass, string)
}

func newGate(opts GateOptions) *gate {
	g := &gate{
		verifier:      opts.Verifier,
		cookie:        firstNonEmpty(opts.SessionCookie, DefaultSessionCookie),
		signInURL:     firstNonEmpty(opts.SignInURL, DefaultSignInPath),
		dashboardPath: firstNonEmpty(opts.DashboardPath, DefaultDashboardPath),
		onDecision:    opts.OnDecision,
	}
	if g.onDecision == nil {
		g.onDecision = func(RouteClass, string) {}
	}

	public := opts.PublicRoutes
	if len(public) == 0 {
		public = []string{"/", "/sign-in(.*)", "/sign-up(.*)"}
	}
	dash := opts.DashboardRoutes
	if len(dash) == 0 {
		dash = []string{"/dashboard(.*)"}
	}
	g.public = newRouteMatcher(public)
	g.dashboard = newRouteMatcher(dash)
	return g
}

// Gate clasifica cada request (public / dashboard / other), verifica la sesión UNA vez
// y la deja en el context como auth.Session.
//   - dashboard sin sesión   => redirect a sign-in (con redirect_url)
//   - public con sesión      => redirect al dashboard
//   - resto                  => pasa; los handlers deciden 401.
//
// Un fallo de verificación cuenta como "no autenticado", nunca corta el request.
func Gate(opts GateOptions) func(http.Handler) http.Handler {
	g := newGate(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ShouldRun(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			session := g.resolve(r)
			r = r.WithContext(WithSession(r.Context(), session))

			class := g.classify(r.URL.Path)
			switch class {
			case RouteDashboard:
				if !session.Authenticated {
					g.onDecision(class, "redirect_sign_in")
					http.Redirect(w, r, g.signInRedirect(r), http.StatusTemporaryRedirect)
					return
				}
			case RoutePublic:
				if session.Authenticated {
					g.onDecision(class, "redirect_dashboard")
					http.Redirect(w, r, g.dashboardPath, http.StatusTemporaryRedirect)
					return
				}
			}

			g.onDecision(class, "pass")
			next.ServeHTTP(w, r)
		})
	}
}

func (g *gate) classify(p string) RouteClass {
	if g.dashboard.match(p) {
		return RouteDashboard
	}
	if g.public.match(p) {
		return RoutePublic
	}
	return RouteOther
}

func (g *gate) resolve(r *http.Request) auth.Session {
	log := zerolog.Ctx(r.Context())

	// Modo dev: sin verifier
	if g.verifier == nil {
		uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
		if uid == "" {
			uid = g.cookieToken(r)
		}
		if uid == "" {
			return auth.Anonymous()
		}
		return auth.Authenticated(auth.Claims{UserID: uid})
	}

	// Bearer primero (clientes API); la cookie es el fallback del navegador.
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = g.cookieToken(r)
	}
	if token == "" {
		return auth.Anonymous()
	}

	claims, err := g.verifier.Verify(r.Context(), token)
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("session verification failed")
		return auth.Anonymous()
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return auth.Anonymous()
	}
	return auth.Authenticated(claims)
}

func (g *gate) cookieToken(r *http.Request) string {
	c, err := r.Cookie(g.cookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func (g *gate) signInRedirect(r *http.Request) string {
	u, err := url.Parse(g.signInURL)
	if err != nil {
		return DefaultSignInPath
	}
	q := u.Query()
	q.Set("redirect_url", r.URL.RequestURI())
	u.RawQuery = q.Encode()
	return u.String()
}

// WithSession guarda la sesión en el context.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom devuelve la sesión del request; sin gate => anónima.
func SessionFrom(ctx context.Context) auth.Session {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	if !ok {
		return auth.Anonymous()
	}
	return s
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	s := SessionFrom(ctx)
	if !s.Authenticated {
		return auth.Claims{}, false
	}
	return s.Claims, true
}

// ShouldRun replica el matcher de rutas: todo menos assets estáticos,
// y siempre para los prefijos /api y /trpc.
func ShouldRun(p string) bool {
	if hasPrefixSegment(p, "/api") || hasPrefixSegment(p, "/trpc") {
		return true
	}
	if strings.HasPrefix(p, "/_next") || strings.HasPrefix(p, "/static/") {
		return false
	}
	_, static := staticExtensions[strings.ToLower(path.Ext(p))]
	return !static
}

var staticExtensions = map[string]struct{}{
	".html": {}, ".htm": {}, ".css": {}, ".js": {},
	".jpg": {}, ".jpeg": {}, ".webp": {}, ".png": {}, ".gif": {}, ".svg": {},
	".ttf": {}, ".woff": {}, ".woff2": {}, ".ico": {}, ".csv": {},
	".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".zip": {}, ".webmanifest": {},
}

func hasPrefixSegment(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

type routeMatcher struct {
	exact    map[string]struct{}
	prefixes []string
}

func newRouteMatcher(patterns []string) routeMatcher {
	m := routeMatcher{exact: map[string]struct{}{}}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if base, ok := strings.CutSuffix(p, "(.*)"); ok {
			m.prefixes = append(m.prefixes, base)
			continue
		}
		m.exact[p] = struct{}{}
	}
	return m
}

func (m routeMatcher) match(p string) bool {
	if _, ok := m.exact[p]; ok {
		return true
	}
	for _, pre := range m.prefixes {
		if strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func firstNonEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
