package pages

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"health-dashboard/internal/domain/dashboard"
	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/domain/laborders"
	"health-dashboard/internal/domain/prescriptions"
	"health-dashboard/internal/middleware"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templatesFS embed.FS

type StatsProvider interface {
	Stats(ctx context.Context, doctorID string) (dashboard.Stats, error)
}

type Options struct {
	SignInURL string
	SignUpURL string
}

type Pages struct {
	home, auth, dash *template.Template

	doctors doctors.Resolver
	stats   StatsProvider
	opts    Options
}

// New parsea los templates embebidos; un template inválido es un bug y hace panic.
func New(resolver doctors.Resolver, stats StatsProvider, opts Options) *Pages {
	if opts.SignInURL == "" {
		opts.SignInURL = middleware.DefaultSignInPath
	}
	if opts.SignUpURL == "" {
		opts.SignUpURL = "/sign-up"
	}

	parse := func(name string) *template.Template {
		return template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}

	return &Pages{
		home:    parse("home.html"),
		auth:    parse("auth.html"),
		dash:    parse("dashboard.html"),
		doctors: resolver,
		stats:   stats,
		opts:    opts,
	}
}

func (p *Pages) RegisterRoutes(r chi.Router) {
	r.Get("/", p.homePage)
	r.Get("/sign-in", p.authPage("Iniciar sesión", p.opts.SignInURL))
	r.Get("/sign-in/*", p.authPage("Iniciar sesión", p.opts.SignInURL))
	r.Get("/sign-up", p.authPage("Crear cuenta", p.opts.SignUpURL))
	r.Get("/sign-up/*", p.authPage("Crear cuenta", p.opts.SignUpURL))
	r.Get("/dashboard", p.dashboardPage)
	r.Get("/dashboard/*", p.dashboardPage)
}

type baseView struct {
	Title         string
	Authenticated bool
	SignInURL     string
	SignUpURL     string
}

func (p *Pages) base(r *http.Request, title string) baseView {
	return baseView{
		Title:         title,
		Authenticated: middleware.SessionFrom(r.Context()).Authenticated,
		SignInURL:     p.opts.SignInURL,
		SignUpURL:     p.opts.SignUpURL,
	}
}

func (p *Pages) homePage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, p.home, p.base(r, "Inicio"))
}

type authView struct {
	baseView
	ProviderURL string
	External    bool
	RedirectURL string
}

func (p *Pages) authPage(title, providerURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := localPath(r.URL.Query().Get("redirect_url"))
		view := authView{
			baseView:    p.base(r, title),
			ProviderURL: providerURL,
			External:    isAbsoluteURL(providerURL),
			RedirectURL: redirect,
		}
		if view.External && redirect != "" {
			view.ProviderURL = withRedirect(providerURL, requestOrigin(r)+redirect)
		}
		p.render(w, r, p.auth, view)
	}
}

// localPath acepta solo paths propios ("/x"), nunca "//host" ni URLs absolutas.
func localPath(s string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return ""
	}
	return s
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func withRedirect(providerURL, target string) string {
	u, err := url.Parse(providerURL)
	if err != nil {
		return providerURL
	}
	q := u.Query()
	q.Set("redirect_url", target)
	u.RawQuery = q.Encode()
	return u.String()
}

type seriesPoint struct {
	Label   string
	Count   int
	Percent int
}

type dashboardView struct {
	baseView
	Doctor        *doctors.Doctor
	Stats         dashboard.Stats
	Visits        []seriesPoint
	Prescriptions []seriesPoint
	LabOrders     []seriesPoint
}

func (p *Pages) dashboardPage(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{baseView: p.base(r, "Dashboard")}

	doc, err := p.doctors.Current(r.Context())
	switch {
	case errors.Is(err, doctors.ErrUnauthorized):
		// sesión sin perfil: se muestra el onboarding
	case err != nil:
		respond.Internal(w, r, err, "dashboard page: resolve doctor")
		return
	default:
		stats, err := p.stats.Stats(r.Context(), doc.ID)
		if err != nil {
			respond.Internal(w, r, err, "dashboard page: stats")
			return
		}
		view.Doctor = &doc
		view.Stats = stats
		view.Visits = monthSeries(stats.VisitsByMonth)
		view.Prescriptions = statusSeries(stats.Prescriptions, prescriptions.ValidStatusNames())
		view.LabOrders = statusSeries(stats.LabOrders, labStatusNames())
	}

	p.render(w, r, p.dash, view)
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		respond.Internal(w, r, err, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func monthSeries(in []dashboard.MonthCount) []seriesPoint {
	top := 0
	for _, m := range in {
		if m.Count > top {
			top = m.Count
		}
	}
	out := make([]seriesPoint, 0, len(in))
	for _, m := range in {
		out = append(out, seriesPoint{Label: m.Month, Count: m.Count, Percent: percent(m.Count, top)})
	}
	return out
}

// statusSeries respeta el orden de order; claves desconocidas van al final, ordenadas.
func statusSeries(counts map[string]int, order []string) []seriesPoint {
	seen := make(map[string]bool, len(order))
	out := make([]seriesPoint, 0, len(counts))
	for _, s := range order {
		seen[s] = true
		out = append(out, seriesPoint{Label: s, Count: counts[s]})
	}
	var extra []string
	for s := range counts {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		out = append(out, seriesPoint{Label: s, Count: counts[s]})
	}
	return out
}

func labStatusNames() []string {
	out := make([]string, 0, len(laborders.ValidStatuses))
	for _, s := range laborders.ValidStatuses {
		out = append(out, string(s))
	}
	return out
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func percent(n, top int) int {
	if top <= 0 {
		return 0
	}
	return n * 100 / top
}
