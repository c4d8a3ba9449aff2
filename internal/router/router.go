package router

import (
	"database/sql"
	"net/http"

	mem "health-dashboard/internal/adapters/storage/memory"
	pg "health-dashboard/internal/adapters/storage/postgres"
	"health-dashboard/internal/domain/clients"
	"health-dashboard/internal/domain/dashboard"
	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/domain/laborders"
	"health-dashboard/internal/domain/prescriptions"
	"health-dashboard/internal/domain/programs"
	"health-dashboard/internal/domain/visits"
	"health-dashboard/internal/middleware"
	"health-dashboard/internal/pages"
	"health-dashboard/internal/platform/metrics"
	"health-dashboard/internal/ports/auth"

	"health-dashboard/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Verifier auth.SessionVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger  zerolog.Logger
	Metrics *metrics.Metrics // nil => registry nuevo

	SessionCookie string
	SignInURL     string
	SignUpURL     string

	LabPolicy laborders.CompletionPolicy // vacío => first_result

	// RateLimitRPS <= 0 desactiva el rate limit de /api.
	RateLimitRPS   float64
	RateLimitBurst int
}

type repos struct {
	doctors       doctors.Repository
	clients       clients.Repository
	programs      programs.Repository
	enrollments   programs.EnrollmentRepository
	visits        visits.Repository
	prescriptions prescriptions.Repository
	medicines     prescriptions.MedicineRepository
	labOrders     laborders.Repository
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			doctors:       pg.NewDoctorsRepo(db),
			clients:       pg.NewClientsRepo(db),
			programs:      pg.NewProgramsRepo(db),
			enrollments:   pg.NewEnrollmentsRepo(db),
			visits:        pg.NewVisitsRepo(db),
			prescriptions: pg.NewPrescriptionsRepo(db),
			medicines:     pg.NewMedicinesRepo(db),
			labOrders:     pg.NewLabOrdersRepo(db),
		}
	}
	return repos{
		doctors:       mem.NewDoctorRepo(),
		clients:       mem.NewClientRepo(),
		programs:      mem.NewProgramRepo(),
		enrollments:   mem.NewEnrollmentRepo(),
		visits:        mem.NewVisitRepo(),
		prescriptions: mem.NewPrescriptionRepo(),
		medicines:     mem.NewMedicineRepo(),
		labOrders:     mem.NewLabOrderRepo(),
	}
}

func NewRouter(opts Options) http.Handler {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	policy := opts.LabPolicy
	if policy == "" {
		policy = laborders.FirstResult
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.Recover)
	r.Use(m.Instrument)

	r.Use(middleware.Gate(middleware.GateOptions{
		Verifier:      opts.Verifier,
		SessionCookie: opts.SessionCookie,
		SignInURL:     opts.SignInURL,
		OnDecision: func(class middleware.RouteClass, outcome string) {
			m.GateDecision(class.String(), outcome)
		},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rp := newRepos(opts.DB)

	// Services por módulo
	doctorsSvc := doctors.NewService(rp.doctors)
	clientsSvc := clients.NewService(rp.clients)
	programsSvc := programs.NewService(rp.programs, rp.enrollments, clientsSvc)
	visitsSvc := visits.NewService(rp.visits, clientsSvc)
	rxSvc := prescriptions.NewService(rp.prescriptions, rp.medicines, visitsSvc, clientsSvc, doctorsSvc).
		WithRecorder(m)
	labSvc := laborders.NewService(rp.labOrders, clientsSvc, visitsSvc, policy).
		WithRecorder(m)
	dashSvc := dashboard.NewService(clientsSvc, programsSvc, rxSvc, labSvc, visitsSvc)

	pages.New(doctorsSvc, dashSvc, pages.Options{
		SignInURL: opts.SignInURL,
		SignUpURL: opts.SignUpURL,
	}).RegisterRoutes(r)

	r.Group(func(api chi.Router) {
		if opts.RateLimitRPS > 0 {
			api.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Handler)
		}

		api.Get("/api/swagger", swaggerDocHandler)
		api.Get("/api/swagger/ui/*", httpSwagger.Handler(httpSwagger.URL("/api/swagger")))

		// Rutas por módulo
		doctors.RegisterRoutes(api, doctorsSvc)
		clients.RegisterRoutes(api, clientsSvc, doctorsSvc)
		programs.RegisterRoutes(api, programsSvc, doctorsSvc)
		visits.RegisterRoutes(api, visitsSvc, doctorsSvc)
		prescriptions.RegisterRoutes(api, rxSvc, doctorsSvc)
		laborders.RegisterRoutes(api, labSvc, doctorsSvc)
		dashboard.RegisterRoutes(api, dashSvc, doctorsSvc)
	})

	return r
}

// swaggerDocHandler godoc
// @Summary Documento OpenAPI
// @Description Documento swagger 2.0 de la API. No requiere sesión.
// @Tags docs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/swagger [get]
func swaggerDocHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
}
