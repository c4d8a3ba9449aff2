package dashboard

import (
	"net/http"

	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver doctors.Resolver) {
	r.Get("/api/dashboard/stats", statsHandler(svc, resolver))
}

// statsHandler godoc
// @Summary Estadísticas del dashboard
// @Description Totales, recetas y órdenes por estado, y visitas por mes (últimos 6 meses).
// @Tags dashboard
// @Produce json
// @Success 200 {object} Stats
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/dashboard/stats [get]
func statsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		stats, err := svc.Stats(r.Context(), doc.ID)
		if err != nil {
			respond.Internal(w, r, err, "dashboard stats")
			return
		}
		respond.JSON(w, http.StatusOK, stats)
	}
}
