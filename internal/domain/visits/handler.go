package visits

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver doctors.Resolver) {
	r.Post("/api/clients/{clientID}/visits", createVisitHandler(svc, resolver))
	r.Get("/api/clients/{clientID}/visits", listVisitsHandler(svc, resolver))
	r.Get("/api/visits/{visitID}", getVisitHandler(svc, resolver))
}

type createVisitRequest struct {
	VisitDate string `json:"visitDate"` // RFC3339 o YYYY-MM-DD; vacío = ahora
	Reason    string `json:"reason"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes"`
}

type VisitResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	DoctorID  string    `json:"doctorId"`
	VisitDate time.Time `json:"visitDate"`
	Reason    string    `json:"reason"`
	Diagnosis string    `json:"diagnosis"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// createVisitHandler godoc
// @Summary Registrar visita
// @Tags visits
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param payload body createVisitRequest true "Visita"
// @Success 201 {object} VisitResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/{clientID}/visits [post]
func createVisitHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req createVisitRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		visitDate, err := parseVisitDate(req.VisitDate)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "visitDate must be RFC3339 or YYYY-MM-DD")
			return
		}

		v, err := svc.Create(r.Context(), doc.ID, chi.URLParam(r, "clientID"), CreateInput{
			VisitDate: visitDate,
			Reason:    req.Reason,
			Diagnosis: req.Diagnosis,
			Notes:     req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, "Reason is required")
			case errors.Is(err, ErrClientNotFound):
				respond.Error(w, http.StatusNotFound, "Client not found")
			default:
				respond.Internal(w, r, err, "create visit")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, ToResponse(v))
	}
}

// listVisitsHandler godoc
// @Summary Visitas de un cliente
// @Tags visits
// @Produce json
// @Param clientID path string true "Client ID"
// @Success 200 {array} VisitResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/{clientID}/visits [get]
func listVisitsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		items, err := svc.ListByClient(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			if errors.Is(err, ErrClientNotFound) {
				respond.Error(w, http.StatusNotFound, "Client not found")
				return
			}
			respond.Internal(w, r, err, "list visits")
			return
		}

		out := make([]VisitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, ToResponse(v))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getVisitHandler godoc
// @Summary Obtener visita
// @Tags visits
// @Produce json
// @Param visitID path string true "Visit ID"
// @Success 200 {object} VisitResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/visits/{visitID} [get]
func getVisitHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "visitID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(w, http.StatusNotFound, "Visit not found")
				return
			}
			respond.Internal(w, r, err, "get visit")
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(v))
	}
}

func parseVisitDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func ToResponse(v Visit) VisitResponse {
	return VisitResponse{
		ID:        v.ID,
		ClientID:  v.ClientID,
		DoctorID:  v.DoctorID,
		VisitDate: v.VisitDate,
		Reason:    v.Reason,
		Diagnosis: v.Diagnosis,
		Notes:     v.Notes,
		CreatedAt: v.CreatedAt,
	}
}
