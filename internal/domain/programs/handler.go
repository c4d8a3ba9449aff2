package programs

import (
	"errors"
	"net/http"
	"time"

	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver doctors.Resolver) {
	r.Post("/api/programs", createProgramHandler(svc, resolver))
	r.Get("/api/programs", listProgramsHandler(svc, resolver))

	// Inscripciones (sub-recurso del cliente)
	r.Post("/api/clients/{clientID}/enrollments", enrollHandler(svc, resolver))
	r.Get("/api/clients/{clientID}/enrollments", listEnrollmentsHandler(svc, resolver))
}

type createProgramRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProgramResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type enrollRequest struct {
	ProgramID string `json:"programId"`
	Notes     string `json:"notes"`
}

type EnrollmentResponse struct {
	ID         string           `json:"id"`
	ClientID   string           `json:"clientId"`
	ProgramID  string           `json:"programId"`
	Status     EnrollmentStatus `json:"status"`
	Notes      string           `json:"notes"`
	EnrolledBy string           `json:"enrolledBy"`
	EnrolledAt time.Time        `json:"enrolledAt"`
}

// createProgramHandler godoc
// @Summary Crear programa
// @Description El nombre es único (sin distinguir mayúsculas).
// @Tags programs
// @Accept json
// @Produce json
// @Param payload body createProgramRequest true "Programa"
// @Success 201 {object} ProgramResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/programs [post]
func createProgramHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req createProgramRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		p, err := svc.Create(r.Context(), doc.ID, CreateInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, "Program name is required")
			case errors.Is(err, ErrDuplicateName):
				respond.Error(w, http.StatusConflict, "A program with this name already exists")
			default:
				respond.Internal(w, r, err, "create program")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, toProgramResponse(p))
	}
}

// listProgramsHandler godoc
// @Summary Listar programas
// @Tags programs
// @Produce json
// @Success 200 {array} ProgramResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/programs [get]
func listProgramsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			respond.Internal(w, r, err, "list programs")
			return
		}

		out := make([]ProgramResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProgramResponse(p))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// enrollHandler godoc
// @Summary Inscribir cliente en un programa
// @Tags programs
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param payload body enrollRequest true "Inscripción"
// @Success 201 {object} EnrollmentResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/{clientID}/enrollments [post]
func enrollHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req enrollRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		e, err := svc.Enroll(r.Context(), doc.ID, chi.URLParam(r, "clientID"), EnrollInput{
			ProgramID: req.ProgramID,
			Notes:     req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, "Program ID is required")
			case errors.Is(err, ErrClientNotFound):
				respond.Error(w, http.StatusNotFound, "Client not found")
			case errors.Is(err, ErrNotFound):
				respond.Error(w, http.StatusNotFound, "Program not found")
			case errors.Is(err, ErrAlreadyEnrolled):
				respond.Error(w, http.StatusConflict, "Client is already enrolled in this program")
			default:
				respond.Internal(w, r, err, "enroll client")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, toEnrollmentResponse(e))
	}
}

// listEnrollmentsHandler godoc
// @Summary Inscripciones de un cliente
// @Tags programs
// @Produce json
// @Param clientID path string true "Client ID"
// @Success 200 {array} EnrollmentResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/{clientID}/enrollments [get]
func listEnrollmentsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		items, err := svc.ListEnrollments(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			if errors.Is(err, ErrClientNotFound) {
				respond.Error(w, http.StatusNotFound, "Client not found")
				return
			}
			respond.Internal(w, r, err, "list enrollments")
			return
		}

		out := make([]EnrollmentResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEnrollmentResponse(e))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func toProgramResponse(p Program) ProgramResponse {
	return ProgramResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

func toEnrollmentResponse(e Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         e.ID,
		ClientID:   e.ClientID,
		ProgramID:  e.ProgramID,
		Status:     e.Status,
		Notes:      e.Notes,
		EnrolledBy: e.EnrolledBy,
		EnrolledAt: e.EnrolledAt,
	}
}
