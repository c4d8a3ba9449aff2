package doctors

import (
	"context"
	"errors"
	"net/http"
	"time"

	"health-dashboard/internal/middleware"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

// Resolver es lo que los demás módulos necesitan para exigir un doctor autenticado.
type Resolver interface {
	Current(ctx context.Context) (Doctor, error)
}

// Require resuelve el doctor del request o escribe 401/500 y devuelve ok=false.
func Require(w http.ResponseWriter, r *http.Request, resolver Resolver) (Doctor, bool) {
	d, err := resolver.Current(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			respond.Unauthorized(w)
			return Doctor{}, false
		}
		respond.Internal(w, r, err, "resolve current doctor")
		return Doctor{}, false
	}
	return d, true
}

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/me", getMeHandler(svc))
	r.Put("/api/me", putMeHandler(svc))
}

type profileRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"licenseNumber"`
}

// DoctorResponse es la forma pública de un doctor (también se embebe en prescripciones).
type DoctorResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Specialization string    `json:"specialization"`
	LicenseNumber  string    `json:"licenseNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// getMeHandler godoc
// @Summary Perfil del doctor autenticado
// @Description Devuelve el perfil de doctor asociado a la sesión. 401 si no hay sesión o si la identidad aún no tiene perfil.
// @Tags doctors
// @Produce json
// @Success 200 {object} DoctorResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := Require(w, r, svc)
		if !ok {
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(d))
	}
}

// putMeHandler godoc
// @Summary Crear/actualizar perfil del doctor
// @Description Onboarding: crea el perfil de doctor para la identidad de la sesión o lo actualiza si ya existe.
// @Tags doctors
// @Accept json
// @Produce json
// @Param payload body profileRequest true "Perfil"
// @Success 200 {object} DoctorResponse
// @Success 201 {object} DoctorResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/me [put]
func putMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Unauthorized(w)
			return
		}

		var req profileRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		d, created, err := svc.Upsert(r.Context(), claims, ProfileInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			Specialization: req.Specialization,
			LicenseNumber:  req.LicenseNumber,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, "firstName and lastName are required")
			case errors.Is(err, ErrUnauthorized):
				respond.Unauthorized(w)
			default:
				respond.Internal(w, r, err, "upsert doctor profile")
			}
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respond.JSON(w, status, ToResponse(d))
	}
}

func ToResponse(d Doctor) DoctorResponse {
	return DoctorResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		Email:          d.Email,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Specialization: d.Specialization,
		LicenseNumber:  d.LicenseNumber,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
