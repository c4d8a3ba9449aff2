package clients

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver doctors.Resolver) {
	// Rutas planas: programs y visits cuelgan sub-recursos de /api/clients/{clientID}.
	r.Post("/api/clients", createClientHandler(svc, resolver))
	r.Get("/api/clients", listClientsHandler(svc, resolver))
	r.Get("/api/clients/{clientID}", getClientHandler(svc, resolver))
}

type createClientRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD opcional
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

// ClientResponse es la forma pública de un cliente.
type ClientResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      Gender     `json:"gender"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// createClientHandler godoc
// @Summary Registrar cliente
// @Tags clients
// @Accept json
// @Produce json
// @Param payload body createClientRequest true "Cliente"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients [post]
func createClientHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req createClientRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "dateOfBirth must be YYYY-MM-DD")
				return
			}
			dob = &t
		}

		c, err := svc.Create(r.Context(), doc.ID, CreateInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: dob,
			Gender:      Gender(req.Gender),
			Phone:       req.Phone,
			Email:       req.Email,
			Address:     req.Address,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				respond.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			respond.Internal(w, r, err, "create client")
			return
		}

		respond.JSON(w, http.StatusCreated, ToResponse(c))
	}
}

// listClientsHandler godoc
// @Summary Listar clientes
// @Description Búsqueda opcional por nombre, email o teléfono (q).
// @Tags clients
// @Produce json
// @Param q query string false "Texto a buscar"
// @Param limit query int false "Máximo de resultados (default 50, máx 200)"
// @Success 200 {array} ClientResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients [get]
func listClientsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.List(r.Context(), ListFilter{
			Query: r.URL.Query().Get("q"),
			Limit: limit,
		})
		if err != nil {
			respond.Internal(w, r, err, "list clients")
			return
		}

		out := make([]ClientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, ToResponse(c))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getClientHandler godoc
// @Summary Obtener cliente
// @Tags clients
// @Produce json
// @Param clientID path string true "Client ID"
// @Success 200 {object} ClientResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/{clientID} [get]
func getClientHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(w, http.StatusNotFound, "Client not found")
				return
			}
			respond.Internal(w, r, err, "get client")
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(c))
	}
}

func ToResponse(c Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DateOfBirth: c.DateOfBirth,
		Gender:      c.Gender,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
