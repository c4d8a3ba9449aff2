package laborders

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
	r.Route("/api/lab-orders", func(lr chi.Router) {
		lr.Post("/", createOrderHandler(svc, resolver))
		lr.Get("/", listOrdersHandler(svc, resolver))
		lr.Get("/{id}", getOrderHandler(svc, resolver))
		lr.Post("/{id}/results", addResultHandler(svc, resolver))
	})
}

type createOrderRequest struct {
	ClientID string   `json:"clientId"`
	VisitID  string   `json:"visitId"`
	Tests    []string `json:"tests"`
	Priority string   `json:"priority"`
	Notes    string   `json:"notes"`
}

type addResultRequest struct {
	Parameter      string `json:"parameter"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"referenceRange"`
	IsAbnormal     bool   `json:"isAbnormal"`
	Notes          string `json:"notes"`
	VerifiedBy     string `json:"verifiedBy"`
}

type ResultResponse struct {
	ID             string    `json:"id"`
	LabOrderID     string    `json:"labOrderId"`
	Parameter      string    `json:"parameter"`
	Value          string    `json:"value"`
	Unit           string    `json:"unit"`
	ReferenceRange string    `json:"referenceRange"`
	IsAbnormal     bool      `json:"isAbnormal"`
	Notes          string    `json:"notes"`
	VerifiedBy     string    `json:"verifiedBy"`
	ResultedAt     time.Time `json:"resultedAt"`
}

// OrderResponse: results solo viene en el detalle.
type OrderResponse struct {
	ID          string           `json:"id"`
	ClientID    string           `json:"clientId"`
	DoctorID    string           `json:"doctorId"`
	VisitID     string           `json:"visitId,omitempty"`
	Tests       []string         `json:"tests"`
	Priority    Priority         `json:"priority"`
	Status      Status           `json:"status"`
	Notes       string           `json:"notes"`
	OrderedAt   time.Time        `json:"orderedAt"`
	CompletedAt *time.Time       `json:"completedAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Results     []ResultResponse `json:"results,omitempty"`
}

// createOrderHandler godoc
// @Summary Crear orden de laboratorio
// @Tags lab-orders
// @Accept json
// @Produce json
// @Param payload body createOrderRequest true "Orden"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/lab-orders [post]
func createOrderHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		o, err := svc.Create(r.Context(), doc.ID, CreateInput{
			ClientID: req.ClientID,
			VisitID:  req.VisitID,
			Tests:    req.Tests,
			Priority: Priority(req.Priority),
			Notes:    req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrClientNotFound):
				respond.Error(w, http.StatusNotFound, "Client not found")
			case errors.Is(err, ErrVisitNotFound):
				respond.Error(w, http.StatusNotFound, "Visit not found")
			default:
				respond.Internal(w, r, err, "create lab order")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, toOrderResponse(o, nil))
	}
}

// listOrdersHandler godoc
// @Summary Órdenes del doctor autenticado
// @Tags lab-orders
// @Produce json
// @Param status query string false "PENDING | IN_PROGRESS | COMPLETED | CANCELLED"
// @Success 200 {array} OrderResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/lab-orders [get]
func listOrdersHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		items, err := svc.ListByDoctor(r.Context(), doc.ID, r.URL.Query().Get("status"))
		if err != nil {
			if errors.Is(err, ErrInvalidStatus) {
				names := make([]string, 0, len(ValidStatuses))
				for _, s := range ValidStatuses {
					names = append(names, string(s))
				}
				respond.Validation(w, &respond.ValidationError{
					Message: "Invalid status. Must be one of: " + strings.Join(names, ", "),
					Allowed: names,
				})
				return
			}
			respond.Internal(w, r, err, "list lab orders")
			return
		}

		out := make([]OrderResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOrderResponse(o, nil))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getOrderHandler godoc
// @Summary Obtener orden con resultados
// @Tags lab-orders
// @Produce json
// @Param id path string true "Lab order ID"
// @Success 200 {object} OrderResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/lab-orders/{id} [get]
func getOrderHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		d, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(w, http.StatusNotFound, "Lab order not found")
				return
			}
			respond.Internal(w, r, err, "get lab order")
			return
		}
		respond.JSON(w, http.StatusOK, toOrderResponse(d.LabOrder, d.Results))
	}
}

// addResultHandler godoc
// @Summary Registrar resultado de laboratorio
// @Description Crea el resultado y, según LAB_COMPLETION_POLICY, deja la orden en COMPLETED con completedAt.
// @Tags lab-orders
// @Accept json
// @Produce json
// @Param id path string true "Lab order ID"
// @Param payload body addResultRequest true "Resultado"
// @Success 201 {object} ResultResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/lab-orders/{id}/results [post]
func addResultHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		var req addResultRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		res, _, err := svc.AddResult(r.Context(), chi.URLParam(r, "id"), ResultInput{
			Parameter:      req.Parameter,
			Value:          req.Value,
			Unit:           req.Unit,
			ReferenceRange: req.ReferenceRange,
			IsAbnormal:     req.IsAbnormal,
			Notes:          req.Notes,
			VerifiedBy:     req.VerifiedBy,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(w, http.StatusBadRequest, "Parameter and value are required")
			case errors.Is(err, ErrNotFound):
				respond.Error(w, http.StatusNotFound, "Lab order not found")
			default:
				respond.Internal(w, r, err, "add lab result")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, toResultResponse(res))
	}
}

func toOrderResponse(o LabOrder, results []Result) OrderResponse {
	tests := o.Tests
	if tests == nil {
		tests = []string{}
	}
	out := OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		DoctorID:    o.DoctorID,
		VisitID:     o.VisitID,
		Tests:       tests,
		Priority:    o.Priority,
		Status:      o.Status,
		Notes:       o.Notes,
		OrderedAt:   o.OrderedAt,
		CompletedAt: o.CompletedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, r := range results {
		out.Results = append(out.Results, toResultResponse(r))
	}
	return out
}

func toResultResponse(r Result) ResultResponse {
	return ResultResponse{
		ID:             r.ID,
		LabOrderID:     r.LabOrderID,
		Parameter:      r.Parameter,
		Value:          r.Value,
		Unit:           r.Unit,
		ReferenceRange: r.ReferenceRange,
		IsAbnormal:     r.IsAbnormal,
		Notes:          r.Notes,
		VerifiedBy:     r.VerifiedBy,
		ResultedAt:     r.ResultedAt,
	}
}
