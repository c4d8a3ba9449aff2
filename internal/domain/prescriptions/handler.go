package prescriptions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"health-dashboard/internal/domain/clients"
	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/domain/visits"
	"health-dashboard/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver doctors.Resolver) {
	r.Post("/api/medicines", createMedicineHandler(svc, resolver))
	r.Get("/api/medicines", listMedicinesHandler(svc, resolver))

	r.Route("/api/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc, resolver))
		pr.Get("/", listPrescriptionsHandler(svc, resolver))
		pr.Get("/{id}", getPrescriptionHandler(svc, resolver))
		pr.Patch("/{id}", updateStatusHandler(svc, resolver))
	})
}

type createMedicineRequest struct {
	Name        string `json:"name"`
	GenericName string `json:"genericName"`
	Form        string `json:"form"`
	Strength    string `json:"strength"`
}

type MedicineResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GenericName string    `json:"genericName"`
	Form        string    `json:"form"`
	Strength    string    `json:"strength"`
	CreatedAt   time.Time `json:"createdAt"`
}

type itemRequest struct {
	MedicineID   string `json:"medicineId"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions"`
}

type createPrescriptionRequest struct {
	VisitID string        `json:"visitId"`
	Notes   string        `json:"notes"`
	Items   []itemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type ItemResponse struct {
	ID             string            `json:"id"`
	PrescriptionID string            `json:"prescriptionId"`
	MedicineID     string            `json:"medicineId"`
	Dosage         string            `json:"dosage"`
	Frequency      string            `json:"frequency"`
	Duration       string            `json:"duration"`
	Quantity       int               `json:"quantity"`
	Instructions   string            `json:"instructions"`
	Medicine       *MedicineResponse `json:"medicine,omitempty"`
}

// PrescriptionResponse: visit, client, doctor e items[].medicine solo vienen en la forma expandida.
type PrescriptionResponse struct {
	ID        string         `json:"id"`
	VisitID   string         `json:"visitId"`
	ClientID  string         `json:"clientId"`
	DoctorID  string         `json:"doctorId"`
	Status    Status         `json:"status"`
	Notes     string         `json:"notes"`
	IssuedAt  time.Time      `json:"issuedAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Items     []ItemResponse `json:"items"`

	Visit  *visits.VisitResponse   `json:"visit,omitempty"`
	Client *clients.ClientResponse `json:"client,omitempty"`
	Doctor *doctors.DoctorResponse `json:"doctor,omitempty"`
}

// createMedicineHandler godoc
// @Summary Registrar medicamento
// @Tags medicines
// @Accept json
// @Produce json
// @Param payload body createMedicineRequest true "Medicamento"
// @Success 201 {object} MedicineResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/medicines [post]
func createMedicineHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		var req createMedicineRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		m, err := svc.CreateMedicine(r.Context(), MedicineInput{
			Name:        req.Name,
			GenericName: req.GenericName,
			Form:        req.Form,
			Strength:    req.Strength,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				respond.Error(w, http.StatusBadRequest, "Medicine name is required")
				return
			}
			respond.Internal(w, r, err, "create medicine")
			return
		}
		respond.JSON(w, http.StatusCreated, toMedicineResponse(m))
	}
}

// listMedicinesHandler godoc
// @Summary Listar medicamentos
// @Tags medicines
// @Produce json
// @Param q query string false "Nombre o nombre genérico"
// @Success 200 {array} MedicineResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/medicines [get]
func listMedicinesHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		items, err := svc.ListMedicines(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			respond.Internal(w, r, err, "list medicines")
			return
		}
		out := make([]MedicineResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicineResponse(m))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// createPrescriptionHandler godoc
// @Summary Emitir receta
// @Description Crea una receta PENDING para una visita. Requiere al menos un item; cada medicineId debe existir.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param payload body createPrescriptionRequest true "Receta"
// @Success 201 {object} PrescriptionResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/prescriptions [post]
func createPrescriptionHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		var req createPrescriptionRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		items := make([]ItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, ItemInput{
				MedicineID:   it.MedicineID,
				Dosage:       it.Dosage,
				Frequency:    it.Frequency,
				Duration:     it.Duration,
				Quantity:     it.Quantity,
				Instructions: it.Instructions,
			})
		}

		d, err := svc.Create(r.Context(), doc.ID, CreateInput{
			VisitID: req.VisitID,
			Notes:   req.Notes,
			Items:   items,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMedicineNotFound):
				respond.Error(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrVisitNotFound):
				respond.Error(w, http.StatusNotFound, "Visit not found")
			default:
				respond.Internal(w, r, err, "create prescription")
			}
			return
		}
		respond.JSON(w, http.StatusCreated, ToDetailResponse(d))
	}
}

// listPrescriptionsHandler godoc
// @Summary Recetas del doctor autenticado
// @Tags prescriptions
// @Produce json
// @Param status query string false "PENDING | DISPENSED | CANCELLED"
// @Success 200 {array} PrescriptionResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/prescriptions [get]
func listPrescriptionsHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := doctors.Require(w, r, resolver)
		if !ok {
			return
		}

		items, err := svc.ListByDoctor(r.Context(), doc.ID, r.URL.Query().Get("status"))
		if err != nil {
			if errors.Is(err, ErrInvalidStatus) {
				respond.Validation(w, invalidStatusError())
				return
			}
			respond.Internal(w, r, err, "list prescriptions")
			return
		}

		out := make([]PrescriptionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getPrescriptionHandler godoc
// @Summary Obtener receta expandida
// @Tags prescriptions
// @Produce json
// @Param id path string true "Prescription ID"
// @Success 200 {object} PrescriptionResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/prescriptions/{id} [get]
func getPrescriptionHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		d, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(w, http.StatusNotFound, "Prescription not found")
				return
			}
			respond.Internal(w, r, err, "get prescription")
			return
		}
		respond.JSON(w, http.StatusOK, ToDetailResponse(d))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de una receta
// @Description status debe ser PENDING, DISPENSED o CANCELLED. Devuelve la receta con visit, client, doctor e items (con medicine).
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param id path string true "Prescription ID"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} PrescriptionResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/prescriptions/{id} [patch]
func updateStatusHandler(svc *Service, resolver doctors.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := doctors.Require(w, r, resolver); !ok {
			return
		}

		var req updateStatusRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		d, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrStatusRequired):
				respond.Error(w, http.StatusBadRequest, "Status is required")
			case errors.Is(err, ErrInvalidStatus):
				respond.Validation(w, invalidStatusError())
			case errors.Is(err, ErrNotFound):
				respond.Error(w, http.StatusNotFound, "Prescription not found")
			default:
				respond.Internal(w, r, err, "update prescription status")
			}
			return
		}
		respond.JSON(w, http.StatusOK, ToDetailResponse(d))
	}
}

func invalidStatusError() *respond.ValidationError {
	names := ValidStatusNames()
	return &respond.ValidationError{
		Message: "Invalid status. Must be one of: " + strings.Join(names, ", "),
		Allowed: names,
	}
}

func ToResponse(p Prescription) PrescriptionResponse {
	items := make([]ItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, ItemResponse{
			ID:             it.ID,
			PrescriptionID: it.PrescriptionID,
			MedicineID:     it.MedicineID,
			Dosage:         it.Dosage,
			Frequency:      it.Frequency,
			Duration:       it.Duration,
			Quantity:       it.Quantity,
			Instructions:   it.Instructions,
		})
	}
	return PrescriptionResponse{
		ID:        p.ID,
		VisitID:   p.VisitID,
		ClientID:  p.ClientID,
		DoctorID:  p.DoctorID,
		Status:    p.Status,
		Notes:     p.Notes,
		IssuedAt:  p.IssuedAt,
		UpdatedAt: p.UpdatedAt,
		Items:     items,
	}
}

func ToDetailResponse(d Detail) PrescriptionResponse {
	out := ToResponse(d.Prescription)

	v := visits.ToResponse(d.Visit)
	c := clients.ToResponse(d.Client)
	doc := doctors.ToResponse(d.Doctor)
	out.Visit, out.Client, out.Doctor = &v, &c, &doc

	for i := range out.Items {
		if m, ok := d.Medicines[out.Items[i].MedicineID]; ok {
			mr := toMedicineResponse(m)
			out.Items[i].Medicine = &mr
		}
	}
	return out
}

func toMedicineResponse(m Medicine) MedicineResponse {
	return MedicineResponse{
		ID:          m.ID,
		Name:        m.Name,
		GenericName: m.GenericName,
		Form:        m.Form,
		Strength:    m.Strength,
		CreatedAt:   m.CreatedAt,
	}
}
