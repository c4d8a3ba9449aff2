package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-dashboard/internal/domain/clients"
	"health-dashboard/internal/domain/doctors"
	"health-dashboard/internal/domain/visits"
	"health-dashboard/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("prescription not found")

	ErrStatusRequired = errors.New("status is required")
	ErrInvalidStatus  = errors.New("invalid status")

	ErrVisitNotFound    = errors.New("visit not found")
	ErrMedicineNotFound = errors.New("medicine not found")
)

// Lookups de los módulos relacionados, para expandir la respuesta.
type VisitLookup interface {
	GetByID(ctx context.Context, id string) (visits.Visit, error)
}

type ClientLookup interface {
	GetByID(ctx context.Context, id string) (clients.Client, error)
}

type DoctorLookup interface {
	GetByID(ctx context.Context, id string) (doctors.Doctor, error)
}

// StatusRecorder recibe cada cambio de estado aplicado (métricas).
type StatusRecorder interface {
	PrescriptionStatusUpdated(status string)
}

type nopRecorder struct{}

func (nopRecorder) PrescriptionStatusUpdated(string) {}

type Service struct {
	repo      Repository
	medicines MedicineRepository

	visits  VisitLookup
	clients ClientLookup
	doctors DoctorLookup

	recorder StatusRecorder
	now      func() time.Time
}

func NewService(repo Repository, medicines MedicineRepository, v VisitLookup, c ClientLookup, d DoctorLookup) *Service {
	return &Service{
		repo:      repo,
		medicines: medicines,
		visits:    v,
		clients:   c,
		doctors:   d,
		recorder:  nopRecorder{},
		now:       time.Now,
	}
}

// WithRecorder engancha las métricas de cambios de estado.
func (s *Service) WithRecorder(r StatusRecorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Detail es la receta expandida: visita, cliente, doctor y medicamento de cada item.
type Detail struct {
	Prescription
	Visit     visits.Visit
	Client    clients.Client
	Doctor    doctors.Doctor
	Medicines map[string]Medicine // por medicine id
}

// -------------------------
// Medicines
// -------------------------

type MedicineInput struct {
	Name        string
	GenericName string
	Form        string
	Strength    string
}

func (s *Service) CreateMedicine(ctx context.Context, in MedicineInput) (Medicine, error) {
	name := normalizeName(in.Name)
	if name == "" {
		return Medicine{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	m := Medicine{
		ID:          uuid.NewString(),
		Name:        name,
		GenericName: normalizeName(in.GenericName),
		Form:        strings.TrimSpace(in.Form),
		Strength:    strings.TrimSpace(in.Strength),
		CreatedAt:   s.now(),
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func (s *Service) ListMedicines(ctx context.Context, query string) ([]Medicine, error) {
	return s.medicines.List(ctx, strings.TrimSpace(query))
}

// -------------------------
// Prescriptions
// -------------------------

type ItemInput struct {
	MedicineID   string
	Dosage       string
	Frequency    string
	Duration     string
	Quantity     int
	Instructions string
}

type CreateInput struct {
	VisitID string
	Notes   string
	Items   []ItemInput
}

// Create emite una receta PENDING para una visita. Requiere al menos un item
// y que todos los medicamentos existan.
func (s *Service) Create(ctx context.Context, doctorID string, in CreateInput) (Detail, error) {
	visitID := strings.TrimSpace(in.VisitID)
	if visitID == "" {
		return Detail{}, fmt.Errorf("%w: visitId is required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return Detail{}, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	visit, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, visits.ErrNotFound) {
			return Detail{}, ErrVisitNotFound
		}
		return Detail{}, err
	}

	now := s.now()
	p := Prescription{
		ID:        uuid.NewString(),
		VisitID:   visit.ID,
		ClientID:  visit.ClientID,
		DoctorID:  doctorID,
		Status:    StatusPending,
		Notes:     strings.TrimSpace(in.Notes),
		IssuedAt:  now,
		UpdatedAt: now,
		Items:     make([]Item, 0, len(in.Items)),
	}

	for i, it := range in.Items {
		medID := strings.TrimSpace(it.MedicineID)
		if medID == "" || strings.TrimSpace(it.Dosage) == "" || strings.TrimSpace(it.Frequency) == "" {
			return Detail{}, fmt.Errorf("%w: item %d requires medicineId, dosage and frequency", ErrInvalidInput, i)
		}
		if it.Quantity < 0 {
			return Detail{}, fmt.Errorf("%w: item %d quantity cannot be negative", ErrInvalidInput, i)
		}
		if _, err := s.medicines.GetByID(ctx, medID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Detail{}, fmt.Errorf("%w: %s", ErrMedicineNotFound, medID)
			}
			return Detail{}, err
		}

		p.Items = append(p.Items, Item{
			ID:             uuid.NewString(),
			PrescriptionID: p.ID,
			MedicineID:     medID,
			Dosage:         strings.TrimSpace(it.Dosage),
			Frequency:      strings.TrimSpace(it.Frequency),
			Duration:       strings.TrimSpace(it.Duration),
			Quantity:       it.Quantity,
			Instructions:   strings.TrimSpace(it.Instructions),
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Detail{}, err
	}
	return s.expand(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.expand(ctx, p)
}

// ListByDoctor: status vacío = todas; un status fuera del enum es ErrInvalidStatus.
func (s *Service) ListByDoctor(ctx context.Context, doctorID string, status string) ([]Prescription, error) {
	st := Status(strings.TrimSpace(status))
	if st != "" && !st.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByDoctor(ctx, doctorID, st)
}

// UpdateStatus aplica el nuevo estado y devuelve la receta expandida.
// Cualquier estado del enum es alcanzable desde cualquier otro.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (Detail, error) {
	st := Status(strings.TrimSpace(status))
	if st == "" {
		return Detail{}, ErrStatusRequired
	}
	if !st.Valid() {
		return Detail{}, ErrInvalidStatus
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, ErrNotFound
	}
	if err := s.repo.UpdateStatus(ctx, id, st, s.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	s.recorder.PrescriptionStatusUpdated(string(st))

	return s.Get(ctx, id)
}

func (s *Service) CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, doctorID)
}

func (s *Service) get(ctx context.Context, id string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prescription{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Prescription{}, ErrNotFound
		}
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) expand(ctx context.Context, p Prescription) (Detail, error) {
	d := Detail{Prescription: p, Medicines: make(map[string]Medicine, len(p.Items))}

	var err error
	if d.Visit, err = s.visits.GetByID(ctx, p.VisitID); err != nil {
		return Detail{}, fmt.Errorf("expand visit %s: %w", p.VisitID, err)
	}
	if d.Client, err = s.clients.GetByID(ctx, p.ClientID); err != nil {
		return Detail{}, fmt.Errorf("expand client %s: %w", p.ClientID, err)
	}
	if d.Doctor, err = s.doctors.GetByID(ctx, p.DoctorID); err != nil {
		return Detail{}, fmt.Errorf("expand doctor %s: %w", p.DoctorID, err)
	}

	for _, it := range p.Items {
		if _, ok := d.Medicines[it.MedicineID]; ok {
			continue
		}
		m, err := s.medicines.GetByID(ctx, it.MedicineID)
		if err != nil {
			return Detail{}, fmt.Errorf("expand medicine %s: %w", it.MedicineID, err)
		}
		d.Medicines[it.MedicineID] = m
	}
	return d, nil
}
