package laborders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-dashboard/internal/domain/visits"
	"health-dashboard/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("lab order not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrClientNotFound = errors.New("client not found")
	ErrVisitNotFound  = errors.New("visit not found")
)

type ClientLookup interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

type VisitLookup interface {
	GetByID(ctx context.Context, id string) (visits.Visit, error)
}

// ResultRecorder recibe cada resultado registrado (métricas).
type ResultRecorder interface {
	LabResultRecorded(completed bool)
}

type nopRecorder struct{}

func (nopRecorder) LabResultRecorded(bool) {}

type Service struct {
	repo    Repository
	clients ClientLookup
	visits  VisitLookup
	policy  CompletionPolicy

	recorder ResultRecorder
	now      func() time.Time
}

func NewService(repo Repository, clients ClientLookup, v VisitLookup, policy CompletionPolicy) *Service {
	if policy == "" {
		policy = FirstResult
	}
	return &Service{
		repo:     repo,
		clients:  clients,
		visits:   v,
		policy:   policy,
		recorder: nopRecorder{},
		now:      time.Now,
	}
}

func (s *Service) WithRecorder(r ResultRecorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

func (s *Service) Policy() CompletionPolicy {
	return s.policy
}

type CreateInput struct {
	ClientID string
	VisitID  string
	Tests    []string
	Priority Priority
	Notes    string
}

func (s *Service) Create(ctx context.Context, doctorID string, in CreateInput) (LabOrder, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return LabOrder{}, fmt.Errorf("%w: clientId is required", ErrInvalidInput)
	}

	priority := Priority(strings.ToUpper(strings.TrimSpace(string(in.Priority))))
	if priority == "" {
		priority = PriorityRoutine
	}
	if !priority.Valid() {
		return LabOrder{}, fmt.Errorf("%w: priority must be one of ROUTINE, URGENT, STAT", ErrInvalidInput)
	}

	tests := make([]string, 0, len(in.Tests))
	seen := map[string]struct{}{}
	for _, t := range in.Tests {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		if _, dup := seen[normalizeTest(t)]; dup {
			continue
		}
		seen[normalizeTest(t)] = struct{}{}
		tests = append(tests, t)
	}

	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return LabOrder{}, err
	}
	if !ok {
		return LabOrder{}, ErrClientNotFound
	}

	visitID := strings.TrimSpace(in.VisitID)
	if visitID != "" {
		v, err := s.visits.GetByID(ctx, visitID)
		if err != nil {
			if errors.Is(err, visits.ErrNotFound) {
				return LabOrder{}, ErrVisitNotFound
			}
			return LabOrder{}, err
		}
		if v.ClientID != clientID {
			return LabOrder{}, fmt.Errorf("%w: visit belongs to another client", ErrInvalidInput)
		}
	}

	now := s.now()
	o := LabOrder{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		DoctorID:  doctorID,
		VisitID:   visitID,
		Tests:     tests,
		Priority:  priority,
		Status:    StatusPending,
		Notes:     strings.TrimSpace(in.Notes),
		OrderedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return LabOrder{}, err
	}
	return o, nil
}

// Detail es la orden con sus resultados.
type Detail struct {
	LabOrder
	Results []Result
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	results, err := s.repo.ListResults(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{LabOrder: o, Results: results}, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID, status string) ([]LabOrder, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByDoctor(ctx, doctorID, st)
}

func (s *Service) CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, doctorID)
}

type ResultInput struct {
	Parameter      string
	Value          string
	Unit           string
	ReferenceRange string
	IsAbnormal     bool
	Notes          string
	VerifiedBy     string
}

// AddResult registra un resultado y, según la política, completa la orden.
// Una orden ya COMPLETED conserva su completedAt original.
func (s *Service) AddResult(ctx context.Context, orderID string, in ResultInput) (Result, LabOrder, error) {
	parameter := strings.TrimSpace(in.Parameter)
	value := strings.TrimSpace(in.Value)
	if parameter == "" || value == "" {
		return Result{}, LabOrder{}, fmt.Errorf("%w: parameter and value are required", ErrInvalidInput)
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Result{}, LabOrder{}, ErrNotFound
	}

	now := s.now()
	res := Result{
		ID:             uuid.NewString(),
		LabOrderID:     orderID,
		Parameter:      parameter,
		Value:          value,
		Unit:           strings.TrimSpace(in.Unit),
		ReferenceRange: strings.TrimSpace(in.ReferenceRange),
		IsAbnormal:     in.IsAbnormal,
		Notes:          strings.TrimSpace(in.Notes),
		VerifiedBy:     strings.TrimSpace(in.VerifiedBy),
		ResultedAt:     now,
	}

	order, err := s.repo.RecordResult(ctx, res, func(o LabOrder, results []Result) LabOrder {
		return s.apply(o, results, now)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, LabOrder{}, ErrNotFound
		}
		return Result{}, LabOrder{}, err
	}

	s.recorder.LabResultRecorded(order.Status == StatusCompleted)
	return res, order, nil
}

func (s *Service) apply(o LabOrder, results []Result, now time.Time) LabOrder {
	o.UpdatedAt = now
	if o.Status == StatusCompleted && o.CompletedAt != nil {
		return o
	}
	if s.policy.Completes(o, results) {
		o.Status = StatusCompleted
		completedAt := now
		o.CompletedAt = &completedAt
		return o
	}
	if o.Status == StatusPending {
		o.Status = StatusInProgress
	}
	return o
}
