package dashboard

import (
	"context"
	"fmt"
	"time"

	"health-dashboard/internal/domain/laborders"
	"health-dashboard/internal/domain/prescriptions"
	"health-dashboard/internal/domain/visits"

	"golang.org/x/sync/errgroup"
)

// Meses incluidos en la serie de visitas (incluye el mes actual).
const visitMonths = 6

type ClientCounter interface {
	Count(ctx context.Context) (int, error)
}

type ProgramCounter interface {
	Count(ctx context.Context) (int, error)
	CountActiveEnrollments(ctx context.Context) (int, error)
}

type PrescriptionCounter interface {
	CountByStatus(ctx context.Context, doctorID string) (map[prescriptions.Status]int, error)
}

type LabOrderCounter interface {
	CountByStatus(ctx context.Context, doctorID string) (map[laborders.Status]int, error)
}

type VisitLister interface {
	ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]visits.Visit, error)
}

type Service struct {
	clients       ClientCounter
	programs      ProgramCounter
	prescriptions PrescriptionCounter
	labOrders     LabOrderCounter
	visits        VisitLister
	now           func() time.Time
}

func NewService(c ClientCounter, p ProgramCounter, rx PrescriptionCounter, lo LabOrderCounter, v VisitLister) *Service {
	return &Service{
		clients:       c,
		programs:      p,
		prescriptions: rx,
		labOrders:     lo,
		visits:        v,
		now:           time.Now,
	}
}

// Stats arma las métricas del doctor. Los totales de clientes y programas son globales;
// recetas, órdenes y visitas son del doctor.
func (s *Service) Stats(ctx context.Context, doctorID string) (Stats, error) {
	var (
		out     Stats
		rxCount map[prescriptions.Status]int
		loCount map[laborders.Status]int
		recent  []visits.Visit
	)

	now := s.now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(visitMonths - 1), 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Totals.Clients, err = s.clients.Count(gctx)
		return wrap("count clients", err)
	})
	g.Go(func() (err error) {
		out.Totals.Programs, err = s.programs.Count(gctx)
		return wrap("count programs", err)
	})
	g.Go(func() (err error) {
		out.Totals.ActiveEnrollments, err = s.programs.CountActiveEnrollments(gctx)
		return wrap("count enrollments", err)
	})
	g.Go(func() (err error) {
		rxCount, err = s.prescriptions.CountByStatus(gctx, doctorID)
		return wrap("count prescriptions", err)
	})
	g.Go(func() (err error) {
		loCount, err = s.labOrders.CountByStatus(gctx, doctorID)
		return wrap("count lab orders", err)
	})
	g.Go(func() (err error) {
		recent, err = s.visits.ListByDoctorSince(gctx, doctorID, firstMonth)
		return wrap("list visits", err)
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	// Todos los estados presentes, aunque sea en 0, para que el gráfico no salte.
	out.Prescriptions = make(map[string]int, len(prescriptions.ValidStatuses))
	for _, st := range prescriptions.ValidStatuses {
		out.Prescriptions[string(st)] = rxCount[st]
	}
	out.LabOrders = make(map[string]int, len(laborders.ValidStatuses))
	for _, st := range laborders.ValidStatuses {
		out.LabOrders[string(st)] = loCount[st]
	}

	out.VisitsByMonth = visitsByMonth(recent, firstMonth, visitMonths)
	return out, nil
}

func visitsByMonth(items []visits.Visit, first time.Time, months int) []MonthCount {
	series := make([]MonthCount, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		series[i] = MonthCount{Month: key}
		index[key] = i
	}
	for _, v := range items {
		if i, ok := index[v.VisitDate.UTC().Format("2006-01")]; ok {
			series[i].Count++
		}
	}
	return series
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
