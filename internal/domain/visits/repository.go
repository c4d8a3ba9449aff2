package visits

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v Visit) error
	GetByID(ctx context.Context, id string) (Visit, error)

	// ListByClient: orden visit_date desc.
	ListByClient(ctx context.Context, clientID string) ([]Visit, error)

	// ListByDoctorSince: visitas del doctor con visit_date >= since (para el dashboard).
	ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]Visit, error)
}
