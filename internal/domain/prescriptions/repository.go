package prescriptions

import (
	"context"
	"time"
)

type Repository interface {
	// Create persiste la receta y sus items de forma atómica.
	Create(ctx context.Context, p Prescription) error

	// GetByID incluye los items.
	GetByID(ctx context.Context, id string) (Prescription, error)

	// ListByDoctor: status vacío = todos. Orden issued_at desc, con items.
	ListByDoctor(ctx context.Context, doctorID string, status Status) ([]Prescription, error)

	// UpdateStatus devuelve storage.ErrNotFound si el id no existe.
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error

	CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, m Medicine) error
	GetByID(ctx context.Context, id string) (Medicine, error)

	// List filtra por nombre o nombre genérico (case-insensitive); query vacía = todas.
	List(ctx context.Context, query string) ([]Medicine, error)
}
