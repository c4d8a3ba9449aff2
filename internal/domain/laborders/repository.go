package laborders

import "context"

// ApplyFunc recibe la orden bloqueada y todos sus resultados (incluido el nuevo)
// y devuelve la orden a persistir.
type ApplyFunc func(o LabOrder, results []Result) LabOrder

type Repository interface {
	Create(ctx context.Context, o LabOrder) error
	GetByID(ctx context.Context, id string) (LabOrder, error)

	// ListByDoctor: status vacío = todas. Orden ordered_at desc.
	ListByDoctor(ctx context.Context, doctorID string, status Status) ([]LabOrder, error)

	// ListResults: orden resulted_at asc.
	ListResults(ctx context.Context, orderID string) ([]Result, error)

	// RecordResult inserta el resultado y actualiza la orden en una sola unidad atómica,
	// con la orden bloqueada mientras se evalúa apply. storage.ErrNotFound si la orden no existe.
	RecordResult(ctx context.Context, res Result, apply ApplyFunc) (LabOrder, error)

	CountByStatus(ctx context.Context, doctorID string) (map[Status]int, error)
}
