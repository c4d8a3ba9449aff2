package programs

import "context"

type Repository interface {
	Create(ctx context.Context, p Program) error
	GetByID(ctx context.Context, id string) (Program, error)

	// GetByName compara sin distinguir mayúsculas.
	GetByName(ctx context.Context, name string) (Program, error)

	List(ctx context.Context) ([]Program, error)
	Count(ctx context.Context) (int, error)
}

type EnrollmentRepository interface {
	// Create devuelve storage.ErrConflict si ya hay una inscripción ACTIVE para (client, program).
	Create(ctx context.Context, e Enrollment) error

	ListByClient(ctx context.Context, clientID string) ([]Enrollment, error)
	GetActive(ctx context.Context, clientID, programID string) (Enrollment, error)
	CountActive(ctx context.Context) (int, error)
}
