package doctors

import "context"

type Repository interface {
	Create(ctx context.Context, d Doctor) error
	Update(ctx context.Context, d Doctor) error
	GetByID(ctx context.Context, id string) (Doctor, error)
	GetByUserID(ctx context.Context, userID string) (Doctor, error)
}
