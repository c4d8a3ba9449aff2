package clients

import "context"

type Repository interface {
	Create(ctx context.Context, c Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	Count(ctx context.Context) (int, error)
}

type ListFilter struct {
	Query string // nombre, email o teléfono
	Limit int
}
