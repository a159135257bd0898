package projects

import "context"

// Los adapters devuelven ErrNotFound si el proyecto no existe.
type Repository interface {
	Create(ctx context.Context, p Project) error
	GetByID(ctx context.Context, id string) (Project, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Project, error)
}
