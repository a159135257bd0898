package shares

import (
	"context"
	"time"
)

// Reader es el lado de lectura que usa el Resolver.
type Reader interface {
	GetByKey(ctx context.Context, key string) (ProjectShare, error)
	ListForRequester(ctx context.Context, projectID string, r Requester) ([]ProjectShare, error)
}

// Repository es el Share Store. Los adapters devuelven ErrNotFound,
// ErrShareKeyTaken, ErrAlreadyRevoked y ErrNotRevoked del paquete shares.
type Repository interface {
	Reader

	// Create falla con ErrShareKeyTaken si la key ya existe (chequeo atómico).
	Create(ctx context.Context, s ProjectShare) error
	// Update no toca addressing ni is_revoked; falla con ErrAlreadyRevoked si el share ya está revocado.
	Update(ctx context.Context, s ProjectShare) error
	// Revoke marca is_revoked=true solo si no lo estaba.
	Revoke(ctx context.Context, id string, at time.Time) error
	// Delete borra solo shares revocados.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (ProjectShare, error)
	ListByProject(ctx context.Context, projectID string) ([]ProjectShare, error)
	ListForGrantee(ctx context.Context, r Requester) ([]ProjectShare, error)
}
