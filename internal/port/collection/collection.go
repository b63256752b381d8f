package collection

import (
	"context"

	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
)

type Repository interface {
	Create(ctx context.Context, c domaincollection.Collection) (domaincollection.Collection, error)

	// GetByID returns domain/collection.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (domaincollection.Collection, error)

	// List returns collections ordered newest-first.
	List(ctx context.Context) ([]domaincollection.Collection, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
