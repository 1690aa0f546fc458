package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when no product matches the lookup.
var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows a catalog listing. Empty fields match everything.
type ProductFilter struct {
	Category    string
	SubCategory string
	Limit       int
}

// ProductRepository defines persistence for the product catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// LockByID is FindByID holding the row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs resolves references in bulk. Missing ids are simply absent from the map.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error)

	// List returns products newest first.
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)

	Create(ctx context.Context, product *entity.Product) error

	// Update replaces the product's fields and its ordered image list.
	Update(ctx context.Context, product *entity.Product) error

	Delete(ctx context.Context, id uuid.UUID) error
}
