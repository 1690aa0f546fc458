package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
)

// AddToCartInput adds Quantity of a product to a cart. A zero quantity means one.
// UserID is optional and must match the caller when set.
type AddToCartInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// UpdateCartInput sets the exact quantity of an existing line.
type UpdateCartInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// RemoveFromCartInput removes one product from a cart.
type RemoveFromCartInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// CartUsecase reconciles mutations of a user's cart. Every method acts on
// the caller's own cart; a different explicit user id is forbidden, except
// that admins may read any cart.
type CartUsecase interface {
	Add(ctx context.Context, actor service.Identity, input *AddToCartInput) ([]entity.ResolvedCartLine, error)

	// Get returns the cart of userID, or of the caller when userID is uuid.Nil.
	Get(ctx context.Context, actor service.Identity, userID uuid.UUID) ([]entity.ResolvedCartLine, error)

	Update(ctx context.Context, actor service.Identity, input *UpdateCartInput) ([]entity.ResolvedCartLine, error)

	// Remove is idempotent.
	Remove(ctx context.Context, actor service.Identity, input *RemoveFromCartInput) ([]entity.ResolvedCartLine, error)

	// Clear empties the cart of userID, or of the caller when userID is uuid.Nil.
	Clear(ctx context.Context, actor service.Identity, userID uuid.UUID) error
}
