package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
)

// WishlistInput names one product of a wishlist. UserID is optional and
// must match the caller when set.
type WishlistInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// WishlistOutput is the resolved wishlist after an operation.
type WishlistOutput struct {
	Products []*entity.Product
	// AlreadyPresent is set by Add when the product was already saved.
	AlreadyPresent bool
}

// WishlistUsecase reconciles mutations of a user's wishlist with the same
// ownership rules as the cart.
type WishlistUsecase interface {
	Add(ctx context.Context, actor service.Identity, input *WishlistInput) (*WishlistOutput, error)

	// Get returns the wishlist of userID, or of the caller when userID is uuid.Nil.
	Get(ctx context.Context, actor service.Identity, userID uuid.UUID) (*WishlistOutput, error)

	// Remove is idempotent.
	Remove(ctx context.Context, actor service.Identity, input *WishlistInput) (*WishlistOutput, error)
}
