package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// WishlistRepository applies atomic set operations to a user's wishlist.
type WishlistRepository interface {
	// Items returns the wishlist in insertion order.
	Items(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error)

	// Add inserts productID unless it is already present. added is false when
	// the product was already in the wishlist.
	Add(ctx context.Context, userID, productID uuid.UUID) (added bool, err error)

	// Remove deletes productID. Removing an absent product is not an error.
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}
