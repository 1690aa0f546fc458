package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrCartLineNotFound is returned when a conditional update matches no line.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrCartQuantityLimit is returned when a line would exceed entity.MaxCartQuantity.
	ErrCartQuantityLimit = errors.New("cart quantity limit exceeded")
)

// CartRepository applies single-statement atomic mutations to a user's cart.
// None of the methods read-modify-write the whole collection, so concurrent
// callers cannot lose each other's changes.
type CartRepository interface {
	// Lines returns the user's cart in insertion order.
	Lines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error)

	// LockLines returns the cart like Lines and locks the rows until the
	// surrounding transaction ends.
	LockLines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error)

	// Increment adds quantity to the line for productID, creating it if absent.
	// A sum above entity.MaxCartQuantity leaves the line unchanged and returns
	// ErrCartQuantityLimit.
	Increment(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// SetQuantity overwrites the quantity of an existing line.
	// It returns ErrCartLineNotFound when the line does not exist.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// Remove deletes the line for productID. Removing an absent line is not an error.
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// Clear deletes every line of the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error

	// RemoveProducts deletes the lines for the given products only. Lines
	// added for other products since the cart was read are kept.
	RemoveProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}
