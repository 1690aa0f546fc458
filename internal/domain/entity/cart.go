package entity

import (
	"time"

	"github.com/google/uuid"
)

// Bounds on the quantity a cart line may hold.
const (
	MinCartQuantity = 1
	MaxCartQuantity = 999
)

// CartLine is a quantity of one product held in one user's cart.
// ProductID is a weak reference into the product catalog.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
	AddedAt   time.Time
	UpdatedAt time.Time
}

// ResolvedCartLine is a cart line joined with the product it references.
type ResolvedCartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Subtotal returns price times quantity for the line.
func (l ResolvedCartLine) Subtotal() float64 {
	if l.Product == nil {
		return 0
	}

	return l.Product.Price * float64(l.Quantity)
}

// WishlistItem is a product saved for later by a user.
type WishlistItem struct {
	ProductID uuid.UUID
	AddedAt   time.Time
}
