// Package entity contains the core business objects of the storefront,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the shopper (or administrator) account. The cart and wishlist are
// owned by the user and only ever mutated through the reconcilers.
type User struct {
	ID           uuid.UUID      // The Global Unique Identifier (GUID) for the user.
	Name         string         // The user's display name.
	Phone        string         // Contact phone number, free-form.
	Email        string         // Unique, normalised login key.
	PasswordHash string         // bcrypt digest; never serialised.
	Role         Role           // customer or admin.
	Address      Address        // Shipping address.
	Cart         []CartLine     // At most one line per product, in insertion order.
	Wishlist     []WishlistItem // Each product at most once, in insertion order.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the subset of a user that is safe to hand back to clients.
type PublicUser struct {
	ID      uuid.UUID `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Role    Role      `json:"role"`
	Address *Address  `json:"address,omitempty"`
}

// Public strips credentials and collections from the user.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}

	pu := &PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
	if !u.Address.IsZero() {
		addr := u.Address
		pu.Address = &addr
	}

	return pu
}
