package service

import (
	"errors"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the verified subject of a session token.
type Identity struct {
	UserID uuid.UUID
	Role   entity.Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == entity.RoleAdmin
}

// TokenService issues and verifies signed, expiring session tokens.
type TokenService interface {
	// Issue signs a token for the given subject and role.
	Issue(userID uuid.UUID, role entity.Role) (string, error)

	// Verify returns the identity encoded in the token or ErrInvalidToken.
	Verify(token string) (Identity, error)

	// TTL is the lifetime given to newly issued tokens.
	TTL() time.Duration
}
