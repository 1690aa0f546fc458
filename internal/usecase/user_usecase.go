// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new customer.
type RegisterInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Address  entity.Address
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput carries the issued session token and the public profile.
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.PublicUser
}

// UserUsecase defines the interface for account operations.
type UserUsecase interface {
	// Register creates a customer account. Duplicate emails fail with ErrUserAlreadyExists.
	Register(ctx context.Context, input *RegisterInput) (*entity.PublicUser, error)

	// Login checks credentials and issues a session token.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Verify resolves a session token to its still-existing user.
	// Any failure is ErrUnauthenticated.
	Verify(ctx context.Context, token string) (*entity.PublicUser, error)

	// Profile returns the public profile of a user.
	Profile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error)
}
