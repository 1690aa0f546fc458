package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
)

// CheckoutUsecase converts the caller's cart into a mock order.
type CheckoutUsecase interface {
	// Checkout prices the cart, publishes an order event, clears the cart and
	// returns the receipt. An empty cart fails with ErrCartEmpty.
	Checkout(ctx context.Context, actor service.Identity) (*entity.Receipt, error)
}
