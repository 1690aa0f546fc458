package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// cartService implements CartUsecase. Each operation runs in one
// transaction that checks the owner, applies one atomic statement and
// re-reads the cart.
type cartService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// normalizeAddQuantity treats an omitted quantity as one.
func normalizeAddQuantity(quantity int) (int, error) {
	if quantity == 0 {
		return entity.MinCartQuantity, nil
	}
	if err := checkQuantity(quantity); err != nil {
		return 0, err
	}

	return quantity, nil
}

func checkQuantity(quantity int) error {
	if quantity < entity.MinCartQuantity || quantity > entity.MaxCartQuantity {
		return domainerrors.ErrValidationFailed.WithDetails(quantityRangeDetails)
	}

	return nil
}

func requireProductID(productID uuid.UUID) error {
	if productID == uuid.Nil {
		return domainerrors.ErrValidationFailed.WithDetails("productId is required")
	}

	return nil
}

// mutate runs fn for the owner inside a transaction and returns the resolved cart.
func (srv *cartService) mutate(
	ctx context.Context,
	userID uuid.UUID,
	fn func(repoFactory repository.RepositoryFactory) error,
) ([]entity.ResolvedCartLine, error) {
	var cart []entity.ResolvedCartLine

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureUserExists(ctx, repoFactory.UserRepo(), userID); err != nil {
			return err
		}

		if fn != nil {
			if err := fn(repoFactory); err != nil {
				return err
			}
		}

		lines, err := repoFactory.CartRepo().Lines(ctx, userID)
		if err != nil {
			return translateRepoError(err, "failed to read cart")
		}

		cart, err = resolveCart(ctx, repoFactory.ProductRepo(), lines)

		return translateRepoError(err, "failed to resolve cart products")
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func ensureUserExists(ctx context.Context, users repository.UserRepository, userID uuid.UUID) error {
	exists, err := users.Exists(ctx, userID)
	if err != nil {
		return translateRepoError(err, "failed to load user")
	}
	if !exists {
		return domainerrors.ErrUserNotFound
	}

	return nil
}

// Add increments the line for the product, creating it when absent.
func (srv *cartService) Add(ctx context.Context, actor service.Identity, input *usecase.AddToCartInput) ([]entity.ResolvedCartLine, error) {
	userID, err := resolveSubject(actor, input.UserID, false)
	if err != nil {
		return nil, err
	}
	if err := requireProductID(input.ProductID); err != nil {
		return nil, err
	}
	quantity, err := normalizeAddQuantity(input.Quantity)
	if err != nil {
		return nil, err
	}

	cart, err := srv.mutate(ctx, userID, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.ProductRepo().FindByID(ctx, input.ProductID); err != nil {
			return translateRepoError(err, "failed to load product")
		}

		return translateRepoError(
			repoFactory.CartRepo().Increment(ctx, userID, input.ProductID, quantity),
			"failed to add to cart",
		)
	})
	if err != nil {
		srv.log(ctx).Warn("Add to cart failed", slog.String("user_id", userID.String()), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Added to cart",
		slog.String("user_id", userID.String()),
		slog.String("product_id", input.ProductID.String()),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// Get returns the resolved cart.
func (srv *cartService) Get(ctx context.Context, actor service.Identity, userID uuid.UUID) ([]entity.ResolvedCartLine, error) {
	owner, err := resolveSubject(actor, userID, true)
	if err != nil {
		return nil, err
	}

	return srv.mutate(ctx, owner, nil)
}

// Update sets the exact quantity of an existing line; quantity outside the
// allowed range is rejected.
func (srv *cartService) Update(ctx context.Context, actor service.Identity, input *usecase.UpdateCartInput) ([]entity.ResolvedCartLine, error) {
	userID, err := resolveSubject(actor, input.UserID, false)
	if err != nil {
		return nil, err
	}
	if err := requireProductID(input.ProductID); err != nil {
		return nil, err
	}
	if err := checkQuantity(input.Quantity); err != nil {
		return nil, err
	}

	return srv.mutate(ctx, userID, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(
			repoFactory.CartRepo().SetQuantity(ctx, userID, input.ProductID, input.Quantity),
			"failed to update cart line",
		)
	})
}

// Remove deletes the line; an absent line is not an error.
func (srv *cartService) Remove(ctx context.Context, actor service.Identity, input *usecase.RemoveFromCartInput) ([]entity.ResolvedCartLine, error) {
	userID, err := resolveSubject(actor, input.UserID, false)
	if err != nil {
		return nil, err
	}
	if err := requireProductID(input.ProductID); err != nil {
		return nil, err
	}

	return srv.mutate(ctx, userID, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(
			repoFactory.CartRepo().Remove(ctx, userID, input.ProductID),
			"failed to remove cart line",
		)
	})
}

// Clear empties the cart.
func (srv *cartService) Clear(ctx context.Context, actor service.Identity, userID uuid.UUID) error {
	owner, err := resolveSubject(actor, userID, false)
	if err != nil {
		return err
	}

	_, err = srv.mutate(ctx, owner, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(repoFactory.CartRepo().Clear(ctx, owner), "failed to clear cart")
	})

	return err
}
