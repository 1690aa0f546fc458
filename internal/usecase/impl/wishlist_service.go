package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type wishlistService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// WishlistServiceParams holds dependencies for WishlistService, injected by Fx.
type WishlistServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewWishlistService is the constructor for wishlistService.
func NewWishlistService(params WishlistServiceParams) usecase.WishlistUsecase {
	return &wishlistService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *wishlistService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *wishlistService) mutate(
	ctx context.Context,
	userID uuid.UUID,
	fn func(repoFactory repository.RepositoryFactory) error,
) (*usecase.WishlistOutput, error) {
	out := &usecase.WishlistOutput{}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureUserExists(ctx, repoFactory.UserRepo(), userID); err != nil {
			return err
		}

		if fn != nil {
			if err := fn(repoFactory); err != nil {
				return err
			}
		}

		items, err := repoFactory.WishlistRepo().Items(ctx, userID)
		if err != nil {
			return translateRepoError(err, "failed to read wishlist")
		}

		out.Products, err = resolveWishlist(ctx, repoFactory.ProductRepo(), items)

		return translateRepoError(err, "failed to resolve wishlist products")
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Add saves the product once; a repeat reports AlreadyPresent.
func (srv *wishlistService) Add(ctx context.Context, actor service.Identity, input *usecase.WishlistInput) (*usecase.WishlistOutput, error) {
	userID, err := resolveSubject(actor, input.UserID, false)
	if err != nil {
		return nil, err
	}
	if err := requireProductID(input.ProductID); err != nil {
		return nil, err
	}

	var added bool
	out, err := srv.mutate(ctx, userID, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.ProductRepo().FindByID(ctx, input.ProductID); err != nil {
			return translateRepoError(err, "failed to load product")
		}

		var err error
		added, err = repoFactory.WishlistRepo().Add(ctx, userID, input.ProductID)

		return translateRepoError(err, "failed to add to wishlist")
	})
	if err != nil {
		srv.log(ctx).Warn("Add to wishlist failed", slog.String("user_id", userID.String()), slog.Any("error", err))

		return nil, err
	}

	out.AlreadyPresent = !added

	return out, nil
}

// Get returns the resolved wishlist.
func (srv *wishlistService) Get(ctx context.Context, actor service.Identity, userID uuid.UUID) (*usecase.WishlistOutput, error) {
	owner, err := resolveSubject(actor, userID, true)
	if err != nil {
		return nil, err
	}

	return srv.mutate(ctx, owner, nil)
}

// Remove deletes the product; an absent product is not an error.
func (srv *wishlistService) Remove(ctx context.Context, actor service.Identity, input *usecase.WishlistInput) (*usecase.WishlistOutput, error) {
	userID, err := resolveSubject(actor, input.UserID, false)
	if err != nil {
		return nil, err
	}
	if err := requireProductID(input.ProductID); err != nil {
		return nil, err
	}

	return srv.mutate(ctx, userID, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(
			repoFactory.WishlistRepo().Remove(ctx, userID, input.ProductID),
			"failed to remove from wishlist",
		)
	})
}
