package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type checkoutService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	taxRate   float64
	currency  string
	logger    *slog.Logger
	now       func() time.Time
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Publisher service.EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return &checkoutService{
		txManager: params.TxManager,
		publisher: params.Publisher,
		taxRate:   params.Config.Checkout.TaxRate,
		currency:  params.Config.Checkout.Currency,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Checkout prices the caller's cart and clears it. The cart is only cleared
// once the order event has been accepted.
func (srv *checkoutService) Checkout(ctx context.Context, actor service.Identity) (*entity.Receipt, error) {
	userID, err := resolveSubject(actor, uuid.Nil, false)
	if err != nil {
		return nil, err
	}

	var receipt *entity.Receipt
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureUserExists(ctx, repoFactory.UserRepo(), userID); err != nil {
			return err
		}

		carts := repoFactory.CartRepo()
		lines, err := carts.LockLines(ctx, userID)
		if err != nil {
			return translateRepoError(err, "failed to read cart")
		}

		resolved, err := resolveCart(ctx, repoFactory.ProductRepo(), lines)
		if err != nil {
			return translateRepoError(err, "failed to resolve cart products")
		}
		if len(resolved) == 0 {
			return domainerrors.ErrCartEmpty
		}

		receipt = srv.price(userID, resolved)

		if err := srv.publisher.PublishOrderPlaced(ctx, orderPlacedEvent(ctx, receipt)); err != nil {
			srv.log(ctx).Error("Failed to publish order event", slog.String("order_id", receipt.OrderID.String()), slog.Any("error", err))

			return errors.Wrap(domainerrors.ErrCheckoutFailed, "order event not accepted")
		}

		// Only the priced lines are removed; a product added meanwhile stays in the cart.
		return translateRepoError(carts.RemoveProducts(ctx, userID, productIDs(lines)), "failed to clear cart")
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order placed",
		slog.String("order_id", receipt.OrderID.String()),
		slog.String("user_id", userID.String()),
		slog.Float64("total", receipt.Total),
	)

	return receipt, nil
}

func (srv *checkoutService) price(userID uuid.UUID, lines []entity.ResolvedCartLine) *entity.Receipt {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Subtotal()
	}
	subtotal = roundMoney(subtotal)
	tax := roundMoney(subtotal * srv.taxRate)

	return &entity.Receipt{
		OrderID:  uuid.New(),
		UserID:   userID,
		Lines:    lines,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    roundMoney(subtotal + tax),
		Currency: srv.currency,
		PlacedAt: srv.now().UTC(),
	}
}

func orderPlacedEvent(ctx context.Context, receipt *entity.Receipt) *service.OrderPlacedEvent {
	lines := make([]service.OrderLineEvent, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		lines = append(lines, service.OrderLineEvent{
			ProductID: line.Product.ID.String(),
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
	}

	return &service.OrderPlacedEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		OrderID:   receipt.OrderID.String(),
		UserID:    receipt.UserID.String(),
		Lines:     lines,
		Subtotal:  receipt.Subtotal,
		Tax:       receipt.Tax,
		Total:     receipt.Total,
		Currency:  receipt.Currency,
		PlacedAt:  receipt.PlacedAt.Format(time.RFC3339),
	}
}

func productIDs(lines []entity.CartLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	return ids
}
