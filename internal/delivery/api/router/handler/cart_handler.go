package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for CartHandler, injected by Fx.
type CartHandlerParams struct {
	fx.In

	CartUC     usecase.CartUsecase
	CheckoutUC usecase.CheckoutUsecase
	Logger     *slog.Logger
}

// CartHandler exposes the cart reconciler and checkout.
type CartHandler struct {
	cartUC     usecase.CartUsecase
	checkoutUC usecase.CheckoutUsecase
	logger     *slog.Logger
}

// NewCartHandler is the constructor for CartHandler.
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{
		cartUC:     params.CartUC,
		checkoutUC: params.CheckoutUC,
		logger:     params.Logger,
	}
}

// CartLineRequest is the body of the cart mutation routes. UserID may be
// omitted; when given it must be the caller's id.
type CartLineRequest struct {
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0,max=999"`
}

// CartResponse wraps the resolved cart lines.
type CartResponse struct {
	Cart []entity.ResolvedCartLine `json:"cart"`
}

func cartResponse(lines []entity.ResolvedCartLine) CartResponse {
	if lines == nil {
		lines = []entity.ResolvedCartLine{}
	}

	return CartResponse{Cart: lines}
}

// Add adds a quantity of a product, merging with an existing line.
func (h *CartHandler) Add(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req CartLineRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid cart input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	lines, err := h.cartUC.Add(c.Request().Context(), identity, &usecase.AddToCartInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cartResponse(lines))
}

// Get returns the caller's cart, or the cart named by :userId.
func (h *CartHandler) Get(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}

	lines, err := h.cartUC.Get(c.Request().Context(), identity, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cartResponse(lines))
}

// Update sets the exact quantity of a line already in the cart.
func (h *CartHandler) Update(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req CartLineRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid cart input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	lines, err := h.cartUC.Update(c.Request().Context(), identity, &usecase.UpdateCartInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cartResponse(lines))
}

// Remove drops a product from the cart. Removing an absent product succeeds.
func (h *CartHandler) Remove(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req CartLineRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid cart input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	lines, err := h.cartUC.Remove(c.Request().Context(), identity, &usecase.RemoveFromCartInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cartResponse(lines))
}

// Clear empties the caller's cart, or the cart named by :userId.
func (h *CartHandler) Clear(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}

	if err := h.cartUC.Clear(c.Request().Context(), identity, userID); err != nil {
		return errors.WithStack(err)
	}

	return response.SuccessWithMessage(c, http.StatusOK, cartResponse(nil), "Cart cleared")
}

// Checkout turns the caller's cart into a mock order.
func (h *CartHandler) Checkout(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	receipt, err := h.checkoutUC.Checkout(c.Request().Context(), identity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.SuccessWithMessage(c, http.StatusCreated, receipt, "Order placed")
}
