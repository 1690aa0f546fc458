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

// WishlistHandlerParams holds dependencies for WishlistHandler, injected by Fx.
type WishlistHandlerParams struct {
	fx.In

	WishlistUC usecase.WishlistUsecase
	Logger     *slog.Logger
}

// WishlistHandler exposes the wishlist reconciler.
type WishlistHandler struct {
	wishlistUC usecase.WishlistUsecase
	logger     *slog.Logger
}

// NewWishlistHandler is the constructor for WishlistHandler.
func NewWishlistHandler(params WishlistHandlerParams) *WishlistHandler {
	return &WishlistHandler{
		wishlistUC: params.WishlistUC,
		logger:     params.Logger,
	}
}

// WishlistRequest is the body of the wishlist mutation routes.
type WishlistRequest struct {
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

// WishlistResponse wraps the resolved wishlist.
type WishlistResponse struct {
	Wishlist       []*entity.Product `json:"wishlist"`
	AlreadyPresent bool              `json:"alreadyPresent,omitempty"`
}

func wishlistResponse(output *usecase.WishlistOutput) WishlistResponse {
	products := output.Products
	if products == nil {
		products = []*entity.Product{}
	}

	return WishlistResponse{Wishlist: products, AlreadyPresent: output.AlreadyPresent}
}

// Add saves a product. Saving it again succeeds and reports it as already present.
func (h *WishlistHandler) Add(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req WishlistRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid wishlist input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.wishlistUC.Add(c.Request().Context(), identity, &usecase.WishlistInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	message := "Added to wishlist"
	if output.AlreadyPresent {
		message = "Product already in wishlist"
	}

	return response.SuccessWithMessage(c, http.StatusOK, wishlistResponse(output), message)
}

// Get returns the caller's wishlist, or the one named by :userId.
func (h *WishlistHandler) Get(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}

	output, err := h.wishlistUC.Get(c.Request().Context(), identity, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, wishlistResponse(output))
}

// Remove drops a product from the wishlist. Removing an absent product succeeds.
func (h *WishlistHandler) Remove(c echo.Context) error {
	identity, err := actor(c)
	if err != nil {
		return err
	}

	var req WishlistRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid wishlist input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.wishlistUC.Remove(c.Request().Context(), identity, &usecase.WishlistInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, wishlistResponse(output))
}
