package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ProductHandlerParams holds dependencies for ProductHandler, injected by Fx.
type ProductHandlerParams struct {
	fx.In

	ProductUC  usecase.ProductUsecase
	ShareCodes service.ShareCodeService
	Logger     *slog.Logger
}

// ProductHandler serves the public catalog.
type ProductHandler struct {
	productUC  usecase.ProductUsecase
	shareCodes service.ShareCodeService
	logger     *slog.Logger
}

// NewProductHandler is the constructor for ProductHandler.
func NewProductHandler(params ProductHandlerParams) *ProductHandler {
	return &ProductHandler{
		productUC:  params.ProductUC,
		shareCodes: params.ShareCodes,
		logger:     params.Logger,
	}
}

// ListProductsQuery holds the catalog filters.
type ListProductsQuery struct {
	Category    string `query:"category"`
	SubCategory string `query:"subCategory"`
}

// ProductsResponse wraps a product listing.
type ProductsResponse struct {
	Products []*entity.Product `json:"products"`
}

func productsResponse(products []*entity.Product) ProductsResponse {
	if products == nil {
		products = []*entity.Product{}
	}

	return ProductsResponse{Products: products}
}

// List returns the catalog, newest first, optionally filtered by category.
func (h *ProductHandler) List(c echo.Context) error {
	var query ListProductsQuery
	if err := c.Bind(&query); err != nil {
		return response.BindingError(c, "Invalid product filters")
	}

	products, err := h.productUC.List(c.Request().Context(), &usecase.ListProductsInput{
		Category:    query.Category,
		SubCategory: query.SubCategory,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, productsResponse(products))
}

// NewArrivals returns the latest products.
func (h *ProductHandler) NewArrivals(c echo.Context) error {
	products, err := h.productUC.NewArrivals(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, productsResponse(products))
}

// Get returns a single product.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productUC.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

// ShareQR returns a PNG QR code linking to the product's storefront page.
func (h *ProductHandler) ShareQR(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	// Only existing products get a code.
	if _, err := h.productUC.Get(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	png, err := h.shareCodes.ProductQR(id)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")

	return c.Blob(http.StatusOK, "image/png", png)
}
