package handler

import (
	"net/http"
	"strings"

	"storefront/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// MediaHandlerParams holds dependencies for MediaHandler, injected by Fx.
type MediaHandlerParams struct {
	fx.In

	Images service.ImageReader
}

// MediaHandler serves product images straight from the bucket, for
// deployments without a public bucket URL.
type MediaHandler struct {
	images service.ImageReader
}

// NewMediaHandler is the constructor for MediaHandler.
func NewMediaHandler(params MediaHandlerParams) *MediaHandler {
	return &MediaHandler{images: params.Images}
}

// Serve streams GET /media/<storage id>.
func (h *MediaHandler) Serve(c echo.Context) error {
	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || strings.Contains(key, "..") {
		return echo.ErrNotFound
	}

	body, contentType, err := h.images.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return echo.ErrNotFound
		}

		return errors.WithStack(err)
	}
	defer body.Close()

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")

	return c.Stream(http.StatusOK, contentType, body)
}
