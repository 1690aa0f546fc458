package handler

import (
	"storefront/internal/delivery/api/middleware"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// actor returns the verified caller. Routes using it sit behind Authenticate.
func actor(c echo.Context) (service.Identity, error) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return service.Identity{}, domainerrors.ErrUnauthenticated
	}

	return identity, nil
}

// uuidParam parses the named path parameter. An absent parameter is uuid.Nil.
func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	if raw == "" {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a valid id")
	}

	return id, nil
}
