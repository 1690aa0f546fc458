// Package impl contains the implementation of the application's business logic.
package impl

import (
	"fmt"
	"math"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/google/uuid"
)

// resolveSubject decides whose collection the caller may touch. uuid.Nil
// means the caller's own. Admins may read, but never write, other users'
// collections.
func resolveSubject(actor service.Identity, requested uuid.UUID, readOnly bool) (uuid.UUID, error) {
	if actor.UserID == uuid.Nil {
		return uuid.Nil, domainerrors.ErrUnauthenticated
	}
	if requested == uuid.Nil || requested == actor.UserID {
		return actor.UserID, nil
	}
	if readOnly && actor.IsAdmin() {
		return requested, nil
	}

	return uuid.Nil, domainerrors.ErrForbidden.WithDetails("user id does not match the session")
}

var quantityRangeDetails = fmt.Sprintf("quantity must be between %d and %d", entity.MinCartQuantity, entity.MaxCartQuantity)

// translateRepoError maps repository sentinels onto application errors.
// AppErrors raised below pass through untouched.
func translateRepoError(err error, details string) error {
	if err == nil {
		return nil
	}

	var appErr domainerrors.AppError
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return errors.Wrap(domainerrors.ErrUserNotFound, details)
	case errors.Is(err, repository.ErrProductNotFound):
		return errors.Wrap(domainerrors.ErrProductNotFound, details)
	case errors.Is(err, repository.ErrCartLineNotFound):
		return errors.Wrap(domainerrors.ErrCartLineNotFound, details)
	case errors.Is(err, repository.ErrCartQuantityLimit):
		return errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(quantityRangeDetails), details)
	case errors.Is(err, repository.ErrEmailTaken):
		return errors.Wrap(domainerrors.ErrUserAlreadyExists, details)
	case errors.As(err, &appErr):
		return err
	default:
		return domainerrors.NewDatabaseExecuteError(err, details)
	}
}

// roundMoney rounds to two decimal places.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
