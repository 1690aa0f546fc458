package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	deliverycontext.BindRequest(c, "req-1", slog.Default())

	return c, rec
}

func TestSuccess(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, SuccessWithMessage(c, http.StatusCreated, map[string]int{"n": 1}, "done"))

	var body struct {
		Data    map[string]int `json:"data"`
		Message string         `json:"message"`
		Meta    MetaInfo       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, body.Data["n"])
	assert.Equal(t, "done", body.Message)
	assert.Equal(t, "req-1", body.Meta.RequestID)
}

func TestHandleAppError(t *testing.T) {
	t.Run("client error keeps details", func(t *testing.T) {
		c, rec := newContext()

		err := errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("quantity must be at least 1"), "update")
		require.NoError(t, HandleAppError(c, err))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), body.Error.Code)
		assert.Equal(t, "quantity must be at least 1", body.Error.Details)
	})

	t.Run("auth errors hide details", func(t *testing.T) {
		c, rec := newContext()

		require.NoError(t, HandleAppError(c, domainerrors.ErrForbidden.WithDetails("not yours")))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, body.Error.Details)
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		c, rec := newContext()

		err := HandleAppError(c, assert.AnError)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, rec.Body.Len())
	})
}
