// Package context carries per-request values from the echo layer down to the
// usecases: the request id, a logger tagged with it and the verified caller.
package context

import (
	"context"
	"log/slog"

	"storefront/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the HTTP header carrying the request id both ways.
const HeaderXRequestID = "X-Request-Id"

// echo.Context keys.
const (
	echoKeyRequestID = "request_id"
	echoKeyIdentity  = "identity"
)

// ctxKey keys values on the request's context.Context.
type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// BindRequest records the request id on the echo context and the response
// header, and attaches the id and logger to the request's context.Context.
func BindRequest(c echo.Context, requestID string, logger *slog.Logger) {
	c.Set(echoKeyRequestID, requestID)
	c.Response().Header().Set(HeaderXRequestID, requestID)

	ctx := WithLogger(WithRequestID(c.Request().Context(), requestID), logger)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetRequestID returns the id bound to the request, or "" outside the middleware.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(echoKeyRequestID).(string)

	return id
}

// GetRequestIDFromContext returns the request id carried by ctx, or "".
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetLogger returns the request-scoped logger, or nil.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault returns the request-scoped logger when there is one.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// SetIdentity stores the verified caller on the echo.Context.
func SetIdentity(c echo.Context, identity service.Identity) {
	c.Set(echoKeyIdentity, identity)
}

// GetIdentity returns the verified caller set by the auth gateway.
func GetIdentity(c echo.Context) (service.Identity, bool) {
	identity, ok := c.Get(echoKeyIdentity).(service.Identity)

	return identity, ok
}
