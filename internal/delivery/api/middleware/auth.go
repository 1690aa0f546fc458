package middleware

import (
	"strings"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// AuthMiddleware is the auth gateway: it verifies session tokens and gates
// route groups by role.
type AuthMiddleware struct {
	tokenSvc   service.TokenService
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, cookieName: cfg.Auth.CookieName}
}

// ExtractToken reads the session token from the named cookie, falling back
// to an Authorization Bearer header.
func ExtractToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, bearerPrefix); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

// Authenticate rejects requests without a valid token before the handler runs.
// Missing, malformed, forged and expired tokens all yield the same error.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ExtractToken(c, m.cookieName)
		if token == "" {
			return domainerrors.ErrUnauthenticated
		}

		identity, err := m.tokenSvc.Verify(token)
		if err != nil {
			return domainerrors.ErrUnauthenticated
		}

		deliverycontext.SetIdentity(c, identity)

		return next(c)
	}
}

// RequireRole allows only callers holding role. It must be used AFTER Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := deliverycontext.GetIdentity(c)
			if !ok {
				return domainerrors.ErrUnauthenticated
			}
			if identity.Role != role {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// GetIdentity returns the caller verified by Authenticate.
func GetIdentity(c echo.Context) (service.Identity, bool) {
	return deliverycontext.GetIdentity(c)
}
