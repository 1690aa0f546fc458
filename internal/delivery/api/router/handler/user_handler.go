// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"storefront/config"
	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Config *config.Config
	Logger *slog.Logger
}

// UserHandler serves account and session endpoints.
type UserHandler struct {
	userUC     usecase.UserUsecase
	cookie     sessionCookie
	cookieName string
	logger     *slog.Logger
	now        func() time.Time
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC:     params.UserUC,
		cookie:     newSessionCookie(params.Config.Auth),
		cookieName: params.Config.Auth.CookieName,
		logger:     params.Logger,
		now:        time.Now,
	}
}

// RegisterRequest is the body of POST /api/users/register.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8,max=72"`
	Address  entity.Address `json:"address"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login. The token is also set as a cookie.
type LoginResponse struct {
	User      *entity.PublicUser `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// VerifyResponse reports whether the session cookie is still valid.
type VerifyResponse struct {
	LoggedIn bool               `json:"loggedIn"`
	User     *entity.PublicUser `json:"user,omitempty"`
}

// Register creates a customer account.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.SuccessWithMessage(c, http.StatusCreated, user, "User registered successfully")
}

// Login checks credentials and sets the session cookie.
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.userUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.cookie.issue(output.Token, output.ExpiresAt, h.now()))

	return response.SuccessWithMessage(c, http.StatusOK, LoginResponse{
		User:      output.User,
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
	}, "Login successful")
}

// Verify answers whether the caller's session is valid, without failing the request shape.
func (h *UserHandler) Verify(c echo.Context) error {
	token := middleware.ExtractToken(c, h.cookieName)
	if token == "" {
		return response.Success(c, http.StatusUnauthorized, VerifyResponse{LoggedIn: false})
	}

	user, err := h.userUC.Verify(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnauthenticated) {
			return response.Success(c, http.StatusUnauthorized, VerifyResponse{LoggedIn: false})
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, VerifyResponse{LoggedIn: true, User: user})
}

// Logout expires the session cookie. Tokens are stateless, so nothing else is revoked.
func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookie.clear())

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Logged out")
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	user, err := h.userUC.Profile(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}
