// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	CartHandler         *handler.CartHandler
	WishlistHandler     *handler.WishlistHandler
	ProductHandler      *handler.ProductHandler
	AdminProductHandler *handler.AdminProductHandler
	MediaHandler        *handler.MediaHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler         *handler.UserHandler
	cartHandler         *handler.CartHandler
	wishlistHandler     *handler.WishlistHandler
	productHandler      *handler.ProductHandler
	adminProductHandler *handler.AdminProductHandler
	mediaHandler        *handler.MediaHandler
	authMiddleware      *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:         params.UserHandler,
		cartHandler:         params.CartHandler,
		wishlistHandler:     params.WishlistHandler,
		productHandler:      params.ProductHandler,
		adminProductHandler: params.AdminProductHandler,
		mediaHandler:        params.MediaHandler,
		authMiddleware:      params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/media/*", r.mediaHandler.Serve)

	api := e.Group("/api")

	usersGroup := api.Group("/users")
	{
		usersGroup.POST("/register", r.userHandler.Register)
		usersGroup.POST("/login", r.userHandler.Login)
		usersGroup.GET("/verify", r.userHandler.Verify)
		usersGroup.POST("/logout", r.userHandler.Logout)
		usersGroup.GET("/me", r.userHandler.Me, r.authMiddleware.Authenticate)
	}

	// Identity for every cart and wishlist call comes from the session token.
	cartGroup := api.Group("/cart")
	cartGroup.Use(r.authMiddleware.Authenticate)
	{
		cartGroup.POST("/add", r.cartHandler.Add)
		cartGroup.GET("", r.cartHandler.Get)
		cartGroup.GET("/:userId", r.cartHandler.Get)
		cartGroup.PUT("/update", r.cartHandler.Update)
		cartGroup.DELETE("/remove", r.cartHandler.Remove)
		cartGroup.DELETE("/clear", r.cartHandler.Clear)
		cartGroup.DELETE("/clear/:userId", r.cartHandler.Clear)
		cartGroup.POST("/checkout", r.cartHandler.Checkout)
	}

	wishlistGroup := api.Group("/wishlist")
	wishlistGroup.Use(r.authMiddleware.Authenticate)
	{
		wishlistGroup.POST("/add", r.wishlistHandler.Add)
		wishlistGroup.GET("", r.wishlistHandler.Get)
		wishlistGroup.GET("/:userId", r.wishlistHandler.Get)
		wishlistGroup.DELETE("/remove", r.wishlistHandler.Remove)
	}

	productsGroup := api.Group("/products")
	{
		productsGroup.GET("", r.productHandler.List)
		productsGroup.GET("/new-arrivals", r.productHandler.NewArrivals)
		productsGroup.GET("/:id", r.productHandler.Get)
		productsGroup.GET("/:id/qr", r.productHandler.ShareQR)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.POST("/products", r.adminProductHandler.Create)
		adminGroup.PUT("/products/:id", r.adminProductHandler.UpdateDetails)
		adminGroup.PUT("/products/:id/images", r.adminProductHandler.UpdateImages)
		adminGroup.DELETE("/products/:id", r.adminProductHandler.Delete)
	}
}
