package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"papertrade/internal/domain"
	custommiddleware "papertrade/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	Renderer    echo.Renderer
	AuthHandler *AuthHandler
	WebHandler  *WebHandler
	Cookies     *custommiddleware.SessionCookie
	AuthService domain.AuthService
	Logger      *zap.Logger
}

// SetupRoutes configures middleware, error rendering and all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Renderer = config.Renderer
	e.HTTPErrorHandler = NewErrorHandler(config.Logger)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(custommiddleware.RequestLogger(config.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(custommiddleware.NoCache())

	RegisterWebRoutes(e, config.WebHandler, config.AuthHandler,
		custommiddleware.AuthMiddleware(config.Cookies, config.AuthService))
}
