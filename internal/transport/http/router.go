package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/coralpress/notifications/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware.
func NewRouter(h *Handler, identitySecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Health (no identity needed)
	e.GET("/health", h.Health)

	api := e.Group("")
	api.Use(mw.ViewerIdentity(identitySecret))

	api.GET("/notifications", h.List)
	api.POST("/notifications", h.Create)
	api.POST("/notifications/:id/dismiss", h.Dismiss)

	api.POST("/users", h.CreateUser)
	api.GET("/users/:id", h.GetUser)

	return e
}
