package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Every route passes through the auth middleware,
// which only attaches an identity; protected routes add RequireAuthenticated.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/healthz", cfg.Health.Healthz)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth", cfg.AuthMiddleware.Handle)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/token/remaining", cfg.Auth.Remaining)

	authGroup.Get("/healthz", auth.RequireAuthenticated(), cfg.Health.AuthHealthz)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)
}
