package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/paperdrop-api/internal/config"
	"github.com/noah-isme/paperdrop-api/internal/handler"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	// Authenticate resolves the bearer token into an approved account.
	Authenticate fiber.Handler
	// RateLimit, when set, runs on every /api route before authentication.
	RateLimit fiber.Handler
	// UserRateLimit, when set, runs after Authenticate on protected routes.
	UserRateLimit fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	limit := deps.RateLimit
	if limit == nil {
		limit = passThrough
	}
	userLimit := deps.UserRateLimit
	if userLimit == nil {
		userLimit = passThrough
	}
	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = passThrough
	}

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, limit)
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), authenticate)
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", authenticate, userLimit))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", authenticate, userLimit))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", authenticate, userLimit))
	}

	app.Use(middleware.NotFound)
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
