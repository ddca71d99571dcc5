package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger    *zerolog.Logger
	AccessLog bool
	// JSONBodyLimit bounds non-multipart bodies in bytes; zero disables the check.
	JSONBodyLimit int
}

// Register attaches the common middlewares used across the API.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.Nop()
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID(requestLogger))
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderCorrelationID,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: HeaderCorrelationID,
	}))
	if cfg.JSONBodyLimit > 0 {
		app.Use(BodyLimit(cfg.JSONBodyLimit))
	}
}

// ErrorHandler renders errors that escaped the handlers in the API envelope.
// Causes of 5xx responses are logged and never returned to the client.
func ErrorHandler(base zerolog.Logger) fiber.ErrorHandler {
	log := base.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			switch status {
			case fiber.StatusRequestEntityTooLarge:
				message = "request body too large"
			case fiber.StatusNotFound:
				message = "route not found"
			default:
				if status < fiber.StatusInternalServerError {
					message = fiberErr.Message
				}
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("correlation_id", GetCorrelationID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled request error")
		}

		return utils.SendError(c, status, message)
	}
}

// NotFound is the catch-all for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusNotFound, "route not found")
}
