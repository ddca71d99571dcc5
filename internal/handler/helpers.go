package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

var errInvalidIdentifier = errors.New("invalid identifier")

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidIdentifier
	}
	return uint(parsed), nil
}

// currentUser returns the authenticated account; routes using it sit behind Authenticate.
func currentUser(c *fiber.Ctx) (models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, admission.ErrRejected),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrDeadlineNotInFuture),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, errInvalidIdentifier):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrPendingApproval),
		errors.Is(err, service.ErrNotAssignmentOwner):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respond renders err in the API envelope. Validation failures become a readable
// 400, domain errors keep their message and anything else is logged and hidden.
func respond(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	if message, ok := utils.ValidationMessage(err); ok {
		details, _ := utils.ValidationDetails(err)
		return utils.Fail(c, fiber.StatusBadRequest, message, details)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.SendError(c, fiberErr.Code, fiberErr.Message)
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, status, "internal server error")
	}

	return utils.SendError(c, status, err.Error())
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}
