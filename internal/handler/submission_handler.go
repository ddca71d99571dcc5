package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/authz"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// SubmissionHandler lists submissions across all assignments for staff.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", middleware.Require(authz.ViewSubmissions), h.list)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", items)
}
