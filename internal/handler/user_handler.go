package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/authz"
	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// UserHandler exposes account administration to admins.
type UserHandler struct {
	users  service.UserService
	stats  service.StatsService
	logger zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, stats service.StatsService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		stats:  stats,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches the user endpoints to an authenticated group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/admin/stats/overview", middleware.Require(authz.AdminStats), h.adminStats)

	manage := middleware.Require(authz.ManageUsers)
	router.Get("", manage, h.list)
	router.Get("/pending", manage, h.pending)
	router.Post("/:id/approve", manage, h.approve)
	router.Patch("/:id/role", manage, h.updateRole)
	router.Delete("/:id", manage, h.delete)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *UserHandler) pending(c *fiber.Ctx) error {
	users, err := h.users.Pending(c.UserContext())
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pending users retrieved", users)
}

func (h *UserHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	user, err := h.users.Approve(c.UserContext(), id)
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user approved", user)
}

func (h *UserHandler) updateRole(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	var payload dto.UpdateRoleRequest
	if err := parseBody(c, &payload); err != nil {
		return respond(c, h.logger, err)
	}

	user, err := h.users.UpdateRole(c.UserContext(), id, payload)
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user role updated", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	if err := h.users.Delete(c.UserContext(), id, actor.ID); err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

func (h *UserHandler) adminStats(c *fiber.Ctx) error {
	stats, err := h.stats.Admin(c.UserContext())
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "admin stats retrieved", stats)
}
