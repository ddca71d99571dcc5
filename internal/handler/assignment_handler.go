package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/authz"
	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes, including submission upload.
type AssignmentHandler struct {
	assignments service.AssignmentService
	submissions service.SubmissionService
	stats       service.StatsService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, submissions service.SubmissionService, stats service.StatsService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		submissions: submissions,
		stats:       stats,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to an authenticated group.
// Fixed paths come before /:id so they are not captured as identifiers.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", middleware.Require(authz.ListAssignments), h.list)
	router.Post("", middleware.Require(authz.CreateAssignment), h.create)
	router.Get("/upload-policy", middleware.Require(authz.ListAssignments), h.uploadPolicy)
	router.Get("/monitor/stats/overview", middleware.Require(authz.MonitorStats), h.monitorStats)
	router.Get("/student/stats/overview", middleware.Require(authz.StudentStats), h.studentStats)

	router.Get("/:id", middleware.Require(authz.ViewAssignment), h.get)
	router.Put("/:id", middleware.Require(authz.UpdateAssignment), h.update)
	router.Delete("/:id", middleware.Require(authz.DeleteAssignment), h.delete)
	router.Post("/:id/submit", middleware.Require(authz.SubmitAssignment), h.submit)
	router.Get("/:id/submissions", middleware.Require(authz.ViewSubmissions), h.listSubmissions)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	assignments, err := h.assignments.List(c.UserContext(), viewer)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	assignment, err := h.assignments.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	var payload dto.AssignmentRequest
	if err := parseBody(c, &payload); err != nil {
		return respond(c, h.logger, err)
	}

	assignment, err := h.assignments.Create(c.UserContext(), actor, payload)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendCreated(c, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	var payload dto.AssignmentRequest
	if err := parseBody(c, &payload); err != nil {
		return respond(c, h.logger, err)
	}

	assignment, err := h.assignments.Update(c.UserContext(), actor, id, payload)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	if err := h.assignments.Delete(c.UserContext(), actor, id); err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment and its submissions deleted", fiber.Map{"id": id})
}

func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	student, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respond(c, h.logger, admission.ErrNoFile)
	}

	result, err := h.submissions.Submit(c.UserContext(), student, id, file)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendCreated(c, "assignment submitted", result)
}

func (h *AssignmentHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respond(c, h.logger, err)
	}

	items, err := h.submissions.ListForAssignment(c.UserContext(), id)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", items)
}

func (h *AssignmentHandler) uploadPolicy(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "upload policy retrieved", h.submissions.UploadPolicy())
}

func (h *AssignmentHandler) monitorStats(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	stats, err := h.stats.Monitor(c.UserContext(), actor)
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "monitor stats retrieved", stats)
}

func (h *AssignmentHandler) studentStats(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	stats, err := h.stats.Student(c.UserContext(), actor)
	if err != nil {
		return respond(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student stats retrieved", stats)
}
