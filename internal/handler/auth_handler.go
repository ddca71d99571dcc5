package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the auth endpoints. Only /me requires a token.
func (h *AuthHandler) Register(router fiber.Router, authenticate fiber.Handler) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Get("/me", authenticate, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := parseBody(c, &payload); err != nil {
		return respond(c, h.logger, err)
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendCreated(c, "registration successful, pending admin approval", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, &payload); err != nil {
		return respond(c, h.logger, err)
	}

	result, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respond(c, h.logger, err)
	}

	profile, err := h.service.Me(c.UserContext(), user.ID)
	if err != nil {
		return respond(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}
