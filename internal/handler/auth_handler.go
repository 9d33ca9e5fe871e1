package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/signup", h.signup)
	router.Post("/login", h.login)
	router.Post("/reset-password", h.resetPassword)
}

// RegisterAdmin wires account listing routes behind the session guard.
func (h *AuthHandler) RegisterAdmin(router fiber.Router, guard fiber.Handler) {
	router.Get("/users", guard, h.listUsers)
	router.Get("/signins", guard, h.listSignIns)
	router.Get("/rolls/names", guard, h.rollNames)
}

// RegisterSeed wires the token-guarded seed tooling routes.
func (h *AuthHandler) RegisterSeed(router fiber.Router) {
	router.Post("/students", h.seedStudents)
	router.Post("/demo-users", h.seedDemoUsers)
}

func (h *AuthHandler) signup(c *fiber.Ctx) error {
	var payload dto.SignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Signup(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "name, email, password and role are required")
		case errors.Is(err, service.ErrEmailDomainNotAllowed):
			return utils.SendError(c, fiber.StatusBadRequest, "email must belong to the campus domain")
		case errors.Is(err, service.ErrAccountExists):
			return utils.SendError(c, fiber.StatusConflict, "account already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create account")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	meta := dto.LoginMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	result, err := h.service.Login(c.Context(), payload, meta)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "email, password and role are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.ResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	changed, err := h.service.ResetPassword(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "email and new password are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to reset password")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to reset password")
	}

	return utils.SendSuccess(c, "password reset processed", fiber.Map{"changed": changed})
}

func (h *AuthHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AuthHandler) listSignIns(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "limit must be a number")
	}

	logs, err := h.service.ListSignIns(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sign-ins")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sign-ins")
	}

	return utils.SendSuccess(c, "sign-in log retrieved", logs)
}

func (h *AuthHandler) rollNames(c *fiber.Ctx) error {
	rolls, err := h.service.RollNames(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to map roll names")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to map roll names")
	}

	return utils.SendSuccess(c, "roll names retrieved", rolls)
}

func (h *AuthHandler) seedStudents(c *fiber.Ctx) error {
	created, err := h.service.SeedStudents(c.Context(), c.Get("X-Seed-Token"))
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "student accounts seeded", fiber.Map{"created": created})
}

func (h *AuthHandler) seedDemoUsers(c *fiber.Ctx) error {
	created, err := h.service.SeedDemoUsers(c.Context(), c.Get("X-Seed-Token"))
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "demo accounts seeded", fiber.Map{"created": created})
}

func (h *AuthHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding is disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("seeding failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seeding failed")
	}
}
