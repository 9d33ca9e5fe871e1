package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// VisitHandler exposes clinic visit endpoints.
type VisitHandler struct {
	service service.VisitService
	logger  zerolog.Logger
}

// NewVisitHandler constructs a visit handler.
func NewVisitHandler(service service.VisitService, logger zerolog.Logger) *VisitHandler {
	return &VisitHandler{
		service: service,
		logger:  logger.With().Str("component", "visit_handler").Logger(),
	}
}

// Register wires visit routes.
func (h *VisitHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/recent", h.recent)
	router.Get("/active", h.active)
	router.Get("/active/ids", h.activeIDs)
	router.Get("/student/:studentId", h.byStudent)
	router.Post("/exit/:studentId", h.markExit)
}

func (h *VisitHandler) create(c *fiber.Ctx) error {
	var payload dto.VisitCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	visit, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "student id and name are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to log visit")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to log visit")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "visit logged", visit)
}

func (h *VisitHandler) markExit(c *fiber.Ctx) error {
	visit, err := h.service.MarkExit(c.Context(), c.Params("studentId"))
	if err != nil {
		if errors.Is(err, service.ErrNoActiveVisit) {
			return utils.SendError(c, fiber.StatusNotFound, "no active visit for student")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to mark exit")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark exit")
	}

	return utils.SendSuccess(c, "exit recorded", visit)
}

func (h *VisitHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "limit must be a number")
	}

	visits, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list recent visits")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list recent visits")
	}

	return utils.SendSuccess(c, "recent visits retrieved", visits)
}

func (h *VisitHandler) byStudent(c *fiber.Ctx) error {
	visits, err := h.service.ByStudent(c.Context(), c.Params("studentId"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list student visits")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list student visits")
	}

	return utils.SendSuccess(c, "student visits retrieved", visits)
}

func (h *VisitHandler) active(c *fiber.Ctx) error {
	visits, err := h.service.ActiveVisits(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list active visits")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list active visits")
	}

	return utils.SendSuccess(c, "active visits retrieved", visits)
}

func (h *VisitHandler) activeIDs(c *fiber.Ctx) error {
	ids, err := h.service.ActiveIDs(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list active visit ids")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list active visit ids")
	}

	return utils.SendSuccess(c, "active student ids retrieved", ids)
}
