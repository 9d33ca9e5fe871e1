package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// SectionHandler exposes section roster endpoints.
type SectionHandler struct {
	service service.SectionService
	logger  zerolog.Logger
}

// NewSectionHandler constructs a section handler.
func NewSectionHandler(service service.SectionService, logger zerolog.Logger) *SectionHandler {
	return &SectionHandler{
		service: service,
		logger:  logger.With().Str("component", "section_handler").Logger(),
	}
}

// Register wires section routes.
func (h *SectionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/map", h.asMap)
	router.Post("/:name/rolls", h.addRoll)
}

func (h *SectionHandler) create(c *fiber.Ctx) error {
	var payload dto.SectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	section, err := h.service.Create(c.Context(), payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrSectionNameRequired) {
			return utils.SendError(c, fiber.StatusBadRequest, "section name is required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create section")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create section")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "section ready", section)
}

func (h *SectionHandler) addRoll(c *fiber.Ctx) error {
	var payload dto.SectionAddRollRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	section, err := h.service.AddRoll(c.Context(), c.Params("name"), payload.Roll)
	if err != nil {
		if errors.Is(err, service.ErrSectionNameRequired) {
			return utils.SendError(c, fiber.StatusBadRequest, "section name and roll are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to add roll")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to add roll")
	}

	return utils.SendSuccess(c, "roll added", section)
}

func (h *SectionHandler) list(c *fiber.Ctx) error {
	sections, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sections")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sections")
	}

	return utils.SendSuccess(c, "sections retrieved", sections)
}

func (h *SectionHandler) asMap(c *fiber.Ctx) error {
	sections, err := h.service.AsMap(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build section map")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build section map")
	}

	return utils.SendSuccess(c, "section map retrieved", sections)
}
