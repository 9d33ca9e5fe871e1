package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// PortalHandler exposes portal access group endpoints.
type PortalHandler struct {
	service service.PortalService
	logger  zerolog.Logger
}

// NewPortalHandler constructs a portal handler.
func NewPortalHandler(service service.PortalService, logger zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		service: service,
		logger:  logger.With().Str("component", "portal_handler").Logger(),
	}
}

// Register wires portal routes. Static segments come before the id matcher.
func (h *PortalHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/active", h.listActive)
	router.Get("/name/:name", h.getByName)
	router.Get("/type/:type", h.getByType)
	router.Get("/section/:sectionId", h.listBySection)
	router.Get("/user/:userId", h.listByUser)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/toggle", h.toggleStatus)
	router.Post("/:id/sections", h.addSection)
	router.Delete("/:id/sections/:sectionId", h.removeSection)
	router.Post("/:id/users", h.addUser)
	router.Delete("/:id/users/:userId", h.removeUser)
}

func (h *PortalHandler) create(c *fiber.Ctx) error {
	var payload dto.PortalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	portal, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "portal name and type are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create portal")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create portal")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "portal created", portal)
}

func (h *PortalHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	portal, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.portalError(c, err, "failed to get portal")
	}

	return utils.SendSuccess(c, "portal retrieved", portal)
}

func (h *PortalHandler) getByName(c *fiber.Ctx) error {
	portal, err := h.service.GetByName(c.Context(), c.Params("name"))
	if err != nil {
		return h.portalError(c, err, "failed to get portal")
	}

	return utils.SendSuccess(c, "portal retrieved", portal)
}

func (h *PortalHandler) getByType(c *fiber.Ctx) error {
	portal, err := h.service.GetByType(c.Context(), c.Params("type"))
	if err != nil {
		return h.portalError(c, err, "failed to get portal")
	}

	return utils.SendSuccess(c, "portal retrieved", portal)
}

func (h *PortalHandler) list(c *fiber.Ctx) error {
	portals, err := h.service.List(c.Context())
	if err != nil {
		return h.portalError(c, err, "failed to list portals")
	}

	return utils.SendSuccess(c, "portals retrieved", portals)
}

func (h *PortalHandler) listActive(c *fiber.Ctx) error {
	portals, err := h.service.ListActive(c.Context())
	if err != nil {
		return h.portalError(c, err, "failed to list portals")
	}

	return utils.SendSuccess(c, "active portals retrieved", portals)
}

func (h *PortalHandler) listBySection(c *fiber.Ctx) error {
	portals, err := h.service.ListBySection(c.Context(), c.Params("sectionId"))
	if err != nil {
		return h.portalError(c, err, "failed to list portals")
	}

	return utils.SendSuccess(c, "portals retrieved", portals)
}

func (h *PortalHandler) listByUser(c *fiber.Ctx) error {
	portals, err := h.service.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return h.portalError(c, err, "failed to list portals")
	}

	return utils.SendSuccess(c, "portals retrieved", portals)
}

func (h *PortalHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	var payload dto.PortalUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	portal, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.portalError(c, err, "failed to update portal")
	}

	return utils.SendSuccess(c, "portal updated", portal)
}

func (h *PortalHandler) toggleStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	portal, err := h.service.ToggleStatus(c.Context(), id)
	if err != nil {
		return h.portalError(c, err, "failed to toggle portal")
	}

	return utils.SendSuccess(c, "portal status toggled", portal)
}

func (h *PortalHandler) addSection(c *fiber.Ctx) error {
	return h.memberMutation(c, h.service.AddSection, "section added")
}

func (h *PortalHandler) removeSection(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	portal, err := h.service.RemoveSection(c.Context(), id, c.Params("sectionId"))
	if err != nil {
		return h.portalError(c, err, "failed to remove section")
	}

	return utils.SendSuccess(c, "section removed", portal)
}

func (h *PortalHandler) addUser(c *fiber.Ctx) error {
	return h.memberMutation(c, h.service.AddUser, "user added")
}

func (h *PortalHandler) removeUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	portal, err := h.service.RemoveUser(c.Context(), id, c.Params("userId"))
	if err != nil {
		return h.portalError(c, err, "failed to remove user")
	}

	return utils.SendSuccess(c, "user removed", portal)
}

func (h *PortalHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.portalError(c, err, "failed to delete portal")
	}

	return utils.SendSuccess(c, "portal deleted", nil)
}

func (h *PortalHandler) memberMutation(c *fiber.Ctx, mutate func(ctx context.Context, portalID uint, memberID string) (models.Portal, error), message string) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid portal id")
	}

	var payload dto.PortalMemberRequest
	if err := c.BodyParser(&payload); err != nil || payload.ID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "member id is required")
	}

	portal, err := mutate(c.Context(), id, payload.ID)
	if err != nil {
		return h.portalError(c, err, "failed to update portal membership")
	}

	return utils.SendSuccess(c, message, portal)
}

func (h *PortalHandler) portalError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrPortalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "portal not found")
	case errors.Is(err, service.ErrPortalConflict):
		return utils.SendError(c, fiber.StatusConflict, "portal was modified concurrently")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
