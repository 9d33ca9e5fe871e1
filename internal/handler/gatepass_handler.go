package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// GatePassHandler exposes gate pass lifecycle endpoints.
type GatePassHandler struct {
	service service.GatePassService
	logger  zerolog.Logger
}

// NewGatePassHandler constructs a gate pass handler.
func NewGatePassHandler(service service.GatePassService, logger zerolog.Logger) *GatePassHandler {
	return &GatePassHandler{
		service: service,
		logger:  logger.With().Str("component", "gatepass_handler").Logger(),
	}
}

// Register wires gate pass routes. Static segments come before the id matcher.
func (h *GatePassHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/active", h.listActive)
	router.Get("/pending/:hodUserId", h.listPendingForHOD)
	router.Get("/number/:passNumber", h.getByNumber)
	router.Get("/status/:status", h.listByStatus)
	router.Get("/portal/:portalId", h.listByPortal)
	router.Get("/section/:sectionId", h.listBySection)
	router.Get("/user/:userId/portal/:portalId", h.listByUserInPortal)
	router.Get("/user/:userId", h.listByUser)
	router.Post("/maintenance/expire", h.expireOld)
	router.Delete("/maintenance/old", h.cleanupOld)
	router.Delete("/maintenance/all", h.cleanupAll)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/decline", h.decline)
	router.Post("/:id/use", h.markUsed)
	router.Post("/:id/revoke", h.revoke)
}

func (h *GatePassHandler) create(c *fiber.Ctx) error {
	var payload dto.GatePassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	pass, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass payload")
		case errors.Is(err, service.ErrInvalidStatus):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown gate pass status")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create gate pass")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create gate pass")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "gate pass created", pass)
}

func (h *GatePassHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	pass, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.gatePassError(c, err, "failed to get gate pass")
	}

	return utils.SendSuccess(c, "gate pass retrieved", pass)
}

func (h *GatePassHandler) getByNumber(c *fiber.Ctx) error {
	pass, err := h.service.GetByNumber(c.Context(), c.Params("passNumber"))
	if err != nil {
		return h.gatePassError(c, err, "failed to get gate pass")
	}

	return utils.SendSuccess(c, "gate pass retrieved", pass)
}

func (h *GatePassHandler) list(c *fiber.Ctx) error {
	passes, err := h.service.List(c.Context())
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) listActive(c *fiber.Ctx) error {
	passes, err := h.service.ListActive(c.Context())
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "active gate passes retrieved", passes)
}

func (h *GatePassHandler) listPendingForHOD(c *fiber.Ctx) error {
	passes, err := h.service.ListPendingForHOD(c.Context(), c.Params("hodUserId"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list pending gate passes")
	}

	return utils.SendSuccess(c, "pending gate passes retrieved", passes)
}

func (h *GatePassHandler) listByUser(c *fiber.Ctx) error {
	passes, err := h.service.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) listByPortal(c *fiber.Ctx) error {
	passes, err := h.service.ListByPortal(c.Context(), c.Params("portalId"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) listBySection(c *fiber.Ctx) error {
	passes, err := h.service.ListBySection(c.Context(), c.Params("sectionId"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) listByStatus(c *fiber.Ctx) error {
	passes, err := h.service.ListByStatus(c.Context(), c.Params("status"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) listByUserInPortal(c *fiber.Ctx) error {
	passes, err := h.service.ListByUserInPortal(c.Context(), c.Params("userId"), c.Params("portalId"))
	if err != nil {
		return h.gatePassError(c, err, "failed to list gate passes")
	}

	return utils.SendSuccess(c, "gate passes retrieved", passes)
}

func (h *GatePassHandler) approve(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	// body is optional
	var payload dto.GatePassApproveRequest
	if err := c.BodyParser(&payload); err != nil {
		payload = dto.GatePassApproveRequest{}
	}
	if payload.HODUserID == "" {
		payload.HODUserID = userIDStringFromContext(c)
	}

	pass, err := h.service.Approve(c.Context(), id, payload.HODUserID)
	if err != nil {
		return h.gatePassError(c, err, "failed to approve gate pass")
	}

	return utils.SendSuccess(c, "gate pass approved", pass)
}

func (h *GatePassHandler) decline(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	// body is optional
	var payload dto.GatePassDeclineRequest
	if err := c.BodyParser(&payload); err != nil {
		payload = dto.GatePassDeclineRequest{}
	}
	if payload.HODUserID == "" {
		payload.HODUserID = userIDStringFromContext(c)
	}

	pass, err := h.service.Decline(c.Context(), id, payload.Reason, payload.HODUserID)
	if err != nil {
		return h.gatePassError(c, err, "failed to decline gate pass")
	}

	return utils.SendSuccess(c, "gate pass declined", pass)
}

func (h *GatePassHandler) markUsed(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	pass, err := h.service.MarkUsed(c.Context(), id)
	if err != nil {
		return h.gatePassError(c, err, "failed to mark gate pass as used")
	}

	return utils.SendSuccess(c, "gate pass marked as used", pass)
}

func (h *GatePassHandler) revoke(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	var payload struct {
		Remarks string `json:"remarks"`
	}
	if err := c.BodyParser(&payload); err != nil {
		payload.Remarks = ""
	}

	pass, err := h.service.Revoke(c.Context(), id, payload.Remarks)
	if err != nil {
		return h.gatePassError(c, err, "failed to revoke gate pass")
	}

	return utils.SendSuccess(c, "gate pass revoked", pass)
}

func (h *GatePassHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	var payload dto.GatePassUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	pass, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.gatePassError(c, err, "failed to update gate pass")
	}

	return utils.SendSuccess(c, "gate pass updated", pass)
}

func (h *GatePassHandler) expireOld(c *fiber.Ctx) error {
	result, err := h.service.ExpireOld(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("gate pass expiry sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "expiry sweep failed")
	}

	return utils.SendSuccess(c, "expiry sweep completed", result)
}

func (h *GatePassHandler) cleanupOld(c *fiber.Ctx) error {
	removed, err := h.service.CleanupOld(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove legacy gate passes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove legacy gate passes")
	}

	return utils.SendSuccess(c, "legacy gate passes removed", fiber.Map{"removed": removed})
}

func (h *GatePassHandler) cleanupAll(c *fiber.Ctx) error {
	removed, err := h.service.CleanupAll(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove gate passes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove gate passes")
	}

	return utils.SendSuccess(c, "all gate passes removed", fiber.Map{"removed": removed})
}

func (h *GatePassHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid gate pass id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.gatePassError(c, err, "failed to delete gate pass")
	}

	return utils.SendSuccess(c, "gate pass deleted", nil)
}

func (h *GatePassHandler) gatePassError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrGatePassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "gate pass not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "status change not allowed", err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown gate pass status")
	case errors.Is(err, service.ErrGatePassConflict):
		return utils.SendError(c, fiber.StatusConflict, "gate pass was modified concurrently")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
