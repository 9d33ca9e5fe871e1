package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// LetterHandler exposes letter lifecycle endpoints.
type LetterHandler struct {
	service service.LetterService
	logger  zerolog.Logger
}

// NewLetterHandler constructs a letter handler.
func NewLetterHandler(service service.LetterService, logger zerolog.Logger) *LetterHandler {
	return &LetterHandler{
		service: service,
		logger:  logger.With().Str("component", "letter_handler").Logger(),
	}
}

// Register wires letter routes. Static segments come before the id matcher.
func (h *LetterHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/number/:letterNumber", h.getByNumber)
	router.Get("/status/:status", h.listByStatus)
	router.Get("/type/:type", h.listByType)
	router.Get("/portal/:portalId", h.listByPortal)
	router.Get("/section/:sectionId", h.listBySection)
	router.Get("/issuer/:issuerId", h.listByIssuer)
	router.Get("/user/:userId/portal/:portalId", h.listByUserInPortal)
	router.Get("/user/:userId", h.listByUser)
	router.Post("/maintenance/expire", h.expireOld)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/issue", h.issue)
	router.Post("/:id/acknowledge", h.acknowledge)
	router.Post("/:id/attachment", h.attach)
}

func (h *LetterHandler) create(c *fiber.Ctx) error {
	var payload dto.LetterCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	letter, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "letter type and title are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to draft letter")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to draft letter")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "letter drafted", letter)
}

func (h *LetterHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	letter, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.letterError(c, err, "failed to get letter")
	}

	return utils.SendSuccess(c, "letter retrieved", letter)
}

func (h *LetterHandler) getByNumber(c *fiber.Ctx) error {
	letter, err := h.service.GetByNumber(c.Context(), c.Params("letterNumber"))
	if err != nil {
		return h.letterError(c, err, "failed to get letter")
	}

	return utils.SendSuccess(c, "letter retrieved", letter)
}

func (h *LetterHandler) list(c *fiber.Ctx) error {
	letters, err := h.service.List(c.Context())
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByUser(c *fiber.Ctx) error {
	letters, err := h.service.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByPortal(c *fiber.Ctx) error {
	letters, err := h.service.ListByPortal(c.Context(), c.Params("portalId"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listBySection(c *fiber.Ctx) error {
	letters, err := h.service.ListBySection(c.Context(), c.Params("sectionId"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByStatus(c *fiber.Ctx) error {
	letters, err := h.service.ListByStatus(c.Context(), c.Params("status"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByType(c *fiber.Ctx) error {
	letters, err := h.service.ListByType(c.Context(), c.Params("type"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByUserInPortal(c *fiber.Ctx) error {
	letters, err := h.service.ListByUserInPortal(c.Context(), c.Params("userId"), c.Params("portalId"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) listByIssuer(c *fiber.Ctx) error {
	letters, err := h.service.ListByIssuer(c.Context(), c.Params("issuerId"))
	if err != nil {
		return h.letterError(c, err, "failed to list letters")
	}

	return utils.SendSuccess(c, "letters retrieved", letters)
}

func (h *LetterHandler) issue(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	// body is optional
	var payload struct {
		ApproverUserID string `json:"approver_user_id"`
	}
	if err := c.BodyParser(&payload); err != nil {
		payload.ApproverUserID = ""
	}
	if payload.ApproverUserID == "" {
		payload.ApproverUserID = userIDStringFromContext(c)
	}

	letter, err := h.service.Issue(c.Context(), id, payload.ApproverUserID)
	if err != nil {
		return h.letterError(c, err, "failed to issue letter")
	}

	return utils.SendSuccess(c, "letter issued", letter)
}

func (h *LetterHandler) acknowledge(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	letter, err := h.service.Acknowledge(c.Context(), id)
	if err != nil {
		return h.letterError(c, err, "failed to acknowledge letter")
	}

	return utils.SendSuccess(c, "letter acknowledged", letter)
}

func (h *LetterHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	var payload dto.LetterUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	letter, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.letterError(c, err, "failed to update letter")
	}

	return utils.SendSuccess(c, "letter updated", letter)
}

func (h *LetterHandler) attach(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}

	letter, err := h.service.Attach(c.Context(), id, fileHeader.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedAttachment):
			return utils.SendError(c, fiber.StatusBadRequest, "unsupported attachment type")
		case errors.Is(err, service.ErrUploaderUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "file uploads are not configured")
		default:
			return h.letterError(c, err, "failed to store attachment")
		}
	}

	return utils.SendSuccess(c, "attachment stored", letter)
}

func (h *LetterHandler) expireOld(c *fiber.Ctx) error {
	result, err := h.service.ExpireOld(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("letter expiry sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "expiry sweep failed")
	}

	return utils.SendSuccess(c, "expiry sweep completed", result)
}

func (h *LetterHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid letter id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.letterError(c, err, "failed to delete letter")
	}

	return utils.SendSuccess(c, "letter deleted", nil)
}

func (h *LetterHandler) letterError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrLetterNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "letter not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "status change not allowed", err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown letter status")
	case errors.Is(err, service.ErrLetterConflict):
		return utils.SendError(c, fiber.StatusConflict, "letter was modified concurrently")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
