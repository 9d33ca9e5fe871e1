package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/internal/utils"
)

// AttendanceHandler exposes attendance sheet endpoints.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register wires attendance routes.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.list)
	router.Get("/section/:section/latest", h.latestBySection)
	router.Get("/section/:section/date/:date", h.bySectionAndDate)
}

func (h *AttendanceHandler) submit(c *fiber.Ctx) error {
	var payload dto.AttendanceSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	sheet, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "section and records are required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit attendance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit attendance")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance submitted", sheet)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	sheets, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list attendance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list attendance")
	}

	return utils.SendSuccess(c, "attendance retrieved", sheets)
}

func (h *AttendanceHandler) bySectionAndDate(c *fiber.Ctx) error {
	sheet, err := h.service.BySectionAndDate(c.Context(), c.Params("section"), c.Params("date"))
	if err != nil {
		return h.attendanceError(c, err)
	}

	return utils.SendSuccess(c, "attendance retrieved", sheet)
}

func (h *AttendanceHandler) latestBySection(c *fiber.Ctx) error {
	sheet, err := h.service.LatestBySection(c.Context(), c.Params("section"))
	if err != nil {
		return h.attendanceError(c, err)
	}

	return utils.SendSuccess(c, "attendance retrieved", sheet)
}

func (h *AttendanceHandler) attendanceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrAttendanceNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "attendance sheet not found")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("failed to get attendance")
	return utils.SendError(c, fiber.StatusInternalServerError, "failed to get attendance")
}
