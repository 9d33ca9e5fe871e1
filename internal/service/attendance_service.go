package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

// ErrAttendanceNotFound indicates no sheet matched the lookup.
var ErrAttendanceNotFound = errors.New("attendance sheet not found")

// AttendanceService records and serves section presence sheets.
type AttendanceService interface {
	Submit(ctx context.Context, req dto.AttendanceSubmitRequest) (models.Attendance, error)
	List(ctx context.Context) ([]models.Attendance, error)
	BySectionAndDate(ctx context.Context, section, date string) (models.Attendance, error)
	LatestBySection(ctx context.Context, section string) (models.Attendance, error)
}

type attendanceService struct {
	repo     repository.AttendanceRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo repository.AttendanceRepository, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		repo:     repo,
		validate: validate,
		logger:   logger.With().Str("component", "attendance_service").Logger(),
	}
}

// Submit stores a presence sheet. Repeated submissions for the same section and
// date stack up; readers always take the most recent one.
func (s *attendanceService) Submit(ctx context.Context, req dto.AttendanceSubmitRequest) (models.Attendance, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Attendance{}, err
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	records := make(datatypes.JSONMap, len(req.Records))
	for roll, status := range req.Records {
		records[roll] = status
	}

	sheet := models.Attendance{
		Date:       date,
		Section:    req.Section,
		Records:    records,
		RecordedBy: req.RecordedBy,
	}
	if err := s.repo.Create(ctx, &sheet); err != nil {
		return models.Attendance{}, err
	}

	s.logger.Info().Str("section", sheet.Section).Str("date", sheet.Date).Int("records", len(records)).Msg("attendance submitted")
	return sheet, nil
}

func (s *attendanceService) List(ctx context.Context) ([]models.Attendance, error) {
	return s.repo.List(ctx)
}

func (s *attendanceService) BySectionAndDate(ctx context.Context, section, date string) (models.Attendance, error) {
	sheet, err := s.repo.GetBySectionAndDate(ctx, section, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Attendance{}, ErrAttendanceNotFound
	}
	return sheet, err
}

func (s *attendanceService) LatestBySection(ctx context.Context, section string) (models.Attendance, error) {
	sheet, err := s.repo.LatestBySection(ctx, section)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Attendance{}, ErrAttendanceNotFound
	}
	return sheet, err
}
