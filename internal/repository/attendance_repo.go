package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// AttendanceRepository persists submitted attendance sheets.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	List(ctx context.Context) ([]models.Attendance, error)
	GetBySectionAndDate(ctx context.Context, section, date string) (models.Attendance, error)
	LatestBySection(ctx context.Context, section string) (models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs a GORM-backed attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	var sheets []models.Attendance
	if err := r.db.WithContext(ctx).Order("date DESC, created_at DESC").Find(&sheets).Error; err != nil {
		return nil, err
	}

	return sheets, nil
}

func (r *attendanceRepository) GetBySectionAndDate(ctx context.Context, section, date string) (models.Attendance, error) {
	var sheet models.Attendance
	err := r.db.WithContext(ctx).
		Where("section = ? AND date = ?", section, date).
		Order("created_at DESC").
		First(&sheet).Error
	if err != nil {
		return models.Attendance{}, err
	}

	return sheet, nil
}

func (r *attendanceRepository) LatestBySection(ctx context.Context, section string) (models.Attendance, error) {
	var sheet models.Attendance
	err := r.db.WithContext(ctx).
		Where("section = ?", section).
		Order("date DESC, updated_at DESC").
		First(&sheet).Error
	if err != nil {
		return models.Attendance{}, err
	}

	return sheet, nil
}
