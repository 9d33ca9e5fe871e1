package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// VisitRepository provides access to clinic visit records.
type VisitRepository interface {
	Create(ctx context.Context, visit *models.Visit) error
	Save(ctx context.Context, visit *models.Visit) error
	// LatestOpenByStudent returns the most recently entered visit for the
	// student that has no exit time yet.
	LatestOpenByStudent(ctx context.Context, studentID string) (models.Visit, error)
	Recent(ctx context.Context, limit int) ([]models.Visit, error)
	ByStudent(ctx context.Context, studentID string) ([]models.Visit, error)
	ListOpen(ctx context.Context) ([]models.Visit, error)
}

type visitRepository struct {
	db *gorm.DB
}

// NewVisitRepository constructs a GORM-backed visit repository.
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *visitRepository) Save(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Save(visit).Error
}

func (r *visitRepository) LatestOpenByStudent(ctx context.Context, studentID string) (models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND exit_time IS NULL", studentID).
		Order("entry_time DESC").
		First(&visit).Error
	if err != nil {
		return models.Visit{}, err
	}

	return visit, nil
}

func (r *visitRepository) Recent(ctx context.Context, limit int) ([]models.Visit, error) {
	var visits []models.Visit
	if err := r.db.WithContext(ctx).Order("entry_time DESC").Limit(limit).Find(&visits).Error; err != nil {
		return nil, err
	}

	return visits, nil
}

func (r *visitRepository) ByStudent(ctx context.Context, studentID string) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("entry_time DESC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}

func (r *visitRepository) ListOpen(ctx context.Context) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.WithContext(ctx).
		Where("exit_time IS NULL").
		Order("entry_time DESC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}

	return visits, nil
}
