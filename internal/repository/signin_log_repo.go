package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// SignInLogRepository persists login attempt records.
type SignInLogRepository interface {
	Create(ctx context.Context, log *models.SignInLog) error
	ListRecent(ctx context.Context, limit int) ([]models.SignInLog, error)
}

type signInLogRepository struct {
	db *gorm.DB
}

// NewSignInLogRepository constructs a GORM-backed sign-in log repository.
func NewSignInLogRepository(db *gorm.DB) SignInLogRepository {
	return &signInLogRepository{db: db}
}

func (r *signInLogRepository) Create(ctx context.Context, log *models.SignInLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *signInLogRepository) ListRecent(ctx context.Context, limit int) ([]models.SignInLog, error) {
	var logs []models.SignInLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}
