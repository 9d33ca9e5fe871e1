package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// LetterRepository provides access to letter lifecycle records.
type LetterRepository interface {
	Create(ctx context.Context, letter *models.Letter) error
	GetByID(ctx context.Context, id uint) (models.Letter, error)
	GetByLetterNumber(ctx context.Context, letterNumber string) (models.Letter, error)
	List(ctx context.Context) ([]models.Letter, error)
	ListByUser(ctx context.Context, userID string) ([]models.Letter, error)
	ListByPortal(ctx context.Context, portalID string) ([]models.Letter, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Letter, error)
	ListByStatus(ctx context.Context, status string) ([]models.Letter, error)
	ListByType(ctx context.Context, letterType string) ([]models.Letter, error)
	ListByUserAndPortal(ctx context.Context, userID, portalID string) ([]models.Letter, error)
	ListByIssuer(ctx context.Context, issuerUserID string) ([]models.Letter, error)
	ListExpiredCandidates(ctx context.Context, reference time.Time, afterID uint, batchSize int) ([]models.Letter, error)
	UpdateWithVersion(ctx context.Context, letter *models.Letter) error
	Delete(ctx context.Context, id uint) error
}

type letterRepository struct {
	db *gorm.DB
}

// NewLetterRepository constructs a GORM-backed letter repository.
func NewLetterRepository(db *gorm.DB) LetterRepository {
	return &letterRepository{db: db}
}

func (r *letterRepository) Create(ctx context.Context, letter *models.Letter) error {
	return r.db.WithContext(ctx).Create(letter).Error
}

func (r *letterRepository) GetByID(ctx context.Context, id uint) (models.Letter, error) {
	var letter models.Letter
	if err := r.db.WithContext(ctx).First(&letter, id).Error; err != nil {
		return models.Letter{}, err
	}

	return letter, nil
}

func (r *letterRepository) GetByLetterNumber(ctx context.Context, letterNumber string) (models.Letter, error) {
	var letter models.Letter
	if err := r.db.WithContext(ctx).Where("letter_number = ?", letterNumber).First(&letter).Error; err != nil {
		return models.Letter{}, err
	}

	return letter, nil
}

func (r *letterRepository) List(ctx context.Context) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *letterRepository) ListByUser(ctx context.Context, userID string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *letterRepository) ListByPortal(ctx context.Context, portalID string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("portal_id = ?", portalID))
}

func (r *letterRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("section_id = ?", sectionID))
}

func (r *letterRepository) ListByStatus(ctx context.Context, status string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status))
}

func (r *letterRepository) ListByType(ctx context.Context, letterType string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("letter_type = ?", letterType))
}

func (r *letterRepository) ListByUserAndPortal(ctx context.Context, userID, portalID string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ? AND portal_id = ?", userID, portalID))
}

func (r *letterRepository) ListByIssuer(ctx context.Context, issuerUserID string) ([]models.Letter, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("issuer_user_id = ?", issuerUserID))
}

func (r *letterRepository) ListExpiredCandidates(ctx context.Context, reference time.Time, afterID uint, batchSize int) ([]models.Letter, error) {
	var letters []models.Letter
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ? AND status <> ? AND id > ?",
			reference, models.LetterStatusExpired, afterID).
		Order("id ASC").
		Limit(batchSize).
		Find(&letters).Error
	if err != nil {
		return nil, err
	}

	return letters, nil
}

func (r *letterRepository) UpdateWithVersion(ctx context.Context, letter *models.Letter) error {
	loaded := letter.Version
	next := *letter
	next.Version = loaded + 1

	result := r.db.WithContext(ctx).Model(&models.Letter{}).
		Where("id = ? AND version = ?", letter.ID, loaded).
		Select("*").Omit("id", "created_at").
		Updates(next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	letter.Version = next.Version
	return nil
}

func (r *letterRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Letter{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *letterRepository) list(ctx context.Context, query *gorm.DB) ([]models.Letter, error) {
	var letters []models.Letter
	if err := query.Order("created_at DESC").Find(&letters).Error; err != nil {
		return nil, err
	}

	return letters, nil
}
