package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// GatePassRepository provides access to gate pass lifecycle records.
type GatePassRepository interface {
	Create(ctx context.Context, pass *models.GatePass) error
	GetByID(ctx context.Context, id uint) (models.GatePass, error)
	GetByPassNumber(ctx context.Context, passNumber string) (models.GatePass, error)
	List(ctx context.Context) ([]models.GatePass, error)
	// ListByUser matches either the user identifier or the student email, the
	// two ways clients historically addressed a pass owner.
	ListByUser(ctx context.Context, userID string) ([]models.GatePass, error)
	ListByPortal(ctx context.Context, portalID string) ([]models.GatePass, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.GatePass, error)
	ListByStatus(ctx context.Context, status string) ([]models.GatePass, error)
	ListByUserAndPortal(ctx context.Context, userID, portalID string) ([]models.GatePass, error)
	ListActive(ctx context.Context, reference time.Time) ([]models.GatePass, error)
	ListPendingForHOD(ctx context.Context, hodUserID string) ([]models.GatePass, error)
	FirstApprovedForRoll(ctx context.Context, studentRoll string, excludeID uint) (models.GatePass, error)
	// ListExpiredCandidates pages through passes past their expiry that are
	// not yet marked expired, in ascending id order starting after afterID.
	ListExpiredCandidates(ctx context.Context, reference time.Time, afterID uint, batchSize int) ([]models.GatePass, error)
	UpdateWithVersion(ctx context.Context, pass *models.GatePass) error
	Delete(ctx context.Context, id uint) error
	DeleteByPassNumberPrefix(ctx context.Context, prefix string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type gatePassRepository struct {
	db *gorm.DB
}

// NewGatePassRepository constructs a GORM-backed gate pass repository.
func NewGatePassRepository(db *gorm.DB) GatePassRepository {
	return &gatePassRepository{db: db}
}

func (r *gatePassRepository) Create(ctx context.Context, pass *models.GatePass) error {
	return r.db.WithContext(ctx).Create(pass).Error
}

func (r *gatePassRepository) GetByID(ctx context.Context, id uint) (models.GatePass, error) {
	var pass models.GatePass
	if err := r.db.WithContext(ctx).First(&pass, id).Error; err != nil {
		return models.GatePass{}, err
	}

	return pass, nil
}

func (r *gatePassRepository) GetByPassNumber(ctx context.Context, passNumber string) (models.GatePass, error) {
	var pass models.GatePass
	if err := r.db.WithContext(ctx).Where("pass_number = ?", passNumber).First(&pass).Error; err != nil {
		return models.GatePass{}, err
	}

	return pass, nil
}

func (r *gatePassRepository) List(ctx context.Context) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *gatePassRepository) ListByUser(ctx context.Context, userID string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ? OR student_email = ?", userID, userID))
}

func (r *gatePassRepository) ListByPortal(ctx context.Context, portalID string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("portal_id = ?", portalID))
}

func (r *gatePassRepository) ListBySection(ctx context.Context, sectionID string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("section_id = ?", sectionID))
}

func (r *gatePassRepository) ListByStatus(ctx context.Context, status string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status))
}

func (r *gatePassRepository) ListByUserAndPortal(ctx context.Context, userID, portalID string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ? AND portal_id = ?", userID, portalID))
}

func (r *gatePassRepository) ListActive(ctx context.Context, reference time.Time) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("status = ? AND expires_at > ?", models.GatePassStatusActive, reference))
}

func (r *gatePassRepository) ListPendingForHOD(ctx context.Context, hodUserID string) ([]models.GatePass, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("hod_user_id = ? AND status = ?", hodUserID, models.GatePassStatusPending))
}

func (r *gatePassRepository) FirstApprovedForRoll(ctx context.Context, studentRoll string, excludeID uint) (models.GatePass, error) {
	var pass models.GatePass
	err := r.db.WithContext(ctx).
		Where("student_roll = ? AND status = ? AND id <> ?", studentRoll, models.GatePassStatusApproved, excludeID).
		First(&pass).Error
	if err != nil {
		return models.GatePass{}, err
	}

	return pass, nil
}

func (r *gatePassRepository) ListExpiredCandidates(ctx context.Context, reference time.Time, afterID uint, batchSize int) ([]models.GatePass, error) {
	var passes []models.GatePass
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ? AND status <> ? AND id > ?",
			reference, models.GatePassStatusExpired, afterID).
		Order("id ASC").
		Limit(batchSize).
		Find(&passes).Error
	if err != nil {
		return nil, err
	}

	return passes, nil
}

func (r *gatePassRepository) UpdateWithVersion(ctx context.Context, pass *models.GatePass) error {
	loaded := pass.Version
	next := *pass
	next.Version = loaded + 1

	result := r.db.WithContext(ctx).Model(&models.GatePass{}).
		Where("id = ? AND version = ?", pass.ID, loaded).
		Select("*").Omit("id", "created_at").
		Updates(next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	pass.Version = next.Version
	return nil
}

func (r *gatePassRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.GatePass{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gatePassRepository) DeleteByPassNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("pass_number LIKE ?", prefix+"%").
		Delete(&models.GatePass{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *gatePassRepository) DeleteAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GatePass{}).Count(&count).Error; err != nil {
		return 0, err
	}

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.GatePass{}).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *gatePassRepository) list(ctx context.Context, query *gorm.DB) ([]models.GatePass, error) {
	var passes []models.GatePass
	if err := query.Order("created_at DESC").Find(&passes).Error; err != nil {
		return nil, err
	}

	return passes, nil
}
