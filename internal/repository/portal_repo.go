package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// PortalRepository provides access to portal access groups.
type PortalRepository interface {
	Create(ctx context.Context, portal *models.Portal) error
	GetByID(ctx context.Context, id uint) (models.Portal, error)
	GetByName(ctx context.Context, name string) (models.Portal, error)
	GetByType(ctx context.Context, portalType string) (models.Portal, error)
	List(ctx context.Context) ([]models.Portal, error)
	ListActive(ctx context.Context) ([]models.Portal, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Portal, error)
	ListByUser(ctx context.Context, userID string) ([]models.Portal, error)
	// UpdateWithVersion persists the portal only if its version still matches
	// the loaded one, bumping it on success. Returns ErrVersionConflict when
	// a concurrent writer got there first.
	UpdateWithVersion(ctx context.Context, portal *models.Portal) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type portalRepository struct {
	db *gorm.DB
}

// NewPortalRepository constructs a GORM-backed portal repository.
func NewPortalRepository(db *gorm.DB) PortalRepository {
	return &portalRepository{db: db}
}

func (r *portalRepository) Create(ctx context.Context, portal *models.Portal) error {
	return r.db.WithContext(ctx).Create(portal).Error
}

func (r *portalRepository) GetByID(ctx context.Context, id uint) (models.Portal, error) {
	var portal models.Portal
	if err := r.db.WithContext(ctx).First(&portal, id).Error; err != nil {
		return models.Portal{}, err
	}

	return portal, nil
}

func (r *portalRepository) GetByName(ctx context.Context, name string) (models.Portal, error) {
	var portal models.Portal
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&portal).Error; err != nil {
		return models.Portal{}, err
	}

	return portal, nil
}

func (r *portalRepository) GetByType(ctx context.Context, portalType string) (models.Portal, error) {
	var portal models.Portal
	if err := r.db.WithContext(ctx).Where("portal_type = ?", portalType).Order("id ASC").First(&portal).Error; err != nil {
		return models.Portal{}, err
	}

	return portal, nil
}

func (r *portalRepository) List(ctx context.Context) ([]models.Portal, error) {
	var portals []models.Portal
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&portals).Error; err != nil {
		return nil, err
	}

	return portals, nil
}

func (r *portalRepository) ListActive(ctx context.Context) ([]models.Portal, error) {
	var portals []models.Portal
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at DESC").Find(&portals).Error; err != nil {
		return nil, err
	}

	return portals, nil
}

// Membership lists live inside a JSON column, so membership lookups scan and
// filter in process. Portal counts are small (one per role type in practice).
func (r *portalRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Portal, error) {
	return r.listFiltered(ctx, func(p models.Portal) bool {
		for _, id := range p.SectionIDs {
			if id == sectionID {
				return true
			}
		}
		return false
	})
}

func (r *portalRepository) ListByUser(ctx context.Context, userID string) ([]models.Portal, error) {
	return r.listFiltered(ctx, func(p models.Portal) bool {
		for _, id := range p.UserIDs {
			if id == userID {
				return true
			}
		}
		return false
	})
}

func (r *portalRepository) listFiltered(ctx context.Context, keep func(models.Portal) bool) ([]models.Portal, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Portal, 0, len(all))
	for _, portal := range all {
		if keep(portal) {
			result = append(result, portal)
		}
	}

	return result, nil
}

func (r *portalRepository) UpdateWithVersion(ctx context.Context, portal *models.Portal) error {
	loaded := portal.Version
	next := *portal
	next.Version = loaded + 1

	result := r.db.WithContext(ctx).Model(&models.Portal{}).
		Where("id = ? AND version = ?", portal.ID, loaded).
		Select("*").Omit("id", "created_at").
		Updates(next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	portal.Version = next.Version
	return nil
}

func (r *portalRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Portal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *portalRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Portal{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
