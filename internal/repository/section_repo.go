package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// SectionRepository provides access to section rosters.
type SectionRepository interface {
	GetByName(ctx context.Context, name string) (models.Section, error)
	// GetOrCreate resolves the section by name, inserting it when absent.
	// Concurrent first-time creates converge on the unique name index.
	GetOrCreate(ctx context.Context, name string) (models.Section, error)
	Save(ctx context.Context, section *models.Section) error
	List(ctx context.Context) ([]models.Section, error)
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository constructs a GORM-backed section repository.
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) GetByName(ctx context.Context, name string) (models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&section).Error; err != nil {
		return models.Section{}, err
	}

	return section, nil
}

func (r *sectionRepository) GetOrCreate(ctx context.Context, name string) (models.Section, error) {
	candidate := models.Section{Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&candidate).Error
	if err != nil {
		return models.Section{}, err
	}

	// The insert is a no-op when the name already exists, so always re-fetch.
	return r.GetByName(ctx, name)
}

func (r *sectionRepository) Save(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *sectionRepository) List(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}
