package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

var (
	// ErrPortalNotFound indicates the portal identifier resolved to nothing.
	ErrPortalNotFound = errors.New("portal not found")
	// ErrPortalConflict indicates a concurrent writer updated the portal first.
	ErrPortalConflict = errors.New("portal was modified concurrently")
)

// PortalService owns named access groups.
type PortalService interface {
	Create(ctx context.Context, req dto.PortalCreateRequest) (models.Portal, error)
	Get(ctx context.Context, id uint) (models.Portal, error)
	GetByName(ctx context.Context, name string) (models.Portal, error)
	GetByType(ctx context.Context, portalType string) (models.Portal, error)
	List(ctx context.Context) ([]models.Portal, error)
	ListActive(ctx context.Context) ([]models.Portal, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Portal, error)
	ListByUser(ctx context.Context, userID string) ([]models.Portal, error)
	Update(ctx context.Context, id uint, req dto.PortalUpdateRequest) (models.Portal, error)
	AddSection(ctx context.Context, portalID uint, sectionID string) (models.Portal, error)
	RemoveSection(ctx context.Context, portalID uint, sectionID string) (models.Portal, error)
	AddUser(ctx context.Context, portalID uint, userID string) (models.Portal, error)
	RemoveUser(ctx context.Context, portalID uint, userID string) (models.Portal, error)
	ToggleStatus(ctx context.Context, portalID uint) (models.Portal, error)
	Delete(ctx context.Context, id uint) error
}

type portalService struct {
	repo     repository.PortalRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPortalService constructs the portal service.
func NewPortalService(repo repository.PortalRepository, validate *validator.Validate, logger zerolog.Logger) PortalService {
	return &portalService{
		repo:     repo,
		validate: validate,
		logger:   logger.With().Str("component", "portal_service").Logger(),
	}
}

func (s *portalService) Create(ctx context.Context, req dto.PortalCreateRequest) (models.Portal, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Portal{}, err
	}

	portal := models.Portal{
		Name:        req.Name,
		Description: req.Description,
		PortalType:  req.PortalType,
		Active:      true,
	}
	for _, id := range req.SectionIDs {
		portal.AddSectionID(id)
	}
	for _, id := range req.UserIDs {
		portal.AddUserID(id)
	}

	if err := s.repo.Create(ctx, &portal); err != nil {
		return models.Portal{}, err
	}

	s.logger.Info().Str("name", portal.Name).Str("type", portal.PortalType).Msg("portal created")
	return portal, nil
}

func (s *portalService) Get(ctx context.Context, id uint) (models.Portal, error) {
	return s.mapNotFound(s.repo.GetByID(ctx, id))
}

func (s *portalService) GetByName(ctx context.Context, name string) (models.Portal, error) {
	return s.mapNotFound(s.repo.GetByName(ctx, name))
}

func (s *portalService) GetByType(ctx context.Context, portalType string) (models.Portal, error) {
	return s.mapNotFound(s.repo.GetByType(ctx, portalType))
}

func (s *portalService) List(ctx context.Context) ([]models.Portal, error) {
	return s.repo.List(ctx)
}

func (s *portalService) ListActive(ctx context.Context) ([]models.Portal, error) {
	return s.repo.ListActive(ctx)
}

func (s *portalService) ListBySection(ctx context.Context, sectionID string) ([]models.Portal, error) {
	return s.repo.ListBySection(ctx, sectionID)
}

func (s *portalService) ListByUser(ctx context.Context, userID string) ([]models.Portal, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *portalService) Update(ctx context.Context, id uint, req dto.PortalUpdateRequest) (models.Portal, error) {
	return s.mutate(ctx, id, func(portal *models.Portal) {
		if req.Name != nil {
			portal.Name = *req.Name
		}
		if req.Description != nil {
			portal.Description = *req.Description
		}
		if req.PortalType != nil {
			portal.PortalType = *req.PortalType
		}
	})
}

func (s *portalService) AddSection(ctx context.Context, portalID uint, sectionID string) (models.Portal, error) {
	return s.mutate(ctx, portalID, func(portal *models.Portal) {
		portal.AddSectionID(sectionID)
	})
}

func (s *portalService) RemoveSection(ctx context.Context, portalID uint, sectionID string) (models.Portal, error) {
	return s.mutate(ctx, portalID, func(portal *models.Portal) {
		portal.RemoveSectionID(sectionID)
	})
}

func (s *portalService) AddUser(ctx context.Context, portalID uint, userID string) (models.Portal, error) {
	return s.mutate(ctx, portalID, func(portal *models.Portal) {
		portal.AddUserID(userID)
	})
}

func (s *portalService) RemoveUser(ctx context.Context, portalID uint, userID string) (models.Portal, error) {
	return s.mutate(ctx, portalID, func(portal *models.Portal) {
		portal.RemoveUserID(userID)
	})
}

func (s *portalService) ToggleStatus(ctx context.Context, portalID uint) (models.Portal, error) {
	return s.mutate(ctx, portalID, func(portal *models.Portal) {
		portal.Active = !portal.Active
	})
}

func (s *portalService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPortalNotFound
	}
	return err
}

// mutate loads the portal, applies the change and saves it under the version
// guard. UpdatedAt is bumped on every mutating call.
func (s *portalService) mutate(ctx context.Context, id uint, apply func(*models.Portal)) (models.Portal, error) {
	portal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Portal{}, ErrPortalNotFound
		}
		return models.Portal{}, err
	}

	apply(&portal)
	portal.UpdatedAt = time.Now()

	if err := s.repo.UpdateWithVersion(ctx, &portal); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return models.Portal{}, ErrPortalConflict
		}
		return models.Portal{}, err
	}

	return portal, nil
}

func (s *portalService) mapNotFound(portal models.Portal, err error) (models.Portal, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Portal{}, ErrPortalNotFound
		}
		return models.Portal{}, err
	}
	return portal, nil
}
