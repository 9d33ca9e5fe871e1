package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

// ErrNoActiveVisit indicates the student has no open clinic visit to close.
var ErrNoActiveVisit = errors.New("no active visit found")

const defaultRecentVisits = 5
const maxRecentVisits = 100

// VisitService owns clinic entry/exit records.
type VisitService interface {
	Create(ctx context.Context, req dto.VisitCreateRequest) (models.Visit, error)
	MarkExit(ctx context.Context, studentID string) (models.Visit, error)
	Recent(ctx context.Context, limit int) ([]models.Visit, error)
	ByStudent(ctx context.Context, studentID string) ([]models.Visit, error)
	ActiveIDs(ctx context.Context) ([]string, error)
	ActiveVisits(ctx context.Context) ([]models.Visit, error)
}

type visitService struct {
	repo     repository.VisitRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewVisitService constructs the visit service.
func NewVisitService(repo repository.VisitRepository, validate *validator.Validate, logger zerolog.Logger) VisitService {
	return &visitService{
		repo:     repo,
		validate: validate,
		logger:   logger.With().Str("component", "visit_service").Logger(),
	}
}

func (s *visitService) Create(ctx context.Context, req dto.VisitCreateRequest) (models.Visit, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Visit{}, err
	}

	loggedBy := req.LoggedBy
	if loggedBy == "" {
		loggedBy = "Unknown"
	}

	visit := models.Visit{
		StudentID: req.StudentID,
		Name:      req.Name,
		Symptoms:  req.Symptoms,
		EntryTime: time.Now(),
		LoggedBy:  loggedBy,
	}
	if err := s.repo.Create(ctx, &visit); err != nil {
		return models.Visit{}, err
	}

	s.logger.Info().Str("student_id", visit.StudentID).Msg("clinic entry logged")
	return visit, nil
}

func (s *visitService) MarkExit(ctx context.Context, studentID string) (models.Visit, error) {
	visit, err := s.repo.LatestOpenByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Visit{}, ErrNoActiveVisit
		}
		return models.Visit{}, err
	}

	now := time.Now()
	visit.ExitTime = &now
	if err := s.repo.Save(ctx, &visit); err != nil {
		return models.Visit{}, err
	}

	s.logger.Info().Str("student_id", studentID).Msg("clinic exit marked")
	return visit, nil
}

func (s *visitService) Recent(ctx context.Context, limit int) ([]models.Visit, error) {
	if limit <= 0 {
		limit = defaultRecentVisits
	}
	if limit > maxRecentVisits {
		limit = maxRecentVisits
	}
	return s.repo.Recent(ctx, limit)
}

func (s *visitService) ByStudent(ctx context.Context, studentID string) ([]models.Visit, error) {
	return s.repo.ByStudent(ctx, studentID)
}

// ActiveIDs returns the distinct student identifiers with an open visit,
// sorted lexicographically.
func (s *visitService) ActiveIDs(ctx context.Context) ([]string, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(open))
	ids := make([]string, 0, len(open))
	for _, v := range open {
		if _, ok := seen[v.StudentID]; ok {
			continue
		}
		seen[v.StudentID] = struct{}{}
		ids = append(ids, v.StudentID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ActiveVisits returns open visits de-duplicated by student, keeping the most
// recent entry per student.
func (s *visitService) ActiveVisits(ctx context.Context) ([]models.Visit, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(open))
	result := make([]models.Visit, 0, len(open))
	for _, v := range open {
		if _, ok := seen[v.StudentID]; ok {
			continue
		}
		seen[v.StudentID] = struct{}{}
		result = append(result, v)
	}
	return result, nil
}
