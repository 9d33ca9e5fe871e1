package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

// ErrSectionNameRequired indicates a blank section name was supplied.
var ErrSectionNameRequired = errors.New("section name is required")

const sectionMapCacheKey = "campus:sections:map"

// SectionService owns section rosters.
type SectionService interface {
	Create(ctx context.Context, name string) (models.Section, error)
	AddRoll(ctx context.Context, sectionName, roll string) (models.Section, error)
	List(ctx context.Context) ([]models.Section, error)
	AsMap(ctx context.Context) (map[string][]string, error)
}

type sectionService struct {
	repo   repository.SectionRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSectionService constructs the section service. The cache client may be
// nil, in which case AsMap always hits the store.
func NewSectionService(repo repository.SectionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) SectionService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &sectionService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "section_service").Logger(),
	}
}

func (s *sectionService) Create(ctx context.Context, name string) (models.Section, error) {
	if name == "" {
		return models.Section{}, ErrSectionNameRequired
	}

	section, err := s.repo.GetOrCreate(ctx, name)
	if err != nil {
		return models.Section{}, err
	}

	s.invalidateCache(ctx)
	return section, nil
}

func (s *sectionService) AddRoll(ctx context.Context, sectionName, roll string) (models.Section, error) {
	if sectionName == "" || roll == "" {
		return models.Section{}, ErrSectionNameRequired
	}

	section, err := s.repo.GetOrCreate(ctx, sectionName)
	if err != nil {
		return models.Section{}, err
	}

	if section.AddRoll(roll) {
		if err := s.repo.Save(ctx, &section); err != nil {
			return models.Section{}, err
		}
		s.invalidateCache(ctx)
	}

	return section, nil
}

func (s *sectionService) List(ctx context.Context) ([]models.Section, error) {
	return s.repo.List(ctx)
}

// AsMap returns every section name mapped to its roster, served from cache
// when a fresh copy is available.
func (s *sectionService) AsMap(ctx context.Context) (map[string][]string, error) {
	if cached, ok := s.fetchCache(ctx); ok {
		return cached, nil
	}

	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(sections))
	for _, section := range sections {
		result[section.Name] = append([]string(nil), section.Rolls...)
	}

	s.writeCache(ctx, result)
	return result, nil
}

func (s *sectionService) fetchCache(ctx context.Context) (map[string][]string, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, err := s.cache.Get(ctx, sectionMapCacheKey).Result()
	if err != nil {
		return nil, false
	}

	var result map[string][]string
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode section map cache")
		return nil, false
	}
	return result, true
}

func (s *sectionService) writeCache(ctx context.Context, value map[string][]string) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, sectionMapCacheKey, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write section map cache")
	}
}

func (s *sectionService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, sectionMapCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate section map cache")
	}
}
