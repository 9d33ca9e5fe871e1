package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/observability"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

var (
	// ErrLetterNotFound indicates the letter identifier resolved to nothing.
	ErrLetterNotFound = errors.New("letter not found")
	// ErrLetterConflict indicates a concurrent writer updated the letter first.
	ErrLetterConflict = errors.New("letter was modified concurrently")
	// ErrUnsupportedAttachment indicates the uploaded file type is not accepted.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
	// ErrUploaderUnavailable indicates no file storage backend is configured.
	ErrUploaderUnavailable = errors.New("file uploads are not configured")
)

// FileUploader stores an attachment and returns a public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

// LetterService owns the letter lifecycle.
type LetterService interface {
	Create(ctx context.Context, req dto.LetterCreateRequest) (models.Letter, error)
	Get(ctx context.Context, id uint) (models.Letter, error)
	GetByNumber(ctx context.Context, letterNumber string) (models.Letter, error)
	List(ctx context.Context) ([]models.Letter, error)
	ListByUser(ctx context.Context, userID string) ([]models.Letter, error)
	ListByPortal(ctx context.Context, portalID string) ([]models.Letter, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Letter, error)
	ListByStatus(ctx context.Context, status string) ([]models.Letter, error)
	ListByType(ctx context.Context, letterType string) ([]models.Letter, error)
	ListByUserInPortal(ctx context.Context, userID, portalID string) ([]models.Letter, error)
	ListByIssuer(ctx context.Context, issuerUserID string) ([]models.Letter, error)
	Issue(ctx context.Context, id uint, approverUserID string) (models.Letter, error)
	Acknowledge(ctx context.Context, id uint) (models.Letter, error)
	Update(ctx context.Context, id uint, req dto.LetterUpdateRequest) (models.Letter, error)
	Attach(ctx context.Context, id uint, filename string, content []byte) (models.Letter, error)
	ExpireOld(ctx context.Context) (dto.SweepResult, error)
	Delete(ctx context.Context, id uint) error
}

type letterService struct {
	repo      repository.LetterRepository
	uploader  FileUploader
	events    EventPublisher
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewLetterService constructs the letter service. The uploader may be nil when
// attachment storage is not configured.
func NewLetterService(repo repository.LetterRepository, uploader FileUploader, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) LetterService {
	return &letterService{
		repo:      repo,
		uploader:  uploader,
		events:    events,
		validate:  validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "letter_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/campus-admin-api/internal/service/letter"),
	}
}

func (s *letterService) Create(ctx context.Context, req dto.LetterCreateRequest) (models.Letter, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Letter{}, err
	}

	letterNumber := strings.TrimSpace(req.LetterNumber)
	if letterNumber == "" {
		letterNumber = generateLetterNumber()
	}

	letter := models.Letter{
		UserID:       req.UserID,
		PortalID:     req.PortalID,
		SectionID:    req.SectionID,
		LetterNumber: letterNumber,
		LetterType:   req.LetterType,
		Title:        strings.TrimSpace(req.Title),
		Content:      s.sanitizer.Sanitize(req.Content),
		Status:       models.LetterStatusDraft,
		ExpiresAt:    req.ExpiresAt,
		IssuerUserID: req.IssuerUserID,
		Remarks:      req.Remarks,
	}
	if err := s.repo.Create(ctx, &letter); err != nil {
		return models.Letter{}, err
	}

	s.logger.Info().Str("letter_number", letter.LetterNumber).Str("letter_type", letter.LetterType).Msg("letter drafted")
	return letter, nil
}

func (s *letterService) Get(ctx context.Context, id uint) (models.Letter, error) {
	return s.mapNotFound(s.repo.GetByID(ctx, id))
}

func (s *letterService) GetByNumber(ctx context.Context, letterNumber string) (models.Letter, error) {
	return s.mapNotFound(s.repo.GetByLetterNumber(ctx, letterNumber))
}

func (s *letterService) List(ctx context.Context) ([]models.Letter, error) {
	return s.repo.List(ctx)
}

func (s *letterService) ListByUser(ctx context.Context, userID string) ([]models.Letter, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *letterService) ListByPortal(ctx context.Context, portalID string) ([]models.Letter, error) {
	return s.repo.ListByPortal(ctx, portalID)
}

func (s *letterService) ListBySection(ctx context.Context, sectionID string) ([]models.Letter, error) {
	return s.repo.ListBySection(ctx, sectionID)
}

func (s *letterService) ListByStatus(ctx context.Context, status string) ([]models.Letter, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *letterService) ListByType(ctx context.Context, letterType string) ([]models.Letter, error) {
	return s.repo.ListByType(ctx, letterType)
}

func (s *letterService) ListByUserInPortal(ctx context.Context, userID, portalID string) ([]models.Letter, error) {
	return s.repo.ListByUserAndPortal(ctx, userID, portalID)
}

func (s *letterService) ListByIssuer(ctx context.Context, issuerUserID string) ([]models.Letter, error) {
	return s.repo.ListByIssuer(ctx, issuerUserID)
}

func (s *letterService) Issue(ctx context.Context, id uint, approverUserID string) (models.Letter, error) {
	letter, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Letter{}, s.wrapNotFound(err)
	}

	now := time.Now()
	return s.transition(ctx, letter, models.LetterStatusIssued, func(l *models.Letter) {
		l.IssuedAt = now
		if approverUserID != "" {
			l.ApproverUserID = approverUserID
		}
	})
}

func (s *letterService) Acknowledge(ctx context.Context, id uint) (models.Letter, error) {
	letter, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Letter{}, s.wrapNotFound(err)
	}

	now := time.Now()
	return s.transition(ctx, letter, models.LetterStatusAcknowledged, func(l *models.Letter) {
		l.AcknowledgedAt = &now
	})
}

func (s *letterService) Update(ctx context.Context, id uint, req dto.LetterUpdateRequest) (models.Letter, error) {
	letter, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Letter{}, s.wrapNotFound(err)
	}

	if req.Status != nil && *req.Status != letter.Status {
		return s.transition(ctx, letter, *req.Status, func(l *models.Letter) {
			s.applyLetterUpdate(l, req)
		})
	}

	s.applyLetterUpdate(&letter, req)
	if err := s.save(ctx, &letter); err != nil {
		return models.Letter{}, err
	}
	return letter, nil
}

// Attach uploads the file and stores its URL on the letter. The content is
// sniffed, not trusted by extension.
func (s *letterService) Attach(ctx context.Context, id uint, filename string, content []byte) (models.Letter, error) {
	if s.uploader == nil {
		return models.Letter{}, ErrUploaderUnavailable
	}

	letter, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Letter{}, s.wrapNotFound(err)
	}

	detected := mimetype.Detect(content)
	if !allowedAttachmentTypes[detected.String()] {
		return models.Letter{}, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, detected.String())
	}

	url, err := s.uploader.Upload(ctx, filename, bytes.NewReader(content))
	if err != nil {
		return models.Letter{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	letter.AttachmentURL = url
	if err := s.save(ctx, &letter); err != nil {
		return models.Letter{}, err
	}

	s.logger.Info().Str("letter_number", letter.LetterNumber).Str("mime", detected.String()).Msg("attachment stored")
	return letter, nil
}

// ExpireOld sweeps letters whose expiry has passed, paging on ascending id.
func (s *letterService) ExpireOld(ctx context.Context) (dto.SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "letter.expire_old")
	defer span.End()

	result := dto.SweepResult{}
	now := time.Now()
	cursor := uint(0)

	for {
		batch, err := s.repo.ListExpiredCandidates(ctx, now, cursor, sweepBatchSize)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		for _, letter := range batch {
			cursor = letter.ID

			if !models.LetterCanTransition(letter.Status, models.LetterStatusExpired) {
				result.Skipped++
				continue
			}

			if _, err := s.transition(ctx, letter, models.LetterStatusExpired, nil); err != nil {
				result.Failed++
				s.logger.Error().Err(err).Uint("id", letter.ID).Msg("failed to expire letter")
				continue
			}
			result.Expired++
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.expired", result.Expired),
		attribute.Int("sweep.skipped", result.Skipped),
		attribute.Int("sweep.failed", result.Failed),
	)
	observability.SweepRecords().WithLabelValues("letter", "expired").Add(float64(result.Expired))
	observability.SweepRecords().WithLabelValues("letter", "failed").Add(float64(result.Failed))

	s.logger.Info().
		Int("expired", result.Expired).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("letter expiry sweep completed")
	return result, nil
}

func (s *letterService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrLetterNotFound
	}
	return err
}

func (s *letterService) transition(ctx context.Context, letter models.Letter, to string, apply func(*models.Letter)) (models.Letter, error) {
	if !models.LetterStatusValid(to) {
		return models.Letter{}, fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}
	if !models.LetterCanTransition(letter.Status, to) {
		return models.Letter{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, letter.Status, to)
	}

	from := letter.Status
	letter.Status = to
	if apply != nil {
		apply(&letter)
	}

	if err := s.save(ctx, &letter); err != nil {
		return models.Letter{}, err
	}

	s.events.PublishStatusChange(ctx, StatusChangeEvent{
		Kind:       "letter",
		RecordID:   letter.ID,
		Number:     letter.LetterNumber,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    letter.ApproverUserID,
	})
	return letter, nil
}

func (s *letterService) save(ctx context.Context, letter *models.Letter) error {
	err := s.repo.UpdateWithVersion(ctx, letter)
	if errors.Is(err, repository.ErrVersionConflict) {
		return ErrLetterConflict
	}
	return err
}

func (s *letterService) applyLetterUpdate(l *models.Letter, req dto.LetterUpdateRequest) {
	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		l.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.ExpiresAt != nil {
		l.ExpiresAt = req.ExpiresAt
	}
	if req.AttachmentURL != nil {
		l.AttachmentURL = *req.AttachmentURL
	}
	if req.Remarks != nil {
		l.Remarks = *req.Remarks
	}
}

func (s *letterService) mapNotFound(letter models.Letter, err error) (models.Letter, error) {
	if err != nil {
		return models.Letter{}, s.wrapNotFound(err)
	}
	return letter, nil
}

func (s *letterService) wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrLetterNotFound
	}
	return err
}

func generateLetterNumber() string {
	return "LT-" + strings.ToUpper(uuid.NewString()[:8])
}
