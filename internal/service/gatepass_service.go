package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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
	// ErrGatePassNotFound indicates the gate pass identifier resolved to nothing.
	ErrGatePassNotFound = errors.New("gate pass not found")
	// ErrInvalidTransition indicates the requested status change is not allowed
	// from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidStatus indicates an unknown lifecycle status value.
	ErrInvalidStatus = errors.New("unknown status")
	// ErrGatePassConflict indicates a concurrent writer updated the pass first.
	ErrGatePassConflict = errors.New("gate pass was modified concurrently")
)

const sweepBatchSize = 200

// GatePassService owns the gate pass lifecycle.
type GatePassService interface {
	Create(ctx context.Context, req dto.GatePassCreateRequest) (models.GatePass, error)
	Get(ctx context.Context, id uint) (models.GatePass, error)
	GetByNumber(ctx context.Context, passNumber string) (models.GatePass, error)
	List(ctx context.Context) ([]models.GatePass, error)
	ListByUser(ctx context.Context, userID string) ([]models.GatePass, error)
	ListByPortal(ctx context.Context, portalID string) ([]models.GatePass, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.GatePass, error)
	ListByStatus(ctx context.Context, status string) ([]models.GatePass, error)
	ListByUserInPortal(ctx context.Context, userID, portalID string) ([]models.GatePass, error)
	ListActive(ctx context.Context) ([]models.GatePass, error)
	ListPendingForHOD(ctx context.Context, hodUserID string) ([]models.GatePass, error)
	Approve(ctx context.Context, id uint, hodUserID string) (models.GatePass, error)
	Decline(ctx context.Context, id uint, reason, hodUserID string) (models.GatePass, error)
	MarkUsed(ctx context.Context, id uint) (models.GatePass, error)
	Revoke(ctx context.Context, id uint, remarks string) (models.GatePass, error)
	Update(ctx context.Context, id uint, req dto.GatePassUpdateRequest) (models.GatePass, error)
	ExpireOld(ctx context.Context) (dto.SweepResult, error)
	CleanupOld(ctx context.Context) (int64, error)
	CleanupAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type gatePassService struct {
	repo     repository.GatePassRepository
	sections repository.SectionRepository
	events   EventPublisher
	validate *validator.Validate
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewGatePassService constructs the gate pass service.
func NewGatePassService(repo repository.GatePassRepository, sections repository.SectionRepository, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) GatePassService {
	return &gatePassService{
		repo:     repo,
		sections: sections,
		events:   events,
		validate: validate,
		logger:   logger.With().Str("component", "gatepass_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/campus-admin-api/internal/service/gatepass"),
	}
}

func (s *gatePassService) Create(ctx context.Context, req dto.GatePassCreateRequest) (models.GatePass, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.GatePass{}, err
	}

	status := req.Status
	if status == "" {
		status = models.GatePassStatusPending
	}
	if !models.GatePassStatusValid(status) {
		return models.GatePass{}, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	passNumber := strings.TrimSpace(req.PassNumber)
	if passNumber == "" {
		passNumber = generatePassNumber()
	}

	pass := models.GatePass{
		UserID:       req.UserID,
		PortalID:     req.PortalID,
		SectionID:    req.SectionID,
		PassNumber:   passNumber,
		Status:       status,
		IssuedAt:     time.Now(),
		ExpiresAt:    req.ExpiresAt,
		IssuerUserID: req.IssuerUserID,
		Remarks:      req.Remarks,
		HODSectionID: req.HODSectionID,
		HODUserID:    req.HODUserID,
		StudentName:  req.StudentName,
		StudentRoll:  req.StudentRoll,
		StudentEmail: req.StudentEmail,
		Reason:       req.Reason,
		TimeOut:      req.TimeOut,
		StudentYear:  req.StudentYear,
		Department:   req.Department,
	}
	if err := s.repo.Create(ctx, &pass); err != nil {
		return models.GatePass{}, err
	}

	s.logger.Info().Str("pass_number", pass.PassNumber).Str("student_roll", pass.StudentRoll).Msg("gate pass created")
	return pass, nil
}

func (s *gatePassService) Get(ctx context.Context, id uint) (models.GatePass, error) {
	return s.mapNotFound(s.repo.GetByID(ctx, id))
}

func (s *gatePassService) GetByNumber(ctx context.Context, passNumber string) (models.GatePass, error) {
	return s.mapNotFound(s.repo.GetByPassNumber(ctx, passNumber))
}

func (s *gatePassService) List(ctx context.Context) ([]models.GatePass, error) {
	return s.repo.List(ctx)
}

func (s *gatePassService) ListByUser(ctx context.Context, userID string) ([]models.GatePass, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *gatePassService) ListByPortal(ctx context.Context, portalID string) ([]models.GatePass, error) {
	return s.repo.ListByPortal(ctx, portalID)
}

func (s *gatePassService) ListBySection(ctx context.Context, sectionID string) ([]models.GatePass, error) {
	return s.repo.ListBySection(ctx, sectionID)
}

func (s *gatePassService) ListByStatus(ctx context.Context, status string) ([]models.GatePass, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *gatePassService) ListByUserInPortal(ctx context.Context, userID, portalID string) ([]models.GatePass, error) {
	return s.repo.ListByUserAndPortal(ctx, userID, portalID)
}

func (s *gatePassService) ListActive(ctx context.Context) ([]models.GatePass, error) {
	return s.repo.ListActive(ctx, time.Now())
}

func (s *gatePassService) ListPendingForHOD(ctx context.Context, hodUserID string) ([]models.GatePass, error) {
	return s.repo.ListPendingForHOD(ctx, hodUserID)
}

// Approve moves the pass to approved. A previously approved pass for the same
// roll is auto-declined so only one approval per student stands, and the
// student roll is enrolled into the HOD section roster.
func (s *gatePassService) Approve(ctx context.Context, id uint, hodUserID string) (models.GatePass, error) {
	ctx, span := s.tracer.Start(ctx, "gatepass.approve")
	defer span.End()
	span.SetAttributes(attribute.Int64("gatepass.id", int64(id)))

	pass, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}

	// only supersede once this pass is known to be approvable; a rejected
	// approve must leave the standing approval untouched
	if !models.GatePassCanTransition(pass.Status, models.GatePassStatusApproved) {
		return models.GatePass{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, pass.Status, models.GatePassStatusApproved)
	}

	s.supersedePriorApproval(ctx, pass)

	now := time.Now()
	updated, err := s.transition(ctx, pass, models.GatePassStatusApproved, func(gp *models.GatePass) {
		gp.ApprovedAt = &now
		if hodUserID != "" {
			gp.HODUserID = hodUserID
		}
	})
	if err != nil {
		return models.GatePass{}, err
	}

	s.enrollRollOnApproval(ctx, updated)
	return updated, nil
}

func (s *gatePassService) Decline(ctx context.Context, id uint, reason, hodUserID string) (models.GatePass, error) {
	pass, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}

	now := time.Now()
	return s.transition(ctx, pass, models.GatePassStatusDeclined, func(gp *models.GatePass) {
		gp.DeclinedAt = &now
		if reason != "" {
			gp.DeclineReason = reason
		}
		if hodUserID != "" {
			gp.HODUserID = hodUserID
		}
	})
}

func (s *gatePassService) MarkUsed(ctx context.Context, id uint) (models.GatePass, error) {
	pass, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}

	now := time.Now()
	return s.transition(ctx, pass, models.GatePassStatusUsed, func(gp *models.GatePass) {
		gp.UsedAt = &now
	})
}

func (s *gatePassService) Revoke(ctx context.Context, id uint, remarks string) (models.GatePass, error) {
	pass, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}

	return s.transition(ctx, pass, models.GatePassStatusRevoked, func(gp *models.GatePass) {
		if remarks != "" {
			gp.Remarks = remarks
		}
	})
}

func (s *gatePassService) Update(ctx context.Context, id uint, req dto.GatePassUpdateRequest) (models.GatePass, error) {
	pass, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}

	if req.Status != nil && *req.Status != pass.Status {
		return s.transition(ctx, pass, *req.Status, func(gp *models.GatePass) {
			applyGatePassUpdate(gp, req)
		})
	}

	applyGatePassUpdate(&pass, req)
	if err := s.save(ctx, &pass); err != nil {
		return models.GatePass{}, err
	}
	return pass, nil
}

// ExpireOld sweeps passes whose expiry has passed and are not yet expired.
// The sweep pages on ascending id so a re-run resumes cleanly, and it reports
// per-record failures instead of aborting.
func (s *gatePassService) ExpireOld(ctx context.Context) (dto.SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "gatepass.expire_old")
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

		for _, pass := range batch {
			cursor = pass.ID

			if !models.GatePassCanTransition(pass.Status, models.GatePassStatusExpired) {
				result.Skipped++
				continue
			}

			if _, err := s.transition(ctx, pass, models.GatePassStatusExpired, nil); err != nil {
				result.Failed++
				s.logger.Error().Err(err).Uint("id", pass.ID).Msg("failed to expire gate pass")
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
	observability.SweepRecords().WithLabelValues("gatepass", "expired").Add(float64(result.Expired))
	observability.SweepRecords().WithLabelValues("gatepass", "failed").Add(float64(result.Failed))

	s.logger.Info().
		Int("expired", result.Expired).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("gate pass expiry sweep completed")
	return result, nil
}

func (s *gatePassService) CleanupOld(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteByPassNumberPrefix(ctx, "GP-")
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("removed", removed).Msg("legacy gate passes removed")
	return removed, nil
}

func (s *gatePassService) CleanupAll(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn().Int64("removed", removed).Msg("all gate passes removed")
	return removed, nil
}

func (s *gatePassService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGatePassNotFound
	}
	return err
}

// transition validates the status change against the lifecycle table, applies
// extra mutations, saves under the version guard and publishes the event.
func (s *gatePassService) transition(ctx context.Context, pass models.GatePass, to string, apply func(*models.GatePass)) (models.GatePass, error) {
	if !models.GatePassStatusValid(to) {
		return models.GatePass{}, fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}
	if !models.GatePassCanTransition(pass.Status, to) {
		return models.GatePass{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, pass.Status, to)
	}

	from := pass.Status
	pass.Status = to
	if apply != nil {
		apply(&pass)
	}

	if err := s.save(ctx, &pass); err != nil {
		return models.GatePass{}, err
	}

	s.events.PublishStatusChange(ctx, StatusChangeEvent{
		Kind:       "gatepass",
		RecordID:   pass.ID,
		Number:     pass.PassNumber,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    pass.HODUserID,
	})
	return pass, nil
}

func (s *gatePassService) save(ctx context.Context, pass *models.GatePass) error {
	err := s.repo.UpdateWithVersion(ctx, pass)
	if errors.Is(err, repository.ErrVersionConflict) {
		return ErrGatePassConflict
	}
	return err
}

// supersedePriorApproval declines any other approved pass for the same roll
// so a newer approval can proceed. Failures are logged, not fatal.
func (s *gatePassService) supersedePriorApproval(ctx context.Context, pass models.GatePass) {
	if pass.StudentRoll == "" {
		return
	}

	prior, err := s.repo.FirstApprovedForRoll(ctx, pass.StudentRoll, pass.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("student_roll", pass.StudentRoll).Msg("failed to look up prior approvals")
		}
		return
	}

	now := time.Now()
	if _, err := s.transition(ctx, prior, models.GatePassStatusDeclined, func(gp *models.GatePass) {
		gp.DeclinedAt = &now
		gp.DeclineReason = "Superseded by a newer approval"
	}); err != nil {
		s.logger.Warn().Err(err).Uint("id", prior.ID).Msg("failed to supersede prior approval")
	}
}

// enrollRollOnApproval adds the student roll to the HOD section roster so the
// roster stays in step with approvals. Best effort.
func (s *gatePassService) enrollRollOnApproval(ctx context.Context, pass models.GatePass) {
	sectionName := pass.HODSectionID
	if sectionName == "" {
		sectionName = pass.Department
	}
	if pass.StudentRoll == "" || sectionName == "" {
		return
	}

	section, err := s.sections.GetOrCreate(ctx, sectionName)
	if err != nil {
		s.logger.Warn().Err(err).Str("section", sectionName).Msg("failed to resolve section on approval")
		return
	}
	if section.AddRoll(pass.StudentRoll) {
		if err := s.sections.Save(ctx, &section); err != nil {
			s.logger.Warn().Err(err).Str("section", sectionName).Msg("failed to enroll roll on approval")
		}
	}
}

func (s *gatePassService) mapNotFound(pass models.GatePass, err error) (models.GatePass, error) {
	if err != nil {
		return models.GatePass{}, s.wrapNotFound(err)
	}
	return pass, nil
}

func (s *gatePassService) wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGatePassNotFound
	}
	return err
}

func applyGatePassUpdate(gp *models.GatePass, req dto.GatePassUpdateRequest) {
	if req.ExpiresAt != nil {
		gp.ExpiresAt = req.ExpiresAt
	}
	if req.Remarks != nil {
		gp.Remarks = *req.Remarks
	}
}

func generatePassNumber() string {
	return "CP-" + strings.ToUpper(uuid.NewString()[:8])
}
