package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/program"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// EnrollmentService manages path enrollments and their variant selections.
type EnrollmentService interface {
	// CreateEnrollment deactivates the user's enrollments and creates an active one.
	CreateEnrollment(ctx context.Context, userID, pathID uuid.UUID, start time.Time, variants []model.VariantSelection) (*model.Enrollment, error)
	// UpdateEnrollmentVariants upserts selections while the program has not started.
	UpdateEnrollmentVariants(ctx context.Context, enrollmentID uuid.UUID, updates []model.VariantSelection) (*model.Enrollment, error)
	// GetEnrollment loads an enrollment with its variants.
	GetEnrollment(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	// CanUpdateVariants reports whether the clock is strictly before start.
	CanUpdateVariants(start time.Time) bool
}

type EnrollmentServiceImpl struct {
	repo repository.EnrollmentRepository
	now  Clock
	log  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo repository.EnrollmentRepository, now Clock, log *zap.Logger) *EnrollmentServiceImpl {
	return &EnrollmentServiceImpl{repo: repo, now: clockOrNow(now), log: loggerOrNop(log)}
}

// validateSelections rejects empty ids and a variant type chosen twice.
func validateSelections(vs []model.VariantSelection) error {
	seen := make(map[uuid.UUID]struct{}, len(vs))
	for i, v := range vs {
		if v.VariantTypeID == uuid.Nil || v.VariantOptionID == uuid.Nil {
			return fmt.Errorf("variant[%d]: %w", i, errs.ErrInvalidArgument)
		}
		if _, dup := seen[v.VariantTypeID]; dup {
			return fmt.Errorf("variant[%d] duplicate type %s: %w", i, v.VariantTypeID, errs.ErrInvalidArgument)
		}
		seen[v.VariantTypeID] = struct{}{}
	}
	return nil
}

// CreateEnrollment stores a new active enrollment. The start date is kept as a UTC calendar day.
func (s *EnrollmentServiceImpl) CreateEnrollment(ctx context.Context, userID, pathID uuid.UUID, start time.Time, variants []model.VariantSelection) (*model.Enrollment, error) {
	if userID == uuid.Nil || pathID == uuid.Nil {
		return nil, fmt.Errorf("user/path id: %w", errs.ErrInvalidArgument)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("start date: %w", errs.ErrInvalidArgument)
	}
	if err := validateSelections(variants); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	e := &model.Enrollment{
		ID:        id,
		UserID:    userID,
		PathID:    pathID,
		StartDate: program.CivilDay(start),
		Variants:  append([]model.VariantSelection(nil), variants...),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("enrollment created",
		zap.String("enrollment_id", e.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("path_id", pathID.String()))
	return e, nil
}

// CanUpdateVariants reports whether variants are still editable for start.
func (s *EnrollmentServiceImpl) CanUpdateVariants(start time.Time) bool {
	return program.CanUpdateVariants(start, s.now())
}

// UpdateEnrollmentVariants fails with ErrNotFound for unknown enrollments and
// ErrVariantsLocked once the program started. No write happens on failure.
func (s *EnrollmentServiceImpl) UpdateEnrollmentVariants(ctx context.Context, enrollmentID uuid.UUID, updates []model.VariantSelection) (*model.Enrollment, error) {
	if enrollmentID == uuid.Nil {
		return nil, fmt.Errorf("enrollment id: %w", errs.ErrInvalidArgument)
	}
	if err := validateSelections(updates); err != nil {
		return nil, err
	}
	e, err := s.repo.Get(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("enrollment %s: %w", enrollmentID, err)
	}
	if !s.CanUpdateVariants(e.StartDate) {
		return nil, fmt.Errorf("enrollment %s started %s: %w", enrollmentID, e.StartDate.Format(time.DateOnly), errs.ErrVariantsLocked)
	}
	if len(updates) == 0 {
		return e, nil
	}
	if err := s.repo.UpsertVariants(ctx, enrollmentID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, enrollmentID)
}

// GetEnrollment loads an enrollment by id.
func (s *EnrollmentServiceImpl) GetEnrollment(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("enrollment id: %w", errs.ErrInvalidArgument)
	}
	return s.repo.Get(ctx, id)
}
