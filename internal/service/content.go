package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/program"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// UserContent is what an enrolled user sees in their current week.
type UserContent struct {
	Enrollment  model.Enrollment
	Week        int
	Assignments []model.PathAssignment
}

// ContentService resolves path assignments for a week and variant selection.
type ContentService interface {
	// ResolveAssignments returns the eligible assignments ordered by kind, week_start.
	ResolveAssignments(ctx context.Context, pathID uuid.UUID, week int, selected []uuid.UUID, kind *model.ContentKind) ([]model.PathAssignment, error)
	// ContentForUser resolves the active enrollment's current week.
	ContentForUser(ctx context.Context, userID uuid.UUID, kind *model.ContentKind) (UserContent, error)
}

type ContentServiceImpl struct {
	paths       repository.PathRepository
	enrollments repository.EnrollmentRepository
	now         Clock
}

// NewContentService constructs ContentService. A nil clock uses time.Now.
func NewContentService(paths repository.PathRepository, enrollments repository.EnrollmentRepository, now Clock) *ContentServiceImpl {
	return &ContentServiceImpl{paths: paths, enrollments: enrollments, now: clockOrNow(now)}
}

func validKind(kind *model.ContentKind) error {
	if kind == nil {
		return nil
	}
	if _, ok := model.ParseContentKind(string(*kind)); !ok {
		return fmt.Errorf("kind %q: %w", *kind, errs.ErrInvalidArgument)
	}
	return nil
}

// ResolveAssignments loads the path's assignments and filters them. An unknown
// path is ErrNotFound.
func (s *ContentServiceImpl) ResolveAssignments(ctx context.Context, pathID uuid.UUID, week int, selected []uuid.UUID, kind *model.ContentKind) ([]model.PathAssignment, error) {
	if pathID == uuid.Nil {
		return nil, fmt.Errorf("path id: %w", errs.ErrInvalidArgument)
	}
	if week < 0 {
		return nil, fmt.Errorf("week %d: %w", week, errs.ErrInvalidArgument)
	}
	if err := validKind(kind); err != nil {
		return nil, err
	}
	if _, err := s.paths.GetPath(ctx, pathID); err != nil {
		return nil, fmt.Errorf("path %s: %w", pathID, err)
	}
	as, err := s.paths.ListAssignments(ctx, pathID)
	if err != nil {
		return nil, err
	}
	return program.FilterAssignments(as, week, selected, kind), nil
}

// ContentForUser resolves the user's week from the active enrollment and the
// path ceiling. Week 0 (not started) yields no assignments.
func (s *ContentServiceImpl) ContentForUser(ctx context.Context, userID uuid.UUID, kind *model.ContentKind) (UserContent, error) {
	if userID == uuid.Nil {
		return UserContent{}, fmt.Errorf("user id: %w", errs.ErrInvalidArgument)
	}
	if err := validKind(kind); err != nil {
		return UserContent{}, err
	}
	e, err := s.enrollments.GetActive(ctx, userID)
	if err != nil {
		return UserContent{}, fmt.Errorf("active enrollment: %w", err)
	}
	p, err := s.paths.GetPath(ctx, e.PathID)
	if err != nil {
		return UserContent{}, fmt.Errorf("path %s: %w", e.PathID, err)
	}
	out := UserContent{Enrollment: *e, Week: program.ResolveWeek(e.StartDate, s.now(), p.MaxWeeks)}
	if out.Week == 0 {
		out.Assignments = []model.PathAssignment{}
		return out, nil
	}
	as, err := s.paths.ListAssignments(ctx, p.ID)
	if err != nil {
		return UserContent{}, err
	}
	out.Assignments = program.FilterAssignments(as, out.Week, e.OptionIDs(), kind)
	return out, nil
}
