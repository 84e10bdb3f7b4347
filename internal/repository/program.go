package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/model"
)

// PathRepository reads paths and their assignments.
type PathRepository interface {
	// GetPath loads a path by ID.
	GetPath(ctx context.Context, id uuid.UUID) (*model.Path, error)
	// ListAssignments returns a path's assignments ordered by kind, week_start.
	ListAssignments(ctx context.Context, pathID uuid.UUID) ([]model.PathAssignment, error)
}

// EnrollmentRepository manages user enrollments and their variant selections.
type EnrollmentRepository interface {
	// Create deactivates the user's active enrollments and inserts e with its
	// variants in one transaction.
	Create(ctx context.Context, e *model.Enrollment) error
	// Get loads an enrollment with its variants.
	Get(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	// GetActive loads the user's active enrollment with its variants.
	GetActive(ctx context.Context, userID uuid.UUID) (*model.Enrollment, error)
	// UpsertVariants writes one selection per variant type in one transaction.
	UpsertVariants(ctx context.Context, enrollmentID uuid.UUID, vs []model.VariantSelection) error
}

// ShoppingRepository manages weekly shopping lists.
type ShoppingRepository interface {
	// AddRecipe merges the recipe's ingredients into the user's list for weekStart.
	AddRecipe(ctx context.Context, userID uuid.UUID, weekStart time.Time, recipeID uuid.UUID) error
	// List returns the user's list for weekStart ordered by ingredient name.
	List(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]model.ShoppingListItem, error)
}
