package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/program"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// ShoppingService maintains weekly shopping lists.
type ShoppingService interface {
	// AddRecipe merges a recipe's ingredients into the list of day's week.
	AddRecipe(ctx context.Context, userID uuid.UUID, day time.Time, recipeID uuid.UUID) ([]model.ShoppingListItem, error)
	// List returns the list of day's week.
	List(ctx context.Context, userID uuid.UUID, day time.Time) ([]model.ShoppingListItem, error)
}

type ShoppingServiceImpl struct {
	repo repository.ShoppingRepository
	now  Clock
}

// NewShoppingService constructs ShoppingService. A zero day means today.
func NewShoppingService(repo repository.ShoppingRepository, now Clock) *ShoppingServiceImpl {
	return &ShoppingServiceImpl{repo: repo, now: clockOrNow(now)}
}

func (s *ShoppingServiceImpl) week(day time.Time) time.Time {
	if day.IsZero() {
		day = s.now()
	}
	return program.WeekStart(day)
}

// AddRecipe imports the recipe and returns the updated list.
func (s *ShoppingServiceImpl) AddRecipe(ctx context.Context, userID uuid.UUID, day time.Time, recipeID uuid.UUID) ([]model.ShoppingListItem, error) {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return nil, fmt.Errorf("user/recipe id: %w", errs.ErrInvalidArgument)
	}
	week := s.week(day)
	if err := s.repo.AddRecipe(ctx, userID, week, recipeID); err != nil {
		return nil, fmt.Errorf("add recipe %s: %w", recipeID, err)
	}
	return s.repo.List(ctx, userID, week)
}

// List returns the user's list for the week containing day.
func (s *ShoppingServiceImpl) List(ctx context.Context, userID uuid.UUID, day time.Time) ([]model.ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id: %w", errs.ErrInvalidArgument)
	}
	return s.repo.List(ctx, userID, s.week(day))
}
