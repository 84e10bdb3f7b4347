package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// NutritionCache keeps recipe nutrition snapshots in sync with ingredient data.
type NutritionCache interface {
	// RecomputeRecipe rebuilds and stores the snapshot of one recipe.
	RecomputeRecipe(ctx context.Context, recipeID uuid.UUID) (model.NutritionSnapshot, error)
	// RecomputeByIngredient recomputes every recipe using the ingredient and
	// returns the recipes that were written. Failures are joined.
	RecomputeByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error)
	// UpdateIngredient stores the ingredient and refreshes dependent recipes.
	UpdateIngredient(ctx context.Context, ing *model.Ingredient) ([]uuid.UUID, error)
	// DeleteIngredient removes the ingredient and refreshes recipes that used it.
	DeleteIngredient(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	// SetRecipeIngredients replaces a recipe's ingredient list and recomputes it.
	SetRecipeIngredients(ctx context.Context, recipeID uuid.UUID, items []model.RecipeIngredient) (model.NutritionSnapshot, error)
	// GetSnapshot returns the stored snapshot.
	GetSnapshot(ctx context.Context, recipeID uuid.UUID) (*model.NutritionSnapshot, error)
}

type NutritionCacheImpl struct {
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	now         Clock
	log         *zap.Logger
}

// NewNutritionCache constructs the cache service. Nil clock and logger fall back to defaults.
func NewNutritionCache(ingredients repository.IngredientRepository, recipes repository.RecipeRepository, now Clock, log *zap.Logger) *NutritionCacheImpl {
	return &NutritionCacheImpl{ingredients: ingredients, recipes: recipes, now: clockOrNow(now), log: loggerOrNop(log)}
}

// Snapshot builds a rounded snapshot from unrounded totals.
func Snapshot(recipeID uuid.UUID, t nutrition.Totals, at Clock) model.NutritionSnapshot {
	r := t.Rounded()
	return model.NutritionSnapshot{
		RecipeID:                recipeID,
		Nutrients:               r.Nutrients,
		TotalGrams:              r.TotalGrams,
		WarningCount:            r.WarningCount,
		HasEstimatedConversions: r.HasEstimatedConversions,
		ComputedAt:              at().UTC(),
	}
}

// RecomputeRecipe reads the joined ingredient lines, aggregates and writes
// the rounded snapshot in one statement. Unknown recipes yield ErrNotFound.
func (s *NutritionCacheImpl) RecomputeRecipe(ctx context.Context, recipeID uuid.UUID) (model.NutritionSnapshot, error) {
	if recipeID == uuid.Nil {
		return model.NutritionSnapshot{}, fmt.Errorf("recipe id: %w", errs.ErrInvalidArgument)
	}
	lines, err := s.recipes.ListIngredientLines(ctx, recipeID)
	if err != nil {
		return model.NutritionSnapshot{}, fmt.Errorf("recompute %s: %w", recipeID, err)
	}
	snap := Snapshot(recipeID, nutrition.ComputeTotals(model.Entries(lines)), s.now)
	if err := s.recipes.SaveNutrition(ctx, snap); err != nil {
		return model.NutritionSnapshot{}, fmt.Errorf("recompute %s: %w", recipeID, err)
	}
	s.log.Debug("recipe nutrition recomputed",
		zap.String("recipe_id", recipeID.String()),
		zap.Float64("calories", snap.Calories),
		zap.Int("warnings", snap.WarningCount),
		zap.Bool("estimated", snap.HasEstimatedConversions))
	return snap, nil
}

func (s *NutritionCacheImpl) recomputeAll(ctx context.Context, recipeIDs []uuid.UUID) ([]uuid.UUID, error) {
	done := make([]uuid.UUID, 0, len(recipeIDs))
	var failed []error
	for _, id := range recipeIDs {
		if _, err := s.RecomputeRecipe(ctx, id); err != nil {
			s.log.Warn("recipe recompute failed", zap.String("recipe_id", id.String()), zap.Error(err))
			failed = append(failed, err)
			continue
		}
		done = append(done, id)
	}
	return done, errors.Join(failed...)
}

// RecomputeByIngredient recomputes the recipes referencing the ingredient sequentially.
func (s *NutritionCacheImpl) RecomputeByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	if ingredientID == uuid.Nil {
		return nil, fmt.Errorf("ingredient id: %w", errs.ErrInvalidArgument)
	}
	ids, err := s.ingredients.RecipeIDsByIngredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	return s.recomputeAll(ctx, ids)
}

func validNonNegative(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%s: %w", name, errs.ErrInvalidArgument)
	}
	return nil
}

func validateIngredient(ing *model.Ingredient) error {
	if ing == nil || ing.ID == uuid.Nil {
		return fmt.Errorf("ingredient id: %w", errs.ErrInvalidArgument)
	}
	if ing.Name == "" {
		return fmt.Errorf("ingredient name: %w", errs.ErrInvalidArgument)
	}
	n, o := ing.Nutrition, ing.Conversions
	fields := []struct {
		name string
		v    *float64
	}{
		{"calories", n.Calories}, {"protein", n.Protein}, {"carbs", n.Carbs}, {"fat", n.Fat},
		{"fiber", n.Fiber}, {"sugar", n.Sugar}, {"salt", n.Salt},
		{"density", o.DensityGPerML}, {"grams_per_piece", o.GramsPerPiece}, {"grams_per_hand", o.GramsPerHand},
		{"grams_per_teaspoon", o.GramsPerTeaspoon}, {"grams_per_tablespoon", o.GramsPerTablespoon},
		{"grams_per_pinch", o.GramsPerPinch}, {"grams_per_cup", o.GramsPerCup}, {"grams_per_slice", o.GramsPerSlice},
		{"grams_per_bunch", o.GramsPerBunch}, {"grams_per_can", o.GramsPerCan},
	}
	for _, f := range fields {
		if err := validNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// UpdateIngredient writes the ingredient, then recomputes every recipe using it.
func (s *NutritionCacheImpl) UpdateIngredient(ctx context.Context, ing *model.Ingredient) ([]uuid.UUID, error) {
	if err := validateIngredient(ing); err != nil {
		return nil, err
	}
	if err := s.ingredients.UpdateIngredient(ctx, ing); err != nil {
		return nil, fmt.Errorf("update ingredient %s: %w", ing.ID, err)
	}
	return s.RecomputeByIngredient(ctx, ing.ID)
}

// DeleteIngredient removes the ingredient with its recipe links and recomputes
// the recipes that referenced it.
func (s *NutritionCacheImpl) DeleteIngredient(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("ingredient id: %w", errs.ErrInvalidArgument)
	}
	affected, err := s.ingredients.DeleteIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recomputeAll(ctx, affected)
}

// SetRecipeIngredients validates and stores the list, then recomputes the recipe.
// Missing item ids are generated; positions follow slice order.
func (s *NutritionCacheImpl) SetRecipeIngredients(ctx context.Context, recipeID uuid.UUID, items []model.RecipeIngredient) (model.NutritionSnapshot, error) {
	if recipeID == uuid.Nil {
		return model.NutritionSnapshot{}, fmt.Errorf("recipe id: %w", errs.ErrInvalidArgument)
	}
	out := make([]model.RecipeIngredient, len(items))
	for i, it := range items {
		if it.IngredientID == uuid.Nil {
			return model.NutritionSnapshot{}, fmt.Errorf("item[%d] ingredient id: %w", i, errs.ErrInvalidArgument)
		}
		if !(it.Amount > 0) || math.IsInf(it.Amount, 0) {
			return model.NutritionSnapshot{}, fmt.Errorf("item[%d] amount: %w", i, errs.ErrInvalidArgument)
		}
		if nutrition.NormalizeUnit(it.Unit) == "" {
			return model.NutritionSnapshot{}, fmt.Errorf("item[%d] unit: %w", i, errs.ErrInvalidArgument)
		}
		if it.ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return model.NutritionSnapshot{}, err
			}
			it.ID = id
		}
		it.RecipeID = recipeID
		it.Position = i
		out[i] = it
	}
	if err := s.recipes.ReplaceIngredients(ctx, recipeID, out); err != nil {
		return model.NutritionSnapshot{}, fmt.Errorf("set ingredients %s: %w", recipeID, err)
	}
	return s.RecomputeRecipe(ctx, recipeID)
}

// GetSnapshot returns the stored snapshot of a recipe.
func (s *NutritionCacheImpl) GetSnapshot(ctx context.Context, recipeID uuid.UUID) (*model.NutritionSnapshot, error) {
	if recipeID == uuid.Nil {
		return nil, fmt.Errorf("recipe id: %w", errs.ErrInvalidArgument)
	}
	return s.recipes.GetNutrition(ctx, recipeID)
}
