// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/model"
)

// IngredientRepository provides access to the ingredient catalog.
type IngredientRepository interface {
	// GetIngredient loads an ingredient by ID.
	GetIngredient(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
	// UpdateIngredient writes name, nutrition and conversion fields.
	UpdateIngredient(ctx context.Context, ing *model.Ingredient) error
	// DeleteIngredient removes the ingredient and its recipe links atomically
	// and returns the distinct recipes that referenced it.
	DeleteIngredient(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	// RecipeIDsByIngredient returns the distinct recipes referencing an ingredient.
	RecipeIDsByIngredient(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// RecipeRepository provides recipe ingredient lists and the nutrition snapshot store.
type RecipeRepository interface {
	// ListIngredientLines returns the recipe's ingredients joined with nutrition, in position order.
	ListIngredientLines(ctx context.Context, recipeID uuid.UUID) ([]model.IngredientLine, error)
	// ReplaceIngredients swaps the recipe's ingredient list in one transaction.
	ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, items []model.RecipeIngredient) error
	// SaveNutrition replaces the recipe's snapshot in a single statement.
	SaveNutrition(ctx context.Context, snap model.NutritionSnapshot) error
	// GetNutrition loads the recipe's snapshot.
	GetNutrition(ctx context.Context, recipeID uuid.UUID) (*model.NutritionSnapshot, error)
	// ListNutrition returns every recipe with a snapshot, ordered by name.
	ListNutrition(ctx context.Context) ([]model.RecipeNutrition, error)
}

// MealPlanRepository reads nutrition plan meal slots.
type MealPlanRepository interface {
	// ListSlots returns the distinct slot labels of a plan in first-seen order.
	ListSlots(ctx context.Context, planID uuid.UUID) ([]string, error)
	// ListSlotLines returns a slot's base entries joined with nutrition.
	ListSlotLines(ctx context.Context, planID uuid.UUID, slot string) ([]model.IngredientLine, error)
}
