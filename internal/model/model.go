// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// Ingredient is a catalog entry with nutrition per 100 g and unit overrides.
type Ingredient struct {
	ID          uuid.UUID
	Name        string
	Nutrition   nutrition.Per100g
	Conversions nutrition.Overrides
	UpdatedAt   time.Time
}

// RecipeIngredient links a recipe to an ingredient with an amount.
type RecipeIngredient struct {
	ID           uuid.UUID
	RecipeID     uuid.UUID
	IngredientID uuid.UUID
	Amount       float64 // > 0
	Unit         string
	Position     int
}

// IngredientLine is a quantity joined with its ingredient's nutrition and overrides.
// Recipe ingredients and meal plan entries both load as lines.
type IngredientLine struct {
	IngredientID uuid.UUID
	Name         string
	Amount       float64
	Unit         string
	Nutrition    nutrition.Per100g
	Conversions  nutrition.Overrides
}

// Entry converts the line into an aggregation entry.
func (l IngredientLine) Entry() nutrition.Entry {
	ov := l.Conversions
	return nutrition.Entry{Amount: l.Amount, Unit: l.Unit, Per100g: l.Nutrition, Overrides: &ov}
}

// Entries converts lines into aggregation entries.
func Entries(lines []IngredientLine) []nutrition.Entry {
	out := make([]nutrition.Entry, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Entry())
	}
	return out
}

// Recipe is an admin-authored recipe.
type Recipe struct {
	ID          uuid.UUID
	Name        string
	Description string
	Ingredients []RecipeIngredient
}

// NutritionSnapshot is the cached, rounded nutrition of a recipe.
type NutritionSnapshot struct {
	RecipeID uuid.UUID
	nutrition.Nutrients
	TotalGrams              float64
	WarningCount            int
	HasEstimatedConversions bool
	ComputedAt              time.Time
}

// RecipeNutrition is a recipe name with its cached snapshot, used for matching.
type RecipeNutrition struct {
	Name     string
	Snapshot NutritionSnapshot
}

// MealEntry is one base ingredient of a nutrition plan's meal slot.
type MealEntry struct {
	ID           uuid.UUID
	PlanID       uuid.UUID
	Slot         string
	IngredientID uuid.UUID
	Amount       float64
	Unit         string
}

// ContentKind is the category of a path assignment.
type ContentKind string

const (
	KindTraining  ContentKind = "TRAINING"
	KindNutrition ContentKind = "NUTRITION"
	KindInfo      ContentKind = "INFO"
)

// KindOrder fixes the iteration order of content kinds.
var KindOrder = []ContentKind{KindTraining, KindNutrition, KindInfo}

// ParseContentKind validates a kind token.
func ParseContentKind(s string) (ContentKind, bool) {
	for _, k := range KindOrder {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Path is a named program.
type Path struct {
	ID       uuid.UUID
	Name     string
	MaxWeeks int // 0 = no ceiling
}

// PathAssignment places content on a path for an inclusive week window.
type PathAssignment struct {
	ID        uuid.UUID
	PathID    uuid.UUID
	Kind      ContentKind
	ContentID uuid.UUID
	WeekStart int
	WeekEnd   int
	// VariantOptionID gates the assignment; nil applies to every user.
	VariantOptionID *uuid.UUID
}

// VariantSelection is the option a user picked for one variant type.
type VariantSelection struct {
	VariantTypeID   uuid.UUID
	VariantOptionID uuid.UUID
}

// Enrollment is a user's enrollment in a path.
type Enrollment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PathID    uuid.UUID
	StartDate time.Time
	Active    bool
	Variants  []VariantSelection
	CreatedAt time.Time
}

// OptionIDs returns the selected variant option ids.
func (e Enrollment) OptionIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(e.Variants))
	for _, v := range e.Variants {
		out = append(out, v.VariantOptionID)
	}
	return out
}

// ShoppingListItem is one deduplicated line of a user's weekly shopping list.
type ShoppingListItem struct {
	UserID       uuid.UUID
	WeekStart    time.Time
	IngredientID uuid.UUID
	Name         string
	Unit         string
	Amount       float64
}
