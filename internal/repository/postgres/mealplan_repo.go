package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/model"
)

// MealPlanRepo implements MealPlanRepository using PostgreSQL.
type MealPlanRepo struct{ db *DB }

// NewMealPlanRepo constructs a meal plan repository.
func NewMealPlanRepo(db *DB) *MealPlanRepo { return &MealPlanRepo{db: db} }

// ListSlots returns a plan's slot labels in entry order.
func (r *MealPlanRepo) ListSlots(ctx context.Context, planID uuid.UUID) ([]string, error) {
	const q = `SELECT slot FROM nutrition_plan_meal_entries WHERE plan_id=$1 GROUP BY slot ORDER BY MIN(position), slot`
	rows, err := r.db.Pool.Query(ctx, q, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSlotLines returns a slot's base entries joined with nutrition.
func (r *MealPlanRepo) ListSlotLines(ctx context.Context, planID uuid.UUID, slot string) ([]model.IngredientLine, error) {
	q := `SELECT i.id, i.name, e.amount, e.unit, ` + prefixed("i.", nutritionCols) + `
FROM nutrition_plan_meal_entries e JOIN ingredients i ON i.id = e.ingredient_id
WHERE e.plan_id=$1 AND e.slot=$2
ORDER BY e.position, e.id`
	rows, err := r.db.Pool.Query(ctx, q, planID, slot)
	if err != nil {
		return nil, err
	}
	return scanLines(rows)
}
