package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
)

// RecipeRepo implements RecipeRepository using PostgreSQL.
type RecipeRepo struct{ db *DB }

// NewRecipeRepo constructs a recipe repository.
func NewRecipeRepo(db *DB) *RecipeRepo { return &RecipeRepo{db: db} }

// scanLines reads ingredient lines (id, name, amount, unit, nutritionCols) and closes rows.
func scanLines(rows pgx.Rows) ([]model.IngredientLine, error) {
	defer rows.Close()
	var out []model.IngredientLine
	for rows.Next() {
		var l model.IngredientLine
		dest := append([]any{&l.IngredientID, &l.Name, &l.Amount, &l.Unit}, nutritionFields(&l.Nutrition, &l.Conversions)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListIngredientLines returns the recipe's ingredients joined with nutrition.
func (r *RecipeRepo) ListIngredientLines(ctx context.Context, recipeID uuid.UUID) ([]model.IngredientLine, error) {
	q := `SELECT i.id, i.name, ri.amount, ri.unit, ` + prefixed("i.", nutritionCols) + `
FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id=$1
ORDER BY ri.position, ri.id`
	rows, err := r.db.Pool.Query(ctx, q, recipeID)
	if err != nil {
		return nil, err
	}
	return scanLines(rows)
}

// ReplaceIngredients swaps the recipe's ingredient list atomically.
func (r *RecipeRepo) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, items []model.RecipeIngredient) error {
	const lock = `SELECT id FROM recipes WHERE id=$1 FOR UPDATE`
	const del = `DELETE FROM recipe_ingredients WHERE recipe_id=$1`
	const ins = `INSERT INTO recipe_ingredients (id, recipe_id, ingredient_id, amount, unit, position) VALUES ($1,$2,$3,$4,$5,$6)`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, lock, recipeID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, del, recipeID); err != nil {
			return err
		}
		for i, it := range items {
			if _, err := tx.Exec(ctx, ins, it.ID, recipeID, it.IngredientID, it.Amount, it.Unit, i); err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("ingredient[%d] %s: %w", i, it.IngredientID, errs.ErrNotFound)
				}
				return err
			}
		}
		return nil
	})
}

// SaveNutrition replaces the recipe's snapshot with a single upsert.
func (r *RecipeRepo) SaveNutrition(ctx context.Context, s model.NutritionSnapshot) error {
	const q = `
INSERT INTO recipe_nutrition (recipe_id, calories, protein, carbs, fat, fiber, sugar, salt, total_grams, warning_count, has_estimated_conversions, computed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (recipe_id) DO UPDATE SET
  calories=EXCLUDED.calories, protein=EXCLUDED.protein, carbs=EXCLUDED.carbs, fat=EXCLUDED.fat,
  fiber=EXCLUDED.fiber, sugar=EXCLUDED.sugar, salt=EXCLUDED.salt, total_grams=EXCLUDED.total_grams,
  warning_count=EXCLUDED.warning_count, has_estimated_conversions=EXCLUDED.has_estimated_conversions,
  computed_at=EXCLUDED.computed_at`
	_, err := r.db.Pool.Exec(ctx, q,
		s.RecipeID, s.Calories, s.Protein, s.Carbs, s.Fat, s.Fiber, s.Sugar, s.Salt,
		s.TotalGrams, s.WarningCount, s.HasEstimatedConversions, s.ComputedAt)
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return err
}

const snapshotCols = `n.recipe_id, n.calories, n.protein, n.carbs, n.fat, n.fiber, n.sugar, n.salt, n.total_grams, n.warning_count, n.has_estimated_conversions, n.computed_at`

func snapshotFields(s *model.NutritionSnapshot) []any {
	return []any{
		&s.RecipeID, &s.Calories, &s.Protein, &s.Carbs, &s.Fat, &s.Fiber, &s.Sugar, &s.Salt,
		&s.TotalGrams, &s.WarningCount, &s.HasEstimatedConversions, &s.ComputedAt,
	}
}

// GetNutrition loads a recipe's snapshot.
func (r *RecipeRepo) GetNutrition(ctx context.Context, recipeID uuid.UUID) (*model.NutritionSnapshot, error) {
	q := `SELECT ` + snapshotCols + ` FROM recipe_nutrition n WHERE n.recipe_id=$1`
	var s model.NutritionSnapshot
	if err := r.db.Pool.QueryRow(ctx, q, recipeID).Scan(snapshotFields(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListNutrition returns every recipe that has a snapshot.
func (r *RecipeRepo) ListNutrition(ctx context.Context) ([]model.RecipeNutrition, error) {
	q := `SELECT r.name, ` + snapshotCols + `
FROM recipe_nutrition n JOIN recipes r ON r.id = n.recipe_id
ORDER BY r.name, r.id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RecipeNutrition
	for rows.Next() {
		var rn model.RecipeNutrition
		dest := append([]any{&rn.Name}, snapshotFields(&rn.Snapshot)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, rn)
	}
	return out, rows.Err()
}
