package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// nutritionCols lists ingredient nutrition and conversion columns in scan order.
const nutritionCols = `calories_per_100g, protein_per_100g, carbs_per_100g, fat_per_100g, fiber_per_100g, sugar_per_100g, salt_per_100g,
density_g_per_ml, grams_per_piece, grams_per_hand, grams_per_teaspoon, grams_per_tablespoon, grams_per_pinch, grams_per_cup, grams_per_slice, grams_per_bunch, grams_per_can`

// nutritionFields returns pointers to the nutrition and conversion fields in nutritionCols order.
func nutritionFields(n *nutrition.Per100g, o *nutrition.Overrides) []any {
	return []any{
		&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sugar, &n.Salt,
		&o.DensityGPerML, &o.GramsPerPiece, &o.GramsPerHand, &o.GramsPerTeaspoon, &o.GramsPerTablespoon,
		&o.GramsPerPinch, &o.GramsPerCup, &o.GramsPerSlice, &o.GramsPerBunch, &o.GramsPerCan,
	}
}

// prefixed qualifies every column of a comma-separated list with alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// nutritionArgs returns the nutrition and conversion values in nutritionCols order.
func nutritionArgs(n nutrition.Per100g, o nutrition.Overrides) []any {
	return []any{
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sugar, n.Salt,
		o.DensityGPerML, o.GramsPerPiece, o.GramsPerHand, o.GramsPerTeaspoon, o.GramsPerTablespoon,
		o.GramsPerPinch, o.GramsPerCup, o.GramsPerSlice, o.GramsPerBunch, o.GramsPerCan,
	}
}

// IngredientRepo implements IngredientRepository using PostgreSQL.
type IngredientRepo struct{ db *DB }

// NewIngredientRepo constructs an ingredient repository.
func NewIngredientRepo(db *DB) *IngredientRepo { return &IngredientRepo{db: db} }

// GetIngredient loads an ingredient by id.
func (r *IngredientRepo) GetIngredient(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	q := `SELECT id, name, ` + nutritionCols + `, updated_at
FROM ingredients WHERE id=$1`
	var ing model.Ingredient
	dest := append([]any{&ing.ID, &ing.Name}, nutritionFields(&ing.Nutrition, &ing.Conversions)...)
	dest = append(dest, &ing.UpdatedAt)
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// UpdateIngredient overwrites name, nutrition and conversion fields.
func (r *IngredientRepo) UpdateIngredient(ctx context.Context, ing *model.Ingredient) error {
	const q = `
UPDATE ingredients SET name=$2,
  calories_per_100g=$3, protein_per_100g=$4, carbs_per_100g=$5, fat_per_100g=$6, fiber_per_100g=$7, sugar_per_100g=$8, salt_per_100g=$9,
  density_g_per_ml=$10, grams_per_piece=$11, grams_per_hand=$12, grams_per_teaspoon=$13, grams_per_tablespoon=$14,
  grams_per_pinch=$15, grams_per_cup=$16, grams_per_slice=$17, grams_per_bunch=$18, grams_per_can=$19,
  updated_at=now()
WHERE id=$1`
	args := append([]any{ing.ID, ing.Name}, nutritionArgs(ing.Nutrition, ing.Conversions)...)
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteIngredient removes the ingredient and its recipe links, returning affected recipes.
func (r *IngredientRepo) DeleteIngredient(ctx context.Context, id uuid.UUID) (recipeIDs []uuid.UUID, err error) {
	const delLinks = `DELETE FROM recipe_ingredients WHERE ingredient_id=$1 RETURNING recipe_id`
	const delIng = `DELETE FROM ingredients WHERE id=$1`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, delLinks, id)
		if err != nil {
			return err
		}
		ids, err := collectIDs(rows)
		if err != nil {
			return err
		}
		recipeIDs = distinct(ids)

		tag, err := tx.Exec(ctx, delIng, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete ingredient %s: %w", id, err)
	}
	return recipeIDs, nil
}

// RecipeIDsByIngredient returns the distinct recipes referencing an ingredient.
func (r *IngredientRepo) RecipeIDsByIngredient(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT recipe_id FROM recipe_ingredients WHERE ingredient_id=$1 ORDER BY recipe_id`
	rows, err := r.db.Pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// collectIDs reads a single uuid column and closes rows.
func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
