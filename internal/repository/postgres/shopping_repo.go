package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// ShoppingRepo implements ShoppingRepository using PostgreSQL.
type ShoppingRepo struct{ db *DB }

// NewShoppingRepo constructs a shopping list repository.
func NewShoppingRepo(db *DB) *ShoppingRepo { return &ShoppingRepo{db: db} }

type shoppingLine struct {
	ingredientID uuid.UUID
	amount       float64
	unit         string
}

// AddRecipe merges the recipe's ingredients into the user's weekly list.
// Lines are keyed by (ingredient, normalized unit); repeated imports sum.
func (r *ShoppingRepo) AddRecipe(ctx context.Context, userID uuid.UUID, weekStart time.Time, recipeID uuid.UUID) error {
	const exists = `SELECT id FROM recipes WHERE id=$1`
	const sel = `SELECT ingredient_id, amount, unit FROM recipe_ingredients WHERE recipe_id=$1 ORDER BY position, id`
	const ups = `
INSERT INTO shopping_list_items (user_id, week_start, ingredient_id, unit, amount) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id, week_start, ingredient_id, unit) DO UPDATE SET amount = shopping_list_items.amount + EXCLUDED.amount`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, exists, recipeID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx, sel, recipeID)
		if err != nil {
			return err
		}
		var lines []shoppingLine
		for rows.Next() {
			var l shoppingLine
			if err := rows.Scan(&l.ingredientID, &l.amount, &l.unit); err != nil {
				rows.Close()
				return err
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			if _, err := tx.Exec(ctx, ups, userID, weekStart, l.ingredientID, nutrition.NormalizeUnit(l.unit), l.amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the user's weekly list ordered by ingredient name.
func (r *ShoppingRepo) List(ctx context.Context, userID uuid.UUID, weekStart time.Time) ([]model.ShoppingListItem, error) {
	const q = `
SELECT s.ingredient_id, i.name, s.unit, s.amount
FROM shopping_list_items s JOIN ingredients i ON i.id = s.ingredient_id
WHERE s.user_id=$1 AND s.week_start=$2
ORDER BY i.name, s.unit`
	rows, err := r.db.Pool.Query(ctx, q, userID, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShoppingListItem
	for rows.Next() {
		it := model.ShoppingListItem{UserID: userID, WeekStart: weekStart}
		if err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.Amount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
