package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
)

// PathRepo implements PathRepository using PostgreSQL.
type PathRepo struct{ db *DB }

// NewPathRepo constructs a path repository.
func NewPathRepo(db *DB) *PathRepo { return &PathRepo{db: db} }

// GetPath loads a path by id.
func (r *PathRepo) GetPath(ctx context.Context, id uuid.UUID) (*model.Path, error) {
	const q = `SELECT id, name, COALESCE(max_weeks, 0) FROM paths WHERE id=$1`
	var p model.Path
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.MaxWeeks); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAssignments returns a path's assignments ordered by kind then week_start.
func (r *PathRepo) ListAssignments(ctx context.Context, pathID uuid.UUID) ([]model.PathAssignment, error) {
	const q = `
SELECT id, path_id, kind, content_id, week_start, week_end, variant_option_id
FROM path_assignments
WHERE path_id=$1
ORDER BY CASE kind WHEN 'TRAINING' THEN 0 WHEN 'NUTRITION' THEN 1 ELSE 2 END, week_start, id`
	rows, err := r.db.Pool.Query(ctx, q, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PathAssignment
	for rows.Next() {
		var (
			a    model.PathAssignment
			kind string
		)
		if err := rows.Scan(&a.ID, &a.PathID, &kind, &a.ContentID, &a.WeekStart, &a.WeekEnd, &a.VariantOptionID); err != nil {
			return nil, err
		}
		a.Kind = model.ContentKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}
