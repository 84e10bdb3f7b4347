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

// EnrollmentRepo implements EnrollmentRepository using PostgreSQL.
type EnrollmentRepo struct{ db *DB }

// NewEnrollmentRepo constructs an enrollment repository.
func NewEnrollmentRepo(db *DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// Create deactivates the user's enrollments and inserts e with its variants atomically.
func (r *EnrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	const deactivate = `UPDATE user_path_enrollments SET active=false WHERE user_id=$1 AND active`
	const ins = `INSERT INTO user_path_enrollments (id, user_id, path_id, start_date, active) VALUES ($1,$2,$3,$4,true) RETURNING created_at`
	const insVariant = `INSERT INTO enrollment_variants (enrollment_id, variant_type_id, variant_option_id) VALUES ($1,$2,$3)`

	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deactivate, e.UserID); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, ins, e.ID, e.UserID, e.PathID, e.StartDate).Scan(&e.CreatedAt); err != nil {
			return err
		}
		for i, v := range e.Variants {
			if _, err := tx.Exec(ctx, insVariant, e.ID, v.VariantTypeID, v.VariantOptionID); err != nil {
				return fmt.Errorf("variant[%d]: %w", i, err)
			}
		}
		return nil
	})
	switch {
	case err == nil:
		e.Active = true
		return nil
	case isForeignKeyViolation(err):
		return fmt.Errorf("create enrollment: %w", errs.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("create enrollment: %w", errs.ErrAlreadyExists)
	default:
		return err
	}
}

const enrollmentCols = `id, user_id, path_id, start_date, active, created_at`

func (r *EnrollmentRepo) load(ctx context.Context, q string, arg any) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&e.ID, &e.UserID, &e.PathID, &e.StartDate, &e.Active, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	const qv = `SELECT variant_type_id, variant_option_id FROM enrollment_variants WHERE enrollment_id=$1 ORDER BY variant_type_id`
	rows, err := r.db.Pool.Query(ctx, qv, e.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v model.VariantSelection
		if err := rows.Scan(&v.VariantTypeID, &v.VariantOptionID); err != nil {
			return nil, err
		}
		e.Variants = append(e.Variants, v)
	}
	return &e, rows.Err()
}

// Get loads an enrollment with its variants.
func (r *EnrollmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return r.load(ctx, `SELECT `+enrollmentCols+` FROM user_path_enrollments WHERE id=$1`, id)
}

// GetActive loads the user's active enrollment with its variants.
func (r *EnrollmentRepo) GetActive(ctx context.Context, userID uuid.UUID) (*model.Enrollment, error) {
	return r.load(ctx, `SELECT `+enrollmentCols+` FROM user_path_enrollments WHERE user_id=$1 AND active`, userID)
}

// UpsertVariants writes one selection per variant type in a single transaction.
func (r *EnrollmentRepo) UpsertVariants(ctx context.Context, enrollmentID uuid.UUID, vs []model.VariantSelection) error {
	const q = `
INSERT INTO enrollment_variants (enrollment_id, variant_type_id, variant_option_id) VALUES ($1,$2,$3)
ON CONFLICT (enrollment_id, variant_type_id) DO UPDATE SET variant_option_id=EXCLUDED.variant_option_id`

	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for i, v := range vs {
			if _, err := tx.Exec(ctx, q, enrollmentID, v.VariantTypeID, v.VariantOptionID); err != nil {
				return fmt.Errorf("variant[%d]: %w", i, err)
			}
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return fmt.Errorf("upsert variants: %w", errs.ErrNotFound)
	}
	return err
}
