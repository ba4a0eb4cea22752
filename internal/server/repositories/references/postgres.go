// Package references stores the learning material attached to skills.
package references

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListBySkillID returns the references of a skill in insertion order.
// A skill without references yields an empty, non-nil slice.
func (r *PostgresRepository) ListBySkillID(ctx context.Context, skillID int64) ([]*models.Reference, error) {
	query :=
		`SELECT reference_id, ref_link, ref_category, length_in_mins, skill_id FROM skill_references
		 WHERE skill_id = $1
		 ORDER BY reference_id
		 `

	rows, err := r.db.QueryContext(ctx, query, skillID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Reference, 0)
	for rows.Next() {
		ref := &models.Reference{}
		if err := rows.Scan(&ref.ID, &ref.Link, &ref.Category, &ref.LengthInMins, &ref.SkillID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ref *models.Reference) (*models.Reference, error) {
	query :=
		`INSERT INTO skill_references (ref_link, ref_category, length_in_mins, skill_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING reference_id
		 `

	err := r.db.QueryRowContext(ctx, query,
		ref.Link, ref.Category, ref.LengthInMins, ref.SkillID).Scan(&ref.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ref, nil
}

func (r *PostgresRepository) DeleteBySkillID(ctx context.Context, skillID int64) (int64, error) {
	query :=
		`DELETE FROM skill_references
		 WHERE skill_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, skillID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
