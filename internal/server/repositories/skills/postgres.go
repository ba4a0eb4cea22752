package skills

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, skillID int64) (*models.Skill, error) {
	query :=
		`SELECT skill_id, skill_name, skill_description FROM skills
		 WHERE skill_id = $1
		 `
	return r.getOne(ctx, query, skillID)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Skill, error) {
	query :=
		`SELECT skill_id, skill_name, skill_description FROM skills
		 WHERE skill_name = $1
		 `
	return r.getOne(ctx, query, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Skill, error) {
	skill := &models.Skill{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&skill.ID, &skill.Name, &skill.Description)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return skill, nil
}

// List returns all skills ordered by skill_id; an empty table yields an
// empty, non-nil slice.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Skill, error) {
	query :=
		`SELECT skill_id, skill_name, skill_description FROM skills
		 ORDER BY skill_id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Skill, 0)
	for rows.Next() {
		skill := &models.Skill{}
		if err := rows.Scan(&skill.ID, &skill.Name, &skill.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Create inserts the skill and stores the generated id on it. A name that
// is already taken yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	query :=
		`INSERT INTO skills (skill_name, skill_description)
		 VALUES ($1, $2)
		 RETURNING skill_id
		 `

	err := r.db.QueryRowContext(ctx, query, skill.Name, skill.Description).Scan(&skill.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return skill, nil
}

// Update overwrites name and description of skill.ID and returns the number
// of rows changed.
func (r *PostgresRepository) Update(ctx context.Context, skill *models.Skill) (int64, error) {
	query :=
		`UPDATE skills SET skill_name = $1, skill_description = $2
		 WHERE skill_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, skill.Name, skill.Description, skill.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrorAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return rowsAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, skillID int64) (int64, error) {
	query :=
		`DELETE FROM skills
		 WHERE skill_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, skillID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
