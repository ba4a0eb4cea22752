package skills

import (
	"context"

	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, skillID int64) (*models.Skill, error)
	GetByName(ctx context.Context, name string) (*models.Skill, error)
	List(ctx context.Context) ([]*models.Skill, error)
	Create(ctx context.Context, skill *models.Skill) (*models.Skill, error)
	Update(ctx context.Context, skill *models.Skill) (int64, error)
	Delete(ctx context.Context, skillID int64) (int64, error)
}
