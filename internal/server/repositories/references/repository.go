package references

import (
	"context"

	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
)

type Repository interface {
	ListBySkillID(ctx context.Context, skillID int64) ([]*models.Reference, error)
	Create(ctx context.Context, ref *models.Reference) (*models.Reference, error)
	DeleteBySkillID(ctx context.Context, skillID int64) (int64, error)
}
