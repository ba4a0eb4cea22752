package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/references"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/skills"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Skills(db dbx.DBTX) skills.Repository
	References(db dbx.DBTX) references.Repository
	Users(db dbx.DBTX) users.Repository
}
