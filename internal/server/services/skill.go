package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillkeeper/internal/server/validation"
	"golang.org/x/sync/errgroup"
)

// defaultReferenceFanout bounds the concurrent reference lookups in FetchAll.
const defaultReferenceFanout = 8

// SkillService manages skills together with the references they own.
// Every multi-statement change runs in a single transaction.
type SkillService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   PayloadValidator
	logger      logging.Logger
	fanout      int
}

func NewSkillService(db *sql.DB, m repomanager.RepositoryManager, v PayloadValidator, l logging.Logger) *SkillService {
	return &SkillService{
		db:          db,
		repomanager: m,
		validator:   v,
		logger:      l.With("module", "skills"),
		fanout:      defaultReferenceFanout,
	}
}

func skillNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("Skill with skill_id of %s does not exist", id))
}

// ParseSkillID converts a path value into a skill id. Anything that is not
// a positive integer cannot name a skill and yields the not-found error.
func ParseSkillID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, skillNotFound(raw)
	}
	return id, nil
}

func checkSkillID(id int64) error {
	if id <= 0 {
		return skillNotFound(strconv.FormatInt(id, 10))
	}
	return nil
}

// writeError maps a failed skill write to a conflict or a storage error.
func writeError(err error) error {
	if errors.Is(err, common.ErrorAlreadyExists) {
		return apperr.Conflict(apperr.DuplicateMessage, err)
	}
	return asAppError(err)
}

// FetchByID returns the skill with its references attached.
func (s *SkillService) FetchByID(ctx context.Context, skillID int64) (*models.Skill, error) {
	if err := checkSkillID(skillID); err != nil {
		return nil, err
	}

	skill, err := s.repomanager.Skills(s.db).GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, skillNotFound(strconv.FormatInt(skillID, 10))
		}
		logFailure(ctx, s.logger, "fetch skill", err)
		return nil, asAppError(err)
	}

	refs, err := s.repomanager.References(s.db).ListBySkillID(ctx, skillID)
	if err != nil {
		logFailure(ctx, s.logger, "fetch references", err)
		return nil, asAppError(err)
	}
	if refs == nil {
		refs = []*models.Reference{}
	}
	skill.References = refs

	return skill, nil
}

// FetchAll returns every skill ordered by id, each with its references.
// References are loaded concurrently; the first failure aborts the call.
func (s *SkillService) FetchAll(ctx context.Context) ([]*models.Skill, error) {
	list, err := s.repomanager.Skills(s.db).List(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "list skills", err)
		return nil, asAppError(err)
	}

	refRepo := s.repomanager.References(s.db)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for _, skill := range list {
		skill := skill
		g.Go(func() error {
			refs, err := refRepo.ListBySkillID(gctx, skill.ID)
			if err != nil {
				return fmt.Errorf("references of skill %d: %w", skill.ID, err)
			}
			if refs == nil {
				refs = []*models.Reference{}
			}
			skill.References = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logFailure(ctx, s.logger, "list references", err)
		return nil, asAppError(err)
	}

	if list == nil {
		list = []*models.Skill{}
	}
	return list, nil
}

// Create validates the payload and stores the skill and its references.
func (s *SkillService) Create(ctx context.Context, payload []byte) (*AddedResult, error) {
	var in models.SkillInput
	if err := s.validator.Validate(validation.SkillCreate, payload, &in); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		skillRepo := s.repomanager.Skills(tx)

		_, err := skillRepo.GetByName(ctx, in.Name)
		switch {
		case err == nil:
			return apperr.Conflict(apperr.DuplicateMessage, common.ErrorAlreadyExists)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		skill, err := skillRepo.Create(ctx, &models.Skill{Name: in.Name, Description: in.Description})
		if err != nil {
			return writeError(err)
		}

		return s.insertReferences(ctx, tx, skill.ID, in.References)
	})
	if err != nil {
		logFailure(ctx, s.logger, "create skill", err)
		return nil, asAppError(err)
	}

	s.logger.Info(ctx, "skill created", "skill_name", in.Name)
	return &AddedResult{Added: 1}, nil
}

// Update rewrites the skill and, when the payload carries a references
// array (even an empty one), replaces the whole reference set.
func (s *SkillService) Update(ctx context.Context, skillID int64, payload []byte) (*UpdatedResult, error) {
	var in models.SkillInput
	if err := s.validator.Validate(validation.SkillUpdate, payload, &in); err != nil {
		return nil, err
	}
	if err := checkSkillID(skillID); err != nil {
		return nil, err
	}

	var updated int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Skills(tx).Update(ctx, &models.Skill{ID: skillID, Name: in.Name, Description: in.Description})
		if err != nil {
			return writeError(err)
		}
		if n == 0 {
			return skillNotFound(strconv.FormatInt(skillID, 10))
		}
		updated = n

		if in.References == nil {
			return nil
		}
		if _, err := s.repomanager.References(tx).DeleteBySkillID(ctx, skillID); err != nil {
			return err
		}
		return s.insertReferences(ctx, tx, skillID, in.References)
	})
	if err != nil {
		logFailure(ctx, s.logger, "update skill", err)
		return nil, asAppError(err)
	}

	return &UpdatedResult{Updated: updated}, nil
}

// Remove deletes the skill and every reference it owns. Nothing is removed
// when the skill does not exist.
func (s *SkillService) Remove(ctx context.Context, skillID int64) (*DeletedResult, error) {
	if err := checkSkillID(skillID); err != nil {
		return nil, err
	}

	var deleted int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.References(tx).DeleteBySkillID(ctx, skillID); err != nil {
			return err
		}
		n, err := s.repomanager.Skills(tx).Delete(ctx, skillID)
		if err != nil {
			return err
		}
		if n == 0 {
			return skillNotFound(strconv.FormatInt(skillID, 10))
		}
		deleted = n
		return nil
	})
	if err != nil {
		logFailure(ctx, s.logger, "remove skill", err)
		return nil, asAppError(err)
	}

	return &DeletedResult{Deleted: deleted}, nil
}

func (s *SkillService) insertReferences(ctx context.Context, tx dbx.DBTX, skillID int64, in []models.ReferenceInput) error {
	refRepo := s.repomanager.References(tx)
	for _, r := range in {
		ref := &models.Reference{
			Link:         r.Link,
			Category:     r.Category,
			LengthInMins: r.LengthInMins,
			SkillID:      skillID,
		}
		if _, err := refRepo.Create(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
