package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/references"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/skills"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/skillkeeper/internal/server/validation"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return v
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected kind for %v", err)
}

// --- skills ---

type fakeSkillsRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.Skill
	nextID int64

	getErr    error
	listErr   error
	createErr error
	updateErr error
	deleteErr error

	calls int
}

func newFakeSkillsRepo(rows ...*models.Skill) *fakeSkillsRepo {
	f := &fakeSkillsRepo{rows: map[int64]*models.Skill{}, nextID: 1}
	for _, r := range rows {
		f.rows[r.ID] = r
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *fakeSkillsRepo) GetByID(ctx context.Context, id int64) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSkillsRepo) GetByName(ctx context.Context, name string) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, s := range f.rows {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSkillsRepo) List(ctx context.Context) ([]*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Skill, 0, len(f.rows))
	for _, s := range f.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSkillsRepo) Create(ctx context.Context, s *models.Skill) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.ID = f.nextID
	f.nextID++
	cp := *s
	f.rows[s.ID] = &cp
	return s, nil
}

func (f *fakeSkillsRepo) Update(ctx context.Context, s *models.Skill) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	row, ok := f.rows[s.ID]
	if !ok {
		return 0, nil
	}
	row.Name, row.Description = s.Name, s.Description
	return 1, nil
}

func (f *fakeSkillsRepo) Delete(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

// --- references ---

type fakeRefsRepo struct {
	mu      sync.Mutex
	bySkill map[int64][]*models.Reference
	nextID  int64

	listErr   map[int64]error
	createErr error
	deleteErr error

	created    []*models.Reference
	deletedFor []int64
}

func newFakeRefsRepo() *fakeRefsRepo {
	return &fakeRefsRepo{bySkill: map[int64][]*models.Reference{}, listErr: map[int64]error{}, nextID: 100}
}

func (f *fakeRefsRepo) ListBySkillID(ctx context.Context, skillID int64) ([]*models.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[skillID]; err != nil {
		return nil, err
	}
	out := make([]*models.Reference, 0, len(f.bySkill[skillID]))
	out = append(out, f.bySkill[skillID]...)
	return out, nil
}

func (f *fakeRefsRepo) Create(ctx context.Context, r *models.Reference) (*models.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	r.ID = f.nextID
	f.nextID++
	f.bySkill[r.SkillID] = append(f.bySkill[r.SkillID], r)
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeRefsRepo) DeleteBySkillID(ctx context.Context, skillID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFor = append(f.deletedFor, skillID)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	n := int64(len(f.bySkill[skillID]))
	delete(f.bySkill, skillID)
	return n, nil
}

// --- users ---

type fakeUsersRepo struct {
	mu   sync.Mutex
	rows map[string]*models.User

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{rows: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.rows[u.Email]; ok {
		return nil, errors.New("db error: duplicate key value violates unique constraint \"users_pkey\"")
	}
	cp := *u
	f.rows[u.Email] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.rows[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// --- manager ---

type fakeRepoManager struct {
	s *fakeSkillsRepo
	r *fakeRefsRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Skills(db dbx.DBTX) skills.Repository         { return m.s }
func (m *fakeRepoManager) References(db dbx.DBTX) references.Repository { return m.r }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
