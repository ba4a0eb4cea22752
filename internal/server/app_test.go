package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/config"
	"github.com/dmitrijs2005/skillkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type migratingManager struct {
	repomanager.RepositoryManager
	err   error
	calls int
}

func (m *migratingManager) RunMigrations(context.Context, *sql.DB) error {
	m.calls++
	return m.err
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.BcryptCost = bcrypt.MinCost
	c.ShutdownTimeout = time.Second
	return c
}

func newTestApp(t *testing.T, m repomanager.RepositoryManager) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	app, err := newApp(testConfig(), logging.Nop{}, db, m, metrics.NewWithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	return app, mock
}

func TestApp_HealthIsWired(t *testing.T) {
	app, mock := newTestApp(t, &migratingManager{})
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RoutesUseConfiguredPrefix(t *testing.T) {
	app, _ := newTestApp(t, &migratingManager{})

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, app.config.APIPrefix+"/user", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApp_RunStopsWhenMigrationsFail(t *testing.T) {
	m := &migratingManager{err: errors.New("migrate: boom")}
	app, mock := newTestApp(t, m)
	mock.ExpectClose()

	err := app.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, m.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunServesUntilCancelled(t *testing.T) {
	m := &migratingManager{}
	app, mock := newTestApp(t, m)
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, 1, m.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
