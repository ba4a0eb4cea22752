// Package server wires the skills API together: configuration, the
// PostgreSQL pool, migrations, services, the HTTP gateway and graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/config"
	"github.com/dmitrijs2005/skillkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/skillkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillkeeper/internal/server/services"
	"github.com/dmitrijs2005/skillkeeper/internal/server/validation"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	handler http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if c.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		c.SecretKey = key
		logger.Warn(context.Background(), "no secret key configured, using a random one; tokens will not survive a restart")
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(c, logger, db, repomanager.NewPostgresRepositoryManager(), metrics.New())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager, mc *metrics.Collector) (*App, error) {
	v, err := validation.New()
	if err != nil {
		return nil, fmt.Errorf("validator init error: %w", err)
	}

	us, err := services.NewUserService(db, m, v, logger, c)
	if err != nil {
		return nil, fmt.Errorf("user service init error: %w", err)
	}
	ss := services.NewSkillService(db, m, v, logger)

	h := httpapi.NewRouter(httpapi.RouterConfig{
		Prefix:  c.APIPrefix,
		Skills:  ss,
		Users:   us,
		DB:      db,
		Logger:  logger.With("module", "http"),
		Metrics: mc,
	})

	return &App{config: c, logger: logger, db: db, manager: m, handler: h}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run applies migrations and serves HTTP until ctx is cancelled or a
// termination signal arrives. The database pool is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migrations failed", "err", err)
		return err
	}

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "err", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
