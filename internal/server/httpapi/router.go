// Package httpapi exposes the skill and user services over REST. It owns
// routing, body handling, bearer-token resolution and the mapping of
// classified errors onto HTTP responses.
package httpapi

import (
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles what the router needs. Metrics is optional.
type RouterConfig struct {
	Prefix  string
	Skills  SkillService
	Users   UserService
	DB      Pinger
	Logger  logging.Logger
	Metrics *metrics.Collector
}

// NewRouter builds the chi router. API routes live under cfg.Prefix;
// /health and /metrics are mounted at the root.
func NewRouter(cfg RouterConfig) chi.Router {
	h := &handlers{
		skills: cfg.Skills,
		users:  cfg.Users,
		db:     cfg.DB,
		logger: cfg.Logger,
	}

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(newMetricsMiddleware(cfg.Metrics))
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", h.health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	api := func(r chi.Router) {
		r.Get("/skill/id/{skill_id}", h.getSkill)
		r.Get("/skill/all", h.listSkills)
		r.Post("/skill", h.createSkill)
		r.Put("/skill/{skill_id}", h.updateSkill)
		r.Delete("/skill/{skill_id}", h.deleteSkill)

		r.Post("/user/register", h.register)
		r.Post("/user/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(newIdentityMiddleware(cfg.Users, cfg.Metrics))
			r.Get("/user", h.currentUser)
			r.Get("/user/logout", h.logout)
		})
	}

	if cfg.Prefix == "" || cfg.Prefix == "/" {
		r.Group(api)
	} else {
		r.Route(cfg.Prefix, api)
	}

	return r
}
