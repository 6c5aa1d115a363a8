// Package server assembles the echo instance: middleware, session loading,
// repositories, controllers and the route tables.
package server

import (
	"database/sql"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/studentplanner/planner/internal/config"
	"github.com/studentplanner/planner/internal/handler"
	"github.com/studentplanner/planner/internal/middleware"
	"github.com/studentplanner/planner/internal/repository"
	"github.com/studentplanner/planner/internal/response"
	"github.com/studentplanner/planner/internal/router"
	"github.com/studentplanner/planner/internal/service"
	"github.com/studentplanner/planner/internal/session"
	"github.com/studentplanner/planner/internal/view"
)

// Deps are the collaborators New needs beyond the config.  Zero values get
// defaults: a SQL session store, a publisher built from the config and the
// wall clock in the configured zone.
type Deps struct {
	DB        *sql.DB
	Store     session.Store
	Publisher handler.EventPublisher
	Now       func() time.Time
	Quiet     bool
}

// New builds the HTTP server.
func New(cfg config.Config, d Deps) (*echo.Echo, error) {
	renderer, err := view.New()
	if err != nil {
		return nil, err
	}

	now := handler.ClockIn(cfg.Location())
	if d.Now != nil {
		now = d.Now
	}
	store := d.Store
	if store == nil {
		store = session.NewSQLStore(repository.NewSessionRepo(d.DB))
	}
	var pub handler.EventPublisher = d.Publisher
	if pub == nil {
		pub = service.NewPublisher(cfg.RabbitURL)
	}

	sessions := session.NewManager(store, session.Options{
		Secret:     cfg.SessionSecret,
		TTL:        cfg.SessionTTL,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.Env == "prod",
	})

	tasks := repository.NewTaskRepo(d.DB)
	habits := repository.NewHabitRepo(d.DB, now)
	events := repository.NewEventRepo(d.DB)
	users := repository.NewUserRepo(d.DB)

	h := router.Handlers{
		Tasks:    handler.NewTaskHandler(tasks, now),
		Habits:   handler.NewHabitHandler(habits, now),
		Events:   handler.NewEventHandler(events, now),
		Settings: handler.NewSettingsHandler(users, sessions, cfg.BcryptCost),
		Auth:     handler.NewAuthHandler(users, sessions, pub, cfg.BcryptCost),
		Search:   handler.NewSearchHandler(tasks, habits, events),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = response.ErrorHandler
	e.Use(echomw.Recover())
	if !d.Quiet {
		e.Use(middleware.RequestLogger())
	}
	e.Use(sessions.Middleware)

	router.Register(e, h, d.DB, cfg.PublicDir)
	return e, nil
}

// SessionStore picks the store named by cfg.SessionStore.  A redis store
// whose server cannot be reached falls back to SQL.
func SessionStore(cfg config.Config, db *sql.DB) session.Store {
	if cfg.SessionStore == "redis" {
		if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
			return session.NewRedisStore(rdb)
		}
		log.Printf("redis at %s unreachable; using the SQL session store", cfg.Redis.Addr)
	}
	return session.NewSQLStore(repository.NewSessionRepo(db))
}
