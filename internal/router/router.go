package router // package router defines how HTTP routes are registered

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studentplanner/planner/internal/handler"
	"github.com/studentplanner/planner/internal/middleware"
)

// Handlers bundles the controllers the route tables point at.
type Handlers struct {
	Tasks    *handler.TaskHandler
	Habits   *handler.HabitHandler
	Events   *handler.EventHandler
	Settings *handler.SettingsHandler
	Auth     *handler.AuthHandler
	Search   *handler.SearchHandler
}

// Pages is the page table.  Login, register and logout are public.
func Pages(h Handlers) map[string]echo.HandlerFunc {
	req := middleware.Require
	return map[string]echo.HandlerFunc{
		"":          handler.Home,
		"login":     h.Auth.Login,
		"register":  h.Auth.Register,
		"logout":    h.Auth.Logout,
		"dashboard": req(handler.Page("dashboard")),
		"habits":    req(handler.Page("habits")),
		"calendar":  req(handler.Page("calendar")),
		"tasks":     req(handler.Page("tasks")),
		"settings":  req(handler.Page("settings")),
	}
}

// StaticAPI is the exact-path API table.  Every action requires a session.
func StaticAPI(h Handlers) map[string]Methods {
	req := middleware.Require
	return map[string]Methods{
		"api/tasks": {
			http.MethodGet:  req(h.Tasks.List),
			http.MethodPost: req(h.Tasks.Create),
		},
		"api/tasks/stats": {http.MethodGet: req(h.Tasks.Stats)},
		"api/habits": {
			http.MethodGet:  req(h.Habits.List),
			http.MethodPost: req(h.Habits.Create),
		},
		"api/habits/stats": {http.MethodGet: req(h.Habits.Stats)},
		"api/events": {
			http.MethodGet:  req(h.Events.List),
			http.MethodPost: req(h.Events.Create),
		},
		"api/events/month":    {http.MethodGet: req(h.Events.Month)},
		"api/events/today":    {http.MethodGet: req(h.Events.Today)},
		"api/events/upcoming": {http.MethodGet: req(h.Events.Upcoming)},
		"api/settings/profile": {
			http.MethodGet: req(h.Settings.Profile),
			http.MethodPut: req(h.Settings.UpdateProfile),
		},
		"api/settings/preferences": {http.MethodPut: req(h.Settings.UpdatePreferences)},
		"api/settings/password":    {http.MethodPut: req(h.Settings.ChangePassword)},
		"api/search":               {http.MethodPost: req(h.Search.Search)},
	}
}

// DynamicAPI is the ordered pattern table; the first match wins.
func DynamicAPI(h Handlers) []Pattern {
	req := middleware.Require
	return []Pattern{
		{Resource: "tasks", Methods: Methods{
			http.MethodGet:    req(h.Tasks.Get),
			http.MethodPut:    req(h.Tasks.Update),
			http.MethodDelete: req(h.Tasks.Delete),
		}},
		{Resource: "tasks", Sub: "status", Methods: Methods{http.MethodPatch: req(h.Tasks.ToggleStatus)}},
		{Resource: "habits", Methods: Methods{
			http.MethodGet:    req(h.Habits.Get),
			http.MethodPut:    req(h.Habits.Update),
			http.MethodDelete: req(h.Habits.Delete),
		}},
		{Resource: "habits", Sub: "toggle", Methods: Methods{http.MethodPost: req(h.Habits.Toggle)}},
		{Resource: "events", Methods: Methods{
			http.MethodGet:    req(h.Events.Get),
			http.MethodPut:    req(h.Events.Update),
			http.MethodDelete: req(h.Events.Delete),
		}},
	}
}

// Register mounts the health probe, the static assets and the dispatcher
// on e.  publicDir may be empty to serve no assets.
func Register(e *echo.Echo, h Handlers, db *sql.DB, publicDir string) *Dispatcher {
	e.GET("/healthz", handler.Health(db))
	if publicDir != "" {
		e.Static("/public", publicDir)
	}
	d := NewDispatcher(Pages(h), StaticAPI(h), DynamicAPI(h))
	e.Any("/", d.Handle)
	e.Any("/*", d.Handle)
	return d
}
