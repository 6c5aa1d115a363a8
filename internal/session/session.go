// Package session loads the caller's login session at the start of every
// request and exposes it through the echo context.  The cookie carries a
// signed JWT naming the user and an opaque session id; the session data
// itself lives in a Store.
package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/studentplanner/planner/internal/model"
	"github.com/studentplanner/planner/internal/utils"
)

const contextKey = "session"

// Data is what a session remembers about its user.
type Data struct {
	UserID    uint64    `json:"userId"`
	Firstname string    `json:"firstname"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session is the request-scoped view of a loaded session.
type Session struct {
	Data
	hash string
}

// Options configures a Manager.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues, loads and destroys sessions.
type Manager struct {
	store Store
	opts  Options
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "planner_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Manager{store: store, opts: opts}
}

// Middleware loads the session named by the cookie, if any.  Invalid or
// expired cookies leave the request anonymous.
func (m *Manager) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s := m.load(c); s != nil {
			c.Set(contextKey, s)
		}
		return next(c)
	}
}

func (m *Manager) load(c echo.Context) *Session {
	ck, err := c.Cookie(m.opts.CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	uid, sid, err := utils.ParseSessionToken(m.opts.Secret, ck.Value)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	hash := utils.HashToken(sid)
	d, err := m.store.Load(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Printf("session load: %v", err)
		}
		return nil
	}
	if d.UserID != uid {
		return nil
	}
	return &Session{Data: d, hash: hash}
}

// Current returns the session loaded for this request.
func Current(c echo.Context) (*Session, bool) {
	s, ok := c.Get(contextKey).(*Session)
	return s, ok && s != nil && s.UserID != 0
}

// Start opens a new session for u and sets the cookie.
func (m *Manager) Start(c echo.Context, u *model.User) error {
	sid := uuid.NewString()
	tok, err := utils.NewSessionToken(m.opts.Secret, u.ID, sid, m.opts.TTL)
	if err != nil {
		return err
	}
	d := Data{UserID: u.ID, Firstname: u.Firstname, Email: u.Email, ExpiresAt: tok.Exp}
	hash := utils.HashToken(sid)
	if err := m.store.Save(c.Request().Context(), hash, d); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     m.opts.CookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(contextKey, &Session{Data: d, hash: hash})
	return nil
}

// Destroy ends the current session, if any, and clears the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	var err error
	if s, ok := Current(c); ok {
		err = m.store.Delete(c.Request().Context(), s.hash)
	}
	c.SetCookie(&http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(contextKey, nil)
	return err
}

// Update refreshes the cached firstname and email of the current session.
func (m *Manager) Update(c echo.Context, firstname, email string) error {
	s, ok := Current(c)
	if !ok {
		return ErrNoSession
	}
	if err := m.store.Refresh(c.Request().Context(), s.hash, firstname, email); err != nil {
		return err
	}
	s.Firstname, s.Email = firstname, email
	return nil
}
