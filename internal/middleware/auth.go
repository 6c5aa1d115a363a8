package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/response"
    "github.com/studentplanner/planner/internal/session"
)

// Require wraps a protected action.  Without a live session, API requests
// are answered with 401 and the Login required envelope while page
// requests are redirected to /login.  Credentials are never checked here;
// that only happens at login.
func Require(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        if _, ok := session.Current(c); ok {
            return next(c)
        }
        if response.IsAPI(c.Request().URL.Path) {
            return response.ErrUnauthenticated()
        }
        return c.Redirect(http.StatusFound, "/login")
    }
}

// UserID returns the id of the authenticated caller, or 0.
func UserID(c echo.Context) uint64 {
    if s, ok := session.Current(c); ok {
        return s.UserID
    }
    return 0
}
