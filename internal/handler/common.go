package handler // handler holds the HTTP controllers

import (
    "context"
    "errors"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/middleware"
    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
)

// Clock supplies the current time in the app timezone.
type Clock func() time.Time

// ClockIn returns a Clock reading wall time in loc.
func ClockIn(loc *time.Location) Clock {
    return func() time.Time { return time.Now().In(loc) }
}

func (c Clock) today() string { return model.FormatDate(c()) }

// reqCtx bounds handler work the way every controller does.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID returns the positive numeric id the router extracted, falling back
// to an ?id= query value.
func pathID(c echo.Context) (uint64, error) {
    raw := c.Param("id")
    if raw == "" {
        raw = c.QueryParam("id")
    }
    id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
    if err != nil || id == 0 {
        return 0, response.Invalid("ID required")
    }
    return id, nil
}

// ownerID returns the authenticated user's id.  Handlers only run behind
// middleware.Require, so a zero id is a wiring error.
func ownerID(c echo.Context) (uint64, error) {
    id := middleware.UserID(c)
    if id == 0 {
        return 0, response.ErrUnauthenticated()
    }
    return id, nil
}

// storeErr maps a repository error to a controller error.
func storeErr(err error, notFound string) error {
    if errors.Is(err, repository.ErrNotFound) {
        return response.ErrNotFound(notFound)
    }
    return response.Persistence(err)
}
