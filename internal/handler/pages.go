package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/session"
)

// Page renders a template for the signed-in user.  It must sit behind
// middleware.Require.
func Page(name string) echo.HandlerFunc {
    return func(c echo.Context) error {
        s, _ := session.Current(c)
        return c.Render(http.StatusOK, name, echo.Map{"User": s})
    }
}

// Home redirects / to the dashboard.
func Home(c echo.Context) error {
    return c.Redirect(http.StatusFound, "/dashboard")
}
