package handler

import (
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
)

// SearchHandler serves POST /api/search.
type SearchHandler struct {
    Tasks  *repository.TaskRepo
    Habits *repository.HabitRepo
    Events *repository.EventRepo
}

func NewSearchHandler(t *repository.TaskRepo, h *repository.HabitRepo, e *repository.EventRepo) *SearchHandler {
    return &SearchHandler{Tasks: t, Habits: h, Events: e}
}

type searchResult struct {
    Tasks  []*model.Task          `json:"tasks"`
    Habits []*model.Habit         `json:"habits"`
    Events []*model.CalendarEvent `json:"events"`
}

// Search returns the caller's tasks, habits and events whose title
// contains the term.  Only JSON bodies are accepted; the route table
// admits POST only.
func (h *SearchHandler) Search(c echo.Context) error {
    ct := c.Request().Header.Get(echo.HeaderContentType)
    if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), echo.MIMEApplicationJSON) {
        return response.ErrUnsupportedMediaType()
    }
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    term := p.String("search")

    ctx, cancel := reqCtx(c)
    defer cancel()

    var res searchResult
    if res.Tasks, err = h.Tasks.SearchByTitle(ctx, uid, term); err != nil {
        return response.Persistence(err)
    }
    if res.Habits, err = h.Habits.SearchByTitle(ctx, uid, term); err != nil {
        return response.Persistence(err)
    }
    if res.Events, err = h.Events.SearchByTitle(ctx, uid, term); err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, res)
}
