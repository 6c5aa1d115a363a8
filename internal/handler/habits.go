package handler

import (
    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
)

// HabitHandler serves /api/habits.
type HabitHandler struct {
    *Resource[*model.Habit]
    repo *repository.HabitRepo
    now  Clock
}

func NewHabitHandler(repo *repository.HabitRepo, now Clock) *HabitHandler {
    return &HabitHandler{
        Resource: &Resource[*model.Habit]{
            Store: repo,
            Noun:  "Habit",
            Build: buildHabit,
            Apply: applyHabit,
        },
        repo: repo,
        now:  now,
    }
}

func buildHabit(uid uint64, p Payload) (*model.Habit, error) {
    title := p.String("title")
    if title == "" {
        return nil, response.Invalid("Title is required")
    }
    h := model.NewHabit(uid, title)
    if err := applyHabit(h, p); err != nil {
        return nil, err
    }
    return h, nil
}

func applyHabit(h *model.Habit, p Payload) error {
    if p.Has("title") {
        title := p.String("title")
        if title == "" {
            return response.Invalid("Title cannot be empty")
        }
        h.Title = title
    }
    if p.Has("category") {
        h.SetCategory(p.String("category"))
    }
    if p.Has("frequency") {
        h.SetFrequency(p.String("frequency"))
    }
    if p.Has("accentColor") {
        h.SetAccentColor(p.String("accentColor"))
    }
    if p.Has("icon") {
        h.SetIcon(p.String("icon"))
    }
    if n, ok := p.Int("pointsPerDay"); ok {
        h.SetPointsPerDay(n)
    }
    return nil
}

// Toggle handles POST /api/habits/{id}/toggle with an optional {"date"}
// body; the default is today.
func (h *HabitHandler) Toggle(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    date := h.now.today()
    if raw := p.NullableString("date"); raw != nil {
        d, err := model.NormalizeDate(*raw)
        if err != nil {
            return response.Invalid("Invalid date")
        }
        date = d
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    habit, err := h.repo.ToggleCompletion(ctx, id, uid, date)
    if err != nil {
        return storeErr(err, "Habit not found")
    }
    return response.Message(c, "Habit toggled", habit)
}

// Stats handles GET /api/habits/stats.
func (h *HabitHandler) Stats(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    st, err := h.repo.Stats(ctx, uid)
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, st)
}
