package handler

import (
    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
)

// TaskHandler serves /api/tasks.
type TaskHandler struct {
    *Resource[*model.Task]
    repo *repository.TaskRepo
    now  Clock
}

func NewTaskHandler(repo *repository.TaskRepo, now Clock) *TaskHandler {
    return &TaskHandler{
        Resource: &Resource[*model.Task]{
            Store: repo,
            Noun:  "Task",
            Build: buildTask,
            Apply: applyTask,
        },
        repo: repo,
        now:  now,
    }
}

func buildTask(uid uint64, p Payload) (*model.Task, error) {
    title := p.String("title")
    if title == "" {
        return nil, response.Invalid("Title is required")
    }
    t := model.NewTask(uid, title)
    t.Description = p.NullableString("description")
    if p.Has("category") {
        t.SetCategory(p.String("category"))
    }
    if p.Has("priority") {
        t.SetPriority(p.String("priority"))
    }
    if p.Has("status") {
        t.SetStatus(p.String("status"))
    }
    due, err := dueDate(p)
    if err != nil {
        return nil, err
    }
    t.DueDate = due
    return t, nil
}

func applyTask(t *model.Task, p Payload) error {
    if p.Has("title") {
        title := p.String("title")
        if title == "" {
            return response.Invalid("Title cannot be empty")
        }
        t.Title = title
    }
    if p.Has("description") {
        t.Description = p.NullableString("description")
    }
    if p.Has("category") {
        t.SetCategory(p.String("category"))
    }
    if p.Has("priority") {
        t.SetPriority(p.String("priority"))
    }
    if p.Has("status") {
        t.SetStatus(p.String("status"))
    }
    if p.Has("dueDate") {
        due, err := dueDate(p)
        if err != nil {
            return err
        }
        t.DueDate = due
    }
    return nil
}

// dueDate reads an optional YYYY-MM-DD dueDate; null or blank clears it.
func dueDate(p Payload) (*string, error) {
    raw := p.NullableString("dueDate")
    if raw == nil {
        return nil, nil
    }
    d, err := model.NormalizeDate(*raw)
    if err != nil {
        return nil, response.Invalid("Invalid due date")
    }
    return &d, nil
}

// ToggleStatus handles PATCH /api/tasks/{id}/status.
func (h *TaskHandler) ToggleStatus(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    t, err := h.repo.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return storeErr(err, "Task not found")
    }
    status := t.ToggledStatus()
    if err := h.repo.UpdateStatus(ctx, id, uid, status); err != nil {
        return response.Persistence(err)
    }
    return response.Message(c, "Status updated", echo.Map{"id": id, "status": status})
}

// Stats handles GET /api/tasks/stats.
func (h *TaskHandler) Stats(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    st, err := h.repo.Stats(ctx, uid, h.now.today())
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, st)
}
