package handler

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/model"
    "github.com/studentplanner/planner/internal/repository"
    "github.com/studentplanner/planner/internal/response"
)

// DefaultUpcomingDays is the window of GET /api/events/upcoming.
const DefaultUpcomingDays = 7

// EventHandler serves /api/events.
type EventHandler struct {
    *Resource[*model.CalendarEvent]
    repo *repository.EventRepo
    now  Clock
}

func NewEventHandler(repo *repository.EventRepo, now Clock) *EventHandler {
    return &EventHandler{
        Resource: &Resource[*model.CalendarEvent]{
            Store: repo,
            Noun:  "Event",
            Build: buildEvent,
            Apply: applyEvent,
        },
        repo: repo,
        now:  now,
    }
}

func buildEvent(uid uint64, p Payload) (*model.CalendarEvent, error) {
    title := p.String("title")
    if title == "" {
        return nil, response.Invalid("Title is required")
    }
    date, err := model.NormalizeDate(p.String("eventDate"))
    if err != nil {
        return nil, response.Invalid("Valid event date is required")
    }
    e := model.NewCalendarEvent(uid, title, date)
    if err := applyEvent(e, p); err != nil {
        return nil, err
    }
    return e, nil
}

func applyEvent(e *model.CalendarEvent, p Payload) error {
    if p.Has("title") {
        title := p.String("title")
        if title == "" {
            return response.Invalid("Title cannot be empty")
        }
        e.Title = title
    }
    if p.Has("eventDate") {
        date, err := model.NormalizeDate(p.String("eventDate"))
        if err != nil {
            return response.Invalid("Valid event date is required")
        }
        e.EventDate = date
    }
    if p.Has("description") {
        e.Description = p.NullableString("description")
    }
    if p.Has("category") {
        e.SetCategory(p.String("category"))
    }
    if p.Has("startTime") {
        t, err := clockTime(p.NullableString("startTime"))
        if err != nil {
            return err
        }
        e.StartTime = t
    }
    if p.Has("endTime") {
        t, err := clockTime(p.NullableString("endTime"))
        if err != nil {
            return err
        }
        e.EndTime = t
    }
    if p.Has("allDay") {
        e.AllDay = p.Bool("allDay")
    }
    return nil
}

// clockTime accepts HH:MM or HH:MM:SS and stores HH:MM:SS.
func clockTime(raw *string) (*string, error) {
    if raw == nil {
        return nil, nil
    }
    for _, layout := range []string{"15:04", "15:04:05"} {
        if t, err := time.Parse(layout, *raw); err == nil {
            s := t.Format("15:04:05")
            return &s, nil
        }
    }
    return nil, response.Invalid("Invalid time " + strconv.Quote(*raw))
}

// List handles GET /api/events, optionally narrowed by ?date=YYYY-MM-DD or
// ?year=&month=.
func (h *EventHandler) List(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    var events []*model.CalendarEvent
    switch {
    case c.QueryParam("date") != "":
        date, perr := model.NormalizeDate(c.QueryParam("date"))
        if perr != nil {
            return response.Invalid("Invalid date")
        }
        events, err = h.repo.ByDate(ctx, uid, date)
    case c.QueryParam("year") != "" || c.QueryParam("month") != "":
        year, month := h.yearMonth(c)
        events, err = h.repo.ByMonth(ctx, uid, year, month)
    default:
        events, err = h.repo.ListByOwner(ctx, uid)
    }
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, events)
}

// Month handles GET /api/events/month: the month's events grouped by date.
func (h *EventHandler) Month(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    year, month := h.yearMonth(c)
    ctx, cancel := reqCtx(c)
    defer cancel()

    events, err := h.repo.ByMonth(ctx, uid, year, month)
    if err != nil {
        return response.Persistence(err)
    }
    grouped := make(map[string][]*model.CalendarEvent)
    for _, e := range events {
        grouped[e.EventDate] = append(grouped[e.EventDate], e)
    }
    return response.WithMeta(c, grouped, echo.Map{"year": year, "month": int(month)})
}

// Today handles GET /api/events/today.
func (h *EventHandler) Today(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    events, err := h.repo.ByDate(ctx, uid, h.now.today())
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, events)
}

// Upcoming handles GET /api/events/upcoming?days=N: events from today up
// to N days ahead inclusive.
func (h *EventHandler) Upcoming(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    days := DefaultUpcomingDays
    if n, perr := strconv.Atoi(c.QueryParam("days")); perr == nil && n > 0 && n <= 366 {
        days = n
    }
    today := model.Day(h.now())
    ctx, cancel := reqCtx(c)
    defer cancel()

    events, err := h.repo.Between(ctx, uid, today.Format(model.DateLayout), today.AddDate(0, 0, days).Format(model.DateLayout))
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, events)
}

// yearMonth reads ?year=&month=, falling back to the current month for
// missing or out-of-range values.
func (h *EventHandler) yearMonth(c echo.Context) (int, time.Month) {
    now := h.now()
    year, month := now.Year(), now.Month()
    if y, err := strconv.Atoi(c.QueryParam("year")); err == nil && y >= 1970 && y <= 9999 {
        year = y
    }
    if m, err := strconv.Atoi(c.QueryParam("month")); err == nil && m >= 1 && m <= 12 {
        month = time.Month(m)
    }
    return year, month
}
