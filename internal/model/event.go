package model

import (
	"encoding/json"
	"time"
)

var EventCategories = []string{"uczelnia", "prywatne", "projekt", "sport"}

const DefaultEventCategory = "prywatne"

// AllDayLabel is shown instead of a time range for all-day events.
const AllDayLabel = "Cały dzień"

var eventCategoryColors = map[string]string{
	"uczelnia": "blue",
	"prywatne": "purple",
	"projekt":  "green",
	"sport":    "orange",
}

// CalendarEvent is an entry in a user's calendar.  EventDate is YYYY-MM-DD;
// StartTime and EndTime are HH:MM or HH:MM:SS.
type CalendarEvent struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	EventDate   string    `json:"eventDate"`
	StartTime   *string   `json:"startTime"`
	EndTime     *string   `json:"endTime"`
	AllDay      bool      `json:"allDay"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCalendarEvent returns a timed event in the default category.
func NewCalendarEvent(userID uint64, title, eventDate string) *CalendarEvent {
	return &CalendarEvent{
		UserID:    userID,
		Title:     title,
		EventDate: eventDate,
		Category:  DefaultEventCategory,
	}
}

func (e *CalendarEvent) SetCategory(v string) {
	e.Category = clamp(v, EventCategories, DefaultEventCategory)
}

// Normalize clamps the category.
func (e *CalendarEvent) Normalize() { e.SetCategory(e.Category) }

// CategoryColor is the accent colour of the event's category.
func (e *CalendarEvent) CategoryColor() string {
	if c, ok := eventCategoryColors[e.Category]; ok {
		return c
	}
	return "blue"
}

// TimeRange renders the display time: "Cały dzień", "HH:MM - HH:MM",
// "HH:MM" or "".
func (e *CalendarEvent) TimeRange() string {
	if e.AllDay {
		return AllDayLabel
	}
	start, end := clock(e.StartTime), clock(e.EndTime)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	}
	return ""
}

func clock(t *string) string {
	if t == nil || *t == "" {
		return ""
	}
	s := *t
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	type alias CalendarEvent
	return json.Marshal(struct {
		alias
		CategoryColor string `json:"categoryColor"`
		TimeRange     string `json:"timeRange"`
	}{alias(e), e.CategoryColor(), e.TimeRange()})
}
