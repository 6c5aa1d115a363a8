package model

import (
	"encoding/json"
	"time"
)

// Habit enumerations and their defaults.
var (
	HabitCategories  = []string{"studia", "zdrowie", "praca", "osobiste"}
	HabitFrequencies = []string{"daily", "3x", "custom"}
	HabitColors      = []string{"blue", "green", "purple", "orange"}
	HabitIcons       = []string{"study", "fitness", "meditate", "check"}
)

const (
	DefaultHabitCategory  = "zdrowie"
	DefaultHabitFrequency = "daily"
	DefaultHabitColor     = "blue"
	DefaultHabitIcon      = "check"
	DefaultPointsPerDay   = 10
)

var frequencyLabels = map[string]string{
	"daily":  "Codziennie",
	"3x":     "3× w tygodniu",
	"custom": "Własny",
}

// Habit is a recurring practice.  Week is derived from the completion log
// and is not stored on the habit row.
type Habit struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"userId"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Frequency    string    `json:"frequency"`
	AccentColor  string    `json:"accentColor"`
	Icon         string    `json:"icon"`
	PointsPerDay int       `json:"pointsPerDay"`
	StreakDays   int       `json:"streakDays"`
	Week         []WeekDay `json:"week"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewHabit returns a habit with every field at its default and no streak.
func NewHabit(userID uint64, title string) *Habit {
	return &Habit{
		UserID:       userID,
		Title:        title,
		Category:     DefaultHabitCategory,
		Frequency:    DefaultHabitFrequency,
		AccentColor:  DefaultHabitColor,
		Icon:         DefaultHabitIcon,
		PointsPerDay: DefaultPointsPerDay,
		Week:         []WeekDay{},
	}
}

func (h *Habit) SetCategory(v string)  { h.Category = clamp(v, HabitCategories, DefaultHabitCategory) }
func (h *Habit) SetFrequency(v string) { h.Frequency = clamp(v, HabitFrequencies, DefaultHabitFrequency) }
func (h *Habit) SetAccentColor(v string) {
	h.AccentColor = clamp(v, HabitColors, DefaultHabitColor)
}
func (h *Habit) SetIcon(v string) { h.Icon = clamp(v, HabitIcons, DefaultHabitIcon) }

// SetPointsPerDay stores n, floored at zero.
func (h *Habit) SetPointsPerDay(n int) { h.PointsPerDay = max(0, n) }

// SetStreakDays stores n, floored at zero.
func (h *Habit) SetStreakDays(n int) { h.StreakDays = max(0, n) }

// Normalize clamps every enumerated and non-negative field.
func (h *Habit) Normalize() {
	h.SetCategory(h.Category)
	h.SetFrequency(h.Frequency)
	h.SetAccentColor(h.AccentColor)
	h.SetIcon(h.Icon)
	h.SetPointsPerDay(h.PointsPerDay)
	h.SetStreakDays(h.StreakDays)
}

// FrequencyLabel is the Polish display label of the frequency.
func (h *Habit) FrequencyLabel() string {
	if l, ok := frequencyLabels[h.Frequency]; ok {
		return l
	}
	return h.Frequency
}

// DoneOn reports whether the week view marks date (YYYY-MM-DD) as done.
func (h *Habit) DoneOn(date string) bool {
	for _, d := range h.Week {
		if d.Date == date {
			return d.Done
		}
	}
	return false
}

func (h Habit) MarshalJSON() ([]byte, error) {
	type alias Habit
	a := alias(h)
	if a.Week == nil {
		a.Week = []WeekDay{}
	}
	return json.Marshal(struct {
		alias
		FrequencyLabel string `json:"frequencyLabel"`
	}{a, h.FrequencyLabel()})
}
