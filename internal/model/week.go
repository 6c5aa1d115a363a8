package model

import (
	"sort"
	"time"
)

var weekdayLabels = [7]string{"pon", "wt", "śr", "czw", "pt", "sob", "nd"}

// WeekDay is one entry of a habit's week view.
type WeekDay struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Done bool   `json:"done"`
}

// WeekBounds returns the Monday and Sunday of the week containing today.
func WeekBounds(today time.Time) (monday, sunday time.Time) {
	d := Day(today)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	monday = d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// BuildWeek lays out Monday..Sunday of today's week, marking the dates
// present in completed (keys are YYYY-MM-DD).
func BuildWeek(today time.Time, completed map[string]bool) []WeekDay {
	monday, _ := WeekBounds(today)
	week := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := monday.AddDate(0, 0, i).Format(DateLayout)
		week = append(week, WeekDay{Day: weekdayLabels[i], Date: date, Done: completed[date]})
	}
	return week
}

// Streak counts consecutive completed days ending today or yesterday.
// Dates after today are ignored; any gap ends the streak.
func Streak(today time.Time, dates []string) int {
	day := Day(today)
	seen := make(map[time.Time]bool, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, s := range dates {
		t, err := ParseDate(s)
		if err != nil || t.After(day) || seen[t] {
			continue
		}
		seen[t] = true
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	if gap := day.Sub(days[0]); gap > 24*time.Hour {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}
