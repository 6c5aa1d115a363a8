package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in t's own location and returns that
// date at midnight UTC, so dates from different zones compare by value.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string { return Day(t).Format(DateLayout) }

// ParseDate parses a YYYY-MM-DD string.  Anything after the first ten
// characters (a time part sent by some clients) is ignored.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// NormalizeDate returns the canonical YYYY-MM-DD form of s.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
