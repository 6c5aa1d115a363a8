package repository

import (
	"database/sql"
	"strings"

	"github.com/studentplanner/planner/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// dateString renders a DATE column.  Both drivers hand DATE values back as
// time.Time (MySQL with parseTime, sqlite by declared column type).
func dateString(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(model.DateLayout)
	return &s
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// nullable maps nil and blank strings to SQL NULL.
func nullable(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}

// isDuplicate reports a unique-key violation on either driver.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a case-insensitive substring pattern for
// `LOWER(col) LIKE ? ESCAPE '!'`.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
