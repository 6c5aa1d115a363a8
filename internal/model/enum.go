// Package model holds the entities of the planner: tasks, habits, calendar
// events and users.  Enumerated fields are clamped: any value outside the
// closed set is silently replaced by the field's default instead of being
// rejected.  Handlers never report a validation error for an enum field.
package model

import "slices"

// clamp returns v when it is one of allowed, otherwise def.
func clamp(v string, allowed []string, def string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return def
}
