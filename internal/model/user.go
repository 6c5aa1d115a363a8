package model

import (
	"encoding/json"
	"strings"
	"time"
)

// User is an account.  Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID                 uint64    `json:"id"`
	Firstname          string    `json:"firstname"`
	Lastname           string    `json:"lastname"`
	Email              string    `json:"email"`
	Password           string    `json:"-"`
	StudentID          *string   `json:"studentId"`
	University         *string   `json:"university"`
	Bio                *string   `json:"bio"`
	DarkMode           bool      `json:"darkMode"`
	EmailNotifications bool      `json:"emailNotifications"`
	Enabled            bool      `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		FullName string `json:"fullName"`
	}{alias(u), u.FullName()})
}
