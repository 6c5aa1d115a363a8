// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredQueue is the durable queue account events are published to.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published after a new account is stored.  It
// carries enough for the notifier to greet the user without querying the
// primary database.
type UserRegisteredEvent struct {
    UserID             uint64 `json:"user_id"`
    Email              string `json:"email"`
    Firstname          string `json:"firstname"`
    Lastname           string `json:"lastname"`
    EmailNotifications bool   `json:"email_notifications"`
    RegisteredAt       string `json:"registered_at"`
}
