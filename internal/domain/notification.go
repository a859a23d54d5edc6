package domain

import "time"

// Notification is a persisted notification row, written by the database
// delivery channel.
type Notification struct {
	ID          string
	RecipientID string
	Kind        string
	Title       string
	Body        string
	Payload     map[string]any
	CreatedAt   time.Time
}
