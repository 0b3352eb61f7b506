package entity

import "time"

// Notification is an operator-facing message about an audit finding
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	EntryID     string   `json:"entry_id,omitempty"`
	ClientID    string   `json:"client_id,omitempty"`
}

// NotificationRecord is the persisted delivery log of a Notification
type NotificationRecord struct {
	ID           string       `json:"id"`
	Notification Notification `json:"notification"`
	Status       string       `json:"status"`
	SentAt       *time.Time   `json:"sent_at,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
