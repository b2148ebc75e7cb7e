package domain

import "time"

// TicketMessage captures communications in a ticket thread. Messages are
// append-only; they are never edited or deleted.
type TicketMessage struct {
	ID         string
	TicketID   string
	SenderID   string
	Message    string
	IsInternal bool
	CreatedAt  time.Time

	// SenderName is joined from profiles for display.
	SenderName string
}
