package domain

import "time"

// TicketHistoryAction labels an audit trail entry.
type TicketHistoryAction string

const (
	HistoryActionCreated   TicketHistoryAction = "created"
	HistoryActionAccepted  TicketHistoryAction = "accepted"
	HistoryActionRejected  TicketHistoryAction = "rejected"
	HistoryActionCompleted TicketHistoryAction = "completed"
)

// TicketHistory is an immutable audit trail entry. Every status-changing
// operation appends exactly one entry; repeated calls that pass their
// preconditions each append their own.
type TicketHistory struct {
	ID          string
	TicketID    string
	PerformedBy *string
	Action      TicketHistoryAction
	Details     string
	CreatedAt   time.Time

	// PerformedByName is joined from profiles for display.
	PerformedByName *string
}
