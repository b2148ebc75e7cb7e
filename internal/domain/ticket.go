package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values are the
// persisted literals and are matched case-sensitively everywhere.
type TicketStatus string

const (
	TicketStatusNew       TicketStatus = "new"
	TicketStatusWaiting   TicketStatus = "waiting"
	TicketStatusAccepted  TicketStatus = "accepted"
	TicketStatusProgress  TicketStatus = "progress"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusRejected  TicketStatus = "rejected"

	// TicketStatusClosed exists in legacy rows only; the lifecycle engine
	// never produces it but readers treat it as terminal.
	TicketStatusClosed TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	RequesterID string
	AssigneeID  *string
	Department  string
	SLADueAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Display names joined from profiles; zero values when the profile
	// row is gone.
	RequesterName string
	AssigneeName  *string
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case TicketStatusCompleted, TicketStatusRejected, TicketStatusClosed:
		return true
	}
	return false
}

// allowedTransitions encodes the status state machine. Rejection is
// permitted from any non-terminal state, including assigned ones.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:       {TicketStatusWaiting, TicketStatusAccepted, TicketStatusRejected},
	TicketStatusWaiting:   {TicketStatusAccepted, TicketStatusRejected},
	TicketStatusAccepted:  {TicketStatusProgress, TicketStatusCompleted, TicketStatusRejected},
	TicketStatusProgress:  {TicketStatusCompleted, TicketStatusRejected},
	TicketStatusCompleted: {},
	TicketStatusRejected:  {},
}

// CanTransition reports whether the status state machine allows moving
// from current to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
