package dto

import (
	"time"

	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Department  string                `json:"department"`
	SLADueAt    *time.Time            `json:"sla_due_at"`
}

// RejectTicketRequest payload.
type RejectTicketRequest struct {
	Reason string `json:"reason"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Message string `json:"message"`
}

// SLABadge is the per-row due date badge.
type SLABadge struct {
	Text    string `json:"text"`
	Variant string `json:"variant"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Department    string                `json:"department"`
	RequesterID   string                `json:"requester_id"`
	RequesterName string                `json:"requester_name"`
	AssigneeID    *string               `json:"assignee_id"`
	AssigneeName  *string               `json:"assignee_name"`
	SLADueAt      *time.Time            `json:"sla_due_at"`
	SLABadge      SLABadge              `json:"sla_badge"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with thread and audit trail.
type TicketDetailResponse struct {
	TicketSummary
	Description string                  `json:"description"`
	Messages    []TicketMessageResponse `json:"messages"`
	History     []TicketHistoryResponse `json:"history"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketHistoryResponse represents an audit entry.
type TicketHistoryResponse struct {
	ID              string                     `json:"id"`
	Action          domain.TicketHistoryAction `json:"action"`
	Details         string                     `json:"details"`
	PerformedBy     *string                    `json:"performed_by"`
	PerformedByName *string                    `json:"performed_by_name"`
	CreatedAt       time.Time                  `json:"created_at"`
}
