package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/telesdesk/helpdesk-service/internal/domain"
	"github.com/telesdesk/helpdesk-service/internal/events"
	"github.com/telesdesk/helpdesk-service/internal/repository"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

// TicketService owns the ticket lifecycle state machine. The acting
// profile is always an explicit parameter; preconditions are validated
// before any store write so a failed operation leaves no partial state.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Department  string
	SLADueAt    *time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket for the requester. Tickets always start in
// "new" with no assignee.
func (s *TicketService) CreateTicket(ctx context.Context, requester *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	if requester == nil {
		return nil, apperrors.NewUnauthorized("requester required")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusNew,
		Priority:    input.Priority,
		RequesterID: requester.ID,
		Department:  strings.TrimSpace(input.Department),
		SLADueAt:    input.SLADueAt,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	s.recordHistory(ctx, requester.ID, ticket.ID, domain.HistoryActionCreated,
		fmt.Sprintf("created by %s", requester.FullName))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &requester.ID,
		Payload: events.TicketCreatedPayload{
			Department: ticket.Department,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets filtered by status class.
func (s *TicketService) ListTickets(ctx context.Context, class repository.StatusClass) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByClass(ctx, class)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its thread and audit trail. Internal
// messages are hidden from plain users.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, []domain.TicketMessage, []domain.TicketHistory, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, apperrors.NewStoreError(err)
	}
	if actor == nil || !actor.Role.CanTriage() {
		visible := make([]domain.TicketMessage, 0, len(msgs))
		for _, msg := range msgs {
			if !msg.IsInternal {
				visible = append(visible, msg)
			}
		}
		msgs = visible
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, apperrors.NewStoreError(err)
	}
	return ticket, msgs, history, nil
}

// AcceptTicket assigns an unclaimed new/waiting ticket to the acting
// agent and moves it to "accepted". The claim is a conditional update so
// two agents racing for the same ticket cannot both win.
func (s *TicketService) AcceptTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	if err := requireTriage(actor); err != nil {
		return nil, err
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeID != nil {
		return nil, apperrors.NewInvalidTransition("ticket already assigned", map[string]any{"ticket_id": ticketID})
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusAccepted) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot accept ticket in status %q", ticket.Status),
			map[string]any{"ticket_id": ticketID, "status": ticket.Status})
	}

	claimed, err := s.tickets.Claim(ctx, ticketID, actor.ID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	if !claimed {
		// Lost a concurrent-accept race between the read and the claim.
		return nil, apperrors.NewInvalidTransition("ticket already assigned", map[string]any{"ticket_id": ticketID})
	}

	s.recordHistory(ctx, actor.ID, ticketID, domain.HistoryActionAccepted,
		fmt.Sprintf("accepted by %s", actor.FullName))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAccepted,
		TicketID: ticketID,
		ActorID:  &actor.ID,
		Payload:  events.TicketAcceptedPayload{AssigneeID: actor.ID},
	})
	return s.fetchTicket(ctx, ticketID)
}

// RejectTicket moves a non-terminal ticket to "rejected", clearing any
// assignee, recording the reason as a message visible to the requester,
// and auditing the action.
func (s *TicketService) RejectTicket(ctx context.Context, actor *domain.Profile, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireTriage(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusRejected) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot reject ticket in status %q", ticket.Status),
			map[string]any{"ticket_id": ticketID, "status": ticket.Status})
	}

	oldStatus := ticket.Status
	// Rejection also releases the assignee: a terminal ticket never keeps
	// an agent bound to it.
	if err := s.tickets.Reject(ctx, ticketID); err != nil {
		return nil, mapStoreErr(err, ticketID)
	}

	msg := &domain.TicketMessage{
		TicketID:   ticketID,
		SenderID:   actor.ID,
		Message:    fmt.Sprintf("Chamado recusado. Motivo: %s", reason),
		IsInternal: false,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	s.recordHistory(ctx, actor.ID, ticketID, domain.HistoryActionRejected,
		fmt.Sprintf("rejected: %s", reason))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		ActorID:  &actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.TicketStatusRejected,
			Comment:   reason,
		},
	})
	return s.fetchTicket(ctx, ticketID)
}

// SendMessage appends a public message to an assigned ticket's thread.
// A message exchange implies an active conversation, so unassigned
// tickets refuse messages.
func (s *TicketService) SendMessage(ctx context.Context, actor *domain.Profile, ticketID, text string) (*domain.TicketMessage, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("sender required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text required", nil)
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeID == nil {
		return nil, apperrors.NewInvalidTransition("ticket has no assignee", map[string]any{"ticket_id": ticketID})
	}

	msg := &domain.TicketMessage{
		TicketID:   ticketID,
		SenderID:   actor.ID,
		Message:    text,
		IsInternal: false,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		ActorID:  &actor.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			SenderID:    actor.ID,
			IsInternal:  msg.IsInternal,
			BodyPreview: preview(text, 120),
		},
	})
	return msg, nil
}

// CompleteTicket resolves an assigned ticket in "accepted" or "progress".
func (s *TicketService) CompleteTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	if err := requireTriage(actor); err != nil {
		return nil, err
	}

	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeID == nil {
		return nil, apperrors.NewInvalidTransition("ticket has no assignee", map[string]any{"ticket_id": ticketID})
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusCompleted) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot complete ticket in status %q", ticket.Status),
			map[string]any{"ticket_id": ticketID, "status": ticket.Status})
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusCompleted); err != nil {
		return nil, mapStoreErr(err, ticketID)
	}

	s.recordHistory(ctx, actor.ID, ticketID, domain.HistoryActionCompleted,
		fmt.Sprintf("completed by %s", actor.FullName))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		ActorID:  &actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.TicketStatusCompleted,
		},
	})
	return s.fetchTicket(ctx, ticketID)
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreErr(err, ticketID)
	}
	return ticket, nil
}

func (s *TicketService) recordHistory(ctx context.Context, actorID, ticketID string, action domain.TicketHistoryAction, details string) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		PerformedBy: &actorID,
		Action:      action,
		Details:     details,
	}
	// Audit failures must not roll back the primary mutation.
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireTriage(actor *domain.Profile) error {
	if actor == nil {
		return apperrors.NewUnauthorized("actor required")
	}
	if !actor.Role.CanTriage() {
		return apperrors.NewForbidden("agent or admin role required")
	}
	return nil
}

func mapStoreErr(err error, ticketID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.NewStoreError(err)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
