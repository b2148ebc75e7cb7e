package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/telesdesk/helpdesk-service/internal/api/dto"
	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/domain"
	"github.com/telesdesk/helpdesk-service/internal/repository"
	"github.com/telesdesk/helpdesk-service/internal/service"
	"github.com/telesdesk/helpdesk-service/internal/sla"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Department:  req.Department,
		SLADueAt:    req.SLADueAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// ListTickets GET /tickets?class=active|completed.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	class := repository.StatusClass(c.Query("class"))
	switch class {
	case repository.StatusClassAll, repository.StatusClassActive, repository.StatusClassCompleted:
	default:
		return apperrors.NewValidationError("unknown class", map[string]any{"class": class})
	}

	tickets, err := h.service.ListTickets(c.Context(), class)
	if err != nil {
		return err
	}
	now := time.Now()
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	ticket, msgs, history, err := h.service.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs, history)})
}

// AcceptTicket POST /tickets/:id/accept.
func (h *TicketsHandler) AcceptTicket(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	ticket, err := h.service.AcceptTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// RejectTicket POST /tickets/:id/reject.
func (h *TicketsHandler) RejectTicket(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	var req dto.RejectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.RejectTicket(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// CompleteTicket POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	ticket, err := h.service.CompleteTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.SendMessage(c.Context(), actor, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func ticketSummary(ticket *domain.Ticket, now time.Time) dto.TicketSummary {
	badge := sla.RowBadge(ticket.SLADueAt, now)
	return dto.TicketSummary{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		Department:    ticket.Department,
		RequesterID:   ticket.RequesterID,
		RequesterName: ticket.RequesterName,
		AssigneeID:    ticket.AssigneeID,
		AssigneeName:  ticket.AssigneeName,
		SLADueAt:      ticket.SLADueAt,
		SLABadge:      dto.SLABadge{Text: badge.Text, Variant: string(badge.Variant)},
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, messages []domain.TicketMessage, history []domain.TicketHistory) dto.TicketDetailResponse {
	msgs := make([]dto.TicketMessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, messageResponse(&messages[i]))
	}
	entries := make([]dto.TicketHistoryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, dto.TicketHistoryResponse{
			ID:              entry.ID,
			Action:          entry.Action,
			Details:         entry.Details,
			PerformedBy:     entry.PerformedBy,
			PerformedByName: entry.PerformedByName,
			CreatedAt:       entry.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket, time.Now()),
		Description:   ticket.Description,
		Messages:      msgs,
		History:       entries,
	}
}

func messageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Message:    msg.Message,
		IsInternal: msg.IsInternal,
		CreatedAt:  msg.CreatedAt,
	}
}
