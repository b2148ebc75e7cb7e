package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/telesdesk/helpdesk-service/internal/events"
	"github.com/telesdesk/helpdesk-service/internal/realtime"
)

// NotificationService bridges domain events onto the realtime change
// feed so other sessions re-fetch, and logs each event.
type NotificationService struct {
	dispatcher events.Dispatcher
	feed       realtime.Feed
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, feed realtime.Feed, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		feed:       feed,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketChanged(realtime.ChangeInsert))
	n.dispatcher.Subscribe(events.EventTicketAccepted, n.handleTicketChanged(realtime.ChangeUpdate))
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketChanged(realtime.ChangeUpdate))
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleMessageAdded)
}

func (n *NotificationService) handleTicketChanged(change realtime.ChangeType) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info("ticket changed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
		n.publish(ctx, realtime.ChangeEvent{
			Table: "tickets",
			Type:  change,
			RowID: event.TicketID,
		})
		return nil
	}
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket message added", zap.String("ticket_id", event.TicketID))
	rowID := event.TicketID
	if payload, ok := event.Payload.(events.TicketMessageAddedPayload); ok {
		rowID = payload.MessageID
	}
	n.publish(ctx, realtime.ChangeEvent{
		Table:    "ticket_messages",
		Type:     realtime.ChangeInsert,
		RowID:    rowID,
		TicketID: event.TicketID,
	})
	return nil
}

func (n *NotificationService) publish(ctx context.Context, event realtime.ChangeEvent) {
	if n.feed == nil {
		return
	}
	if err := n.feed.Publish(ctx, event); err != nil {
		n.logger.Warn("change feed publish failed",
			zap.Error(err),
			zap.String("table", event.Table))
	}
}
