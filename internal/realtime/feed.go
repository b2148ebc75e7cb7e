// Package realtime carries row-change notifications between service
// instances over Redis pub/sub. One channel per table; consumers re-fetch
// from the store on notification rather than trusting event payloads.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeType mirrors the row operation that triggered the notification.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent identifies a changed row. TicketID is set for rows scoped to
// a ticket (messages, history) so subscribers can filter without an extra
// round trip.
type ChangeEvent struct {
	Table    string     `json:"table"`
	Type     ChangeType `json:"type"`
	RowID    string     `json:"row_id"`
	TicketID string     `json:"ticket_id,omitempty"`
}

// UnsubscribeFunc tears down a subscription.
type UnsubscribeFunc func()

// Feed publishes and subscribes to table change notifications.
type Feed interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context, table string, handler func(ChangeEvent)) (UnsubscribeFunc, error)
}

type redisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed builds a Feed backed by Redis pub/sub.
func NewRedisFeed(client *redis.Client, logger *zap.Logger) Feed {
	return &redisFeed{client: client, logger: logger}
}

func channelFor(table string) string {
	return "changes:" + table
}

func (f *redisFeed) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, channelFor(event.Table), payload).Err()
}

func (f *redisFeed) Subscribe(ctx context.Context, table string, handler func(ChangeEvent)) (UnsubscribeFunc, error) {
	sub := f.client.Subscribe(ctx, channelFor(table))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	go func() {
		for msg := range sub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.logger.Warn("malformed change event", zap.Error(err), zap.String("channel", msg.Channel))
				continue
			}
			handler(event)
		}
	}()

	return func() { _ = sub.Close() }, nil
}
