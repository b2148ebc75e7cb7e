package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/telesdesk/helpdesk-service/internal/realtime"
	"github.com/telesdesk/helpdesk-service/internal/repository"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

// Service computes dashboard snapshots from the full ticket set and keeps
// the last good snapshot around so a store outage degrades to stale data
// instead of an error page.
type Service struct {
	tickets repository.TicketRepository
	logger  *zap.Logger

	mu       sync.RWMutex
	snapshot *Dashboard
	at       time.Time

	coalescer   *realtime.Coalescer
	unsubscribe []realtime.UnsubscribeFunc
}

// NewService builds the dashboard service.
func NewService(tickets repository.TicketRepository, logger *zap.Logger) *Service {
	return &Service{tickets: tickets, logger: logger}
}

// Snapshot recomputes the dashboard from current store state. All derived
// values share a single time reference captured here.
func (s *Service) Snapshot(ctx context.Context) (*Dashboard, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		if cached, at := s.cached(); cached != nil {
			s.logger.Warn("dashboard refresh failed, serving stale snapshot",
				zap.Error(err), zap.Time("computed_at", at))
			return cached, nil
		}
		return nil, apperrors.NewStoreError(err)
	}

	now := time.Now()
	snapshot := Aggregate(tickets, now)

	s.mu.Lock()
	s.snapshot = &snapshot
	s.at = now
	s.mu.Unlock()

	return &snapshot, nil
}

// Watch subscribes to ticket change notifications and refreshes the cached
// snapshot, coalescing bursts into one recompute per window.
func (s *Service) Watch(ctx context.Context, feed realtime.Feed, window time.Duration) error {
	s.coalescer = realtime.NewCoalescer(window, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Snapshot(refreshCtx); err != nil {
			s.logger.Warn("coalesced dashboard refresh failed", zap.Error(err))
		}
	})

	for _, table := range []string{"tickets", "ticket_messages"} {
		unsub, err := feed.Subscribe(ctx, table, func(realtime.ChangeEvent) {
			s.coalescer.Trigger()
		})
		if err != nil {
			s.StopWatching()
			return err
		}
		s.unsubscribe = append(s.unsubscribe, unsub)
	}
	return nil
}

// StopWatching tears down feed subscriptions and the coalescer.
func (s *Service) StopWatching() {
	if s.coalescer != nil {
		s.coalescer.Stop()
	}
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

func (s *Service) cached() (*Dashboard, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.at
}
