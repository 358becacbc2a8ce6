package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/ports/primary"
	"github.com/example/comanda/internal/ports/secondary"
)

// NotificationIntervals configures the feed poll cadence.
type NotificationIntervals struct {
	InitialDelay time.Duration
	Poll         time.Duration
}

// DefaultNotificationIntervals matches production: first poll after 3s,
// then every 15s.
func DefaultNotificationIntervals() NotificationIntervals {
	return NotificationIntervals{InitialDelay: 3 * time.Second, Poll: 15 * time.Second}
}

// NotificationDedupService implements primary.NotificationService. It owns
// one cache per feed and reconciles each against the server on every poll:
// delivery and pickup are replaced wholesale, the web feed merges additively
// and prunes only on the server's explicit dispatch signal.
type NotificationDedupService struct {
	gateway secondary.OrderGateway
	hints   secondary.HintListener // optional, may be nil
	board   BoardRefresher         // optional, may be nil
	logger  *slog.Logger

	intervals NotificationIntervals
	caches    map[notify.Feed]*notify.Cache
	nudge     chan struct{}

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ primary.NotificationService = (*NotificationDedupService)(nil)

// NewNotificationDedupService creates the engine. hints may be nil when no
// push channel is configured; board may be nil when no board is on screen,
// in which case viewing a web order only acknowledges it.
func NewNotificationDedupService(gateway secondary.OrderGateway, hints secondary.HintListener, board BoardRefresher, logger *slog.Logger, intervals NotificationIntervals) *NotificationDedupService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	caches := make(map[notify.Feed]*notify.Cache, len(notify.Feeds))
	for _, f := range notify.Feeds {
		caches[f] = notify.NewCache(f)
	}
	return &NotificationDedupService{
		gateway:   gateway,
		hints:     hints,
		board:     board,
		logger:    logger,
		intervals: intervals,
		caches:    caches,
		nudge:     make(chan struct{}, 1),
	}
}

// Start schedules the poll loop and, when configured, the push hint
// listener. Starting a running service is a no-op.
func (s *NotificationDedupService) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.pollLoop(loopCtx)

	if s.hints != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.hints.Listen(loopCtx, s.Nudge); err != nil {
				// Hints are best-effort; polling alone keeps feeds current.
				s.logger.Warn("hint listener stopped", "error", err)
			}
		}()
	}
	return nil
}

func (s *NotificationDedupService) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	initial := time.NewTimer(s.intervals.InitialDelay)
	defer initial.Stop()
	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		s.PollOnce(ctx)
	case <-s.nudge:
		s.PollOnce(ctx)
	}

	ticker := time.NewTicker(s.intervals.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PollOnce(ctx)
		case <-s.nudge:
			s.PollOnce(ctx)
		}
	}
}

// Nudge requests an immediate poll. Used by the push hint channel; a hint
// is never treated as authoritative data, only as a reason to poll now.
func (s *NotificationDedupService) Nudge() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// PollOnce runs one poll cycle across all three feeds. A feed's failure is
// logged and swallowed; its cache keeps the last good state until the next
// tick self-heals.
func (s *NotificationDedupService) PollOnce(ctx context.Context) {
	for _, feed := range notify.Feeds {
		resp, err := s.gateway.PollFeed(ctx, feed)
		if err != nil {
			s.logger.Warn("feed poll failed", "feed", string(feed), "error", err)
			continue
		}
		cache := s.caches[feed]
		switch feed {
		case notify.FeedWeb:
			cache.Merge(resp.Notifications)
			cache.Prune(resp.Dispatched)
		default:
			cache.Replace(resp.Notifications)
		}
	}
}

// Indicators returns the floating-indicator state for every feed.
func (s *NotificationDedupService) Indicators() []notify.Indicator {
	out := make([]notify.Indicator, 0, len(notify.Feeds))
	for _, f := range notify.Feeds {
		out = append(out, s.caches[f].Indicator())
	}
	return out
}

// Items returns the cached notifications for one feed.
func (s *NotificationDedupService) Items(feed notify.Feed) []notify.Notification {
	cache, ok := s.caches[feed]
	if !ok {
		return nil
	}
	return cache.Items()
}

// Dismiss issues the mark-dispatched call and removes the item from the
// local cache immediately. The removal is optimistic: the remote action is
// idempotent and low-stakes, and the next poll reconciles either way.
// Web-order notifications are refused: their cache only shrinks on the
// server's dispatch signal, never on a local action.
func (s *NotificationDedupService) Dismiss(ctx context.Context, feed notify.Feed, notificationID string) error {
	if feed == notify.FeedWeb {
		return fmt.Errorf("web-order notifications cannot be dismissed; they clear when the order is dispatched")
	}
	cache, ok := s.caches[feed]
	if !ok {
		return fmt.Errorf("unknown feed %q", feed)
	}
	err := s.gateway.MarkDispatched(ctx, notificationID)
	cache.Dismiss(notificationID)
	if err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}

// MarkViewed acknowledges a web-order notification without touching the
// cache: the alert stays actionable until the order is dispatched. When a
// board is attached, viewing refreshes it so the caller can show the order
// in context.
func (s *NotificationDedupService) MarkViewed(ctx context.Context, notificationID string) error {
	s.logger.Info("web order viewed", "notification", notificationID)
	if s.board != nil {
		if err := s.board.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh board for viewed order: %w", err)
		}
	}
	return nil
}

// Close stops the poll loop and the hint listener. Idempotent.
func (s *NotificationDedupService) Close() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	if s.hints != nil {
		if err := s.hints.Close(); err != nil {
			s.logger.Warn("closing hint listener", "error", err)
		}
	}
	s.running = false
	return nil
}
