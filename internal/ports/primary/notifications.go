package primary

import (
	"context"

	"github.com/example/comanda/internal/core/notify"
)

// NotificationService runs the notification dedup engine: three feeds
// polled on one cadence, each reconciled under its own policy, driving
// three independent indicators.
type NotificationService interface {
	// Start schedules the poll loop: one poll after a short initial delay,
	// then repeating at the configured interval until Close. Push hints,
	// when wired, trigger an immediate extra poll.
	Start(ctx context.Context) error

	// PollOnce runs a single poll cycle across all three feeds. Per-feed
	// failures are logged and swallowed; the next cycle self-heals.
	PollOnce(ctx context.Context)

	// Indicators returns the current floating-indicator state per feed.
	Indicators() []notify.Indicator

	// Items returns the cached notifications for one feed.
	Items(feed notify.Feed) []notify.Notification

	// Dismiss marks the order dispatched remotely and removes the item
	// from the local cache immediately. The error, if any, reports the
	// remote call's outcome; the local removal stands regardless. The web
	// feed refuses dismissal: its cache only shrinks on the server's
	// dispatch signal.
	Dismiss(ctx context.Context, feed notify.Feed, notificationID string) error

	// MarkViewed acknowledges a web-order notification without removing
	// it: the operator may need to revisit it until it is dispatched.
	// When a board is attached it is refreshed, so the caller can render
	// the viewed order in context.
	MarkViewed(ctx context.Context, notificationID string) error

	// Close stops the poll loop and the hint listener. Idempotent.
	Close() error
}
