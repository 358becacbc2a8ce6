// Package secondary defines the secondary ports (driven adapters) for the
// application: the remote POS backend, the push hint channel, and the small
// devices the engines drive (chime, clock).
package secondary

import (
	"context"

	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/core/order"
)

// AcceptRequest carries the parameters confirmed on the accept surface.
// EstimatedMinutes defaults to 30 when the operator leaves it untouched;
// the delivery fields are pre-filled from the order being accepted.
type AcceptRequest struct {
	OrderID          int64
	EstimatedMinutes int
	DeliveryAddress  string
	PickupInStore    bool
	Notes            string
}

// ChangedLine is one entry of a pending-changes diff.
type ChangedLine struct {
	Name string
	Qty  int
	Note string
}

// ChangeDiff is the added/modified/removed breakdown of a customer's
// modification to an already-placed order. Fetched lazily when the
// operator opens the changes surface.
type ChangeDiff struct {
	Added    []ChangedLine
	Modified []ChangedLine
	Removed  []ChangedLine
}

// FeedResponse is one poll's result for a notification feed. Dispatched is
// only populated for the web feed: it lists order ids the backend has
// dispatched since they were announced, which is the explicit prune signal
// for the otherwise additive web cache.
type FeedResponse struct {
	Notifications []notify.Notification
	Dispatched    []string
}

// OrderGateway is the remote POS backend as seen by the client. Every call
// is a single request/response; `success: false` in a well-formed response
// surfaces as an error just like a transport failure.
type OrderGateway interface {
	// FetchBoard retrieves the full unfiltered order snapshot.
	FetchBoard(ctx context.Context) (order.Snapshot, error)

	// SetState moves an order to an explicit state (drag-to-column).
	SetState(ctx context.Context, orderID int64, state order.State) error

	// Accept confirms a new order with the chosen parameters.
	Accept(ctx context.Context, req AcceptRequest) error

	// Reject rejects an order. The reason has already passed the guard.
	Reject(ctx context.Context, orderID int64, reason string) error

	// Advance moves an order to its server-determined successor state.
	Advance(ctx context.Context, orderID int64) error

	// ChangeDiff fetches the pending-changes diff for an order.
	ChangeDiff(ctx context.Context, orderID int64) (*ChangeDiff, error)

	// AcceptChanges / RejectChanges resolve a pending-changes diff.
	AcceptChanges(ctx context.Context, orderID int64, reason string) error
	RejectChanges(ctx context.Context, orderID int64, reason string) error

	// ConfirmCancellation confirms a customer-requested cancellation.
	ConfirmCancellation(ctx context.Context, orderID int64, notes string) error

	// ToggleLine flips one order line's prepared flag.
	ToggleLine(ctx context.Context, orderID, lineID int64) error

	// PollFeed fetches the current notification list for one feed.
	PollFeed(ctx context.Context, feed notify.Feed) (FeedResponse, error)

	// MarkDispatched marks a notification's order as dispatched. Shared by
	// the delivery and pickup dismiss actions.
	MarkDispatched(ctx context.Context, notificationID string) error
}
