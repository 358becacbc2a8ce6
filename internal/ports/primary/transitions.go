package primary

import (
	"context"

	"github.com/example/comanda/internal/ports/secondary"
)

// AcceptPrompt is the pre-filled accept surface for one order: the
// defaults the operator confirms or edits before submitting.
type AcceptPrompt struct {
	OrderID          int64
	OrderName        string
	EstimatedMinutes int
	DeliveryAddress  string
	PickupInStore    bool
}

// DropEvent is a drag gesture reduced to its intent: the dragged order id
// and the state key of the column it was dropped on. Either may be missing
// when the gesture was sloppy; the guard decides whether it becomes a call.
type DropEvent struct {
	OrderID     int64
	TargetState string
}

// TransitionService submits order lifecycle transitions. Every transition
// is a distinct remote call; on success the board is refreshed in full
// rather than patched locally, because only the server knows whether side
// effects (kitchen tickets, notifications) happened.
type TransitionService interface {
	// AcceptPrompt builds the pre-filled accept surface for an order.
	AcceptPrompt(ctx context.Context, orderID int64) (AcceptPrompt, error)

	// Accept submits a confirmed accept surface.
	Accept(ctx context.Context, req secondary.AcceptRequest) error

	// Reject rejects an order; blocked locally when reason is blank.
	Reject(ctx context.Context, orderID int64, reason string) error

	// Advance asks the server to move an order to its successor state.
	Advance(ctx context.Context, orderID int64) error

	// Move submits a drop gesture as an explicit set-state request.
	// Events failing the drop guard are ignored without a remote call.
	Move(ctx context.Context, ev DropEvent) error

	// ChangeDiff lazily fetches the pending-changes diff for an order.
	ChangeDiff(ctx context.Context, orderID int64) (*secondary.ChangeDiff, error)

	// DecideChanges accepts or rejects a pending-changes diff. Rejecting
	// requires a non-blank reason; accepting does not.
	DecideChanges(ctx context.Context, orderID int64, accept bool, reason string) error

	// Cancel confirms a cancellation with optional free-text notes.
	Cancel(ctx context.Context, orderID int64, notes string) error

	// ToggleLine flips a line's prepared flag. Idempotent in pairs and
	// independent of the order's lifecycle state.
	ToggleLine(ctx context.Context, orderID, lineID int64) error
}
