package order

import (
	"fmt"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
// Guards are pure functions that evaluate transition preconditions
// without side effects; a blocked guard means no remote call is made.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// AcceptContext provides context for the accept-order guard.
type AcceptContext struct {
	OrderID          int64
	EstimatedMinutes int
}

// RejectContext provides context for the reject-order guard.
type RejectContext struct {
	OrderID int64
	Reason  string
}

// AdvanceContext provides context for the advance guard.
type AdvanceContext struct {
	OrderID int64
	Current State
}

// DropContext provides context for a drag-and-drop move. TargetState is the
// raw state key read from the drop target; it may be absent or garbage.
type DropContext struct {
	OrderID     int64
	TargetState string
}

// ChangesDecisionContext provides context for accepting or rejecting a
// pending-changes diff.
type ChangesDecisionContext struct {
	OrderID int64
	Accept  bool
	Reason  string
}

// CancelContext provides context for a cancellation confirmation.
type CancelContext struct {
	OrderID int64
}

// CanAccept evaluates whether an order can be accepted.
// Rules:
// - Order id must be present
// - Estimated minutes must not be negative
func CanAccept(ctx AcceptContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "order id required"}
	}
	if ctx.EstimatedMinutes < 0 {
		return GuardResult{Allowed: false, Reason: "estimated minutes must not be negative"}
	}
	return GuardResult{Allowed: true}
}

// CanReject evaluates whether an order can be rejected.
// Rules:
// - Order id must be present
// - Rejection reason must be non-empty after trimming whitespace
func CanReject(ctx RejectContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "order id required"}
	}
	if strings.TrimSpace(ctx.Reason) == "" {
		return GuardResult{Allowed: false, Reason: "a rejection reason is required"}
	}
	return GuardResult{Allowed: true}
}

// CanAdvance evaluates whether an order may move to its next state.
// The successor is chosen by the server; the client only refuses to
// advance orders that are already terminal.
func CanAdvance(ctx AdvanceContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "order id required"}
	}
	if ctx.Current.Terminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("order %d is %s and cannot advance", ctx.OrderID, ctx.Current),
		}
	}
	return GuardResult{Allowed: true}
}

// CanDrop evaluates whether a drop gesture produces a transition.
// Rules:
// - Both the dragged order id and the target state key must be present
// - The target state key must be a known state
// A drop that fails this guard is ignored; no remote call is issued.
func CanDrop(ctx DropContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "drop carried no order id"}
	}
	if strings.TrimSpace(ctx.TargetState) == "" {
		return GuardResult{Allowed: false, Reason: "drop carried no target state"}
	}
	if !State(ctx.TargetState).Valid() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown target state %q", ctx.TargetState),
		}
	}
	return GuardResult{Allowed: true}
}

// CanDecideChanges evaluates whether a pending-changes decision can be
// submitted. Accepting needs no reason; rejecting needs a non-blank one.
func CanDecideChanges(ctx ChangesDecisionContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "order id required"}
	}
	if !ctx.Accept && strings.TrimSpace(ctx.Reason) == "" {
		return GuardResult{Allowed: false, Reason: "a reason is required to reject changes"}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether a cancellation confirmation can be submitted.
// Notes are free text and never required.
func CanCancel(ctx CancelContext) GuardResult {
	if ctx.OrderID <= 0 {
		return GuardResult{Allowed: false, Reason: "order id required"}
	}
	return GuardResult{Allowed: true}
}
