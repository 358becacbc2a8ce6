package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/primary"
	"github.com/example/comanda/internal/ports/secondary"
)

// BoardRefresher is the slice of the board service the transition service
// needs: a full refresh after each successful transition.
type BoardRefresher interface {
	Refresh(ctx context.Context) error
	Snapshot() order.Snapshot
}

// TransitionServiceImpl implements primary.TransitionService. Each
// transition runs its guard locally, submits a dedicated remote call, and
// on success triggers a full board refresh. No local state is patched:
// only the server knows whether side effects succeeded, so reload is the
// only honest confirmation.
type TransitionServiceImpl struct {
	gateway secondary.OrderGateway
	board   BoardRefresher
	logger  *slog.Logger

	// DefaultEstimatedMinutes pre-fills the accept surface.
	DefaultEstimatedMinutes int
}

var _ primary.TransitionService = (*TransitionServiceImpl)(nil)

// NewTransitionService creates a TransitionService with injected
// dependencies.
func NewTransitionService(gateway secondary.OrderGateway, board BoardRefresher, logger *slog.Logger) *TransitionServiceImpl {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TransitionServiceImpl{
		gateway:                 gateway,
		board:                   board,
		logger:                  logger,
		DefaultEstimatedMinutes: 30,
	}
}

// refreshAfter reloads the board after a successful transition. A failed
// reload is not the transition's failure: the board service surfaces it in
// its own error banner and the next scheduled refresh self-heals.
func (s *TransitionServiceImpl) refreshAfter(ctx context.Context, action string) {
	if err := s.board.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after transition failed", "action", action, "error", err)
	}
}

// AcceptPrompt builds the pre-filled accept surface for an order: the
// default estimated time and the delivery fields derived from the order.
func (s *TransitionServiceImpl) AcceptPrompt(ctx context.Context, orderID int64) (primary.AcceptPrompt, error) {
	o, ok := s.board.Snapshot().Find(orderID)
	if !ok {
		return primary.AcceptPrompt{}, fmt.Errorf("order %d not on the board", orderID)
	}
	return primary.AcceptPrompt{
		OrderID:          o.ID,
		OrderName:        o.Name,
		EstimatedMinutes: s.DefaultEstimatedMinutes,
		DeliveryAddress:  o.Address,
		PickupInStore:    o.Fulfillment != order.FulfillmentDelivery,
	}, nil
}

// Accept submits a confirmed accept surface.
func (s *TransitionServiceImpl) Accept(ctx context.Context, req secondary.AcceptRequest) error {
	if err := order.CanAccept(order.AcceptContext{OrderID: req.OrderID, EstimatedMinutes: req.EstimatedMinutes}).Error(); err != nil {
		return err
	}
	if err := s.gateway.Accept(ctx, req); err != nil {
		return fmt.Errorf("accept order %d: %w", req.OrderID, err)
	}
	s.refreshAfter(ctx, "accept")
	return nil
}

// Reject rejects an order. A blank reason is blocked locally before any
// remote call; the rejection surface stays open for the operator to fix.
func (s *TransitionServiceImpl) Reject(ctx context.Context, orderID int64, reason string) error {
	if err := order.CanReject(order.RejectContext{OrderID: orderID, Reason: reason}).Error(); err != nil {
		return err
	}
	if err := s.gateway.Reject(ctx, orderID, reason); err != nil {
		return fmt.Errorf("reject order %d: %w", orderID, err)
	}
	s.refreshAfter(ctx, "reject")
	return nil
}

// Advance moves an order to its server-determined successor state.
func (s *TransitionServiceImpl) Advance(ctx context.Context, orderID int64) error {
	current := order.State("")
	if o, ok := s.board.Snapshot().Find(orderID); ok {
		current = o.State
	}
	if err := order.CanAdvance(order.AdvanceContext{OrderID: orderID, Current: current}).Error(); err != nil {
		return err
	}
	if err := s.gateway.Advance(ctx, orderID); err != nil {
		return fmt.Errorf("advance order %d: %w", orderID, err)
	}
	s.refreshAfter(ctx, "advance")
	return nil
}

// Move submits a drop gesture as an explicit set-state request. A gesture
// missing its order id or target state is ignored without a remote call.
func (s *TransitionServiceImpl) Move(ctx context.Context, ev primary.DropEvent) error {
	if err := order.CanDrop(order.DropContext{OrderID: ev.OrderID, TargetState: ev.TargetState}).Error(); err != nil {
		return err
	}
	if err := s.gateway.SetState(ctx, ev.OrderID, order.State(ev.TargetState)); err != nil {
		return fmt.Errorf("move order %d to %s: %w", ev.OrderID, ev.TargetState, err)
	}
	s.refreshAfter(ctx, "move")
	return nil
}

// ChangeDiff lazily fetches the pending-changes diff for an order.
func (s *TransitionServiceImpl) ChangeDiff(ctx context.Context, orderID int64) (*secondary.ChangeDiff, error) {
	diff, err := s.gateway.ChangeDiff(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch change diff for order %d: %w", orderID, err)
	}
	return diff, nil
}

// DecideChanges accepts or rejects a pending-changes diff.
func (s *TransitionServiceImpl) DecideChanges(ctx context.Context, orderID int64, accept bool, reason string) error {
	if err := order.CanDecideChanges(order.ChangesDecisionContext{OrderID: orderID, Accept: accept, Reason: reason}).Error(); err != nil {
		return err
	}
	var err error
	if accept {
		err = s.gateway.AcceptChanges(ctx, orderID, reason)
	} else {
		err = s.gateway.RejectChanges(ctx, orderID, reason)
	}
	if err != nil {
		return fmt.Errorf("decide changes for order %d: %w", orderID, err)
	}
	s.refreshAfter(ctx, "changes")
	return nil
}

// Cancel confirms a cancellation with optional free-text notes.
func (s *TransitionServiceImpl) Cancel(ctx context.Context, orderID int64, notes string) error {
	if err := order.CanCancel(order.CancelContext{OrderID: orderID}).Error(); err != nil {
		return err
	}
	if err := s.gateway.ConfirmCancellation(ctx, orderID, notes); err != nil {
		return fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	s.refreshAfter(ctx, "cancel")
	return nil
}

// ToggleLine flips a line's prepared flag. It refreshes like every other
// transition but never touches the order's lifecycle state.
func (s *TransitionServiceImpl) ToggleLine(ctx context.Context, orderID, lineID int64) error {
	if orderID <= 0 || lineID <= 0 {
		return fmt.Errorf("order id and line id required")
	}
	if err := s.gateway.ToggleLine(ctx, orderID, lineID); err != nil {
		return fmt.Errorf("toggle line %d on order %d: %w", lineID, orderID, err)
	}
	s.refreshAfter(ctx, "toggle-line")
	return nil
}
