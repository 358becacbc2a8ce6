// Package primary defines the primary ports (driving interfaces) for the
// application: the board, transition, and notification services the CLI
// layer talks to.
package primary

import (
	"context"

	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/core/order"
)

// BoardView is the renderable state of the board at one instant: the
// filtered columns, per-order time readings, the error banner (empty when
// the last refresh succeeded), and whether the sound alert is active.
type BoardView struct {
	Columns     []order.Column
	Readings    map[int64]board.TimeReading
	ErrorBanner string
	SoundActive bool
	Criteria    board.Criteria
}

// BoardService runs the board sync engine: a synchronous initial refresh,
// then autonomous refresh/tick/alert loops until Close.
type BoardService interface {
	// Refresh fetches the snapshot once and reconciles local state.
	// A failed refresh sets the error banner and clears the visible board.
	Refresh(ctx context.Context) error

	// Start launches the refresh loop, the time tick, and (when needed)
	// the sound-alert loop. Starting a started service is a no-op.
	Start(ctx context.Context) error

	// View returns the current renderable board state.
	View() BoardView

	// SetCriteria replaces the filter criteria and re-derives the view.
	SetCriteria(c board.Criteria)

	// ResetCriteria restores the default criteria and re-derives the view.
	ResetCriteria()

	// Close stops every loop the service started. Idempotent; safe on all
	// exit paths.
	Close() error
}
