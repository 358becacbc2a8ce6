// Package app implements the primary ports: the board sync engine, the
// notification dedup engine, and the transition service. Services depend on
// secondary ports only, so every engine is testable with in-memory mocks.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/primary"
	"github.com/example/comanda/internal/ports/secondary"
)

// BoardSyncIntervals configures the engine's three loops.
type BoardSyncIntervals struct {
	Refresh time.Duration // full snapshot poll
	Alert   time.Duration // sound-alert repeat
	Tick    time.Duration // time-reading recompute
}

// DefaultBoardSyncIntervals matches the production cadence: refresh every
// 30s, alert every 10s, tick every second.
func DefaultBoardSyncIntervals() BoardSyncIntervals {
	return BoardSyncIntervals{Refresh: 30 * time.Second, Alert: 10 * time.Second, Tick: time.Second}
}

// BoardSyncService implements primary.BoardService. All mutable state is
// guarded by mu; the loops are torn down by Close on every exit path.
type BoardSyncService struct {
	gateway   secondary.OrderGateway
	chime     secondary.Chime
	clock     secondary.Clock
	logger    *slog.Logger
	intervals BoardSyncIntervals

	mu       sync.Mutex
	full     order.Snapshot
	view     order.Snapshot
	criteria board.Criteria
	readings map[int64]board.TimeReading
	banner   string
	fetchSeq uint64 // last issued fetch sequence
	applied  uint64 // sequence of the snapshot currently applied

	tracker *board.TimeTracker

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	alertMu   sync.Mutex
	alertStop chan struct{}
	alertWG   sync.WaitGroup
}

var _ primary.BoardService = (*BoardSyncService)(nil)

// NewBoardSyncService creates the board engine. A nil clock defaults to the
// system clock; a nil logger discards.
func NewBoardSyncService(gateway secondary.OrderGateway, chime secondary.Chime, clock secondary.Clock, logger *slog.Logger, intervals BoardSyncIntervals) *BoardSyncService {
	if clock == nil {
		clock = secondary.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BoardSyncService{
		gateway:   gateway,
		chime:     chime,
		clock:     clock,
		logger:    logger,
		intervals: intervals,
		criteria:  board.DefaultCriteria(),
		readings:  make(map[int64]board.TimeReading),
		tracker:   board.NewTimeTracker(clock.Now),
	}
}

// Refresh fetches the full snapshot and reconciles local state. Responses
// that lose the race against a later fetch are discarded, so the board can
// only move forward. On failure the error banner is set and the visible
// board is cleared; stale data is never shown past a failed refresh.
func (s *BoardSyncService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	snap, err := s.gateway.FetchBoard(ctx)
	if err != nil {
		s.mu.Lock()
		if seq < s.applied {
			// A newer fetch already landed; a slow failure must not wipe it.
			s.mu.Unlock()
			s.logger.Debug("discarding stale board failure", "seq", seq, "applied", s.applied)
			return nil
		}
		s.applied = seq
		s.banner = fmt.Sprintf("board refresh failed: %v", err)
		s.full = order.Snapshot{}
		s.view = order.Snapshot{}
		s.readings = make(map[int64]board.TimeReading)
		s.mu.Unlock()
		s.logger.Warn("board refresh failed", "error", err)
		return fmt.Errorf("fetch board: %w", err)
	}

	s.mu.Lock()
	if seq < s.applied {
		// A later fetch already landed; this response is stale.
		s.mu.Unlock()
		s.logger.Debug("discarding stale board response", "seq", seq, "applied", s.applied)
		return nil
	}
	s.applied = seq
	s.full = snap
	s.banner = ""
	s.tracker.Observe(s.full)
	s.rederiveLocked()
	soundWanted := s.wantSoundLocked()
	s.mu.Unlock()

	if soundWanted {
		s.startSoundAlert()
	} else {
		s.stopSoundAlert()
	}
	return nil
}

// wantSoundLocked reports whether any order in the new column still has its
// sound flag set. Caller holds mu.
func (s *BoardSyncService) wantSoundLocked() bool {
	col, ok := s.full.Column(order.StateNew)
	if !ok {
		return false
	}
	for _, o := range col.Orders {
		if o.SoundAlert {
			return true
		}
	}
	return false
}

// rederiveLocked recomputes the filtered view and its time readings from
// the current snapshot and criteria. Caller holds mu.
func (s *BoardSyncService) rederiveLocked() {
	s.view = board.ApplyFilter(s.full, s.criteria, s.clock.Now())
	s.readings = s.tracker.Readings(s.view.IDs())
}

// Start runs the initial synchronous refresh, then launches the refresh
// loop and the time tick. Starting a running service is a no-op.
func (s *BoardSyncService) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	if err := s.Refresh(loopCtx); err != nil {
		// Banner already set; the loop will retry on schedule.
		s.logger.Warn("initial refresh failed", "error", err)
	}

	s.wg.Add(2)
	go s.refreshLoop(loopCtx)
	go s.tickLoop(loopCtx)
	return nil
}

func (s *BoardSyncService) refreshLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.intervals.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("scheduled refresh failed", "error", err)
			}
		}
	}
}

func (s *BoardSyncService) tickLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.intervals.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.readings = s.tracker.Readings(s.view.IDs())
			s.mu.Unlock()
		}
	}
}

// startSoundAlert begins the repeating two-tone alert: one tone pair
// immediately, then one per interval. Starting while active is a no-op.
func (s *BoardSyncService) startSoundAlert() {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	if s.alertStop != nil {
		return
	}
	stop := make(chan struct{})
	s.alertStop = stop

	if s.chime != nil {
		s.chime.Play()
	}
	s.alertWG.Add(1)
	go func() {
		defer s.alertWG.Done()
		ticker := time.NewTicker(s.intervals.Alert)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.chime != nil {
					s.chime.Play()
				}
			}
		}
	}()
}

// stopSoundAlert halts the repeating alert. Stopping a stopped alert is a
// no-op.
func (s *BoardSyncService) stopSoundAlert() {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	if s.alertStop == nil {
		return
	}
	close(s.alertStop)
	s.alertStop = nil
}

// SoundActive reports whether the alert loop is currently running.
func (s *BoardSyncService) SoundActive() bool {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	return s.alertStop != nil
}

// View returns a copy of the current renderable board state.
func (s *BoardSyncService) View() primary.BoardView {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings := make(map[int64]board.TimeReading, len(s.readings))
	for id, r := range s.readings {
		readings[id] = r
	}
	return primary.BoardView{
		Columns:     s.view.Clone().Columns,
		Readings:    readings,
		ErrorBanner: s.banner,
		SoundActive: s.SoundActive(),
		Criteria:    s.criteria,
	}
}

// Snapshot returns a copy of the full unfiltered snapshot. Used by the
// transition service to pre-fill confirmation surfaces.
func (s *BoardSyncService) Snapshot() order.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.full.Clone()
}

// SetCriteria replaces the filter criteria and re-derives the view.
func (s *BoardSyncService) SetCriteria(c board.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.rederiveLocked()
}

// ResetCriteria restores the defaults and re-derives the view.
func (s *BoardSyncService) ResetCriteria() {
	s.SetCriteria(board.DefaultCriteria())
}

// Close tears down every loop the service started: refresh, tick, and the
// sound alert. A bare Refresh can start the alert loop without Start, so the
// alert teardown runs regardless of the running flag. Safe to call multiple
// times and on error paths.
func (s *BoardSyncService) Close() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		s.cancel()
		s.wg.Wait()
		s.running = false
	}
	s.stopSoundAlert()
	s.alertWG.Wait()
	return nil
}
