package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/core/order"
)

// quietIntervals keeps the background tickers from firing during a test.
func quietIntervals() BoardSyncIntervals {
	return BoardSyncIntervals{Refresh: time.Hour, Alert: time.Hour, Tick: time.Hour}
}

func testBoard(clock *mockClock, orders ...order.Order) order.Snapshot {
	for i := range orders {
		if orders[i].CreatedAt.IsZero() {
			orders[i].CreatedAt = clock.Now()
		}
	}
	return order.Snapshot{Columns: []order.Column{
		{Key: order.StateNew, Title: "New", Orders: orders, Count: len(orders)},
	}}
}

func TestBoardSyncServiceRefreshSuccess(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock,
		order.Order{ID: 1, Name: "WEB-001", State: order.StateNew},
		order.Order{ID: 2, Name: "POS-002", State: order.StateNew},
	), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	view := svc.View()
	if view.ErrorBanner != "" {
		t.Errorf("ErrorBanner = %q, want empty", view.ErrorBanner)
	}
	if len(view.Columns) != 1 || len(view.Columns[0].Orders) != 2 {
		t.Fatalf("view has %d columns, want 1 with 2 orders", len(view.Columns))
	}
	if view.Columns[0].Count != 2 {
		t.Errorf("column count = %d, want 2", view.Columns[0].Count)
	}
	if _, ok := view.Readings[1]; !ok {
		t.Error("expected a time reading for order 1")
	}
}

func TestBoardSyncServiceRefreshFailureClearsBoard(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew}), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	gw.setBoard(order.Snapshot{}, errors.New("backend unreachable"))
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() expected error, got nil")
	}

	view := svc.View()
	if view.ErrorBanner == "" {
		t.Error("expected an error banner after failed refresh")
	}
	if len(view.Columns) != 0 {
		t.Errorf("stale board still visible: %d columns", len(view.Columns))
	}
	if len(view.Readings) != 0 {
		t.Errorf("stale readings still visible: %d", len(view.Readings))
	}
}

func TestBoardSyncServiceRefreshRecoversAfterFailure(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(order.Snapshot{}, errors.New("backend unreachable"))

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	_ = svc.Refresh(context.Background())

	gw.setBoard(testBoard(clock, order.Order{ID: 3, State: order.StateNew}), nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	view := svc.View()
	if view.ErrorBanner != "" {
		t.Errorf("banner not cleared after recovery: %q", view.ErrorBanner)
	}
	if got := len(view.Columns); got != 1 {
		t.Errorf("view has %d columns, want 1", got)
	}
}

func TestBoardSyncServiceDiscardsStaleResponse(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew}), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// Pretend a later fetch already landed: this refresh's response must
	// lose the race and leave the applied snapshot untouched.
	svc.mu.Lock()
	svc.applied = svc.fetchSeq + 10
	svc.mu.Unlock()

	gw.setBoard(testBoard(clock, order.Order{ID: 99, State: order.StateNew}), nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if _, ok := svc.Snapshot().Find(99); ok {
		t.Error("stale response was applied over a newer snapshot")
	}
	if _, ok := svc.Snapshot().Find(1); !ok {
		t.Error("previously applied snapshot was lost")
	}
}

func TestBoardSyncServiceDiscardsStaleFailure(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew}), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// Pretend a later fetch already landed: a slow failure arriving after it
	// must not set the banner or clear the applied board.
	svc.mu.Lock()
	svc.applied = svc.fetchSeq + 10
	svc.mu.Unlock()

	gw.setBoard(order.Snapshot{}, errors.New("backend unreachable"))
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() with stale failure error = %v, want nil", err)
	}

	view := svc.View()
	if view.ErrorBanner != "" {
		t.Errorf("stale failure set banner %q", view.ErrorBanner)
	}
	if _, ok := svc.Snapshot().Find(1); !ok {
		t.Error("stale failure wiped the applied snapshot")
	}
	if len(view.Readings) == 0 {
		t.Error("stale failure cleared the time readings")
	}
}

func TestBoardSyncServiceSoundAlert(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	chime := &mockChime{}
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew, SoundAlert: true}), nil)

	svc := NewBoardSyncService(gw, chime, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !svc.SoundActive() {
		t.Fatal("sound alert not active after refresh with alerting order")
	}
	if chime.count() != 1 {
		t.Errorf("chime played %d times, want 1 immediate tone", chime.count())
	}

	// A second refresh with the alert still pending must not stack loops.
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if chime.count() != 1 {
		t.Errorf("chime played %d times after second refresh, want still 1", chime.count())
	}

	// Alert cleared server-side: the loop stops.
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew}), nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if svc.SoundActive() {
		t.Error("sound alert still active after server cleared the flag")
	}
	svc.stopSoundAlert()
	svc.alertWG.Wait()
}

func TestBoardSyncServiceCloseStopsAlertWithoutStart(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	chime := &mockChime{}
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew, SoundAlert: true}), nil)

	// A bare Refresh starts the alert loop without Start ever running.
	svc := NewBoardSyncService(gw, chime, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !svc.SoundActive() {
		t.Fatal("sound alert not active after refresh with alerting order")
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if svc.SoundActive() {
		t.Error("sound alert still running after Close")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestBoardSyncServiceSetCriteriaNarrowsWithoutRefetch(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock,
		order.Order{ID: 1, Customer: "Maria Lopez", State: order.StateNew},
		order.Order{ID: 2, Customer: "John Smith", State: order.StateNew},
	), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	fetches := gw.callCount("FetchBoard")

	crit := board.DefaultCriteria()
	crit.Customer = "maria"
	svc.SetCriteria(crit)

	view := svc.View()
	if got := view.Columns[0].Count; got != 1 {
		t.Errorf("filtered count = %d, want 1", got)
	}
	if gw.callCount("FetchBoard") != fetches {
		t.Error("SetCriteria triggered a refetch")
	}

	svc.ResetCriteria()
	if got := svc.View().Columns[0].Count; got != 2 {
		t.Errorf("count after reset = %d, want 2", got)
	}
}

func TestBoardSyncServiceStartAndCloseIdempotent(t *testing.T) {
	gw := newMockGateway()
	clock := newMockClock()
	gw.setBoard(testBoard(clock, order.Order{ID: 1, State: order.StateNew}), nil)

	svc := NewBoardSyncService(gw, &mockChime{}, clock, nil, quietIntervals())
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if got := gw.callCount("FetchBoard"); got != 1 {
		t.Errorf("FetchBoard called %d times on start, want 1", got)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
