package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.OrderGateway = (*mockGateway)(nil)
	_ secondary.Chime        = (*mockChime)(nil)
	_ secondary.Clock        = (*mockClock)(nil)
)

// mockGateway implements secondary.OrderGateway for testing. Every
// invocation is recorded so tests can assert which remote calls were made.
type mockGateway struct {
	mu sync.Mutex

	board    order.Snapshot
	boardErr error

	feeds    map[notify.Feed]secondary.FeedResponse
	feedErrs map[notify.Feed]error

	transitionErr error

	calls []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		feeds:    make(map[notify.Feed]secondary.FeedResponse),
		feedErrs: make(map[notify.Feed]error),
	}
}

func (m *mockGateway) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockGateway) callCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockGateway) setBoard(snap order.Snapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = snap
	m.boardErr = err
}

func (m *mockGateway) FetchBoard(ctx context.Context) (order.Snapshot, error) {
	m.record("FetchBoard")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.boardErr != nil {
		return order.Snapshot{}, m.boardErr
	}
	return m.board.Clone(), nil
}

func (m *mockGateway) SetState(ctx context.Context, orderID int64, state order.State) error {
	m.record("SetState")
	return m.transitionErr
}

func (m *mockGateway) Accept(ctx context.Context, req secondary.AcceptRequest) error {
	m.record("Accept")
	return m.transitionErr
}

func (m *mockGateway) Reject(ctx context.Context, orderID int64, reason string) error {
	m.record("Reject")
	return m.transitionErr
}

func (m *mockGateway) Advance(ctx context.Context, orderID int64) error {
	m.record("Advance")
	return m.transitionErr
}

func (m *mockGateway) ChangeDiff(ctx context.Context, orderID int64) (*secondary.ChangeDiff, error) {
	m.record("ChangeDiff")
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}
	return &secondary.ChangeDiff{}, nil
}

func (m *mockGateway) AcceptChanges(ctx context.Context, orderID int64, reason string) error {
	m.record("AcceptChanges")
	return m.transitionErr
}

func (m *mockGateway) RejectChanges(ctx context.Context, orderID int64, reason string) error {
	m.record("RejectChanges")
	return m.transitionErr
}

func (m *mockGateway) ConfirmCancellation(ctx context.Context, orderID int64, notes string) error {
	m.record("ConfirmCancellation")
	return m.transitionErr
}

func (m *mockGateway) ToggleLine(ctx context.Context, orderID, lineID int64) error {
	m.record("ToggleLine")
	return m.transitionErr
}

func (m *mockGateway) PollFeed(ctx context.Context, feed notify.Feed) (secondary.FeedResponse, error) {
	m.record("PollFeed:" + string(feed))
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.feedErrs[feed]; err != nil {
		return secondary.FeedResponse{}, err
	}
	return m.feeds[feed], nil
}

func (m *mockGateway) MarkDispatched(ctx context.Context, notificationID string) error {
	m.record("MarkDispatched:" + notificationID)
	return m.transitionErr
}

// mockChime counts plays.
type mockChime struct {
	mu    sync.Mutex
	plays int
}

func (m *mockChime) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
}

func (m *mockChime) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// mockClock is a fixed, manually advanced clock.
type mockClock struct {
	mu sync.Mutex
	t  time.Time
}

func newMockClock() *mockClock {
	return &mockClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
}

func feedItems(ids ...string) []notify.Notification {
	out := make([]notify.Notification, len(ids))
	for i, id := range ids {
		out[i] = notify.Notification{OrderID: id}
	}
	return out
}
