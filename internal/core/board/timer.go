package board

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/comanda/internal/core/order"
)

// TimeStatus classifies how long an order has been open.
type TimeStatus string

const (
	TimeNormal   TimeStatus = "normal"
	TimeWarning  TimeStatus = "warning"
	TimeCritical TimeStatus = "critical"
)

// Thresholds, in minutes.
const (
	warningAfter  = 30
	criticalAfter = 60
)

// TimeReading is one tick's classification for a single order.
type TimeReading struct {
	Minutes int
	Status  TimeStatus
	Label   string
}

// Classify maps elapsed minutes to a reading.
func Classify(minutes int) TimeReading {
	r := TimeReading{Minutes: minutes, Label: FormatMinutes(minutes)}
	switch {
	case minutes >= criticalAfter:
		r.Status = TimeCritical
	case minutes >= warningAfter:
		r.Status = TimeWarning
	default:
		r.Status = TimeNormal
	}
	return r
}

// FormatMinutes renders elapsed minutes as "Nm" below an hour and
// "Hh Mm" from an hour up.
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

type baseline struct {
	startMinutes int
	capturedAt   time.Time
}

// TimeTracker keeps a wall-clock-anchored elapsed-time baseline per order id.
// The baseline is captured the first time an id is observed and carried
// forward unchanged across refreshes, so re-fetching the board never resets
// an order's counter. Ids that disappear from the snapshot are dropped.
type TimeTracker struct {
	mu        sync.Mutex
	now       func() time.Time
	baselines map[int64]baseline
}

// NewTimeTracker creates a tracker using the given clock. A nil clock
// defaults to time.Now.
func NewTimeTracker(now func() time.Time) *TimeTracker {
	if now == nil {
		now = time.Now
	}
	return &TimeTracker{now: now, baselines: make(map[int64]baseline)}
}

// Observe reconciles baselines against a freshly fetched snapshot: unseen
// ids get a baseline anchored at the server-reported elapsed minutes, known
// ids keep their existing baseline, and ids no longer present are pruned.
func (t *TimeTracker) Observe(snap order.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[int64]bool, len(t.baselines))
	for _, col := range snap.Columns {
		for _, o := range col.Orders {
			seen[o.ID] = true
			if _, ok := t.baselines[o.ID]; !ok {
				t.baselines[o.ID] = baseline{startMinutes: o.TotalMinutes, capturedAt: t.now()}
			}
		}
	}
	for id := range t.baselines {
		if !seen[id] {
			delete(t.baselines, id)
		}
	}
}

// Reading computes the current classification for one order id. The second
// return is false for ids without a baseline (stale after a refresh); callers
// skip those rather than treating them as errors.
func (t *TimeTracker) Reading(id int64) (TimeReading, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.baselines[id]
	if !ok {
		return TimeReading{}, false
	}
	elapsed := int(t.now().Sub(b.capturedAt).Seconds()) / 60
	return Classify(b.startMinutes + elapsed), true
}

// Readings computes classifications for every id in the given list, skipping
// unknown ids. Cost is O(len(ids)).
func (t *TimeTracker) Readings(ids []int64) map[int64]TimeReading {
	out := make(map[int64]TimeReading, len(ids))
	for _, id := range ids {
		if r, ok := t.Reading(id); ok {
			out[id] = r
		}
	}
	return out
}

// Tracked returns the number of ids currently holding a baseline.
func (t *TimeTracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.baselines)
}
