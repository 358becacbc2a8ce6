package secondary

import (
	"context"
	"time"
)

// Chime plays the short two-tone alert used while unacknowledged new
// orders are on the board. Implementations must be safe to call from the
// alert loop goroutine.
type Chime interface {
	Play()
}

// HintListener is the optional push side channel. A received hint is a
// nudge to poll immediately, never authoritative data; losing hints only
// delays awareness until the next scheduled poll.
type HintListener interface {
	// Listen invokes fn for every hint until ctx is cancelled.
	Listen(ctx context.Context, fn func()) error

	// Close releases the underlying connection. Idempotent.
	Close() error
}

// Clock abstracts wall-clock access so filter and timer behavior is
// testable at fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
