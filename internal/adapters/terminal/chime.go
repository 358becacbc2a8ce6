package terminal

import (
	"io"
	"sync"

	"github.com/example/comanda/internal/ports/secondary"
)

// BellChime implements the Chime device with the terminal bell. Two bells
// per play approximate the two-tone alert.
type BellChime struct {
	mu  sync.Mutex
	out io.Writer
}

var _ secondary.Chime = (*BellChime)(nil)

// NewBellChime creates a chime writing to out.
func NewBellChime(out io.Writer) *BellChime {
	return &BellChime{out: out}
}

// Play emits one two-tone alert. Safe for concurrent use.
func (c *BellChime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, "\a\a")
}
