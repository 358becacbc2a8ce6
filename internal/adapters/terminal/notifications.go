package terminal

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/comanda/internal/core/notify"
)

// NotificationRenderer writes feed indicators and notification lists.
type NotificationRenderer struct {
	out io.Writer
}

// NewNotificationRenderer creates a renderer writing to out.
func NewNotificationRenderer(out io.Writer) *NotificationRenderer {
	return &NotificationRenderer{out: out}
}

// RenderIndicators writes one line per visible indicator. Hidden indicators
// produce no output, matching their floating-button behavior.
func (r *NotificationRenderer) RenderIndicators(indicators []notify.Indicator) {
	shown := 0
	for _, ind := range indicators {
		if !ind.Visible {
			continue
		}
		shown++
		fmt.Fprintf(r.out, "%s %s\n",
			color.New(color.FgHiWhite, color.BgRed).Sprintf(" %d ", ind.Count),
			ind.Label)
	}
	if shown == 0 {
		fmt.Fprintln(r.out, "No pending notifications.")
	}
}

// RenderItems writes the notification list for one feed.
func (r *NotificationRenderer) RenderItems(feed notify.Feed, items []notify.Notification) {
	fmt.Fprintln(r.out, color.New(color.Bold).Sprint(feed.Label()))
	if len(items) == 0 {
		fmt.Fprintln(r.out, "  (empty)")
		return
	}
	for _, it := range items {
		dest := ""
		if it.ForDelivery {
			dest = "  → " + it.Address
		}
		fmt.Fprintf(r.out, "  %s  %s  %s%s\n", it.OrderID, it.OrderName, it.Customer, dest)
		if it.Products != "" {
			fmt.Fprintf(r.out, "      %s  (%.2f)\n", it.Products, it.Total)
		}
	}
}
