// Package terminal renders board and notification state for the CLI and
// implements the Chime device on the terminal bell.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/primary"
)

// BoardRenderer writes a kanban-style board view to out.
type BoardRenderer struct {
	out io.Writer
}

// NewBoardRenderer creates a renderer writing to out.
func NewBoardRenderer(out io.Writer) *BoardRenderer {
	return &BoardRenderer{out: out}
}

// Render writes the full board view: banner, filter line, columns with
// their orders, and per-order elapsed time colored by status.
func (r *BoardRenderer) Render(view primary.BoardView) {
	if view.ErrorBanner != "" {
		fmt.Fprintln(r.out, color.New(color.FgRed, color.Bold).Sprint(view.ErrorBanner))
	}
	if view.SoundActive {
		fmt.Fprintln(r.out, color.New(color.FgHiYellow).Sprint("♪ new orders awaiting acknowledgement"))
	}
	fmt.Fprintln(r.out, filterLine(view.Criteria))
	fmt.Fprintln(r.out)

	if len(view.Columns) == 0 {
		fmt.Fprintln(r.out, "No orders to show.")
		return
	}

	for _, col := range view.Columns {
		fmt.Fprintf(r.out, "%s (%d)\n", color.New(color.Bold).Sprint(col.Title), col.Count)
		if len(col.Orders) == 0 {
			fmt.Fprintln(r.out, "  -")
			continue
		}
		for _, o := range col.Orders {
			r.renderOrder(o, view.Readings[o.ID])
		}
	}
}

func (r *BoardRenderer) renderOrder(o order.Order, reading board.TimeReading) {
	elapsed := timeLabel(reading)
	channel := ""
	if o.Channel == order.ChannelWeb {
		channel = color.New(color.FgCyan).Sprint(" [web]")
	}
	alert := ""
	if o.SoundAlert {
		alert = color.New(color.FgHiYellow).Sprint(" ♪")
	}
	fmt.Fprintf(r.out, "  #%d %s  %s  %s%s%s\n", o.ID, o.Name, o.Customer, elapsed, channel, alert)

	for _, l := range o.Lines {
		mark := " "
		if l.Done {
			mark = color.New(color.FgGreen).Sprint("✓")
		}
		note := ""
		if l.Note != "" {
			note = "  (" + l.Note + ")"
		}
		fmt.Fprintf(r.out, "    [%s] %dx %s%s\n", mark, l.Qty, l.Name, note)
		for _, s := range l.SubItems {
			fmt.Fprintf(r.out, "        - %dx %s\n", s.Qty, s.Name)
		}
	}
}

// timeLabel colors the elapsed-time label by its status.
func timeLabel(r board.TimeReading) string {
	switch r.Status {
	case board.TimeCritical:
		return color.New(color.FgRed, color.Bold).Sprint(r.Label)
	case board.TimeWarning:
		return color.New(color.FgYellow).Sprint(r.Label)
	default:
		return color.New(color.FgGreen).Sprint(r.Label)
	}
}

// filterLine summarizes the active criteria in one line.
func filterLine(c board.Criteria) string {
	parts := []string{"date: " + string(c.Date)}
	if c.Customer != "" {
		parts = append(parts, "customer: "+c.Customer)
	}
	if c.Origin != board.OriginAll {
		parts = append(parts, "origin: "+string(c.Origin))
	}
	if c.State != "" && c.State != board.StateAll {
		parts = append(parts, "state: "+c.State)
	}
	return "Filters  " + strings.Join(parts, " · ")
}
