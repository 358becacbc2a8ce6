package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/example/comanda/internal/core/board"
	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

func TestBoardRendererRendersColumnsAndOrders(t *testing.T) {
	var buf bytes.Buffer
	r := NewBoardRenderer(&buf)

	r.Render(primary.BoardView{
		Columns: []order.Column{
			{Key: order.StateNew, Title: "New", Count: 1, Orders: []order.Order{
				{
					ID:       7,
					Name:     "WEB-007",
					Customer: "Maria Lopez",
					Channel:  order.ChannelWeb,
					Lines: []order.Line{
						{ID: 1, Name: "Family combo", Qty: 1, Note: "no onion", Done: true,
							SubItems: []order.SubItem{{Name: "Fries", Qty: 2}}},
					},
				},
			}},
			{Key: order.StateReady, Title: "Ready", Count: 0},
		},
		Readings: map[int64]board.TimeReading{7: board.Classify(75)},
		Criteria: board.DefaultCriteria(),
	})

	out := buf.String()
	for _, want := range []string{"New (1)", "#7 WEB-007", "Maria Lopez", "1h 15m", "[web]", "Family combo", "no onion", "2x Fries", "Ready (0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBoardRendererErrorBanner(t *testing.T) {
	var buf bytes.Buffer
	NewBoardRenderer(&buf).Render(primary.BoardView{
		ErrorBanner: "board refresh failed: backend unreachable",
		Criteria:    board.DefaultCriteria(),
	})

	out := buf.String()
	if !strings.Contains(out, "backend unreachable") {
		t.Errorf("banner not rendered:\n%s", out)
	}
	if !strings.Contains(out, "No orders to show.") {
		t.Errorf("cleared board not indicated:\n%s", out)
	}
}

func TestBoardRendererFilterLine(t *testing.T) {
	crit := board.DefaultCriteria()
	crit.Customer = "maria"
	crit.Origin = board.OriginWeb

	var buf bytes.Buffer
	NewBoardRenderer(&buf).Render(primary.BoardView{Criteria: crit})

	out := buf.String()
	for _, want := range []string{"date: today", "customer: maria", "origin: web"} {
		if !strings.Contains(out, want) {
			t.Errorf("filter line missing %q:\n%s", want, out)
		}
	}
}

func TestNotificationRendererIndicators(t *testing.T) {
	var buf bytes.Buffer
	r := NewNotificationRenderer(&buf)

	r.RenderIndicators([]notify.Indicator{
		{Feed: notify.FeedDelivery, Label: "Orders ready for delivery", Count: 2, Visible: true},
		{Feed: notify.FeedWeb, Label: "New web orders", Count: 0, Visible: false},
	})

	out := buf.String()
	if !strings.Contains(out, "Orders ready for delivery") {
		t.Errorf("visible indicator missing:\n%s", out)
	}
	if strings.Contains(out, "New web orders") {
		t.Errorf("hidden indicator rendered:\n%s", out)
	}
}

func TestNotificationRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewNotificationRenderer(&buf).RenderIndicators(nil)
	if !strings.Contains(buf.String(), "No pending notifications.") {
		t.Errorf("empty state missing:\n%s", buf.String())
	}
}

func TestNotificationRendererItems(t *testing.T) {
	var buf bytes.Buffer
	NewNotificationRenderer(&buf).RenderItems(notify.FeedDelivery, []notify.Notification{
		{OrderID: "pos_5", OrderName: "POS-005", Customer: "Maria", ForDelivery: true,
			Address: "Calle Mayor 1", Products: "2x Burger", Total: 18.5},
	})

	out := buf.String()
	for _, want := range []string{"pos_5", "POS-005", "Calle Mayor 1", "2x Burger", "18.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("items output missing %q:\n%s", want, out)
		}
	}
}

func TestBellChimePlay(t *testing.T) {
	var buf bytes.Buffer
	c := NewBellChime(&buf)
	c.Play()
	if got := buf.String(); got != "\a\a" {
		t.Errorf("Play() wrote %q, want two bells", got)
	}
}
