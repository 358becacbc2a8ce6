package posapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/secondary"
)

// stubServer records requests and replies with canned JSON per path.
type stubServer struct {
	mu        sync.Mutex
	srv       *httptest.Server
	responses map[string]string
	requests  map[string][]map[string]any
	headers   map[string]http.Header
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{
		responses: make(map[string]string),
		requests:  make(map[string][]map[string]any),
		headers:   make(map[string]http.Header),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.requests[r.URL.Path] = append(s.requests[r.URL.Path], body)
		s.headers[r.URL.Path] = r.Header.Clone()
		resp, ok := s.responses[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			resp = `{"success":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubServer) respond(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = body
}

func (s *stubServer) lastRequest(path string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.requests[path]
	if len(reqs) == 0 {
		return nil, false
	}
	return reqs[len(reqs)-1], true
}

func (s *stubServer) client() *Client {
	return NewClient(s.srv.URL, "test-token", nil)
}

func TestClientFetchBoard(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("/pos/board", `{
		"success": true,
		"columns": [
			{"key": "new", "orders": [
				{"id": 1, "name": "WEB-001", "customer": "Maria", "channel": "web",
				 "state": "new", "total_minutes": 12, "sound_alert": true,
				 "lines": [{"id": 10, "name": "Family combo", "qty": 1,
				            "sub_items": [{"name": "Fries", "qty": 2}]}]}
			]},
			{"key": "in_preparation", "title": "Cooking", "orders": []}
		]
	}`)

	snap, err := srv.client().FetchBoard(context.Background())
	if err != nil {
		t.Fatalf("FetchBoard() error = %v", err)
	}
	if len(snap.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(snap.Columns))
	}

	col := snap.Columns[0]
	if col.Key != order.StateNew || col.Title != "New" {
		t.Errorf("column = %s/%q, want new/New (title defaulted)", col.Key, col.Title)
	}
	if col.Count != 1 || len(col.Orders) != 1 {
		t.Fatalf("column count = %d with %d orders, want 1", col.Count, len(col.Orders))
	}

	o := col.Orders[0]
	if o.ID != 1 || !o.SoundAlert || o.TotalMinutes != 12 {
		t.Errorf("order decoded wrong: %+v", o)
	}
	if len(o.Lines) != 1 || len(o.Lines[0].SubItems) != 1 {
		t.Errorf("lines decoded wrong: %+v", o.Lines)
	}
	if snap.Columns[1].Title != "Cooking" {
		t.Errorf("server title overridden: %q", snap.Columns[1].Title)
	}
}

func TestClientSuccessFalseIsError(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("/pos/orders/advance", `{"success": false, "error": "order already delivered"}`)

	err := srv.client().Advance(context.Background(), 7)
	if err == nil {
		t.Fatal("Advance() expected error for success=false")
	}
}

func TestClientHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "", nil).FetchBoard(context.Background()); err == nil {
		t.Fatal("FetchBoard() expected error for 500 response")
	}
}

func TestClientRequestHeaders(t *testing.T) {
	srv := newStubServer(t)
	if err := srv.client().Advance(context.Background(), 7); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	srv.mu.Lock()
	h := srv.headers["/pos/orders/advance"]
	srv.mu.Unlock()
	if h.Get("Authorization") != "Bearer test-token" {
		t.Errorf("Authorization = %q", h.Get("Authorization"))
	}
	if h.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID correlation header")
	}
	if h.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", h.Get("Content-Type"))
	}
}

func TestClientTransitionPayloads(t *testing.T) {
	srv := newStubServer(t)
	c := srv.client()
	ctx := context.Background()

	if err := c.SetState(ctx, 7, order.StateReady); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if req, _ := srv.lastRequest("/pos/orders/state"); req["new_state"] != "ready" || req["order_id"] != float64(7) {
		t.Errorf("state payload = %v", req)
	}

	err := c.Accept(ctx, secondary.AcceptRequest{
		OrderID:          7,
		EstimatedMinutes: 45,
		DeliveryAddress:  "Calle Mayor 1",
		PickupInStore:    false,
	})
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if req, _ := srv.lastRequest("/pos/orders/accept"); req["estimated_minutes"] != float64(45) {
		t.Errorf("accept payload = %v", req)
	}

	if err := c.Reject(ctx, 7, "out of stock"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if req, _ := srv.lastRequest("/pos/orders/reject"); req["reason"] != "out of stock" {
		t.Errorf("reject payload = %v", req)
	}

	if err := c.ToggleLine(ctx, 7, 3); err != nil {
		t.Fatalf("ToggleLine() error = %v", err)
	}
	if req, _ := srv.lastRequest("/pos/orders/toggle-line"); req["line_id"] != float64(3) {
		t.Errorf("toggle payload = %v", req)
	}

	if err := c.ConfirmCancellation(ctx, 7, "customer called"); err != nil {
		t.Fatalf("ConfirmCancellation() error = %v", err)
	}
	if req, _ := srv.lastRequest("/pos/orders/cancel"); req["notes"] != "customer called" {
		t.Errorf("cancel payload = %v", req)
	}
}

func TestClientChangeDiff(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("/pos/orders/changes", `{
		"success": true,
		"diff": {
			"added": [{"name": "Extra cheese", "qty": 1}],
			"modified": [{"name": "Burger", "qty": 3, "note": "no onion"}],
			"removed": []
		}
	}`)

	diff, err := srv.client().ChangeDiff(context.Background(), 7)
	if err != nil {
		t.Fatalf("ChangeDiff() error = %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0].Name != "Extra cheese" {
		t.Errorf("Added = %+v", diff.Added)
	}
	if len(diff.Modified) != 1 || diff.Modified[0].Qty != 3 {
		t.Errorf("Modified = %+v", diff.Modified)
	}
	if len(diff.Removed) != 0 {
		t.Errorf("Removed = %+v", diff.Removed)
	}
}

func TestClientPollFeed(t *testing.T) {
	srv := newStubServer(t)
	srv.respond("/pos/notifications/web", `{
		"success": true,
		"notifications": [
			{"order_id": "12", "order_name": "WEB-012", "customer": "Maria", "total": 24.5}
		],
		"dispatched": ["9"]
	}`)

	resp, err := srv.client().PollFeed(context.Background(), notify.FeedWeb)
	if err != nil {
		t.Fatalf("PollFeed() error = %v", err)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0].OrderID != "12" {
		t.Errorf("Notifications = %+v", resp.Notifications)
	}
	if len(resp.Dispatched) != 1 || resp.Dispatched[0] != "9" {
		t.Errorf("Dispatched = %+v", resp.Dispatched)
	}
}

func TestClientMarkDispatched(t *testing.T) {
	srv := newStubServer(t)
	if err := srv.client().MarkDispatched(context.Background(), "12"); err != nil {
		t.Fatalf("MarkDispatched() error = %v", err)
	}
	if req, ok := srv.lastRequest("/pos/notifications/dispatched"); !ok || req["order_id"] != "12" {
		t.Errorf("dispatched payload = %v", req)
	}
}
