// Package posapi implements the OrderGateway secondary port against the POS
// backend's JSON API. Every operation is a single POST; a well-formed
// response with success=false is surfaced as an error exactly like a
// transport failure.
package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/comanda/internal/core/notify"
	"github.com/example/comanda/internal/core/order"
	"github.com/example/comanda/internal/ports/secondary"
)

// Client talks to the POS backend over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

var _ secondary.OrderGateway = (*Client)(nil)

// NewClient creates a gateway client. token may be empty for backends that
// do not require auth (the dev stub).
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// envelope is the common response wrapper. Every endpoint reports success;
// the payload fields are decoded by the caller from the raw body.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// post sends one JSON request and returns the raw body after the envelope's
// success flag has been checked.
func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request rejected"
		}
		return nil, fmt.Errorf("POST %s: %s", path, msg)
	}
	return raw, nil
}

// Wire types. Field names follow the backend's snake_case JSON.

type wireSubItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type wireLine struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Qty      int           `json:"qty"`
	Note     string        `json:"note"`
	Done     bool          `json:"done"`
	SubItems []wireSubItem `json:"sub_items"`
}

type wireOrder struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Customer     string     `json:"customer"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	Fulfillment  string     `json:"fulfillment"`
	Channel      string     `json:"channel"`
	State        string     `json:"state"`
	CreatedAt    time.Time  `json:"created_at"`
	TotalMinutes int        `json:"total_minutes"`
	SoundAlert   bool       `json:"sound_alert"`
	Lines        []wireLine `json:"lines"`
}

type wireColumn struct {
	Key    string      `json:"key"`
	Title  string      `json:"title"`
	Orders []wireOrder `json:"orders"`
}

type boardResponse struct {
	Columns []wireColumn `json:"columns"`
}

type wireNotification struct {
	OrderID     string    `json:"order_id"`
	OrderName   string    `json:"order_name"`
	Customer    string    `json:"customer"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Channel     string    `json:"channel"`
	ForDelivery bool      `json:"for_delivery"`
	Products    string    `json:"products"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

type feedResponse struct {
	Notifications []wireNotification `json:"notifications"`
	Dispatched    []string           `json:"dispatched"`
}

type wireChangedLine struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
	Note string `json:"note"`
}

type changesResponse struct {
	Diff struct {
		Added    []wireChangedLine `json:"added"`
		Modified []wireChangedLine `json:"modified"`
		Removed  []wireChangedLine `json:"removed"`
	} `json:"diff"`
}

// columnTitles maps state keys to display titles when the backend omits them.
var columnTitles = map[order.State]string{
	order.StateNew:            "New",
	order.StateAccepted:       "Accepted",
	order.StateInPreparation:  "In preparation",
	order.StateReady:          "Ready",
	order.StateDispatched:     "Dispatched",
	order.StateDelivered:      "Delivered",
	order.StateCancelled:      "Cancelled",
	order.StateRejected:       "Rejected",
	order.StateChangesPending: "Changes pending",
}

// FetchBoard retrieves the full unfiltered snapshot.
func (c *Client) FetchBoard(ctx context.Context) (order.Snapshot, error) {
	raw, err := c.post(ctx, "/pos/board", map[string]any{})
	if err != nil {
		return order.Snapshot{}, err
	}
	var resp boardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return order.Snapshot{}, fmt.Errorf("decode board: %w", err)
	}

	snap := order.Snapshot{Columns: make([]order.Column, 0, len(resp.Columns))}
	for _, wc := range resp.Columns {
		col := order.Column{
			Key:    order.State(wc.Key),
			Title:  wc.Title,
			Orders: make([]order.Order, 0, len(wc.Orders)),
		}
		if col.Title == "" {
			col.Title = columnTitles[col.Key]
		}
		for _, wo := range wc.Orders {
			col.Orders = append(col.Orders, decodeOrder(wo))
		}
		col.Count = len(col.Orders)
		snap.Columns = append(snap.Columns, col)
	}
	return snap, nil
}

func decodeOrder(wo wireOrder) order.Order {
	o := order.Order{
		ID:           wo.ID,
		Name:         wo.Name,
		Customer:     wo.Customer,
		Phone:        wo.Phone,
		Address:      wo.Address,
		Fulfillment:  order.Fulfillment(wo.Fulfillment),
		Channel:      order.Channel(wo.Channel),
		State:        order.State(wo.State),
		CreatedAt:    wo.CreatedAt,
		TotalMinutes: wo.TotalMinutes,
		SoundAlert:   wo.SoundAlert,
		Lines:        make([]order.Line, 0, len(wo.Lines)),
	}
	for _, wl := range wo.Lines {
		l := order.Line{
			ID:   wl.ID,
			Name: wl.Name,
			Qty:  wl.Qty,
			Note: wl.Note,
			Done: wl.Done,
		}
		for _, ws := range wl.SubItems {
			l.SubItems = append(l.SubItems, order.SubItem{Name: ws.Name, Qty: ws.Qty})
		}
		o.Lines = append(o.Lines, l)
	}
	return o
}

// SetState moves an order to an explicit state.
func (c *Client) SetState(ctx context.Context, orderID int64, state order.State) error {
	_, err := c.post(ctx, "/pos/orders/state", map[string]any{
		"order_id":  orderID,
		"new_state": string(state),
	})
	return err
}

// Accept confirms a new order with the chosen parameters.
func (c *Client) Accept(ctx context.Context, req secondary.AcceptRequest) error {
	_, err := c.post(ctx, "/pos/orders/accept", map[string]any{
		"order_id":          req.OrderID,
		"estimated_minutes": req.EstimatedMinutes,
		"delivery_address":  req.DeliveryAddress,
		"pickup_in_store":   req.PickupInStore,
		"notes":             req.Notes,
	})
	return err
}

// Reject rejects an order with the given reason.
func (c *Client) Reject(ctx context.Context, orderID int64, reason string) error {
	_, err := c.post(ctx, "/pos/orders/reject", map[string]any{
		"order_id": orderID,
		"reason":   reason,
	})
	return err
}

// Advance moves an order to its server-determined successor state.
func (c *Client) Advance(ctx context.Context, orderID int64) error {
	_, err := c.post(ctx, "/pos/orders/advance", map[string]any{"order_id": orderID})
	return err
}

// ChangeDiff fetches the pending-changes diff for an order.
func (c *Client) ChangeDiff(ctx context.Context, orderID int64) (*secondary.ChangeDiff, error) {
	raw, err := c.post(ctx, "/pos/orders/changes", map[string]any{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	var resp changesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return &secondary.ChangeDiff{
		Added:    decodeChangedLines(resp.Diff.Added),
		Modified: decodeChangedLines(resp.Diff.Modified),
		Removed:  decodeChangedLines(resp.Diff.Removed),
	}, nil
}

func decodeChangedLines(in []wireChangedLine) []secondary.ChangedLine {
	out := make([]secondary.ChangedLine, len(in))
	for i, l := range in {
		out[i] = secondary.ChangedLine{Name: l.Name, Qty: l.Qty, Note: l.Note}
	}
	return out
}

// AcceptChanges approves a pending-changes diff.
func (c *Client) AcceptChanges(ctx context.Context, orderID int64, reason string) error {
	_, err := c.post(ctx, "/pos/orders/changes/accept", map[string]any{
		"order_id": orderID,
		"reason":   reason,
	})
	return err
}

// RejectChanges declines a pending-changes diff.
func (c *Client) RejectChanges(ctx context.Context, orderID int64, reason string) error {
	_, err := c.post(ctx, "/pos/orders/changes/reject", map[string]any{
		"order_id": orderID,
		"reason":   reason,
	})
	return err
}

// ConfirmCancellation confirms a customer-requested cancellation.
func (c *Client) ConfirmCancellation(ctx context.Context, orderID int64, notes string) error {
	_, err := c.post(ctx, "/pos/orders/cancel", map[string]any{
		"order_id": orderID,
		"notes":    notes,
	})
	return err
}

// ToggleLine flips one order line's prepared flag.
func (c *Client) ToggleLine(ctx context.Context, orderID, lineID int64) error {
	_, err := c.post(ctx, "/pos/orders/toggle-line", map[string]any{
		"order_id": orderID,
		"line_id":  lineID,
	})
	return err
}

// PollFeed fetches the current notification list for one feed.
func (c *Client) PollFeed(ctx context.Context, feed notify.Feed) (secondary.FeedResponse, error) {
	raw, err := c.post(ctx, "/pos/notifications/"+string(feed), map[string]any{})
	if err != nil {
		return secondary.FeedResponse{}, err
	}
	var resp feedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return secondary.FeedResponse{}, fmt.Errorf("decode feed: %w", err)
	}

	out := secondary.FeedResponse{Dispatched: resp.Dispatched}
	for _, wn := range resp.Notifications {
		out.Notifications = append(out.Notifications, notify.Notification{
			OrderID:     wn.OrderID,
			OrderName:   wn.OrderName,
			Customer:    wn.Customer,
			Phone:       wn.Phone,
			Address:     wn.Address,
			Channel:     wn.Channel,
			ForDelivery: wn.ForDelivery,
			Products:    wn.Products,
			Total:       wn.Total,
			CreatedAt:   wn.CreatedAt,
		})
	}
	return out, nil
}

// MarkDispatched marks a notification's order as dispatched.
func (c *Client) MarkDispatched(ctx context.Context, notificationID string) error {
	_, err := c.post(ctx, "/pos/notifications/dispatched", map[string]any{
		"order_id": notificationID,
	})
	return err
}
