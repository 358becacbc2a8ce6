package stub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/comanda/internal/core/order"
)

// Server exposes the stub store over the POS JSON contract.
type Server struct {
	store  *Store
	now    func() time.Time
	logger *slog.Logger
}

// NewServer creates a stub server. A nil now defaults to time.Now.
func NewServer(store *Store, now func() time.Time, logger *slog.Logger) *Server {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{store: store, now: now, logger: logger}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/pos", func(r chi.Router) {
		r.Post("/board", s.handleBoard)
		r.Route("/orders", func(r chi.Router) {
			r.Post("/create", s.handleCreate)
			r.Post("/state", s.handleSetState)
			r.Post("/accept", s.handleAccept)
			r.Post("/reject", s.handleReject)
			r.Post("/advance", s.handleAdvance)
			r.Post("/changes", s.handleChanges)
			r.Post("/changes/accept", s.handleChangesAccept)
			r.Post("/changes/reject", s.handleChangesReject)
			r.Post("/cancel", s.handleCancel)
			r.Post("/toggle-line", s.handleToggleLine)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Post("/delivery", s.handleFeed("delivery"))
			r.Post("/web", s.handleFeed("web"))
			r.Post("/pickup", s.handleFeed("pickup"))
			r.Post("/dispatched", s.handleDispatched)
		})
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", "error", err)
	}
}

func (s *Server) ok(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	s.writeJSON(w, payload)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.writeJSON(w, map[string]any{"success": false, "error": err.Error()})
}

type orderRequest struct {
	OrderID  int64  `json:"order_id"`
	LineID   int64  `json:"line_id"`
	NewState string `json:"new_state"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// columnOrder fixes the board's column layout.
var columnOrder = []order.State{
	order.StateNew,
	order.StateChangesPending,
	order.StateAccepted,
	order.StateInPreparation,
	order.StateReady,
	order.StateDispatched,
	order.StateDelivered,
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.Orders(s.now())
	if err != nil {
		s.fail(w, err)
		return
	}

	byState := make(map[order.State][]map[string]any)
	for _, o := range orders {
		byState[order.State(o.State)] = append(byState[order.State(o.State)], encodeOrder(o))
	}

	columns := make([]map[string]any, 0, len(columnOrder))
	for _, st := range columnOrder {
		list := byState[st]
		if list == nil {
			list = []map[string]any{}
		}
		columns = append(columns, map[string]any{"key": string(st), "orders": list})
	}
	s.ok(w, map[string]any{"columns": columns})
}

func encodeOrder(o StoredOrder) map[string]any {
	lines := make([]map[string]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		subs := make([]map[string]any, 0, len(l.SubItems))
		for _, name := range l.SubItems {
			subs = append(subs, map[string]any{"name": name, "qty": 1})
		}
		lines = append(lines, map[string]any{
			"id":        l.ID,
			"name":      l.Name,
			"qty":       l.Qty,
			"note":      l.Note,
			"done":      l.Done,
			"sub_items": subs,
		})
	}
	return map[string]any{
		"id":            o.ID,
		"name":          o.Name,
		"customer":      o.Customer,
		"phone":         o.Phone,
		"address":       o.Address,
		"fulfillment":   o.Fulfillment,
		"channel":       o.Channel,
		"state":         o.State,
		"created_at":    o.CreatedAt,
		"total_minutes": o.TotalMinutes,
		"sound_alert":   o.SoundAlert,
		"lines":         lines,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Customer    string  `json:"customer"`
		Phone       string  `json:"phone"`
		Address     string  `json:"address"`
		Fulfillment string  `json:"fulfillment"`
		Channel     string  `json:"channel"`
		Total       float64 `json:"total"`
		Lines       []struct {
			Name string `json:"name"`
			Qty  int    `json:"qty"`
			Note string `json:"note"`
		} `json:"lines"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	in := NewOrderInput{
		Name:        req.Name,
		Customer:    req.Customer,
		Phone:       req.Phone,
		Address:     req.Address,
		Fulfillment: req.Fulfillment,
		Channel:     req.Channel,
		Total:       req.Total,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, NewLineInput{Name: l.Name, Qty: l.Qty, Note: l.Note})
	}

	id, err := s.store.CreateOrder(in, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, map[string]any{"order_id": id})
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, req.NewState); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, string(order.StateAccepted)); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, string(order.StateRejected)); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.Advance(req.OrderID); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	// The stub has no change tracking; it reports an empty diff.
	s.ok(w, map[string]any{"diff": map[string]any{
		"added":    []any{},
		"modified": []any{},
		"removed":  []any{},
	}})
}

func (s *Server) handleChangesAccept(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, string(order.StateAccepted)); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleChangesReject(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, string(order.StateCancelled)); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetState(req.OrderID, string(order.StateCancelled)); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleToggleLine(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.ToggleLine(req.OrderID, req.LineID); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) handleFeed(feed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := s.store.Orders(s.now())
		if err != nil {
			s.fail(w, err)
			return
		}

		notifications := []map[string]any{}
		dispatched := []string{}
		for _, o := range orders {
			switch feed {
			case "delivery":
				if o.State == string(order.StateReady) && o.Fulfillment == "delivery" {
					notifications = append(notifications, encodeNotification(o, true))
				}
			case "pickup":
				if o.State == string(order.StateReady) && o.Fulfillment == "pickup" {
					notifications = append(notifications, encodeNotification(o, false))
				}
			case "web":
				if o.Channel != "web" {
					continue
				}
				switch order.State(o.State) {
				case order.StateDispatched, order.StateDelivered, order.StateRejected, order.StateCancelled:
					dispatched = append(dispatched, notificationID(o, feed))
				default:
					notifications = append(notifications, encodeNotification(o, o.Fulfillment == "delivery"))
				}
			}
		}

		extra := map[string]any{"notifications": notifications}
		if feed == "web" {
			extra["dispatched"] = dispatched
		}
		s.ok(w, extra)
	}
}

// notificationID namespaces ids the way the backend does: POS-side feeds
// carry a source prefix, the web feed uses the plain order id.
func notificationID(o StoredOrder, feed string) string {
	id := strconv.FormatInt(o.ID, 10)
	if feed == "web" {
		return id
	}
	return "pos_" + id
}

func encodeNotification(o StoredOrder, forDelivery bool) map[string]any {
	products := ""
	for i, l := range o.Lines {
		if i > 0 {
			products += ", "
		}
		products += strconv.Itoa(l.Qty) + "x " + l.Name
	}
	feed := "pos"
	if o.Channel == "web" {
		feed = "web"
	}
	return map[string]any{
		"order_id":     notificationID(o, feed),
		"order_name":   o.Name,
		"customer":     o.Customer,
		"phone":        o.Phone,
		"address":      o.Address,
		"channel":      o.Channel,
		"for_delivery": forDelivery,
		"products":     products,
		"total":        o.Total,
		"created_at":   o.CreatedAt,
	}
}

func (s *Server) handleDispatched(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.MarkDispatched(req.OrderID); err != nil {
		s.fail(w, err)
		return
	}
	s.ok(w, nil)
}
