// Package stub is the development stand-in for the POS backend: a chi HTTP
// server over a small SQLite database, speaking the same JSON contract the
// real backend does. It exists so the client can be exercised end to end
// without a POS installation.
package stub

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/comanda/internal/core/order"
)

// Store is the stub's order database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and initializes) the stub database at path. Use
// ":memory:" for an ephemeral instance.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		customer TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		fulfillment TEXT NOT NULL DEFAULT 'pickup',
		channel TEXT NOT NULL DEFAULT 'pos',
		state TEXT NOT NULL DEFAULT 'new',
		created_at TIMESTAMP NOT NULL,
		sound_alert INTEGER NOT NULL DEFAULT 0,
		total REAL NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS lines (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES orders(id),
		name TEXT NOT NULL,
		qty INTEGER NOT NULL DEFAULT 1,
		note TEXT NOT NULL DEFAULT '',
		done INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS sub_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line_id INTEGER NOT NULL REFERENCES lines(id),
		name TEXT NOT NULL,
		qty INTEGER NOT NULL DEFAULT 1
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Seed inserts a small demo dataset when the database is empty.
func (s *Store) Seed(now time.Time) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}
	if n > 0 {
		return nil
	}

	type seedLine struct {
		name string
		qty  int
		note string
		subs []string
	}
	type seedOrder struct {
		id          int64
		name        string
		customer    string
		address     string
		fulfillment string
		channel     string
		state       string
		ageMinutes  int
		soundAlert  bool
		total       float64
		lines       []seedLine
	}

	seeds := []seedOrder{
		{1, "WEB-001", "Maria Lopez", "Calle Mayor 1", "delivery", "web", "new", 5, true, 24.50,
			[]seedLine{{"Family combo", 1, "", []string{"Fries", "Cola"}}, {"Burger", 2, "no onion", nil}}},
		{2, "POS-002", "John Smith", "", "pickup", "pos", "in_preparation", 40, false, 12.00,
			[]seedLine{{"Margherita", 1, "", nil}}},
		{3, "WEB-003", "Ana Ruiz", "Av. Sol 23", "delivery", "web", "ready", 70, false, 31.20,
			[]seedLine{{"Paella", 2, "", nil}}},
		{4, "POS-004", "Leo Chen", "", "pickup", "pos", "ready", 15, false, 8.90,
			[]seedLine{{"Sandwich", 1, "toasted", nil}}},
	}

	for _, o := range seeds {
		createdAt := now.Add(-time.Duration(o.ageMinutes) * time.Minute)
		_, err := s.db.Exec(
			`INSERT INTO orders (id, name, customer, address, fulfillment, channel, state, created_at, sound_alert, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.id, o.name, o.customer, o.address, o.fulfillment, o.channel, o.state, createdAt, o.soundAlert, o.total,
		)
		if err != nil {
			return fmt.Errorf("failed to seed order %d: %w", o.id, err)
		}
		for i, l := range o.lines {
			lineID := o.id*100 + int64(i) + 1
			_, err := s.db.Exec(
				`INSERT INTO lines (id, order_id, name, qty, note) VALUES (?, ?, ?, ?, ?)`,
				lineID, o.id, l.name, l.qty, l.note,
			)
			if err != nil {
				return fmt.Errorf("failed to seed line: %w", err)
			}
			for _, sub := range l.subs {
				if _, err := s.db.Exec(
					`INSERT INTO sub_items (line_id, name, qty) VALUES (?, ?, 1)`, lineID, sub,
				); err != nil {
					return fmt.Errorf("failed to seed sub item: %w", err)
				}
			}
		}
	}
	return nil
}

// StoredOrder is one order row with its lines.
type StoredOrder struct {
	ID           int64
	Name         string
	Customer     string
	Phone        string
	Address      string
	Fulfillment  string
	Channel      string
	State        string
	CreatedAt    time.Time
	SoundAlert   bool
	Total        float64
	Lines        []StoredLine
	TotalMinutes int
}

// StoredLine is one line row with its sub items.
type StoredLine struct {
	ID       int64
	Name     string
	Qty      int
	Note     string
	Done     bool
	SubItems []string
}

// Orders returns every order with its lines, oldest first.
func (s *Store) Orders(now time.Time) ([]StoredOrder, error) {
	rows, err := s.db.Query(
		`SELECT id, name, customer, phone, address, fulfillment, channel, state, created_at, sound_alert, total
		 FROM orders ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var out []StoredOrder
	for rows.Next() {
		var o StoredOrder
		if err := rows.Scan(&o.ID, &o.Name, &o.Customer, &o.Phone, &o.Address,
			&o.Fulfillment, &o.Channel, &o.State, &o.CreatedAt, &o.SoundAlert, &o.Total); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.TotalMinutes = int(now.Sub(o.CreatedAt).Minutes())
		if o.TotalMinutes < 0 {
			o.TotalMinutes = 0
		}
		lines, err := s.linesFor(o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) linesFor(orderID int64) ([]StoredLine, error) {
	rows, err := s.db.Query(
		`SELECT id, name, qty, note, done FROM lines WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var out []StoredLine
	for rows.Next() {
		var l StoredLine
		if err := rows.Scan(&l.ID, &l.Name, &l.Qty, &l.Note, &l.Done); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		subs, err := s.subItemsFor(l.ID)
		if err != nil {
			return nil, err
		}
		l.SubItems = subs
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) subItemsFor(lineID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sub_items WHERE line_id = ? ORDER BY id`, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub items: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan sub item: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// SetState moves an order to the given state. The new-order alert flag is
// cleared on any transition out of new.
func (s *Store) SetState(orderID int64, state string) error {
	if !order.State(state).Valid() {
		return fmt.Errorf("unknown state %q", state)
	}
	res, err := s.db.Exec(
		`UPDATE orders SET state = ?, sound_alert = 0 WHERE id = ?`, state, orderID)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// Advance moves an order to its successor on the happy path.
func (s *Store) Advance(orderID int64) error {
	var state string
	err := s.db.QueryRow(`SELECT state FROM orders WHERE id = ?`, orderID).Scan(&state)
	if err == sql.ErrNoRows {
		return fmt.Errorf("order %d not found", orderID)
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	next := ""
	for i, st := range order.Sequence {
		if string(st) == state && i+1 < len(order.Sequence) {
			next = string(order.Sequence[i+1])
			break
		}
	}
	if next == "" {
		return fmt.Errorf("order %d cannot advance from %s", orderID, state)
	}
	return s.SetState(orderID, next)
}

// ToggleLine flips a line's done flag.
func (s *Store) ToggleLine(orderID, lineID int64) error {
	res, err := s.db.Exec(
		`UPDATE lines SET done = NOT done WHERE id = ? AND order_id = ?`, lineID, orderID)
	if err != nil {
		return fmt.Errorf("failed to toggle line: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("line %d not found on order %d", lineID, orderID)
	}
	return nil
}

// NewOrderInput is the intake payload for CreateOrder.
type NewOrderInput struct {
	Name        string
	Customer    string
	Phone       string
	Address     string
	Fulfillment string
	Channel     string
	Total       float64
	Lines       []NewLineInput
}

// NewLineInput is one intake line.
type NewLineInput struct {
	Name string
	Qty  int
	Note string
}

// CreateOrder inserts a new order in state new with the alert flag set.
func (s *Store) CreateOrder(in NewOrderInput, now time.Time) (int64, error) {
	if in.Name == "" {
		return 0, fmt.Errorf("order name required")
	}
	if in.Fulfillment == "" {
		in.Fulfillment = "pickup"
	}
	if in.Channel == "" {
		in.Channel = "pos"
	}

	res, err := s.db.Exec(
		`INSERT INTO orders (name, customer, phone, address, fulfillment, channel, state, created_at, sound_alert, total)
		 VALUES (?, ?, ?, ?, ?, ?, 'new', ?, 1, ?)`,
		in.Name, in.Customer, in.Phone, in.Address, in.Fulfillment, in.Channel, now, in.Total,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new order id: %w", err)
	}

	for _, l := range in.Lines {
		qty := l.Qty
		if qty <= 0 {
			qty = 1
		}
		if _, err := s.db.Exec(
			`INSERT INTO lines (order_id, name, qty, note) VALUES (?, ?, ?, ?)`,
			orderID, l.Name, qty, l.Note,
		); err != nil {
			return 0, fmt.Errorf("failed to create line: %w", err)
		}
	}
	return orderID, nil
}

// MarkDispatched resolves a notification id ("pos_4", "sale_3", or a plain
// web order id) and moves the order to dispatched.
func (s *Store) MarkDispatched(notificationID string) error {
	id := notificationID
	if i := strings.LastIndex(id, "_"); i >= 0 {
		id = id[i+1:]
	}
	var orderID int64
	if _, err := fmt.Sscanf(id, "%d", &orderID); err != nil {
		return fmt.Errorf("bad notification id %q", notificationID)
	}
	return s.SetState(orderID, string(order.StateDispatched))
}
