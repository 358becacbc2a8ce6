// Package order contains the pure domain model for the cashier board:
// lifecycle states, orders, columns, and the unfiltered snapshot.
// Nothing in this package performs I/O.
package order

import "time"

// State is an order lifecycle state. The server is the authority on
// transitions; the client only validates intents before submitting them.
type State string

const (
	StateNew            State = "new"
	StateAccepted       State = "accepted"
	StateInPreparation  State = "in_preparation"
	StateReady          State = "ready"
	StateDispatched     State = "dispatched"
	StateDelivered      State = "delivered"
	StateRejected       State = "rejected"
	StateCancelled      State = "cancelled"
	StateChangesPending State = "changes_pending"
)

// Sequence is the happy-path ordering of states. Side branches
// (rejected, cancelled, changes_pending) are not part of the sequence.
var Sequence = []State{
	StateNew,
	StateAccepted,
	StateInPreparation,
	StateReady,
	StateDispatched,
	StateDelivered,
}

// AllStates lists every state the board can show as a column.
var AllStates = []State{
	StateNew,
	StateAccepted,
	StateInPreparation,
	StateReady,
	StateDispatched,
	StateDelivered,
	StateCancelled,
	StateRejected,
	StateChangesPending,
}

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether an order in this state can no longer advance.
func (s State) Terminal() bool {
	return s == StateDelivered || s == StateRejected || s == StateCancelled
}

// Fulfillment distinguishes how the customer receives the order.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// Channel is the origin of an order.
type Channel string

const (
	ChannelWeb Channel = "web"
	ChannelPOS Channel = "pos"
)

// SubItem is a component of a composite product line (combo item).
type SubItem struct {
	Name string
	Qty  int
}

// Line is a single product line on an order. Done is the cosmetic
// "prepared" toggle; it never affects the order's lifecycle state.
type Line struct {
	ID       int64
	Name     string
	Qty      int
	Note     string
	Done     bool
	SubItems []SubItem
}

// Order is one order as reported by the server. ID is the only stable
// identity; everything else is rebuilt on each poll.
type Order struct {
	ID          int64
	Name        string
	Customer    string
	Phone       string
	Address     string
	Fulfillment Fulfillment
	Channel     Channel
	State       State
	CreatedAt   time.Time
	// TotalMinutes is the server-reported elapsed minutes at fetch time.
	// The time tracker anchors its baseline to this value on first sighting.
	TotalMinutes int
	SoundAlert   bool
	Lines        []Line
}

// Column is one kanban bucket: a state key plus the orders currently in it.
type Column struct {
	Key    State
	Title  string
	Orders []Order
	Count  int
}

// Snapshot is the full, unfiltered board as last fetched from the server.
// Filtered views are derived copies; mutating them must never touch the
// snapshot they came from, which is why Clone does a deep copy.
type Snapshot struct {
	Columns []Column
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Columns: make([]Column, len(s.Columns))}
	for i, col := range s.Columns {
		cc := col
		cc.Orders = make([]Order, len(col.Orders))
		for j, o := range col.Orders {
			oc := o
			oc.Lines = make([]Line, len(o.Lines))
			for k, l := range o.Lines {
				lc := l
				lc.SubItems = append([]SubItem(nil), l.SubItems...)
				oc.Lines[k] = lc
			}
			cc.Orders[j] = oc
		}
		out.Columns[i] = cc
	}
	return out
}

// Find returns a copy of the order with the given id, searching all columns.
func (s Snapshot) Find(id int64) (Order, bool) {
	for _, col := range s.Columns {
		for _, o := range col.Orders {
			if o.ID == id {
				return o, true
			}
		}
	}
	return Order{}, false
}

// Column returns the column with the given state key, if present.
func (s Snapshot) Column(key State) (Column, bool) {
	for _, col := range s.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// OrderCount returns the total number of orders across all columns.
func (s Snapshot) OrderCount() int {
	n := 0
	for _, col := range s.Columns {
		n += len(col.Orders)
	}
	return n
}

// IDs returns every order id in the snapshot, column by column.
func (s Snapshot) IDs() []int64 {
	var ids []int64
	for _, col := range s.Columns {
		for _, o := range col.Orders {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
