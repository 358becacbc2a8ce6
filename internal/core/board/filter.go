// Package board contains the pure board logic: the filter engine that
// derives the visible view from the unfiltered snapshot, and the elapsed-time
// tracker that classifies orders by how long they have been open.
package board

import (
	"strings"
	"time"

	"github.com/example/comanda/internal/core/order"
)

// DateBucket selects which calendar window of orders is visible.
type DateBucket string

const (
	DateToday     DateBucket = "today"
	DateYesterday DateBucket = "yesterday"
	DateLast7Days DateBucket = "last_7_days"
	DateAll       DateBucket = "all"
)

// Origin narrows orders by their channel.
type Origin string

const (
	OriginAll Origin = "all"
	OriginWeb Origin = "web"
	OriginPOS Origin = "pos"
)

// StateAll matches every lifecycle state in the quick-state filter.
const StateAll = "all"

// Criteria is the full set of board filters. The zero value is not useful;
// start from DefaultCriteria.
type Criteria struct {
	Date     DateBucket
	Customer string
	Origin   Origin
	State    string
}

// DefaultCriteria returns the criteria the board opens with: today's
// orders, every origin, every state.
func DefaultCriteria() Criteria {
	return Criteria{Date: DateToday, Customer: "", Origin: OriginAll, State: StateAll}
}

// ApplyFilter derives the visible view from snap. The input is never
// mutated: the snapshot is deep-copied before any column is narrowed.
// Unset or "all" predicates pass everything. Counts are recomputed.
func ApplyFilter(snap order.Snapshot, c Criteria, now time.Time) order.Snapshot {
	out := snap.Clone()
	for i, col := range out.Columns {
		kept := col.Orders[:0]
		for _, o := range col.Orders {
			if !matchDate(o, c.Date, now) {
				continue
			}
			if !matchCustomer(o, c.Customer) {
				continue
			}
			if !matchOrigin(o, c.Origin) {
				continue
			}
			if !matchState(o, c.State) {
				continue
			}
			kept = append(kept, o)
		}
		out.Columns[i].Orders = kept
		out.Columns[i].Count = len(kept)
	}
	return out
}

// createdAt resolves the instant used for date bucketing. Orders without a
// creation timestamp fall back to their elapsed-minutes baseline.
func createdAt(o order.Order, now time.Time) time.Time {
	if !o.CreatedAt.IsZero() {
		return o.CreatedAt
	}
	return now.Add(-time.Duration(o.TotalMinutes) * time.Minute)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func matchDate(o order.Order, bucket DateBucket, now time.Time) bool {
	switch bucket {
	case DateToday:
		return sameDay(createdAt(o, now), now)
	case DateYesterday:
		return sameDay(createdAt(o, now), now.AddDate(0, 0, -1))
	case DateLast7Days:
		// Inclusive rolling window from now.
		return !createdAt(o, now).Before(now.AddDate(0, 0, -7))
	default:
		return true
	}
}

func matchCustomer(o order.Order, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Customer), strings.ToLower(needle))
}

func matchOrigin(o order.Order, origin Origin) bool {
	switch origin {
	case OriginWeb:
		return o.Channel == order.ChannelWeb
	case OriginPOS:
		return o.Channel != order.ChannelWeb
	default:
		return true
	}
}

func matchState(o order.Order, state string) bool {
	if state == "" || state == StateAll {
		return true
	}
	return o.State == order.State(state)
}
