// Package notify contains the notification-dedup core: one cache per feed,
// each reconciled against the server's reported set under that feed's policy,
// plus the derived floating-indicator state.
//
// The three feeds are independent; the same order may legitimately sit in
// more than one at a time (a new web order that later becomes ready for
// pickup). Within one feed an id is never counted twice.
package notify

import (
	"sync"
	"time"
)

// Feed identifies one of the three polled notification sources.
type Feed string

const (
	FeedDelivery Feed = "delivery"
	FeedWeb      Feed = "web"
	FeedPickup   Feed = "pickup"
)

// Feeds lists every feed in poll order.
var Feeds = []Feed{FeedDelivery, FeedWeb, FeedPickup}

// Label is the indicator text shown next to the live count.
func (f Feed) Label() string {
	switch f {
	case FeedDelivery:
		return "Orders ready for delivery"
	case FeedWeb:
		return "New web orders"
	case FeedPickup:
		return "Orders ready for pickup"
	}
	return string(f)
}

// Notification is one record in a feed cache, keyed by OrderID. Ids are
// strings because the backend namespaces them by source ("pos_12",
// "sale_34"); the web feed uses plain numeric ids.
type Notification struct {
	OrderID     string
	OrderName   string
	Customer    string
	Phone       string
	Address     string
	Channel     string
	ForDelivery bool
	Products    string
	Total       float64
	CreatedAt   time.Time
}

// Indicator is the derived state of one feed's floating button.
type Indicator struct {
	Feed    Feed
	Label   string
	Count   int
	Visible bool
}

// Cache holds the local notification set for a single feed. Reconciliation
// policy differs by feed and is chosen by the caller:
//
//   - delivery and pickup feeds call Replace: the server list is
//     authoritative and the cache holds exactly what the last poll reported.
//   - the web feed calls Merge then Prune: cached entries persist as
//     actionable items until the server signals dispatch, so a later poll's
//     ordering or windowing can never silently drop an alert.
type Cache struct {
	mu    sync.Mutex
	feed  Feed
	items []Notification
}

// NewCache creates an empty cache for the given feed.
func NewCache(feed Feed) *Cache {
	return &Cache{feed: feed}
}

// Feed returns the feed this cache belongs to.
func (c *Cache) Feed() Feed { return c.feed }

// Replace swaps the cache wholesale for the server's current list,
// dropping duplicates by id. An empty list empties the cache.
func (c *Cache) Replace(items []Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = dedup(items)
}

// Merge appends server items whose id is not yet cached and leaves every
// cached entry untouched, preserving its displayed data. Nothing is removed.
func (c *Cache) Merge(items []Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]bool, len(c.items))
	for _, it := range c.items {
		known[it.OrderID] = true
	}
	for _, it := range items {
		if !known[it.OrderID] {
			c.items = append(c.items, it)
			known[it.OrderID] = true
		}
	}
}

// Prune removes the given ids from the cache. Used by the web feed when the
// server explicitly signals that orders were dispatched; never driven by a
// local user action alone.
func (c *Cache) Prune(ids []string) {
	if len(ids) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := c.items[:0]
	for _, it := range c.items {
		if !drop[it.OrderID] {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Dismiss removes a single id from the cache. This is the optimistic local
// removal backing the per-item dismiss action.
func (c *Cache) Dismiss(id string) {
	c.Prune([]string{id})
}

// Items returns a copy of the cached notifications in insertion order.
func (c *Cache) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// IDs returns the cached order ids in insertion order.
func (c *Cache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.items))
	for i, it := range c.items {
		ids[i] = it.OrderID
	}
	return ids
}

// Count returns the number of cached notifications.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Indicator derives the floating-button state: visible with a live count
// while the cache is non-empty, gone otherwise.
func (c *Cache) Indicator() Indicator {
	n := c.Count()
	return Indicator{Feed: c.feed, Label: c.feed.Label(), Count: n, Visible: n > 0}
}

func dedup(items []Notification) []Notification {
	out := make([]Notification, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.OrderID] {
			out = append(out, it)
			seen[it.OrderID] = true
		}
	}
	return out
}
