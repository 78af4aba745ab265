// Package arrivals detects newly-appeared orders from the platform's order
// search endpoint. It only produces the "a new order appeared" output;
// scheduling the polls belongs to the caller.
package arrivals

import (
	"container/list"
	"context"
	"time"

	"fulfillment-engine/models"
)

// SeenCache is a bounded set of order ids with least-recently-seen eviction.
// Marking an id refreshes its recency, so a busy order never ages out while
// quiet ones do.
type SeenCache struct {
	capacity int
	recency  *list.List
	index    map[string]*list.Element
}

// NewSeenCache creates a cache holding at most capacity ids.
func NewSeenCache(capacity int) *SeenCache {
	if capacity < 1 {
		capacity = 1
	}
	return &SeenCache{
		capacity: capacity,
		recency:  list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Seen marks id as seen and reports whether it was already present.
func (c *SeenCache) Seen(id string) bool {
	if elem, ok := c.index[id]; ok {
		c.recency.MoveToFront(elem)
		return true
	}
	c.index[id] = c.recency.PushFront(id)
	if c.recency.Len() > c.capacity {
		oldest := c.recency.Back()
		c.recency.Remove(oldest)
		delete(c.index, oldest.Value.(string))
	}
	return false
}

// Len returns the number of ids currently held.
func (c *SeenCache) Len() int {
	return c.recency.Len()
}

// Lister is the slice of the platform API the detector needs.
type Lister interface {
	SearchOrders(ctx context.Context, since time.Time, limit int) ([]models.Order, error)
}

// Detector diffs successive order searches against a bounded seen-set.
// Not safe for concurrent use; drive it from one goroutine.
type Detector struct {
	lister Lister
	seen   *SeenCache
	since  time.Time
	limit  int
}

// NewDetector creates a detector. capacity bounds the seen-set; limit caps
// each search.
func NewDetector(lister Lister, capacity, limit int) *Detector {
	return &Detector{
		lister: lister,
		seen:   NewSeenCache(capacity),
		limit:  limit,
	}
}

// Poll runs one search and returns the orders not seen before. The search
// window overlaps the previous poll by a minute so an order landing exactly
// on the boundary is not missed; the seen-set absorbs the duplicates.
func (d *Detector) Poll(ctx context.Context) ([]models.Order, error) {
	now := time.Now()
	orders, err := d.lister.SearchOrders(ctx, d.since, d.limit)
	if err != nil {
		return nil, err
	}
	d.since = now.Add(-time.Minute)

	var fresh []models.Order
	for _, order := range orders {
		if !d.seen.Seen(order.ID) {
			fresh = append(fresh, order)
		}
	}
	return fresh, nil
}
