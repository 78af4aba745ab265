package arrivals

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-engine/models"
)

func TestSeenCache(t *testing.T) {
	t.Run("First sighting is fresh", func(t *testing.T) {
		cache := NewSeenCache(4)
		assert.False(t, cache.Seen("ord-1"))
		assert.True(t, cache.Seen("ord-1"))
	})

	t.Run("Eviction drops the least recently seen id", func(t *testing.T) {
		cache := NewSeenCache(2)
		cache.Seen("ord-1")
		cache.Seen("ord-2")
		cache.Seen("ord-3")

		assert.Equal(t, 2, cache.Len())
		// ord-1 aged out and reads as fresh again.
		assert.False(t, cache.Seen("ord-1"))
		assert.True(t, cache.Seen("ord-3"))
	})

	t.Run("Re-sighting refreshes recency", func(t *testing.T) {
		cache := NewSeenCache(2)
		cache.Seen("ord-1")
		cache.Seen("ord-2")
		cache.Seen("ord-1")
		cache.Seen("ord-3")

		// ord-2 was the stalest, not ord-1.
		assert.True(t, cache.Seen("ord-1"))
		assert.False(t, cache.Seen("ord-2"))
	})

	t.Run("Zero capacity is clamped", func(t *testing.T) {
		cache := NewSeenCache(0)
		assert.False(t, cache.Seen("ord-1"))
		assert.Equal(t, 1, cache.Len())
	})
}

type fakeLister struct {
	orders    []models.Order
	err       error
	lastSince time.Time
	lastLimit int
	calls     int
}

func (f *fakeLister) SearchOrders(ctx context.Context, since time.Time, limit int) ([]models.Order, error) {
	f.calls++
	f.lastSince = since
	f.lastLimit = limit
	return f.orders, f.err
}

func orderIDs(orders []models.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestDetectorPoll(t *testing.T) {
	lister := &fakeLister{orders: []models.Order{{ID: "ord-1"}, {ID: "ord-2"}}}
	detector := NewDetector(lister, 16, 50)

	fresh, err := detector.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-2"}, orderIDs(fresh))
	assert.True(t, lister.lastSince.IsZero())
	assert.Equal(t, 50, lister.lastLimit)

	// The overlap window re-delivers ord-2; only ord-3 is fresh.
	lister.orders = []models.Order{{ID: "ord-2"}, {ID: "ord-3"}}
	fresh, err = detector.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-3"}, orderIDs(fresh))
	assert.False(t, lister.lastSince.IsZero())
}

func TestDetectorPollSearchFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("platform unavailable")}
	detector := NewDetector(lister, 16, 50)

	_, err := detector.Poll(context.Background())
	require.Error(t, err)

	// A failed poll must not advance the window.
	lister.err = nil
	detector.Poll(context.Background())
	assert.True(t, lister.lastSince.IsZero())
}

func TestDetectorSurvivesSeenSetEviction(t *testing.T) {
	lister := &fakeLister{}
	detector := NewDetector(lister, 4, 50)

	for i := 0; i < 10; i++ {
		lister.orders = []models.Order{{ID: fmt.Sprintf("ord-%d", i)}}
		fresh, err := detector.Poll(context.Background())
		require.NoError(t, err)
		require.Len(t, fresh, 1)
	}
}
