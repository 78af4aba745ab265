package fulfillment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-engine/models"
)

func TestAggregateTracking(t *testing.T) {
	shippedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	order := models.Order{
		ID: "ord-1",
		Items: []models.LineItem{
			{ID: "li-1", Name: "Mug", Quantity: 3},
			{ID: "li-2", Name: "Plate", Quantity: 1},
		},
	}
	records := []models.ShipmentRecord{
		{
			ID:             "s1",
			CreatedAt:      shippedAt,
			TrackingNumber: "1Z001",
			Carrier:        "UPS",
			TrackingURL:    "https://www.ups.com/track?tracknum=1Z001",
			Items:          []models.CoveredItem{{LineItemID: "li-1", Quantity: 2}},
		},
		{
			ID:             "s2",
			CreatedAt:      shippedAt.Add(time.Hour),
			TrackingNumber: "1Z002",
			Carrier:        "UPS",
			Items:          []models.CoveredItem{{LineItemID: "li-1", Quantity: 1}},
		},
	}

	view := AggregateTracking(order, records)

	assert.Equal(t, "ord-1", view.OrderID)
	assert.Equal(t, models.StatusPartiallyFulfilled, view.OverallStatus)
	require.Len(t, view.Items, 2)

	mug := view.Items[0]
	assert.Equal(t, 3, mug.Fulfilled)
	assert.Equal(t, 0, mug.Remaining)
	assert.Equal(t, models.StatusFulfilled, mug.Status)
	require.Len(t, mug.Entries, 2)
	assert.Equal(t, "1Z001", mug.Entries[0].TrackingNumber)
	assert.Equal(t, 2, mug.Entries[0].Quantity)
	assert.Equal(t, "s1", mug.Entries[0].ShipmentRecordID)
	assert.Equal(t, shippedAt, mug.Entries[0].ShippedAt)
	assert.Equal(t, "1Z002", mug.Entries[1].TrackingNumber)
	assert.Equal(t, 1, mug.Entries[1].Quantity)

	plate := view.Items[1]
	assert.Equal(t, 0, plate.Fulfilled)
	assert.Equal(t, 1, plate.Remaining)
	assert.Equal(t, models.StatusNotFulfilled, plate.Status)
	assert.Empty(t, plate.Entries)

	assert.True(t, view.CanEditTracking)
	assert.True(t, view.CanAddTracking)
}

func TestAggregateTrackingIsIdempotent(t *testing.T) {
	order := models.Order{ID: "ord-1", Items: []models.LineItem{{ID: "li-1", Quantity: 2}}}
	records := []models.ShipmentRecord{record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 1})}

	first := AggregateTracking(order, records)
	second := AggregateTracking(order, records)
	assert.Equal(t, first, second)
}

func TestAggregateTrackingSkipsRecordsWithoutTracking(t *testing.T) {
	order := models.Order{ID: "ord-1", Items: []models.LineItem{{ID: "li-1", Quantity: 3}}}
	records := []models.ShipmentRecord{
		// Record without tracking info still counts toward fulfilled
		// quantity but contributes no tracking entry.
		{ID: "s1", Items: []models.CoveredItem{{LineItemID: "li-1", Quantity: 2}}},
	}

	view := AggregateTracking(order, records)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Fulfilled)
	assert.Empty(t, view.Items[0].Entries)
	assert.False(t, view.CanEditTracking)
	assert.True(t, view.CanAddTracking)
}

func TestAggregateTrackingKeepsDuplicateTrackingNumbers(t *testing.T) {
	// A correction shipment reuses the tracking number. Two entries, not one.
	order := models.Order{ID: "ord-1", Items: []models.LineItem{{ID: "li-1", Quantity: 2}}}
	records := []models.ShipmentRecord{
		{ID: "s1", TrackingNumber: "1Z001", Items: []models.CoveredItem{{LineItemID: "li-1", Quantity: 1}}},
		{ID: "s2", TrackingNumber: "1Z001", Items: []models.CoveredItem{{LineItemID: "li-1", Quantity: 1}}},
	}

	view := AggregateTracking(order, records)

	require.Len(t, view.Items, 1)
	require.Len(t, view.Items[0].Entries, 2)
	assert.Equal(t, "s1", view.Items[0].Entries[0].ShipmentRecordID)
	assert.Equal(t, "s2", view.Items[0].Entries[1].ShipmentRecordID)
}

func TestAggregateTrackingFullyShippedOrder(t *testing.T) {
	order := models.Order{ID: "ord-1", Items: []models.LineItem{{ID: "li-1", Quantity: 1}}}
	records := []models.ShipmentRecord{
		{ID: "s1", TrackingNumber: "1Z001", Items: []models.CoveredItem{{LineItemID: "li-1", Quantity: 1}}},
	}

	view := AggregateTracking(order, records)

	assert.Equal(t, models.StatusFulfilled, view.OverallStatus)
	assert.True(t, view.CanEditTracking)
	assert.False(t, view.CanAddTracking)
}
