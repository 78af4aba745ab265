package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fulfillment-engine/models"
)

func record(id string, items ...models.CoveredItem) models.ShipmentRecord {
	return models.ShipmentRecord{ID: id, TrackingNumber: "TN-" + id, Carrier: "UPS", Items: items}
}

func TestFulfilledQuantity(t *testing.T) {
	tests := []struct {
		name    string
		ordered int
		records []models.ShipmentRecord
		want    int
	}{
		{
			name:    "No shipments",
			ordered: 3,
			records: nil,
			want:    0,
		},
		{
			name:    "Single partial shipment",
			ordered: 3,
			records: []models.ShipmentRecord{record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 2})},
			want:    2,
		},
		{
			name:    "Sum across shipments",
			ordered: 5,
			records: []models.ShipmentRecord{
				record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 2}),
				record("s2", models.CoveredItem{LineItemID: "li-1", Quantity: 1}),
			},
			want: 3,
		},
		{
			name:    "Clamped at ordered",
			ordered: 2,
			records: []models.ShipmentRecord{
				record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 2}),
				record("s2", models.CoveredItem{LineItemID: "li-1", Quantity: 2}),
			},
			want: 2,
		},
		{
			name:    "Other items ignored",
			ordered: 3,
			records: []models.ShipmentRecord{record("s1", models.CoveredItem{LineItemID: "li-2", Quantity: 3})},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FulfilledQuantity("li-1", tt.ordered, tt.records)
			assert.Equal(t, tt.want, got)

			remaining := Remaining("li-1", tt.ordered, tt.records)
			assert.Equal(t, tt.ordered-got, remaining)
			assert.GreaterOrEqual(t, remaining, 0)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, tt.ordered)
		})
	}
}

func TestItemState(t *testing.T) {
	assert.Equal(t, models.StatusNotFulfilled, ItemState(3, 0))
	assert.Equal(t, models.StatusPartiallyFulfilled, ItemState(3, 1))
	assert.Equal(t, models.StatusPartiallyFulfilled, ItemState(3, 2))
	assert.Equal(t, models.StatusFulfilled, ItemState(3, 3))
}

func TestOverallStatus(t *testing.T) {
	items := []models.LineItem{
		{ID: "li-1", Quantity: 1},
		{ID: "li-2", Quantity: 2},
	}

	tests := []struct {
		name    string
		items   []models.LineItem
		records []models.ShipmentRecord
		want    models.FulfillmentStatus
	}{
		{
			name:  "No line items is NOT_FULFILLED, not an error",
			items: nil,
			want:  models.StatusNotFulfilled,
		},
		{
			name:  "Nothing shipped",
			items: items,
			want:  models.StatusNotFulfilled,
		},
		{
			name:  "One item fulfilled one untouched",
			items: items,
			records: []models.ShipmentRecord{
				record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 1}),
			},
			want: models.StatusPartiallyFulfilled,
		},
		{
			name:  "One item partially covered",
			items: items,
			records: []models.ShipmentRecord{
				record("s1", models.CoveredItem{LineItemID: "li-2", Quantity: 1}),
			},
			want: models.StatusPartiallyFulfilled,
		},
		{
			name:  "Everything covered",
			items: items,
			records: []models.ShipmentRecord{
				record("s1", models.CoveredItem{LineItemID: "li-1", Quantity: 1}),
				record("s2", models.CoveredItem{LineItemID: "li-2", Quantity: 2}),
			},
			want: models.StatusFulfilled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallStatus(tt.items, tt.records))
		})
	}
}
