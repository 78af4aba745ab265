package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestOrderFromAPI(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Order
		wantErr string
	}{
		{
			name: "Canonical shape",
			payload: `{
				"id": "ord-1",
				"number": "#1001",
				"lineItems": [
					{"lineItemId": "li-1", "name": "Mug", "quantity": 3, "fulfilledQuantity": 1}
				]
			}`,
			want: Order{
				ID:     "ord-1",
				Number: "#1001",
				Items:  []LineItem{{ID: "li-1", Name: "Mug", Quantity: 3, Fulfilled: 1}},
			},
		},
		{
			name: "Legacy field names",
			payload: `{
				"order_id": "ord-2",
				"items": [
					{"itemId": "li-1", "title": "Plate", "qty": 2, "fulfilled": 0}
				]
			}`,
			want: Order{
				ID:     "ord-2",
				Number: "ord-2",
				Items:  []LineItem{{ID: "li-1", Name: "Plate", Quantity: 2}},
			},
		},
		{
			name: "Numeric ids become strings",
			payload: `{
				"id": 42,
				"lineItems": [{"id": 7, "quantity": 1}]
			}`,
			want: Order{
				ID:     "42",
				Number: "42",
				Items:  []LineItem{{ID: "7", Quantity: 1}},
			},
		},
		{
			name:    "Missing order id fails loudly",
			payload: `{"lineItems": []}`,
			wantErr: "missing field",
		},
		{
			name:    "Missing items list fails loudly",
			payload: `{"id": "ord-3"}`,
			wantErr: "missing list field",
		},
		{
			name: "Missing quantity fails loudly",
			payload: `{
				"id": "ord-4",
				"lineItems": [{"id": "li-1", "name": "Mug"}]
			}`,
			wantErr: "missing numeric field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OrderFromAPI(decode(t, tt.payload))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShipmentRecordFromAPI(t *testing.T) {
	t.Run("Nested tracking info", func(t *testing.T) {
		raw := decode(t, `{
			"id": "s1",
			"createdAt": "2026-03-14T09:00:00Z",
			"trackingInfo": {
				"trackingNumber": "1Z001",
				"shippingProvider": "UPS",
				"trackingLink": "https://www.ups.com/track?tracknum=1Z001"
			},
			"items": [{"lineItemId": "li-1", "quantity": 2}]
		}`)

		got, err := ShipmentRecordFromAPI(raw)
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
		assert.Equal(t, "1Z001", got.TrackingNumber)
		assert.Equal(t, "UPS", got.Carrier)
		assert.Equal(t, "https://www.ups.com/track?tracknum=1Z001", got.TrackingURL)
		assert.Equal(t, 2026, got.CreatedAt.Year())
		assert.Equal(t, []CoveredItem{{LineItemID: "li-1", Quantity: 2}}, got.Items)
	})

	t.Run("Flat tracking fields", func(t *testing.T) {
		raw := decode(t, `{
			"shipmentId": "s2",
			"tracking_number": "1Z002",
			"carrier": "dhl",
			"line_items": [{"id": "li-1", "qty": 1}]
		}`)

		got, err := ShipmentRecordFromAPI(raw)
		require.NoError(t, err)
		assert.Equal(t, "s2", got.ID)
		assert.Equal(t, "1Z002", got.TrackingNumber)
		assert.Equal(t, "dhl", got.Carrier)
	})

	t.Run("Absent tracking info is not an error", func(t *testing.T) {
		raw := decode(t, `{
			"id": "s3",
			"items": [{"lineItemId": "li-1", "quantity": 1}]
		}`)

		got, err := ShipmentRecordFromAPI(raw)
		require.NoError(t, err)
		assert.Empty(t, got.TrackingNumber)
		assert.Empty(t, got.Carrier)
	})

	t.Run("Missing covered item quantity fails loudly", func(t *testing.T) {
		raw := decode(t, `{
			"id": "s4",
			"items": [{"lineItemId": "li-1"}]
		}`)

		_, err := ShipmentRecordFromAPI(raw)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "li-1")
	})
}

func TestShipmentRecordsFromAPI(t *testing.T) {
	raws := []map[string]any{
		decode(t, `{"id": "s1", "items": [{"lineItemId": "li-1", "quantity": 1}]}`),
		decode(t, `{"id": "s2", "items": [{"lineItemId": "li-1", "quantity": 2}]}`),
	}

	records, err := ShipmentRecordsFromAPI(raws)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "s1", records[0].ID)
	assert.Equal(t, "s2", records[1].ID)
}
