package models

import (
	"fmt"
	"strconv"
	"time"
)

// The platform's REST responses are not consistently shaped: the same field
// shows up under different names depending on API version and endpoint. All
// of that tolerance lives here, in one place. A field that is genuinely
// absent is an error, never a silent zero.

// OrderFromAPI converts a raw order payload into a strict Order.
func OrderFromAPI(raw map[string]any) (Order, error) {
	id, err := stringField(raw, "id", "orderId", "order_id")
	if err != nil {
		return Order{}, fmt.Errorf("order: %w", err)
	}

	order := Order{ID: id}
	if number, err := stringField(raw, "number", "orderNumber", "name"); err == nil {
		order.Number = number
	} else {
		order.Number = id
	}

	rawItems, err := listField(raw, "lineItems", "line_items", "items")
	if err != nil {
		return Order{}, fmt.Errorf("order %s: %w", id, err)
	}

	for i, rawItem := range rawItems {
		item, err := lineItemFromAPI(rawItem)
		if err != nil {
			return Order{}, fmt.Errorf("order %s: line item %d: %w", id, i, err)
		}
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func lineItemFromAPI(raw map[string]any) (LineItem, error) {
	id, err := stringField(raw, "lineItemId", "line_item_id", "itemId", "id")
	if err != nil {
		return LineItem{}, err
	}
	qty, err := intField(raw, "quantity", "qty")
	if err != nil {
		return LineItem{}, fmt.Errorf("line item %s: %w", id, err)
	}

	item := LineItem{ID: id, Quantity: qty}
	if name, err := stringField(raw, "name", "title"); err == nil {
		item.Name = name
	}
	// Fulfilled quantity is optional; records created before the platform
	// started reporting it simply omit the field.
	if fulfilled, err := intField(raw, "fulfilledQuantity", "fulfilled_quantity", "fulfilled"); err == nil {
		item.Fulfilled = fulfilled
	}
	return item, nil
}

// ShipmentRecordFromAPI converts a raw shipment payload into a strict
// ShipmentRecord. Tracking info may be entirely absent (a record created
// without tracking); that is not an error.
func ShipmentRecordFromAPI(raw map[string]any) (ShipmentRecord, error) {
	id, err := stringField(raw, "id", "shipmentId", "shipment_id", "fulfillmentId")
	if err != nil {
		return ShipmentRecord{}, fmt.Errorf("shipment record: %w", err)
	}

	record := ShipmentRecord{ID: id}
	if createdAt, err := stringField(raw, "createdAt", "created_at", "createdOn"); err == nil {
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			record.CreatedAt = ts
		}
	}

	// Tracking fields live either nested under trackingInfo or flat on the
	// record itself.
	tracking := raw
	if nested, err := objectField(raw, "trackingInfo", "tracking_info"); err == nil {
		tracking = nested
	}
	if number, err := stringField(tracking, "trackingNumber", "tracking_number"); err == nil {
		record.TrackingNumber = number
	}
	if carrier, err := stringField(tracking, "shippingProvider", "shipping_provider", "carrier"); err == nil {
		record.Carrier = carrier
	}
	if url, err := stringField(tracking, "trackingLink", "tracking_link", "trackingUrl", "tracking_url"); err == nil {
		record.TrackingURL = url
	}

	rawItems, err := listField(raw, "items", "lineItems", "line_items")
	if err != nil {
		return ShipmentRecord{}, fmt.Errorf("shipment record %s: %w", id, err)
	}
	for i, rawItem := range rawItems {
		itemID, err := stringField(rawItem, "lineItemId", "line_item_id", "itemId", "id")
		if err != nil {
			return ShipmentRecord{}, fmt.Errorf("shipment record %s: item %d: %w", id, i, err)
		}
		qty, err := intField(rawItem, "quantity", "qty")
		if err != nil {
			return ShipmentRecord{}, fmt.Errorf("shipment record %s: item %s: %w", id, itemID, err)
		}
		record.Items = append(record.Items, CoveredItem{LineItemID: itemID, Quantity: qty})
	}
	return record, nil
}

// ShipmentRecordsFromAPI converts a list of raw shipment payloads.
func ShipmentRecordsFromAPI(raws []map[string]any) ([]ShipmentRecord, error) {
	records := make([]ShipmentRecord, 0, len(raws))
	for i, raw := range raws {
		record, err := ShipmentRecordFromAPI(raw)
		if err != nil {
			return nil, fmt.Errorf("shipment %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func stringField(raw map[string]any, keys ...string) (string, error) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			// Numeric ids arrive as JSON numbers on older endpoints.
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}
	return "", fmt.Errorf("missing field (tried %v)", keys)
}

func intField(raw map[string]any, keys ...string) (int, error) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("missing numeric field (tried %v)", keys)
}

func listField(raw map[string]any, keys ...string) ([]map[string]any, error) {
	for _, key := range keys {
		list, ok := raw[key].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			obj, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("field %q: entry is not an object", key)
			}
			out = append(out, obj)
		}
		return out, nil
	}
	return nil, fmt.Errorf("missing list field (tried %v)", keys)
}

func objectField(raw map[string]any, keys ...string) (map[string]any, error) {
	for _, key := range keys {
		if obj, ok := raw[key].(map[string]any); ok {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("missing object field (tried %v)", keys)
}
