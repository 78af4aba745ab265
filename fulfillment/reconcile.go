// Package fulfillment holds the pure core of the reconciliation engine:
// quantity reconciliation, request validation, tracking aggregation and the
// create-vs-update fulfillment plan. Nothing here performs I/O.
package fulfillment

import "fulfillment-engine/models"

// FulfilledQuantity sums the quantities all shipment records cover for the
// given line item, clamped to the ordered quantity. The shipment records are
// the authority; the platform-reported fulfilled count on the line item is
// only a hint.
func FulfilledQuantity(lineItemID string, ordered int, records []models.ShipmentRecord) int {
	total := 0
	for _, record := range records {
		for _, covered := range record.Items {
			if covered.LineItemID == lineItemID {
				total += covered.Quantity
			}
		}
	}
	if total > ordered {
		total = ordered
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Remaining returns the quantity of a line item not yet covered by any
// shipment record. Never negative.
func Remaining(lineItemID string, ordered int, records []models.ShipmentRecord) int {
	remaining := ordered - FulfilledQuantity(lineItemID, ordered, records)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ItemState derives the per-item fulfillment state from ordered vs fulfilled.
func ItemState(ordered, fulfilled int) models.FulfillmentStatus {
	switch {
	case fulfilled <= 0:
		return models.StatusNotFulfilled
	case fulfilled >= ordered:
		return models.StatusFulfilled
	default:
		return models.StatusPartiallyFulfilled
	}
}

// OverallStatus aggregates per-item states to the order level: FULFILLED iff
// every item is fulfilled, NOT_FULFILLED iff every item is untouched,
// PARTIALLY_FULFILLED otherwise. An order with no line items is
// NOT_FULFILLED, not an error.
func OverallStatus(items []models.LineItem, records []models.ShipmentRecord) models.FulfillmentStatus {
	if len(items) == 0 {
		return models.StatusNotFulfilled
	}
	allFulfilled := true
	noneFulfilled := true
	for _, item := range items {
		switch ItemState(item.Quantity, FulfilledQuantity(item.ID, item.Quantity, records)) {
		case models.StatusFulfilled:
			noneFulfilled = false
		case models.StatusNotFulfilled:
			allFulfilled = false
		default:
			allFulfilled = false
			noneFulfilled = false
		}
	}
	switch {
	case allFulfilled:
		return models.StatusFulfilled
	case noneFulfilled:
		return models.StatusNotFulfilled
	default:
		return models.StatusPartiallyFulfilled
	}
}
