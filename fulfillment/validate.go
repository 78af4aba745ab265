package fulfillment

import "fulfillment-engine/models"

// ValidateItems checks each requested (item, quantity) pair against the
// order and its shipment records. Each entry is atomically accepted or
// rejected; the function never mutates anything. Whether a caller proceeds
// with a partially valid request is the caller's policy, not enforced here.
func ValidateItems(order models.Order, records []models.ShipmentRecord, items []models.RequestItem) models.ValidationResult {
	result := models.ValidationResult{
		ValidItems:   []models.RequestItem{},
		InvalidItems: []models.InvalidItem{},
	}

	byID := make(map[string]models.LineItem, len(order.Items))
	for _, item := range order.Items {
		byID[item.ID] = item
	}

	for _, requested := range items {
		line, ok := byID[requested.LineItemID]
		if !ok {
			result.InvalidItems = append(result.InvalidItems, models.InvalidItem{
				Item: requested, Reason: models.ReasonItemNotInOrder,
			})
			continue
		}
		if requested.Quantity <= 0 {
			result.InvalidItems = append(result.InvalidItems, models.InvalidItem{
				Item: requested, Reason: models.ReasonQuantityNotPositive,
			})
			continue
		}
		if requested.Quantity > Remaining(line.ID, line.Quantity, records) {
			result.InvalidItems = append(result.InvalidItems, models.InvalidItem{
				Item: requested, Reason: models.ReasonQuantityExceedsRemaining,
			})
			continue
		}
		result.ValidItems = append(result.ValidItems, requested)
	}

	result.CanProceed = len(result.InvalidItems) == 0
	return result
}
