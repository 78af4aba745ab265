package fulfillment

import "fulfillment-engine/models"

// AggregateTracking merges all shipment records into one view per line item.
// A record without any tracking info contributes no entry (but still counts
// toward fulfilled quantity). Nothing is de-duplicated: two shipments with
// the same tracking number for the same item are two legitimate entries.
func AggregateTracking(order models.Order, records []models.ShipmentRecord) models.FulfillmentView {
	view := models.FulfillmentView{
		OrderID:       order.ID,
		Items:         make([]models.ItemTrackingView, 0, len(order.Items)),
		OverallStatus: OverallStatus(order.Items, records),
	}

	for _, item := range order.Items {
		fulfilled := FulfilledQuantity(item.ID, item.Quantity, records)
		itemView := models.ItemTrackingView{
			LineItemID: item.ID,
			Name:       item.Name,
			Ordered:    item.Quantity,
			Fulfilled:  fulfilled,
			Remaining:  item.Quantity - fulfilled,
			Status:     ItemState(item.Quantity, fulfilled),
			Entries:    []models.ItemTrackingEntry{},
		}

		for _, record := range records {
			if record.TrackingNumber == "" {
				continue
			}
			for _, covered := range record.Items {
				if covered.LineItemID != item.ID {
					continue
				}
				itemView.Entries = append(itemView.Entries, models.ItemTrackingEntry{
					TrackingNumber:   record.TrackingNumber,
					Carrier:          record.Carrier,
					Quantity:         covered.Quantity,
					TrackingURL:      record.TrackingURL,
					ShipmentRecordID: record.ID,
					ShippedAt:        record.CreatedAt,
				})
			}
		}

		if len(itemView.Entries) > 0 {
			view.CanEditTracking = true
		}
		if itemView.Remaining > 0 {
			view.CanAddTracking = true
		}
		view.Items = append(view.Items, itemView)
	}
	return view
}
