package fulfillment

import (
	"fulfillment-engine/carrier"
	"fulfillment-engine/models"
)

// PlanAction says whether a plan creates a new shipment record or amends an
// existing one.
type PlanAction string

const (
	ActionCreate PlanAction = "create"
	ActionUpdate PlanAction = "update"
)

// Plan is the fully-decided outcome of validating a shipment request against
// an order snapshot. Executing a plan is the only side-effecting step left.
type Plan struct {
	Action           PlanAction           `json:"action"`
	ShipmentRecordID string               `json:"shipment_record_id,omitempty"`
	Items            []models.CoveredItem `json:"items,omitempty"`
	Tracking         models.TrackingInfo  `json:"tracking"`
	Carrier          carrier.Normalized   `json:"carrier"`
	IsPartial        bool                 `json:"is_partial"`
	Notify           bool                 `json:"notify"`
}

// BuildPlan runs the pure middle of a fulfill call: request validation (or
// full-coverage synthesis), carrier normalization, tracking assembly and the
// create-vs-update decision. The order and records must come from the same
// snapshot; the plan's validity is only as fresh as they are.
//
// Update mode (an existing shipment record id on the request) amends tracking
// info only; the items a record covers are immutable after creation.
func BuildPlan(order models.Order, records []models.ShipmentRecord, req models.ShipmentRequest) (Plan, error) {
	if len(order.Items) == 0 {
		return Plan{}, NewError(KindNoLineItems, "order %s has no line items to ship", order.ID)
	}

	normalized := carrier.Normalize(carrier.Input{
		Raw:            req.Carrier,
		CustomName:     req.CustomCarrierName,
		ExplicitURL:    req.TrackingURL,
		TrackingNumber: req.TrackingNumber,
	})
	tracking := models.TrackingInfo{
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: normalized.DisplayName,
		TrackingLink:     normalized.TrackingURL,
	}

	if req.ShipmentRecordID != "" {
		return Plan{
			Action:           ActionUpdate,
			ShipmentRecordID: req.ShipmentRecordID,
			Tracking:         tracking,
			Carrier:          normalized,
			Notify:           req.NotifyCustomer,
		}, nil
	}

	plan := Plan{
		Action:   ActionCreate,
		Tracking: tracking,
		Carrier:  normalized,
		Notify:   req.NotifyCustomer,
	}

	if len(req.Items) > 0 {
		validation := ValidateItems(order, records, req.Items)
		if len(validation.ValidItems) == 0 {
			err := NewError(KindNoValidItems, "no valid items in request for order %s", order.ID)
			err.InvalidItems = validation.InvalidItems
			return Plan{}, err
		}
		for _, item := range validation.ValidItems {
			plan.Items = append(plan.Items, models.CoveredItem{
				LineItemID: item.LineItemID,
				Quantity:   item.Quantity,
			})
		}
		plan.IsPartial = true
		return plan, nil
	}

	// Full path: cover each item's current remaining quantity, not its
	// original ordered quantity. Items already fully shipped drop out.
	for _, item := range order.Items {
		if item.ID == "" {
			continue
		}
		remaining := Remaining(item.ID, item.Quantity, records)
		if remaining == 0 {
			continue
		}
		plan.Items = append(plan.Items, models.CoveredItem{
			LineItemID: item.ID,
			Quantity:   remaining,
		})
	}
	if len(plan.Items) == 0 {
		return Plan{}, NewError(KindNoValidItems, "order %s has nothing left to ship", order.ID)
	}
	return plan, nil
}
