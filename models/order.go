package models

import "time"

// Order is a per-fetch snapshot of a commerce order. Status is derived from
// the order's shipment records and is never written back to the platform.
type Order struct {
	ID     string            `json:"id"`
	Number string            `json:"number"`
	Items  []LineItem        `json:"items"`
	Status FulfillmentStatus `json:"status"`
}

// LineItem represents a single line of an order. Fulfilled is the quantity
// reported by the platform at fetch time; the reconciler recomputes it from
// shipment records and the two may disagree briefly after a commit.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Fulfilled int    `json:"fulfilled"`
}

// FulfillmentStatus represents per-item and order-level fulfillment state
type FulfillmentStatus string

const (
	StatusNotFulfilled       FulfillmentStatus = "NOT_FULFILLED"
	StatusPartiallyFulfilled FulfillmentStatus = "PARTIALLY_FULFILLED"
	StatusFulfilled          FulfillmentStatus = "FULFILLED"
)

// ShipmentRecord is one unit of fulfillment history as known to the platform.
// Items are immutable after creation; only tracking info may be amended.
type ShipmentRecord struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	Items          []CoveredItem `json:"items"`
	TrackingNumber string        `json:"tracking_number"`
	Carrier        string        `json:"carrier"`
	TrackingURL    string        `json:"tracking_url,omitempty"`
}

// CoveredItem is a (line item, quantity) pair covered by a shipment record.
type CoveredItem struct {
	LineItemID string `json:"line_item_id"`
	Quantity   int    `json:"quantity"`
}

// ShipmentRequest is the caller's request to mark items shipped.
// An empty Items slice means "ship everything that still remains".
// A non-empty ShipmentRecordID selects edit mode: tracking info on that
// record is amended and Items are ignored.
type ShipmentRequest struct {
	OrderID           string        `json:"order_id"`
	Items             []RequestItem `json:"items"`
	TrackingNumber    string        `json:"tracking_number"`
	Carrier           string        `json:"carrier"`
	TrackingURL       string        `json:"tracking_url,omitempty"`
	CustomCarrierName string        `json:"custom_carrier_name,omitempty"`
	NotifyCustomer    bool          `json:"notify_customer"`
	ShipmentRecordID  string        `json:"shipment_record_id,omitempty"`
}

// RequestItem is a single requested (line item, quantity) pair.
type RequestItem struct {
	LineItemID string `json:"line_item_id"`
	Quantity   int    `json:"quantity"`
}

// InvalidReason classifies why a requested item was rejected.
type InvalidReason string

const (
	ReasonItemNotInOrder           InvalidReason = "ITEM_NOT_IN_ORDER"
	ReasonQuantityExceedsRemaining InvalidReason = "QUANTITY_EXCEEDS_REMAINING"
	ReasonQuantityNotPositive      InvalidReason = "QUANTITY_NOT_POSITIVE"
)

// InvalidItem is a rejected request entry together with its reason.
type InvalidItem struct {
	Item   RequestItem   `json:"item"`
	Reason InvalidReason `json:"reason"`
}

// TrackingInfo is the tracking payload sent to the platform. TrackingLink is
// omitted entirely when no URL is available; the platform treats an empty
// string as a broken link rather than absence.
type TrackingInfo struct {
	TrackingNumber   string `json:"trackingNumber"`
	ShippingProvider string `json:"shippingProvider"`
	TrackingLink     string `json:"trackingLink,omitempty"`
}

// FulfillmentResult is the outcome of one fulfill call. Every call path ends
// in either Success or an explicit failure with a human-readable reason.
type FulfillmentResult struct {
	Success          bool          `json:"success"`
	ShipmentRecordID string        `json:"shipment_record_id,omitempty"`
	IsPartial        bool          `json:"is_partial"`
	Notified         bool          `json:"notified"`
	FailureKind      string        `json:"failure_kind,omitempty"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	InvalidItems     []InvalidItem `json:"invalid_items,omitempty"`
}

// ValidationResult partitions a request's items into accepted and rejected
// entries. CanProceed reports whether the strict path may continue; callers
// with a lenient policy may still proceed with ValidItems alone.
type ValidationResult struct {
	ValidItems   []RequestItem `json:"valid_items"`
	InvalidItems []InvalidItem `json:"invalid_items"`
	CanProceed   bool          `json:"can_proceed"`
}

// ItemTrackingEntry is one shipment record's contribution to a line item's
// tracking view. The same tracking number can legitimately appear more than
// once for an item (e.g. a correction shipment).
type ItemTrackingEntry struct {
	TrackingNumber   string    `json:"tracking_number"`
	Carrier          string    `json:"carrier"`
	Quantity         int       `json:"quantity"`
	TrackingURL      string    `json:"tracking_url,omitempty"`
	ShipmentRecordID string    `json:"shipment_record_id"`
	ShippedAt        time.Time `json:"shipped_at"`
}

// ItemTrackingView is the aggregated fulfillment view of one line item.
type ItemTrackingView struct {
	LineItemID string              `json:"line_item_id"`
	Name       string              `json:"name"`
	Ordered    int                 `json:"ordered"`
	Fulfilled  int                 `json:"fulfilled"`
	Remaining  int                 `json:"remaining"`
	Status     FulfillmentStatus   `json:"status"`
	Entries    []ItemTrackingEntry `json:"entries"`
}

// FulfillmentView is the aggregated fulfillment view of a whole order.
type FulfillmentView struct {
	OrderID         string             `json:"order_id"`
	Items           []ItemTrackingView `json:"items"`
	OverallStatus   FulfillmentStatus  `json:"overall_status"`
	CanAddTracking  bool               `json:"can_add_tracking"`
	CanEditTracking bool               `json:"can_edit_tracking"`
}
