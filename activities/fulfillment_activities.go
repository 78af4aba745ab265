package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"fulfillment-engine/models"
	"fulfillment-engine/platform"
)

// Activities contains the platform-facing activities of the fulfillment
// workflow. Backoff and attempt counting belong to the workflow's retry
// policy, so the platform client here should be configured with a
// single-attempt retrier; this package only classifies failures so the
// policy knows what not to retry.
type Activities struct {
	client *platform.Client
}

// NewActivities creates an Activities instance around a platform client.
func NewActivities(client *platform.Client) *Activities {
	return &Activities{client: client}
}

// Error types surfaced to the workflow for failures retrying cannot fix.
const (
	ErrTypeOrderNotFound = "ORDER_NOT_FOUND"
	ErrTypeNonRetriable  = "PLATFORM_REJECTED"
)

// FetchOrder fetches one order snapshot from the platform.
func (a *Activities) FetchOrder(ctx context.Context, orderID string) (models.Order, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Fetching order", "order_id", orderID)

	activity.RecordHeartbeat(ctx, "calling platform order endpoint")

	order, err := a.client.GetOrder(ctx, orderID)
	if err != nil {
		if platform.IsNotFound(err) {
			return models.Order{}, temporal.NewNonRetryableApplicationError("order not found", ErrTypeOrderNotFound, err)
		}
		return models.Order{}, classify(err)
	}

	logger.Info("Order fetched", "order_id", orderID, "line_items", len(order.Items))
	return order, nil
}

// ListShipments fetches all shipment records for an order.
func (a *Activities) ListShipments(ctx context.Context, orderID string) ([]models.ShipmentRecord, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Listing shipment records", "order_id", orderID)

	activity.RecordHeartbeat(ctx, "calling platform shipment list endpoint")

	records, err := a.client.ListShipments(ctx, orderID)
	if err != nil {
		return nil, classify(err)
	}

	logger.Info("Shipment records listed", "order_id", orderID, "count", len(records))
	return records, nil
}

// CreateShipmentInput is the serializable input of the CreateShipment
// activity.
type CreateShipmentInput struct {
	OrderID  string               `json:"order_id"`
	Items    []models.CoveredItem `json:"items"`
	Tracking models.TrackingInfo  `json:"tracking"`
	Notify   bool                 `json:"notify"`
}

// CreateShipment creates a new shipment record on the platform.
func (a *Activities) CreateShipment(ctx context.Context, input CreateShipmentInput) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating shipment record", "order_id", input.OrderID, "items", len(input.Items), "notify", input.Notify)

	activity.RecordHeartbeat(ctx, "calling platform shipment create endpoint")

	shipmentID, err := a.client.CreateShipment(ctx, input.OrderID, input.Items, input.Tracking, input.Notify)
	if err != nil {
		return "", classify(err)
	}

	logger.Info("Shipment record created", "order_id", input.OrderID, "shipment_record_id", shipmentID)
	return shipmentID, nil
}

// UpdateShipmentInput is the serializable input of the UpdateShipment
// activity.
type UpdateShipmentInput struct {
	OrderID          string              `json:"order_id"`
	ShipmentRecordID string              `json:"shipment_record_id"`
	Tracking         models.TrackingInfo `json:"tracking"`
	Notify           bool                `json:"notify"`
}

// UpdateShipment amends tracking info on an existing shipment record.
func (a *Activities) UpdateShipment(ctx context.Context, input UpdateShipmentInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Updating shipment record", "order_id", input.OrderID, "shipment_record_id", input.ShipmentRecordID, "notify", input.Notify)

	activity.RecordHeartbeat(ctx, "calling platform shipment update endpoint")

	if err := a.client.UpdateShipment(ctx, input.OrderID, input.ShipmentRecordID, input.Tracking, input.Notify); err != nil {
		return classify(err)
	}

	logger.Info("Shipment record updated", "order_id", input.OrderID, "shipment_record_id", input.ShipmentRecordID)
	return nil
}

// classify marks failures the retry policy must not waste attempts on.
func classify(err error) error {
	if !platform.Retriable(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNonRetriable, err)
	}
	return err
}
