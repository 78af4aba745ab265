// Package engine is the fulfillment decision engine: it orchestrates order
// fetch, validation, carrier normalization and the create-vs-update commit
// against the commerce platform. This is the direct, context-based surface;
// the workflows package offers the same sequence as a durable Temporal
// workflow.
package engine

import (
	"context"
	"log"

	"fulfillment-engine/fulfillment"
	"fulfillment-engine/models"
	"fulfillment-engine/platform"
)

// PlatformClient is the slice of the platform API the engine needs.
// *platform.Client satisfies it; tests use an in-memory fake.
type PlatformClient interface {
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	ListShipments(ctx context.Context, orderID string) ([]models.ShipmentRecord, error)
	CreateShipment(ctx context.Context, orderID string, items []models.CoveredItem, tracking models.TrackingInfo, notify bool) (string, error)
	UpdateShipment(ctx context.Context, orderID, shipmentID string, tracking models.TrackingInfo, notify bool) error
}

// Engine coordinates fulfillment operations for one platform client.
type Engine struct {
	client PlatformClient
	logger *log.Logger
}

// New creates an engine. A nil logger falls back to the default logger.
func New(client PlatformClient, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{client: client, logger: logger}
}

// Fulfill runs one shipment request end to end. It never returns a Go error:
// every outcome, including platform failures after exhausted retries, folds
// into an explicit FulfillmentResult.
func (e *Engine) Fulfill(ctx context.Context, req models.ShipmentRequest) models.FulfillmentResult {
	order, records, err := e.snapshot(ctx, req.OrderID)
	if err != nil {
		return fulfillment.FailureResult(err)
	}

	plan, err := fulfillment.BuildPlan(order, records, req)
	if err != nil {
		e.logger.Printf("fulfill rejected: order=%s err=%v", req.OrderID, err)
		return fulfillment.FailureResult(err)
	}

	// The caller may have abandoned the operation while we were fetching;
	// do not commit on its behalf.
	if err := ctx.Err(); err != nil {
		return fulfillment.FailureResult(fulfillment.NewError(fulfillment.KindExternalCallFailed, "fulfillment abandoned before commit: %v", err))
	}

	// The commit, once issued, runs to completion or failure regardless of
	// the caller: a half-delivered cancellation must not leave us unsure
	// whether the platform recorded the shipment.
	commitCtx := context.WithoutCancel(ctx)

	result := models.FulfillmentResult{
		Success:   true,
		IsPartial: plan.IsPartial,
		Notified:  plan.Notify,
	}
	switch plan.Action {
	case fulfillment.ActionUpdate:
		if err := e.client.UpdateShipment(commitCtx, req.OrderID, plan.ShipmentRecordID, plan.Tracking, plan.Notify); err != nil {
			return fulfillment.FailureResult(err)
		}
		result.ShipmentRecordID = plan.ShipmentRecordID
	default:
		shipmentID, err := e.client.CreateShipment(commitCtx, req.OrderID, plan.Items, plan.Tracking, plan.Notify)
		if err != nil {
			return fulfillment.FailureResult(err)
		}
		result.ShipmentRecordID = shipmentID
	}

	e.logger.Printf("fulfill committed: order=%s shipment=%s action=%s partial=%t notify=%t",
		req.OrderID, result.ShipmentRecordID, plan.Action, plan.IsPartial, plan.Notify)
	return result
}

// Validate checks requested items against the order's current remainders
// without committing anything.
func (e *Engine) Validate(ctx context.Context, orderID string, items []models.RequestItem) (models.ValidationResult, error) {
	order, records, err := e.snapshot(ctx, orderID)
	if err != nil {
		return models.ValidationResult{}, err
	}
	return fulfillment.ValidateItems(order, records, items), nil
}

// GetFulfillmentView aggregates all shipment records into the per-item and
// order-level tracking view.
func (e *Engine) GetFulfillmentView(ctx context.Context, orderID string) (models.FulfillmentView, error) {
	order, records, err := e.snapshot(ctx, orderID)
	if err != nil {
		return models.FulfillmentView{}, err
	}
	return fulfillment.AggregateTracking(order, records), nil
}

// snapshot fetches the order and its shipment records as one read. The two
// calls are sequential; the platform is the final authority if a concurrent
// writer lands between them.
func (e *Engine) snapshot(ctx context.Context, orderID string) (models.Order, []models.ShipmentRecord, error) {
	order, err := e.client.GetOrder(ctx, orderID)
	if err != nil {
		if platform.IsNotFound(err) {
			return models.Order{}, nil, fulfillment.NewError(fulfillment.KindOrderNotFound, "order %s not found", orderID)
		}
		return models.Order{}, nil, err
	}
	records, err := e.client.ListShipments(ctx, orderID)
	if err != nil {
		return models.Order{}, nil, err
	}
	return order, records, nil
}
