package workflows

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"fulfillment-engine/activities"
	"fulfillment-engine/fulfillment"
	"fulfillment-engine/models"
)

const (
	SignalCancel = "cancel"
	QueryState   = "state"
)

// Workflow stages reported through the state query.
const (
	StageFetching   = "FETCHING"
	StagePlanning   = "PLANNING"
	StageCommitting = "COMMITTING"
	StageDone       = "DONE"
)

// FulfillmentWorkflowState is the queryable state of a running fulfillment.
type FulfillmentWorkflowState struct {
	OrderID     string                    `json:"order_id"`
	Stage       string                    `json:"stage"`
	Cancelled   bool                      `json:"cancelled"`
	Result      *models.FulfillmentResult `json:"result,omitempty"`
	LastUpdated time.Time                 `json:"last_updated"`
}

// FulfillmentWorkflow is the durable variant of the decision engine: fetch
// order and shipment records, build the plan, commit create-or-update.
// Validation failures come back as a failed FulfillmentResult with a nil
// workflow error; only caller cancellation fails the workflow itself.
//
// A cancel signal received before the commit step abandons the fulfillment.
// Once the commit activity is scheduled it runs to completion; a late cancel
// changes nothing.
func FulfillmentWorkflow(ctx workflow.Context, req models.ShipmentRequest) (models.FulfillmentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("FulfillmentWorkflow started", "order_id", req.OrderID, "edit_mode", req.ShipmentRecordID != "")

	state := FulfillmentWorkflowState{
		OrderID:     req.OrderID,
		Stage:       StageFetching,
		LastUpdated: workflow.Now(ctx),
	}

	err := workflow.SetQueryHandler(ctx, QueryState, func() (FulfillmentWorkflowState, error) {
		return state, nil
	})
	if err != nil {
		return models.FulfillmentResult{}, fmt.Errorf("failed to set query handler: %w", err)
	}

	cancelled := false
	cancelChan := workflow.GetSignalChannel(ctx, SignalCancel)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		var signal string
		cancelChan.Receive(gCtx, &signal)
		cancelled = true
		state.Cancelled = true
		state.LastUpdated = workflow.Now(gCtx)
		logger.Info("Fulfillment cancelled via signal", "order_id", req.OrderID)
	})

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				activities.ErrTypeOrderNotFound,
				activities.ErrTypeNonRetriable,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.Activities

	// Step 1: fetch the order snapshot.
	var order models.Order
	if err := workflow.ExecuteActivity(ctx, act.FetchOrder, req.OrderID).Get(ctx, &order); err != nil {
		logger.Error("Order fetch failed", "order_id", req.OrderID, "error", err)
		return finish(&state, ctx, failureFor(err)), nil
	}

	if cancelled {
		logger.Info("Fulfillment abandoned after fetch", "order_id", req.OrderID)
		return models.FulfillmentResult{}, fmt.Errorf("fulfillment cancelled by caller")
	}

	// Step 2: list shipment records and build the plan. The listing happens
	// immediately before the commit so the remaining-quantity check is as
	// fresh as this engine can make it; the platform stays the final
	// authority under a true race.
	state.Stage = StagePlanning
	state.LastUpdated = workflow.Now(ctx)

	var records []models.ShipmentRecord
	if err := workflow.ExecuteActivity(ctx, act.ListShipments, req.OrderID).Get(ctx, &records); err != nil {
		logger.Error("Shipment listing failed", "order_id", req.OrderID, "error", err)
		return finish(&state, ctx, failureFor(err)), nil
	}

	plan, err := fulfillment.BuildPlan(order, records, req)
	if err != nil {
		logger.Info("Fulfillment request rejected", "order_id", req.OrderID, "error", err)
		return finish(&state, ctx, fulfillment.FailureResult(err)), nil
	}

	if cancelled {
		logger.Info("Fulfillment abandoned before commit", "order_id", req.OrderID)
		return models.FulfillmentResult{}, fmt.Errorf("fulfillment cancelled by caller")
	}

	// Step 3: commit.
	state.Stage = StageCommitting
	state.LastUpdated = workflow.Now(ctx)

	result := models.FulfillmentResult{
		Success:   true,
		IsPartial: plan.IsPartial,
		Notified:  plan.Notify,
	}
	switch plan.Action {
	case fulfillment.ActionUpdate:
		input := activities.UpdateShipmentInput{
			OrderID:          req.OrderID,
			ShipmentRecordID: plan.ShipmentRecordID,
			Tracking:         plan.Tracking,
			Notify:           plan.Notify,
		}
		if err := workflow.ExecuteActivity(ctx, act.UpdateShipment, input).Get(ctx, nil); err != nil {
			logger.Error("Shipment update failed", "order_id", req.OrderID, "error", err)
			return finish(&state, ctx, failureFor(err)), nil
		}
		result.ShipmentRecordID = plan.ShipmentRecordID
	default:
		input := activities.CreateShipmentInput{
			OrderID:  req.OrderID,
			Items:    plan.Items,
			Tracking: plan.Tracking,
			Notify:   plan.Notify,
		}
		var shipmentID string
		if err := workflow.ExecuteActivity(ctx, act.CreateShipment, input).Get(ctx, &shipmentID); err != nil {
			logger.Error("Shipment create failed", "order_id", req.OrderID, "error", err)
			return finish(&state, ctx, failureFor(err)), nil
		}
		result.ShipmentRecordID = shipmentID
	}

	logger.Info("FulfillmentWorkflow completed", "order_id", req.OrderID,
		"shipment_record_id", result.ShipmentRecordID, "partial", result.IsPartial, "notified", result.Notified)
	return finish(&state, ctx, result), nil
}

// failureFor maps an activity error to the caller-facing failure result.
func failureFor(err error) models.FulfillmentResult {
	kind := fulfillment.KindExternalCallFailed
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeOrderNotFound {
		kind = fulfillment.KindOrderNotFound
	}
	return models.FulfillmentResult{
		Success:       false,
		FailureKind:   string(kind),
		FailureReason: err.Error(),
	}
}

func finish(state *FulfillmentWorkflowState, ctx workflow.Context, result models.FulfillmentResult) models.FulfillmentResult {
	state.Stage = StageDone
	state.Result = &result
	state.LastUpdated = workflow.Now(ctx)
	return result
}
