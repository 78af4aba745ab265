package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"fulfillment-engine/codec"
	"fulfillment-engine/models"
	"fulfillment-engine/workflows"
)

const (
	TaskQueueName = "fulfillment-queue"
)

func main() {
	// Command line flags
	orderID := flag.String("order-id", "", "Order to fulfill")
	trackingNumber := flag.String("tracking", "", "Tracking number")
	carrierName := flag.String("carrier", "", "Carrier identifier (e.g. ups, dhl, custom)")
	customCarrier := flag.String("custom-carrier", "", "Display name for a custom carrier")
	trackingURL := flag.String("tracking-url", "", "Explicit tracking URL (overrides the generated one)")
	items := flag.String("items", "", "Partial fulfillment items as lineItemId:qty[,lineItemId:qty...]; empty ships all remaining")
	notify := flag.Bool("notify", false, "Send the platform's customer notification email")
	editShipment := flag.String("edit", "", "Amend tracking info on this existing shipment record instead of creating one")
	signal := flag.String("signal", "", "Send signal to a running workflow (cancel)")
	query := flag.Bool("query", false, "Query workflow state")
	workflowID := flag.String("workflow-id", "", "Workflow ID for signal/query operations")
	flag.Parse()

	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	// Get or generate encryption key
	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	var keyBytes []byte
	var err error

	if encryptionKey != "" {
		keyBytes, err = hex.DecodeString(encryptionKey)
		if err != nil {
			log.Fatalf("Failed to decode encryption key: %v", err)
		}
	} else {
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Printf("Warning: Using generated encryption key. Set ENCRYPTION_KEY env var to match worker.")
		log.Printf("Generated key: %s", hex.EncodeToString(keyBytes))
	}

	dataConverter, err := codec.NewEncryptionDataConverter(keyBytes)
	if err != nil {
		log.Fatalf("Failed to create encryption data converter: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      temporalAddress,
		DataConverter: dataConverter,
	})
	if err != nil {
		log.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if *signal != "" {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for signal operations. Use -workflow-id flag")
		}
		sendSignal(ctx, c, *workflowID, *signal)
		return
	}

	if *query {
		if *workflowID == "" {
			log.Fatal("Workflow ID is required for query operations. Use -workflow-id flag")
		}
		queryWorkflowState(ctx, c, *workflowID)
		return
	}

	if *orderID == "" {
		log.Fatal("Order ID is required. Use -order-id flag")
	}
	if *trackingNumber == "" {
		log.Fatal("Tracking number is required. Use -tracking flag")
	}

	requestItems, err := parseItems(*items)
	if err != nil {
		log.Fatalf("Invalid -items value: %v", err)
	}

	request := models.ShipmentRequest{
		OrderID:           *orderID,
		Items:             requestItems,
		TrackingNumber:    *trackingNumber,
		Carrier:           *carrierName,
		TrackingURL:       *trackingURL,
		CustomCarrierName: *customCarrier,
		NotifyCustomer:    *notify,
		ShipmentRecordID:  *editShipment,
	}
	startWorkflow(ctx, c, request)
}

func startWorkflow(ctx context.Context, c client.Client, request models.ShipmentRequest) {
	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("fulfillment-%s-%s", request.OrderID, uuid.New().String()[:8]),
		TaskQueue: TaskQueueName,
	}

	log.Printf("Starting fulfillment for order: %s", request.OrderID)
	log.Printf("Workflow ID: %s", workflowOptions.ID)

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.FulfillmentWorkflow, request)
	if err != nil {
		log.Fatalf("Unable to execute workflow: %v", err)
	}

	log.Printf("Started workflow successfully")
	log.Printf("WorkflowID: %s", we.GetID())
	log.Printf("RunID: %s", we.GetRunID())
	log.Println("\nTo query workflow state, run:")
	log.Printf("  go run starter/starter.go -query -workflow-id %s\n", we.GetID())
	log.Println("To abandon before commit, run:")
	log.Printf("  go run starter/starter.go -signal cancel -workflow-id %s", we.GetID())

	log.Println("\nWaiting for fulfillment to complete...")
	var result models.FulfillmentResult
	if err := we.Get(ctx, &result); err != nil {
		log.Printf("Workflow completed with error: %v", err)
		return
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal result: %v", err)
	}
	log.Println("\nFulfillment result:")
	fmt.Println(string(resultJSON))
}

func sendSignal(ctx context.Context, c client.Client, workflowID, signal string) {
	if signal != "cancel" {
		log.Fatalf("Unknown signal: %s. Valid signals: cancel", signal)
	}

	log.Printf("Sending signal '%s' to workflow: %s", signal, workflowID)
	err := c.SignalWorkflow(ctx, workflowID, "", workflows.SignalCancel, signal)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			log.Fatalf("No running workflow with ID %s", workflowID)
		}
		log.Fatalf("Failed to send signal: %v", err)
	}
	log.Printf("Signal '%s' sent successfully", signal)
}

func queryWorkflowState(ctx context.Context, c client.Client, workflowID string) {
	log.Printf("Querying workflow state: %s", workflowID)

	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryState)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			log.Fatalf("No workflow with ID %s", workflowID)
		}
		log.Fatalf("Failed to query workflow: %v", err)
	}

	var state workflows.FulfillmentWorkflowState
	if err := resp.Get(&state); err != nil {
		log.Fatalf("Failed to decode query result: %v", err)
	}

	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal state: %v", err)
	}

	log.Println("\nWorkflow State:")
	fmt.Println(string(stateJSON))
}

// parseItems parses "lineItemId:qty,lineItemId:qty" into request items.
func parseItems(raw string) ([]models.RequestItem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var items []models.RequestItem
	for _, pair := range strings.Split(raw, ",") {
		id, qtyStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("entry %q is not lineItemId:qty", pair)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("entry %q has a non-numeric quantity", pair)
		}
		items = append(items, models.RequestItem{LineItemID: id, Quantity: qty})
	}
	return items, nil
}
