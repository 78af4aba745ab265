package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"fulfillment-engine/activities"
	"fulfillment-engine/codec"
	"fulfillment-engine/platform"
	"fulfillment-engine/workflows"
)

const (
	WorkerVersion = "1.0.0"
	TaskQueueName = "fulfillment-queue"
)

func main() {
	temporalAddress := os.Getenv("TEMPORAL_ADDRESS")
	if temporalAddress == "" {
		temporalAddress = "localhost:7233"
	}

	platformBaseURL := os.Getenv("PLATFORM_BASE_URL")
	if platformBaseURL == "" {
		platformBaseURL = "http://localhost:8081"
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
		// Generate a random 32-byte key for AES-256
		keyBytes = make([]byte, 32)
		if _, err := rand.Read(keyBytes); err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Printf("Generated encryption key: %s", hex.EncodeToString(keyBytes))
		log.Println("Set ENCRYPTION_KEY environment variable to use this key in production")
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

	w := worker.New(c, TaskQueueName, worker.Options{
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	w.RegisterWorkflow(workflows.FulfillmentWorkflow)

	// Retries and backoff are owned by the workflow's retry policy, so the
	// platform client here runs each call exactly once.
	platformClient := platform.NewClient(platform.Config{
		BaseURL:       platformBaseURL,
		Token:         os.Getenv("PLATFORM_TOKEN"),
		ElevatedToken: os.Getenv("PLATFORM_ELEVATED_TOKEN"),
	}).WithRetrier(&platform.Retrier{MaxAttempts: 1})

	act := activities.NewActivities(platformClient)
	w.RegisterActivity(act.FetchOrder)
	w.RegisterActivity(act.ListShipments)
	w.RegisterActivity(act.CreateShipment)
	w.RegisterActivity(act.UpdateShipment)

	log.Println("Starting Temporal worker...")
	log.Printf("Worker Version: %s", WorkerVersion)
	log.Printf("Temporal address: %s", temporalAddress)
	log.Printf("Task queue: %s", TaskQueueName)
	log.Printf("Platform base URL: %s", platformBaseURL)
	log.Println("Registered workflows: FulfillmentWorkflow")
	log.Println("Encryption: Enabled")

	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Unable to start worker: %v", err)
	}
}
