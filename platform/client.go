// Package platform is the HTTP client for the commerce platform's order and
// shipment endpoints. It owns the retry policy for outbound calls and the
// ordinary/elevated credential split: the elevated token triggers the
// platform's own customer-notification email, the ordinary token suppresses
// it. The two paths are otherwise identical.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fulfillment-engine/models"
)

// Config holds client settings. ElevatedToken may equal Token in deployments
// without a separate notification credential.
type Config struct {
	BaseURL       string
	Token         string
	ElevatedToken string
	Timeout       time.Duration
}

// Client calls the commerce platform API.
type Client struct {
	baseURL       string
	token         string
	elevatedToken string
	httpClient    *http.Client
	retrier       *Retrier
}

// NewClient creates a platform client with the production retry policy.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	elevated := cfg.ElevatedToken
	if elevated == "" {
		elevated = cfg.Token
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		token:         cfg.Token,
		elevatedToken: elevated,
		httpClient:    &http.Client{Timeout: timeout},
		retrier:       NewRetrier(),
	}
}

// WithRetrier replaces the retry policy. Used where retries are owned by an
// outer layer (the Temporal worker configures a single-attempt client).
func (c *Client) WithRetrier(r *Retrier) *Client {
	c.retrier = r
	return c
}

// GetOrder fetches one order. A 404 surfaces as an APIError; callers check
// IsNotFound.
func (c *Client) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := c.retrier.Do(ctx, "get order", func() error {
		var raw map[string]any
		if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, false, &raw); err != nil {
			return err
		}
		parsed, err := models.OrderFromAPI(raw)
		if err != nil {
			// A malformed payload won't improve on retry.
			return &APIError{Op: "get order", Status: 422, Message: err.Error()}
		}
		order = parsed
		return nil
	})
	return order, err
}

// SearchOrders lists orders updated since the given time, newest first.
func (c *Client) SearchOrders(ctx context.Context, since time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := url.Values{}
	if !since.IsZero() {
		query.Set("updated_since", since.UTC().Format(time.RFC3339))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/orders"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	err := c.retrier.Do(ctx, "search orders", func() error {
		var raw struct {
			Items []map[string]any `json:"items"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, false, &raw); err != nil {
			return err
		}
		orders = orders[:0]
		for _, rawOrder := range raw.Items {
			order, err := models.OrderFromAPI(rawOrder)
			if err != nil {
				return &APIError{Op: "search orders", Status: 422, Message: err.Error()}
			}
			orders = append(orders, order)
		}
		return nil
	})
	return orders, err
}

// ListShipments fetches all shipment records for an order.
func (c *Client) ListShipments(ctx context.Context, orderID string) ([]models.ShipmentRecord, error) {
	var records []models.ShipmentRecord
	err := c.retrier.Do(ctx, "list shipments", func() error {
		var raw struct {
			Items []map[string]any `json:"items"`
		}
		if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/shipments", nil, false, &raw); err != nil {
			return err
		}
		parsed, err := models.ShipmentRecordsFromAPI(raw.Items)
		if err != nil {
			return &APIError{Op: "list shipments", Status: 422, Message: err.Error()}
		}
		records = parsed
		return nil
	})
	return records, err
}

type createShipmentBody struct {
	Items        []models.CoveredItem `json:"items"`
	TrackingInfo models.TrackingInfo  `json:"trackingInfo"`
	Status       string               `json:"status"`
}

// CreateShipment creates a new shipment record covering items. notify routes
// the call through the elevated credential path. An idempotency key guards
// against the retry policy double-creating a record.
func (c *Client) CreateShipment(ctx context.Context, orderID string, items []models.CoveredItem, tracking models.TrackingInfo, notify bool) (string, error) {
	body := createShipmentBody{Items: items, TrackingInfo: tracking, Status: "Fulfilled"}
	idempotencyKey := uuid.New().String()

	var shipmentID string
	err := c.retrier.Do(ctx, "create shipment", func() error {
		var raw map[string]any
		if err := c.doWithKey(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/shipments", body, notify, idempotencyKey, &raw); err != nil {
			return err
		}
		id, ok := firstString(raw, "shipmentRecordId", "shipment_record_id", "id")
		if !ok {
			return &APIError{Op: "create shipment", Status: 422, Message: "response missing shipment record id"}
		}
		shipmentID = id
		return nil
	})
	return shipmentID, err
}

type updateShipmentBody struct {
	TrackingInfo models.TrackingInfo `json:"trackingInfo"`
}

// UpdateShipment amends tracking info on an existing shipment record. The
// items a record covers are immutable; only tracking fields travel here.
func (c *Client) UpdateShipment(ctx context.Context, orderID, shipmentID string, tracking models.TrackingInfo, notify bool) error {
	body := updateShipmentBody{TrackingInfo: tracking}
	path := "/orders/" + url.PathEscape(orderID) + "/shipments/" + url.PathEscape(shipmentID)
	return c.retrier.Do(ctx, "update shipment", func() error {
		return c.do(ctx, http.MethodPut, path, body, notify, nil)
	})
}

func (c *Client) do(ctx context.Context, method, path string, body any, elevated bool, out any) error {
	return c.doWithKey(ctx, method, path, body, elevated, "", out)
}

func (c *Client) doWithKey(ctx context.Context, method, path string, body any, elevated bool, idempotencyKey string, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	token := c.token
	if elevated {
		token = c.elevatedToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection to platform failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Op: method + " " + path, Status: resp.StatusCode, Message: string(message)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}
	return nil
}

func firstString(raw map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
