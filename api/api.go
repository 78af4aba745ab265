// The api command exposes the decision engine's own surface over HTTP for
// the merchant UI layer: fulfill, validate, and the aggregated fulfillment
// view. It also runs the new-order arrival loop and logs each arrival.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"fulfillment-engine/arrivals"
	"fulfillment-engine/engine"
	"fulfillment-engine/fulfillment"
	"fulfillment-engine/models"
	"fulfillment-engine/platform"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env: %v", err)
	}

	listenAddr := envOr("LISTEN_ADDR", ":8080")
	platformClient := platform.NewClient(platform.Config{
		BaseURL:       envOr("PLATFORM_BASE_URL", "http://localhost:8081"),
		Token:         os.Getenv("PLATFORM_TOKEN"),
		ElevatedToken: os.Getenv("PLATFORM_ELEVATED_TOKEN"),
	})
	eng := engine.New(platformClient, log.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pollInterval := 30 * time.Second
	if raw := os.Getenv("ARRIVALS_POLL_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid ARRIVALS_POLL_INTERVAL: %v", err)
		}
		pollInterval = parsed
	}
	go runArrivalsLoop(ctx, platformClient, pollInterval)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{engine: eng}
	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Post("/fulfillments", h.fulfill)
		r.Post("/fulfillments/validate", h.validate)
		r.Get("/fulfillment", h.view)
	})

	server := &http.Server{Addr: listenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Fulfillment API listening on %s", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// runArrivalsLoop polls the order search endpoint and logs each order that
// appears for the first time.
func runArrivalsLoop(ctx context.Context, lister arrivals.Lister, interval time.Duration) {
	detector := arrivals.NewDetector(lister, 1024, 100)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fresh, err := detector.Poll(ctx)
			if err != nil {
				log.Printf("Order arrival poll failed: %v", err)
				continue
			}
			for _, order := range fresh {
				log.Printf("New order arrived: id=%s number=%s items=%d", order.ID, order.Number, len(order.Items))
			}
		}
	}
}

type handler struct {
	engine *engine.Engine
}

func (h *handler) fulfill(w http.ResponseWriter, r *http.Request) {
	var request models.ShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	request.OrderID = chi.URLParam(r, "orderID")

	result := h.engine.Fulfill(r.Context(), request)
	status := http.StatusOK
	if !result.Success {
		status = statusForFailure(result.FailureKind)
	}
	writeJSON(w, status, result)
}

type validateBody struct {
	Items []models.RequestItem `json:"items"`
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	var body validateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.engine.Validate(r.Context(), chi.URLParam(r, "orderID"), body.Items)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) view(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.GetFulfillmentView(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func statusForFailure(kind string) int {
	switch fulfillment.ErrorKind(kind) {
	case fulfillment.KindOrderNotFound:
		return http.StatusNotFound
	case fulfillment.KindNoLineItems, fulfillment.KindNoValidItems:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	var fErr *fulfillment.Error
	if errors.As(err, &fErr) {
		writeJSON(w, statusForFailure(string(fErr.Kind)), map[string]string{
			"error": fErr.Message,
			"kind":  string(fErr.Kind),
		})
		return
	}
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
