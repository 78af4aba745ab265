package fulfillment

import (
	"errors"
	"fmt"

	"fulfillment-engine/models"
)

// ErrorKind classifies fulfillment failures. Kinds are part of the caller
// contract and are stable strings, not Go types.
type ErrorKind string

const (
	KindOrderNotFound      ErrorKind = "ORDER_NOT_FOUND"
	KindNoLineItems        ErrorKind = "NO_LINE_ITEMS"
	KindNoValidItems       ErrorKind = "NO_VALID_ITEMS"
	KindExternalCallFailed ErrorKind = "EXTERNAL_CALL_FAILED"
)

// Error is a typed fulfillment failure. InvalidItems is populated for
// NO_VALID_ITEMS so callers can show per-item reasons.
type Error struct {
	Kind         ErrorKind
	Message      string
	InvalidItems []models.InvalidItem
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a typed fulfillment error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or EXTERNAL_CALL_FAILED when err is not
// a fulfillment error (anything else at this boundary is a platform failure).
func KindOf(err error) ErrorKind {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Kind
	}
	return KindExternalCallFailed
}

// FailureResult folds err into an explicit FulfillmentResult. No error leaves
// the engine unaccounted for.
func FailureResult(err error) models.FulfillmentResult {
	result := models.FulfillmentResult{
		Success:       false,
		FailureKind:   string(KindOf(err)),
		FailureReason: err.Error(),
	}
	var fErr *Error
	if errors.As(err, &fErr) {
		result.InvalidItems = fErr.InvalidItems
	}
	return result
}
