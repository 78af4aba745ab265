package platform

import (
	"errors"
	"fmt"
)

// APIError is a platform response with a non-2xx status. Op names the call
// for log and error messages.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: platform returned status %d: %s", e.Op, e.Status, e.Message)
}

// IsNotFound reports whether err is a platform 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
