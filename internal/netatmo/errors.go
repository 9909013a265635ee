package netatmo

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream responses that cannot be used.
var (
	ErrMissingBody   = errors.New("response has no body")
	ErrMalformedBody = errors.New("response body is malformed")
)

// ProtocolError is returned when the upstream answers without a usable body.
// Raw holds the full payload for diagnosis.
type ProtocolError struct {
	Endpoint   string
	StatusCode int
	Code       int    // Upstream error code, if any
	Message    string // Upstream error message, if any
	Raw        []byte
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v (status %d, code %d: %s)", e.Endpoint, e.Err, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", e.Endpoint, e.Err, e.StatusCode, e.Raw)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
