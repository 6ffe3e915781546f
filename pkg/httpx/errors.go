package httpx

import (
	"errors"
	"fmt"
)

var (
	// ErrTransientNetwork indicates no response was received; such failures
	// are eligible for automatic retry.
	ErrTransientNetwork = errors.New("httpx: no response received")

	// ErrDecodeResponse indicates the response body could not be decoded.
	ErrDecodeResponse = errors.New("httpx: failed to decode response body")
)

// UpstreamError is a response with a 4xx or 5xx status. Message carries the
// machine-readable "error" field from the response body when the server
// supplied one.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("httpx: upstream status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpx: upstream status %d", e.StatusCode)
}

// IsClientError reports whether the status is in the 4xx range.
func (e *UpstreamError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError reports whether the status is in the 5xx range.
func (e *UpstreamError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
