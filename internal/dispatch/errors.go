package dispatch

import (
	"errors"
	"fmt"
)

// TransportError represents a failed dispatch: either a non-success HTTP
// status from the endpoint or a network-level fault (DNS, connection refused,
// timeout). Dispatches are never retried internally; the error is surfaced
// as-is and retry policy is left to the caller.
type TransportError struct {
	// Status is the HTTP status code when the endpoint responded outside the
	// success range, 0 for network-level faults.
	Status int

	// Err is the underlying cause for network-level faults.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 && e.Err != nil {
		return fmt.Sprintf("trigger dispatch failed: status %d: %v", e.Status, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("trigger dispatch failed: status %d", e.Status)
	}
	return fmt.Sprintf("trigger dispatch failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a dispatch transport failure.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
