package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neurokit/triggerline/internal/dispatch"
)

// RecordedRequest is a snapshot of one request handed to the stub transport.
//
// Body is copied at record time: the engine's low-latency path reuses its
// body buffer across sends, so holding a reference would observe later
// mutations.
type RecordedRequest struct {
	URL  string
	Body string
}

// RecordingTransport is a dispatch.Transport stub that records every request
// and returns a configurable result.
//
// Thread-safety: all methods are safe for concurrent use; skip-response
// dispatches settle on a separate goroutine.
type RecordingTransport struct {
	mu   sync.Mutex
	reqs []RecordedRequest

	// Status is the HTTP status to report, defaulting to 200.
	Status int

	// Payload is the decoded response payload to report.
	Payload any

	// Err, when set, is returned instead of a result.
	Err error

	// Delay is an artificial settle latency applied before returning.
	// Used to verify that skip-response dispatches resolve without awaiting
	// the round trip.
	Delay time.Duration
}

// NewRecordingTransport creates a stub that acknowledges every request with
// HTTP 200.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{Status: 200}
}

// Do records the request, waits out the configured delay, and returns the
// configured result.
func (t *RecordingTransport) Do(ctx context.Context, req *dispatch.Request) (*dispatch.Result, error) {
	t.mu.Lock()
	t.reqs = append(t.reqs, RecordedRequest{URL: req.URL, Body: string(req.Body)})
	t.mu.Unlock()

	if t.Delay > 0 {
		select {
		case <-time.After(t.Delay):
		case <-ctx.Done():
			return nil, &dispatch.TransportError{Err: ctx.Err()}
		}
	}

	if t.Err != nil {
		return nil, t.Err
	}
	return &dispatch.Result{Status: t.Status, Payload: t.Payload}, nil
}

// Requests returns a copy of all recorded requests in arrival order.
func (t *RecordingTransport) Requests() []RecordedRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedRequest, len(t.reqs))
	copy(out, t.reqs)
	return out
}

// WaitForRequests blocks until at least n requests have been recorded or the
// timeout elapses. Used by skip-response tests, where the request lands on a
// goroutine the caller never awaits.
func (t *RecordingTransport) WaitForRequests(n int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		t.mu.Lock()
		got := len(t.reqs)
		t.mu.Unlock()
		if got >= n {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %d requests, got %d", n, got)
		}
		time.Sleep(time.Millisecond)
	}
}
