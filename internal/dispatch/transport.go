package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Request describes one outbound call to the recording endpoint.
//
// Body is owned by the caller until Do returns. The low-latency path reuses
// the same Request and body buffer across calls; see the package
// documentation for the single-in-flight precondition.
type Request struct {
	URL  string
	Body []byte
}

// Result is a successful transport response.
type Result struct {
	// Status is the HTTP status code (always in the success range).
	Status int

	// Payload is the decoded JSON response body, or nil when the endpoint
	// returned an empty or non-JSON body.
	Payload any
}

// Transport performs one HTTP POST with a JSON content type.
//
// Implementations return a *TransportError for non-success HTTP statuses and
// for network-level faults. No retries are attempted at this layer; retry
// policy belongs to the caller.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Result, error)
}

// HTTPTransport is the production Transport on net/http.
//
// Timeouts are a property of the supplied client, not of the dispatch core.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport backed by the given client, or
// http.DefaultClient when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Do issues the POST and decodes the response body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode}
	}

	result := &Result{Status: resp.StatusCode}
	if len(body) > 0 {
		var payload any
		if err := json.Unmarshal(body, &payload); err == nil {
			result.Payload = payload
		}
	}
	return result, nil
}
