package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Outcome statuses.
const (
	// StatusOK marks a dispatch that was awaited and acknowledged by the
	// endpoint.
	StatusOK = "ok"

	// StatusPending marks a skip-response dispatch: the request was issued
	// but its result is never observed.
	StatusPending = "pending"
)

// Outcome is the caller-visible result of a dispatch.
type Outcome struct {
	// Status is StatusOK for awaited dispatches and StatusPending for
	// skip-response dispatches.
	Status string

	// Value is the trigger code that was handed to the wire. Zero for batch
	// outcomes.
	Value int64

	// HTTPStatus is the endpoint's status code for awaited dispatches.
	HTTPStatus int

	// Response is the endpoint's decoded JSON body for awaited dispatches.
	Response any
}

// Endpoint paths, fixed by the recording endpoint's API.
const (
	triggerPath = "/set_data"
	batchPath   = "/set_data/batch"
)

// Low-latency body template. The code is appended between prefix and the
// closing brace; integers never need JSON escaping, so plain concatenation
// produces a valid document.
const llPrefix = `{"trigger_value":`

type triggerPayload struct {
	TriggerValue int64 `json:"trigger_value"`
}

type batchPayload struct {
	TriggerValues []int64 `json:"trigger_values"`
}

// Engine owns transmission configuration and turns trigger codes into
// requests against the recording endpoint.
//
// The zero value is not usable; construct with New.
type Engine struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger
	now       func() time.Time

	// Reused low-latency request state. One buffer per Engine, never shared
	// across engines. Rebuilt on every low-latency send; awaited sends hand
	// the buffer to the transport directly (see the package documentation for
	// the single-in-flight precondition), skip-response sends snapshot it.
	llReq Request
	llBuf []byte
}

// New creates an Engine with the default configuration, applying any options.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:       DefaultConfig(),
		transport: NewHTTPTransport(nil),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetEndpoint points subsequent dispatches at host:port.
func (e *Engine) SetEndpoint(host string, port int) {
	e.cfg.Host = host
	e.cfg.Port = port
}

// SetVerbose toggles per-dispatch instrumentation.
func (e *Engine) SetVerbose(verbose bool) {
	e.cfg.Verbose = verbose
}

// SetLowLatency toggles the optimized send path.
func (e *Engine) SetLowLatency(lowLatency bool) {
	e.cfg.LowLatency = lowLatency
}

// SetSkipResponse toggles fire-and-forget delivery for low-latency sends.
func (e *Engine) SetSkipResponse(skip bool) {
	e.cfg.SkipResponse = skip
}

// Send dispatches one trigger code.
//
// The code is any integer; no range validation is imposed here, the endpoint
// owns its semantics. In standard mode the call awaits the endpoint's
// response. In low-latency mode with SkipResponse the call returns a pending
// outcome immediately; the request still runs to completion on its own
// goroutine and delivery failures are silent.
func (e *Engine) Send(ctx context.Context, code int64) (Outcome, error) {
	cfg := e.cfg
	url := endpointURL(cfg, triggerPath)

	if cfg.LowLatency {
		return e.sendLowLatency(ctx, cfg, url, code)
	}

	body, err := json.Marshal(triggerPayload{TriggerValue: code})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal trigger body: %w", err)
	}
	out, err := e.await(ctx, cfg, &Request{URL: url, Body: body})
	if err != nil {
		return Outcome{}, err
	}
	out.Value = code
	return out, nil
}

// SendBatch dispatches a sequence of trigger codes in one request.
//
// Batch dispatches are always awaited; there is no low-latency variant.
func (e *Engine) SendBatch(ctx context.Context, codes []int64) (Outcome, error) {
	cfg := e.cfg

	body, err := json.Marshal(batchPayload{TriggerValues: codes})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal batch body: %w", err)
	}
	return e.await(ctx, cfg, &Request{URL: endpointURL(cfg, batchPath), Body: body})
}

// sendLowLatency builds the body from the template and either awaits on the
// shared request or fires-and-forgets a snapshot, depending on SkipResponse.
func (e *Engine) sendLowLatency(ctx context.Context, cfg Config, url string, code int64) (Outcome, error) {
	if e.llBuf == nil {
		e.llBuf = make([]byte, 0, len(llPrefix)+21)
	}
	e.llBuf = append(e.llBuf[:0], llPrefix...)
	e.llBuf = strconv.AppendInt(e.llBuf, code, 10)
	e.llBuf = append(e.llBuf, '}')

	if !cfg.SkipResponse {
		e.llReq.URL = url
		e.llReq.Body = e.llBuf
		out, err := e.await(ctx, cfg, &e.llReq)
		if err != nil {
			return Outcome{}, err
		}
		out.Value = code
		return out, nil
	}

	if cfg.Verbose {
		e.logger.Info("trigger issued", "at", e.stamp(), "value", code, "skip_response", true)
	}

	// The call returns before the transport settles, so the next send may
	// rewrite the template buffer while this request is still in flight. The
	// request carries its own copy of the body, captured at issue time.
	req := &Request{URL: url, Body: append([]byte(nil), e.llBuf...)}

	// The caller never observes this request's result. Cancellation from the
	// caller's context must not abort an already-issued trigger.
	go func() {
		res, err := e.transport.Do(context.WithoutCancel(ctx), req)
		if err != nil {
			if cfg.Verbose {
				e.logger.Error("trigger settled", "at", e.stamp(), "value", code, "error", err)
			}
			return
		}
		if cfg.Verbose {
			e.logger.Info("trigger settled", "at", e.stamp(), "value", code, "http_status", res.Status)
		}
	}()

	return Outcome{Status: StatusPending, Value: code}, nil
}

// await issues the request and blocks until the transport settles.
func (e *Engine) await(ctx context.Context, cfg Config, req *Request) (Outcome, error) {
	if cfg.Verbose {
		e.logger.Info("trigger issued", "at", e.stamp(), "url", req.URL, "body", string(req.Body))
	}

	res, err := e.transport.Do(ctx, req)
	if err != nil {
		if cfg.Verbose {
			e.logger.Error("trigger settled", "at", e.stamp(), "url", req.URL, "error", err)
		} else {
			e.logger.Warn("trigger dispatch failed", "error", err)
		}
		return Outcome{}, err
	}

	if cfg.Verbose {
		e.logger.Info("trigger settled", "at", e.stamp(), "url", req.URL, "http_status", res.Status)
	}
	return Outcome{Status: StatusOK, HTTPStatus: res.Status, Response: res.Payload}, nil
}

// stamp formats the current wall-clock time as HH:MM:SS.mmm for diagnostic
// logs. Stamps carry no ordering guarantee across concurrent dispatches.
func (e *Engine) stamp() string {
	return e.now().Format("15:04:05.000")
}

func endpointURL(cfg Config, path string) string {
	return fmt.Sprintf("http://%s:%d%s", cfg.Host, cfg.Port, path)
}
