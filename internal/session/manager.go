package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/mapping"
)

// selfTestEvent is dispatched once at the end of every Initialize to prove
// the resolve-and-send pipeline end to end.
const selfTestEvent = "system.test"

// Loader loads a mapping document from a file path. Production sessions use
// mapping.Load; tests substitute fakes to force either branch.
type Loader func(file string) (mapping.Document, error)

// Manager is one trigger session: dispatch engine, mapping document and
// history ledger behind a small state machine.
//
// Thread-safety: the manager performs no internal locking beyond the ledger.
// Configuration and the mapping document are single-writer-expected state;
// concurrent replacement during in-flight dispatches races and the last
// write wins for subsequent calls.
type Manager struct {
	engine *dispatch.Engine
	ledger *Ledger
	tokens TokenGenerator
	logger *slog.Logger
	now    func() time.Time
	load   Loader

	doc          mapping.Document
	state        State
	usedFallback bool
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithEngine substitutes the dispatch engine. Used by tests to inject a stub
// transport, and by hosts that pre-configure an engine.
func WithEngine(engine *dispatch.Engine) ManagerOption {
	return func(m *Manager) { m.engine = engine }
}

// WithTokenGenerator substitutes the dispatch token generator.
func WithTokenGenerator(gen TokenGenerator) ManagerOption {
	return func(m *Manager) { m.tokens = gen }
}

// WithLogger routes session diagnostics to the given logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithClock substitutes the wall clock used for ledger timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithLoader substitutes the mapping document loader.
func WithLoader(load Loader) ManagerOption {
	return func(m *Manager) { m.load = load }
}

// NewManager creates an Uninitialized session.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		ledger: NewLedger(),
		tokens: UUIDv7Generator{},
		logger: slog.Default(),
		now:    time.Now,
		load:   mapping.Load,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		m.engine = dispatch.New(dispatch.WithLogger(m.logger))
	}
	return m
}

// Initialize runs the full session bring-up sequence: point the engine at
// host:port, apply the managed posture (verbose, low-latency with
// skip-response), load the mapping document from mappingsFile, and issue one
// self-test dispatch for the system.test event.
//
// A mapping load failure is recovered locally: the session falls back to the
// built-in default mapping, logs a warning, and continues. The fallback is
// surfaced through UsedFallbackMapping so hosts can detect a wrong mappings
// path even though Initialize itself still succeeds.
//
// If the self-test dispatch fails (resolution or transport), the session
// moves to Failed and the error is returned. Re-entrant: calling Initialize
// again re-runs the whole sequence, replacing the mapping document
// wholesale.
func (m *Manager) Initialize(ctx context.Context, host string, port int, mappingsFile string) error {
	m.state = Initializing
	m.usedFallback = false

	m.engine.SetEndpoint(host, port)
	m.engine.SetVerbose(true)
	m.engine.SetLowLatency(true)
	m.engine.SetSkipResponse(true)

	doc, err := m.load(mappingsFile)
	if err != nil {
		m.logger.Warn("mapping load failed, using built-in fallback",
			"file", mappingsFile, "error", err)
		doc = mapping.Default()
		m.usedFallback = true
	}
	m.doc = doc

	code, err := m.doc.Resolve(selfTestEvent)
	if err != nil {
		m.state = Failed
		return fmt.Errorf("self-test: %w", err)
	}
	if _, err := m.record(ctx, code, selfTestEvent+" self-test"); err != nil {
		m.state = Failed
		return fmt.Errorf("self-test dispatch: %w", err)
	}

	m.state = Ready
	m.logger.Info("trigger session ready",
		"host", host, "port", port, "fallback_mapping", m.usedFallback)
	return nil
}

// SendTriggerByEvent resolves an event path and dispatches its code.
//
// Resolution failures surface before any network call and leave the ledger
// untouched. The ledger entry's label is the event path, extended with the
// caller's label when one is given.
func (m *Manager) SendTriggerByEvent(ctx context.Context, path, label string) (dispatch.Outcome, error) {
	if m.state != Ready {
		return dispatch.Outcome{}, &NotReadyError{State: m.state}
	}
	code, err := m.doc.Resolve(path)
	if err != nil {
		return dispatch.Outcome{}, err
	}
	if label != "" {
		label = path + " " + label
	} else {
		label = path
	}
	return m.record(ctx, code, label)
}

// SendTrigger dispatches a raw trigger code.
//
// The ledger entry is appended before the dispatch settles; it records
// intent-to-send, not confirmed delivery. The dispatch outcome, success or
// failure, is propagated to the caller.
func (m *Manager) SendTrigger(ctx context.Context, value int64, label string) (dispatch.Outcome, error) {
	if m.state != Ready {
		return dispatch.Outcome{}, &NotReadyError{State: m.state}
	}
	return m.record(ctx, value, label)
}

// SendBatch dispatches a sequence of codes in one awaited request, recording
// one ledger entry per code.
func (m *Manager) SendBatch(ctx context.Context, values []int64, label string) (dispatch.Outcome, error) {
	if m.state != Ready {
		return dispatch.Outcome{}, &NotReadyError{State: m.state}
	}
	for _, v := range values {
		m.ledger.Append(Entry{
			Token:     m.tokens.Generate(),
			Value:     v,
			Label:     label,
			Timestamp: m.now(),
		})
	}
	return m.engine.SendBatch(ctx, values)
}

// History returns a copy of the ledger in insertion order.
func (m *Manager) History() []Entry {
	return m.ledger.Snapshot()
}

// State returns the session's lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// UsedFallbackMapping reports whether the last Initialize fell back to the
// built-in default mapping because the document could not be loaded.
func (m *Manager) UsedFallbackMapping() bool {
	return m.usedFallback
}

// Mapping returns the currently loaded mapping document.
func (m *Manager) Mapping() mapping.Document {
	return m.doc
}

// Engine exposes the session's dispatch engine so hosts can adjust the
// transmission posture after Initialize (for example, disabling
// skip-response when delivery confirmation matters more than latency).
func (m *Manager) Engine() *dispatch.Engine {
	return m.engine
}

// record appends the ledger entry and then dispatches. Append-before-send is
// deliberate: the ledger reflects what was attempted even when the transport
// fails or the outcome is never observed.
func (m *Manager) record(ctx context.Context, value int64, label string) (dispatch.Outcome, error) {
	m.ledger.Append(Entry{
		Token:     m.tokens.Generate(),
		Value:     value,
		Label:     label,
		Timestamp: m.now(),
	})
	return m.engine.Send(ctx, value)
}
