package dispatch

import "log/slog"

// Default endpoint address. Matches the recording endpoint's stock listen
// address so a zero-configuration session works on a local rig.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5000
)

// Config holds the transmission settings for an Engine.
//
// All fields are individually settable at any time, including mid-experiment.
// Changes take effect on the next dispatch.
type Config struct {
	// Host and Port address the recording endpoint.
	Host string
	Port int

	// Verbose timestamps and logs every dispatch attempt.
	Verbose bool

	// LowLatency selects the optimized send path (reused request buffer,
	// template-built body).
	LowLatency bool

	// SkipResponse makes low-latency sends return before the network call
	// settles. Has no effect unless LowLatency is true.
	SkipResponse bool
}

// DefaultConfig returns the stock configuration: local endpoint, standard
// path, quiet.
func DefaultConfig() Config {
	return Config{Host: DefaultHost, Port: DefaultPort}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithHost sets the endpoint host.
func WithHost(host string) Option {
	return func(e *Engine) { e.cfg.Host = host }
}

// WithPort sets the endpoint port.
func WithPort(port int) Option {
	return func(e *Engine) { e.cfg.Port = port }
}

// WithVerbose enables per-dispatch instrumentation.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) { e.cfg.Verbose = verbose }
}

// WithLowLatency selects the optimized send path.
func WithLowLatency(lowLatency bool) Option {
	return func(e *Engine) { e.cfg.LowLatency = lowLatency }
}

// WithSkipResponse makes low-latency sends resolve without awaiting the
// transport result. Inert unless low-latency mode is also enabled.
func WithSkipResponse(skip bool) Option {
	return func(e *Engine) { e.cfg.SkipResponse = skip }
}

// WithTransport substitutes the transport adapter. Used by tests to observe
// outbound requests without a live endpoint.
func WithTransport(t Transport) Option {
	return func(e *Engine) { e.transport = t }
}

// WithLogger routes dispatch instrumentation to the given logger instead of
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}
