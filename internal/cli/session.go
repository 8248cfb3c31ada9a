package cli

import (
	"context"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/mapping"
	"github.com/neurokit/triggerline/internal/session"
)

// openSession bootstraps one managed trigger session for a command: build
// the manager, run Initialize against the configured endpoint, then apply
// the transmission posture from the flags.
//
// Initialize applies the managed posture (verbose, low-latency with
// skip-response); CLI invocations are one-shot, so the flag posture is
// re-applied afterwards — by default a standard awaited send, which gives
// the operator delivery confirmation.
func openSession(ctx context.Context, opts *RootOptions) (*session.Manager, error) {
	var mopts []session.ManagerOption

	if opts.Transport != nil {
		mopts = append(mopts, session.WithEngine(dispatch.New(dispatch.WithTransport(opts.Transport))))
	}
	if opts.TokenGenerator != nil {
		mopts = append(mopts, session.WithTokenGenerator(opts.TokenGenerator))
	}
	if opts.Mappings == "" {
		// No document requested: use the built-in mapping directly instead
		// of going through a load failure and a fallback warning.
		mopts = append(mopts, session.WithLoader(func(string) (mapping.Document, error) {
			return mapping.Default(), nil
		}))
	}

	m := session.NewManager(mopts...)
	if err := m.Initialize(ctx, opts.Host, opts.Port, opts.Mappings); err != nil {
		return nil, WrapExitError(ExitCommandError, "session initialization failed", err)
	}

	engine := m.Engine()
	engine.SetVerbose(opts.Verbose)
	engine.SetLowLatency(opts.LowLatency)
	engine.SetSkipResponse(opts.SkipResponse)
	return m, nil
}

// loadDocument loads the mapping document named by the flags, or the
// built-in default when no document was requested.
func loadDocument(opts *RootOptions) (mapping.Document, error) {
	if opts.Mappings == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(opts.Mappings)
}
