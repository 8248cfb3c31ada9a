package script

import (
	"context"
	"log/slog"
	"time"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/session"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	// Index is the 1-based step position.
	Index int `json:"index"`

	// Event is the step's event path, empty for raw-value steps.
	Event string `json:"event,omitempty"`

	// Value is the dispatched trigger code. For event steps this is filled
	// in after resolution only when the dispatch was attempted.
	Value int64 `json:"value"`

	// Status is the dispatch outcome status, or "error" on failure.
	Status string `json:"status"`

	// Err is the failure, nil on success.
	Err error `json:"-"`
}

// Runner executes a script against a Ready session.
type Runner struct {
	manager *session.Manager
	logger  *slog.Logger
	sleep   func(time.Duration)

	// ContinueOnError keeps executing after a failed step instead of
	// stopping at the first failure.
	ContinueOnError bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger routes step diagnostics to the given logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithSleep substitutes the pause function, so tests run paced scripts
// without real waiting.
func WithSleep(sleep func(time.Duration)) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// WithContinueOnError keeps executing after failed steps.
func WithContinueOnError(cont bool) RunnerOption {
	return func(r *Runner) { r.ContinueOnError = cont }
}

// NewRunner creates a Runner bound to one session.
func NewRunner(manager *session.Manager, opts ...RunnerOption) *Runner {
	r := &Runner{
		manager: manager,
		logger:  slog.Default(),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order.
//
// Results are returned for all executed steps, including failed ones. By
// default execution stops at the first failure and that step's error is
// returned; with ContinueOnError the first error is still returned after all
// steps have run.
func (r *Runner) Run(ctx context.Context, s *Script) ([]StepResult, error) {
	results := make([]StepResult, 0, len(s.Steps))
	var firstErr error

	for i, step := range s.Steps {
		res := r.runStep(ctx, i+1, step)
		results = append(results, res)

		if res.Err != nil {
			r.logger.Error("script step failed",
				"script", s.Name, "step", res.Index, "error", res.Err)
			if firstErr == nil {
				firstErr = res.Err
			}
			if !r.ContinueOnError {
				return results, firstErr
			}
			continue
		}

		if step.WaitMillis > 0 {
			r.sleep(time.Duration(step.WaitMillis) * time.Millisecond)
		}
	}
	return results, firstErr
}

func (r *Runner) runStep(ctx context.Context, index int, step Step) StepResult {
	var (
		outcome dispatch.Outcome
		err     error
	)
	res := StepResult{Index: index, Event: step.Event}

	if step.Event != "" {
		outcome, err = r.manager.SendTriggerByEvent(ctx, step.Event, step.Label)
	} else {
		res.Value = *step.Value
		outcome, err = r.manager.SendTrigger(ctx, *step.Value, step.Label)
	}
	if err != nil {
		res.Status = "error"
		res.Err = err
		return res
	}

	res.Status = outcome.Status
	res.Value = outcome.Value
	return res
}
