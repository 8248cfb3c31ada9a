package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neurokit/triggerline/internal/archive"
	"github.com/neurokit/triggerline/internal/script"
	"github.com/neurokit/triggerline/internal/session"
)

// historySource is the slice of the session manager the archiver needs.
type historySource interface {
	History() []session.Entry
}

// runResult is the output payload for the run command.
type runResult struct {
	Script   string              `json:"script"`
	Steps    []script.StepResult `json:"steps"`
	Failed   int                 `json:"failed"`
	Archived string              `json:"archived,omitempty"`
}

// String renders the text form.
func (r runResult) String() string {
	s := fmt.Sprintf("script %q: %d steps, %d failed", r.Script, len(r.Steps), r.Failed)
	if r.Archived != "" {
		s += fmt.Sprintf(", history archived to %s", r.Archived)
	}
	return s
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Archive         string
	ContinueOnError bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Execute a scripted trigger sequence",
		Long: `Execute a YAML script of trigger dispatches against one session.

Each step dispatches either an event path (resolved through the mapping
document) or a raw value, optionally pausing between steps. With --archive,
the session's history ledger is exported to a SQLite file afterwards for
post-hoc audit.

Example:
  triggerline run block1.yaml --mappings triggers.json
  triggerline run block1.yaml --archive run1.db --continue-on-error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "export session history to this SQLite file after the run")
	cmd.Flags().BoolVar(&opts.ContinueOnError, "continue-on-error", false, "keep executing after a failed step")

	return cmd
}

func runScript(cmd *cobra.Command, opts *RunOptions, file string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	s, err := script.Load(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "unusable script", err)
	}

	m, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}

	runner := script.NewRunner(m,
		script.WithContinueOnError(opts.ContinueOnError),
		script.WithRunnerLogger(slog.Default()))
	results, runErr := runner.Run(cmd.Context(), s)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	result := runResult{Script: s.Name, Steps: results, Failed: failed}

	if opts.Archive != "" {
		if err := archiveHistory(cmd, opts, s.Name, m); err != nil {
			return err
		}
		result.Archived = opts.Archive
	}

	if runErr != nil {
		_ = f.Error(ErrorCode(runErr), runErr.Error(), result)
		return NewExitError(ExitFailure, fmt.Sprintf("script failed with %d failed step(s)", failed))
	}
	return f.Success(result)
}

func archiveHistory(cmd *cobra.Command, opts *RunOptions, name string, m historySource) error {
	a, err := archive.Open(opts.Archive)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing archive", "error", closeErr)
		}
	}()

	if err := a.WriteSnapshot(cmd.Context(), name, m.History()); err != nil {
		return WrapExitError(ExitCommandError, "failed to archive history", err)
	}
	return nil
}
