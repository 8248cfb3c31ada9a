package cli

import (
	"github.com/spf13/cobra"
)

// EventOptions holds flags for the event command.
type EventOptions struct {
	*RootOptions
	Label string
}

// NewEventCommand creates the event command.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "event <path>",
		Short: "Resolve an event path and dispatch its trigger code",
		Long: `Resolve a dot-delimited event path through the mapping document and
dispatch the resulting trigger code.

Example:
  triggerline event scenes.intro.start --mappings triggers.json
  triggerline event system.error --label "operator abort"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvent(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "history ledger label for this dispatch")

	return cmd
}

func runEvent(cmd *cobra.Command, opts *EventOptions, path string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	m, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}

	outcome, err := m.SendTriggerByEvent(cmd.Context(), path, opts.Label)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "trigger dispatch failed")
	}

	return f.Success(sendResult{
		Event:      path,
		Value:      outcome.Value,
		Status:     outcome.Status,
		HTTPStatus: outcome.HTTPStatus,
		History:    len(m.History()),
	})
}
