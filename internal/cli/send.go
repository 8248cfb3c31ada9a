package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// sendResult is the output payload for single-trigger commands.
type sendResult struct {
	Value      int64  `json:"value"`
	Event      string `json:"event,omitempty"`
	Status     string `json:"status"`
	HTTPStatus int    `json:"http_status,omitempty"`
	History    int    `json:"history_len"`
}

// String renders the text form.
func (r sendResult) String() string {
	if r.Status == "pending" {
		return fmt.Sprintf("trigger %d issued (pending, response skipped)", r.Value)
	}
	return fmt.Sprintf("trigger %d delivered (HTTP %d)", r.Value, r.HTTPStatus)
}

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	Label string
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <value>",
		Short: "Dispatch a raw trigger code",
		Long: `Dispatch a raw integer trigger code to the recording endpoint.

The code bypasses mapping resolution; the endpoint owns its semantics.

Example:
  triggerline send 42
  triggerline send 42 --label "manual sync pulse" --low-latency`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "history ledger label for this dispatch")

	return cmd
}

func runSend(cmd *cobra.Command, opts *SendOptions, arg string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	value, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid trigger value %q", arg), err)
	}

	m, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}

	outcome, err := m.SendTrigger(cmd.Context(), value, opts.Label)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "trigger dispatch failed")
	}

	return f.Success(sendResult{
		Value:      value,
		Status:     outcome.Status,
		HTTPStatus: outcome.HTTPStatus,
		History:    len(m.History()),
	})
}
