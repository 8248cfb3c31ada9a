package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// batchResult is the output payload for the batch command.
type batchResult struct {
	Values     []int64 `json:"values"`
	Status     string  `json:"status"`
	HTTPStatus int     `json:"http_status"`
}

// String renders the text form.
func (r batchResult) String() string {
	return fmt.Sprintf("batch of %d triggers delivered (HTTP %d)", len(r.Values), r.HTTPStatus)
}

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Label string
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <value> [value...]",
		Short: "Dispatch a sequence of trigger codes in one request",
		Long: `Dispatch several trigger codes in a single batch request.

Batch dispatches are always awaited; low-latency flags do not apply.

Example:
  triggerline batch 10 11 12`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "history ledger label for the batch")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, args []string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	values := make([]int64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid trigger value %q", arg), err)
		}
		values = append(values, v)
	}

	m, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}

	outcome, err := m.SendBatch(cmd.Context(), values, opts.Label)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "batch dispatch failed")
	}

	return f.Success(batchResult{
		Values:     values,
		Status:     outcome.Status,
		HTTPStatus: outcome.HTTPStatus,
	})
}
