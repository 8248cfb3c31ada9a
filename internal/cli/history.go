package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neurokit/triggerline/internal/archive"
	"github.com/neurokit/triggerline/internal/session"
)

// historyResult is the output payload for the history command.
type historyResult struct {
	Archive  string          `json:"archive"`
	Session  string          `json:"session,omitempty"`
	Sessions []string        `json:"sessions,omitempty"`
	Entries  []session.Entry `json:"entries,omitempty"`
}

// String renders the text form.
func (r historyResult) String() string {
	if r.Session == "" {
		return fmt.Sprintf("%s: %d session(s): %s", r.Archive, len(r.Sessions), strings.Join(r.Sessions, ", "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s / %s: %d dispatch attempt(s)", r.Archive, r.Session, len(r.Entries))
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "\n%s  %6d  %s", e.Timestamp.Format("15:04:05.000"), e.Value, e.Label)
	}
	return b.String()
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Session string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <archive.db>",
		Short: "Inspect an archived history export",
		Long: `Inspect a SQLite history archive written by run --archive.

Without --session, lists the archived session names. With --session, prints
that session's dispatch attempts in recorded order.

Example:
  triggerline history run1.db
  triggerline history run1.db --session oddball-block-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "archived session name to inspect")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, file string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	a, err := archive.Open(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing archive", "error", closeErr)
		}
	}()

	result := historyResult{Archive: file, Session: opts.Session}
	if opts.Session == "" {
		result.Sessions, err = a.Sessions(cmd.Context())
	} else {
		result.Entries, err = a.Entries(cmd.Context(), opts.Session)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read archive", err)
	}

	return f.Success(result)
}
