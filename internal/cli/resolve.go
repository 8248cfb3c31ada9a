package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveResult is the output payload for the resolve command.
type resolveResult struct {
	Path  string `json:"path"`
	Value int64  `json:"value"`
}

// String renders the text form.
func (r resolveResult) String() string {
	return fmt.Sprintf("%s = %d", r.Path, r.Value)
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve an event path to its trigger code without dispatching",
		Long: `Resolve a dot-delimited event path through the mapping document and
print the trigger code. No network call is made.

Example:
  triggerline resolve scenes.intro.start --mappings triggers.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runResolve(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	doc, err := loadDocument(opts)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitCommandError, "mapping document unusable")
	}

	code, err := doc.Resolve(path)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "resolution failed")
	}

	return f.Success(resolveResult{Path: path, Value: code})
}
