package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurokit/triggerline/internal/mapping"
)

// validateResult is the output payload for the validate command.
type validateResult struct {
	File  string   `json:"file"`
	Paths []string `json:"paths"`
}

// String renders the text form.
func (r validateResult) String() string {
	return fmt.Sprintf("%s: valid, %d event paths", r.File, len(r.Paths))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <mappings.json>",
		Short: "Validate a mapping document",
		Long: `Validate that a mapping document is well-formed: a JSON object whose
values are nested groups or integer trigger codes. Prints the resolvable
event paths on success.

Example:
  triggerline validate triggers.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, file string) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	doc, err := mapping.Load(file)
	if err != nil {
		_ = f.Error(ErrorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "mapping document invalid")
	}

	return f.Success(validateResult{File: file, Paths: doc.Paths()})
}
