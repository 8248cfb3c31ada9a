package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/session"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Host         string
	Port         int
	Mappings     string
	Verbose      bool
	Format       string // "json" | "text"
	LowLatency   bool
	SkipResponse bool

	// Transport overrides the HTTP transport. Used by tests to observe
	// outbound requests without a live endpoint. If nil, net/http is used.
	Transport dispatch.Transport

	// TokenGenerator overrides the ledger token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator session.TokenGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the triggerline CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// newRootCommand wires flags and subcommands onto pre-built options, so
// tests can inject a stub transport and a fixed token generator.
func newRootCommand(opts *RootOptions) *cobra.Command {
	defaults := endpointDefaults()

	cmd := &cobra.Command{
		Use:   "triggerline",
		Short: "Dispatch experiment trigger codes to a recording endpoint",
		Long: `triggerline converts logical experiment events into numeric marker codes
and transmits them to a recording endpoint.

Event paths are resolved through a JSON mapping document (--mappings) whose
leaves are integer codes, for example scenes.intro.start. Every dispatch
attempt is recorded in the session's history ledger.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Host, "host", defaults.Host, "recording endpoint host (env: TRIGGERLINE_HOST)")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", defaults.Port, "recording endpoint port (env: TRIGGERLINE_PORT)")
	cmd.PersistentFlags().StringVar(&opts.Mappings, "mappings", defaults.Mappings, "path to JSON mapping document (env: TRIGGERLINE_MAPPINGS)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.LowLatency, "low-latency", false, "use the optimized send path")
	cmd.PersistentFlags().BoolVar(&opts.SkipResponse, "skip-response", false, "return before the network call settles (requires --low-latency)")

	// Add subcommands
	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging sets the default slog handler level from the verbose
// flag. Logs go to stderr so JSON output on stdout stays parseable.
func configureLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
