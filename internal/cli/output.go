package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/neurokit/triggerline/internal/dispatch"
	"github.com/neurokit/triggerline/internal/mapping"
	"github.com/neurokit/triggerline/internal/session"
)

// Exit codes returned to the shell.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // dispatch, resolution or validation failed
	ExitCommandError = 2 // bad arguments, unreadable files
)

// ExitError carries the exit code a failed command should terminate the
// process with, alongside the message and optional cause.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to an existing error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err, unwrapping as needed.
// Errors that carry no code map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps a failure to its taxonomy code for structured output.
func ErrorCode(err error) string {
	switch {
	case mapping.IsNotFound(err):
		return "NOT_FOUND"
	case mapping.IsInvalidLeaf(err):
		return "INVALID_LEAF"
	case mapping.IsLoadError(err):
		return "MAPPING_LOAD_FAILURE"
	case session.IsNotReady(err):
		return "NOT_READY"
	case dispatch.IsTransportError(err):
		return "TRANSPORT_FAILURE"
	default:
		return "INTERNAL"
	}
}

// OutputFormatter renders command results in the format selected by the
// --format flag. Results go to Writer; verbose diagnostics go to ErrWriter
// when one is set, so piped JSON stays parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the envelope for --format json output. Exactly one of Data
// and Error is populated, matching Status.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse. Code is the taxonomy code
// from ErrorCode; Details carries whatever partial result the command had.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success renders a successful result.
//
// Text mode prints the payload's String form; payloads passed here are
// expected to implement fmt.Stringer.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error renders a failure. In text mode the details are diagnostic only:
// they are printed under --verbose and routed to the diagnostic writer.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// GetErrWriter returns the diagnostic writer, falling back to Writer when no
// separate one was configured.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
