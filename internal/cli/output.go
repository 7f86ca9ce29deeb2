package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit statuses.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // record definitions are invalid
	ExitCommandError = 2 // the command itself could not run
)

// ExitError carries the status main exits with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit status to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode is the status for err. Errors without one exit with
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every --format json command prints.
type CLIResponse struct {
	Status   string    `json:"status"` // ok | error
	Data     any       `json:"data,omitempty"`
	Error    *CLIError `json:"error,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// CLIError is the error half of a CLIResponse. Code is one of the E-codes
// in loader.go.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as one JSON envelope.
// Diagnostics go to ErrWriter so row output stays clean.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool

	warnings []string
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) respond(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success prints data. JSON output also carries any pending warnings.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.respond(CLIResponse{Status: "ok", Data: data, Warnings: f.warnings})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error prints a command-level failure.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.respond(CLIResponse{
			Status:   "error",
			Error:    &CLIError{Code: code, Message: message, Details: details},
			Warnings: f.warnings,
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Warn reports something the user should see without failing the command,
// such as a delete with no predicates.
func (f *OutputFormatter) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if f.isJSON() {
		f.warnings = append(f.warnings, msg)
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "warning: %s\n", msg)
}

// Lines prints rendered rows, one JSON object per line.
func (f *OutputFormatter) Lines(docs []json.RawMessage) {
	for _, doc := range docs {
		fmt.Fprintf(f.Writer, "%s\n", doc)
	}
}

// VerboseLog prints progress under --verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter is ErrWriter, or Writer when none is set.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
