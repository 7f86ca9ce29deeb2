package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationIssue is one problem found in a record definition.
type ValidationIssue struct {
	Record  string `json:"record,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Records []string          `json:"records,omitempty"`
	Errors  []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [records-dir]",
		Short: "Validate record definitions without touching the database",
		Long: `Validate CUE record definitions.

Checks syntax, primary keys, field kinds, and index columns for every
record under the top-level "records" struct. Every error is reported, not
just the first. The directory defaults to the config file's records entry.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, recordsDir(rootOpts, args), cmd)
		},
	}

	return cmd
}

// recordsDir picks the records directory from args or config.
func recordsDir(opts *RootOptions, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return opts.effectiveConfig().Records
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if dir == "" {
		return outputCommandError(formatter, ErrCodeNotFound, "no records directory given and none configured", nil)
	}

	loadResult, loadErrors := LoadRecords(dir, LoadModeCollectAll)

	// Directory-level failures (not found, no files, ...)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCommandError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var names []string
	for _, d := range loadResult.Records {
		formatter.VerboseLog("Validated record: %s", d.Name)
		names = append(names, d.Name)
	}

	var issues []ValidationIssue
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issues = append(issues, ValidationIssue{
				Record:  loadErr.Record,
				Code:    loadErr.Code,
				Message: loadErr.Message,
				Line:    lineOf(loadErr),
			})
			continue
		}
		issues = append(issues, ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()})
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, issues)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", len(names))
	return nil
}

func lineOf(e *LoadError) int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// outputCommandError outputs a single command-level error.
func outputCommandError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Command-level errors are exit code 2
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Record != "" {
			fmt.Fprintf(formatter.Writer, "records.%s", issue.Record)
			if issue.Line > 0 {
				fmt.Fprintf(formatter.Writer, " (line %d)", issue.Line)
			}
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
