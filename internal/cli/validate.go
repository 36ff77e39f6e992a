package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Figures int                        `json:"figures"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate figure specs without rendering",
		Long: `Validate the CUE figure specs in a directory without reading any logs.

Performs syntax checking, schema validation and cross-field checks
(a line figure needs runs or a selector, a band figure needs conditions,
errorbar series need matching lengths). Faster than plot for feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	// Collect every compile error so one run reports them all
	loadResult, loadErrors := LoadFigures(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.Verbosef("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineOf(loadErr),
			})
		}
	}

	for i := range loadResult.Figures {
		fig := &loadResult.Figures[i]
		formatter.Verbosef("Validating figure: %s", fig.Name)
		for _, verr := range compiler.Validate(fig) {
			verr.Field = "figure." + fig.Name + "." + verr.Field
			validationErrors = append(validationErrors, verr)
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(loadResult.Figures))
}

// lineOf extracts the line number of a load error, or 0.
func lineOf(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, figures int) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Figures: figures})
	}

	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d figure(s))\n", figures)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	// Unreadable specs are command-level errors (exit code 2)
	return formatter.Fail(ExitCommandError, code, message, details)
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failure := exitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)), nil)

	if formatter.JSON() {
		cerr := &CLIError{Code: errs[0].Code, Message: errs[0].Message}
		if err := formatter.Report(ValidationResult{Valid: false, Errors: errs}, cerr); err != nil {
			return err
		}
		return failure
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}

// ValidateSpecsDir compiles and validates all figure specs in a directory.
// This is a helper function for external callers.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadFigures(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	var errs []compiler.ValidationError
	for i := range loadResult.Figures {
		errs = append(errs, compiler.Validate(&loadResult.Figures[i])...)
	}
	return errs, nil
}
