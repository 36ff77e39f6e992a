package compiler

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/label"
)

// Validation error codes (E100-E199)
const (
	ErrMissingOutput       = "E101" // output file name is required
	ErrMissingTag          = "E102" // line and band figures need a tag
	ErrInvalidWindow       = "E103" // smoothing window must be >= 1
	ErrUnknownKind         = "E104" // kind not in ir.ValidKinds
	ErrRunSelection        = "E105" // runs and select conflict or are both missing
	ErrMissingConditions   = "E106" // band figure without conditions
	ErrSeriesLength        = "E107" // errorbar x/y/yerr lengths differ
	ErrUnknownLabelScheme  = "E108" // labels names no known scheme
	ErrMissingGroupPattern = "E109" // split_by_group output lacks {group}
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the cross-field rules of a compiled figure.
// Returns all errors found (does not fail-fast).
func Validate(fig *ir.Figure) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    fig.Line,
		})
	}

	// E104: kind
	if !ir.ValidKinds[fig.Kind] {
		add("kind", ErrUnknownKind, "unknown kind %q, must be one of %s", fig.Kind, strings.Join(validKinds(), ", "))
	}

	// E101: output, and the best-run output when requested
	if strings.TrimSpace(fig.Output) == "" {
		add("output", ErrMissingOutput, "output file name is required")
	}
	if fig.Best != nil && strings.TrimSpace(fig.Best.Output) == "" {
		add("best.output", ErrMissingOutput, "best run chart needs an output file name")
	}

	// E103: window
	if fig.Window < 1 {
		add("window", ErrInvalidWindow, "smoothing window must be at least 1, got %d", fig.Window)
	}

	// E108: label scheme
	if _, err := label.Lookup(fig.Labels); err != nil {
		add("labels", ErrUnknownLabelScheme, "unknown label scheme %q, must be one of %s", fig.Labels, strings.Join(label.Schemes(), ", "))
	}

	switch fig.Kind {
	case ir.KindLine:
		errs = append(errs, validateLine(fig)...)
	case ir.KindBand:
		errs = append(errs, validateBand(fig)...)
	case ir.KindErrorBar:
		errs = append(errs, validateErrorBar(fig)...)
	}

	return errs
}

func validateLine(fig *ir.Figure) []ValidationError {
	var errs []ValidationError

	// E102: tag
	if strings.TrimSpace(fig.Tag) == "" {
		errs = append(errs, ValidationError{
			Field:   "tag",
			Message: "line figures need a scalar tag",
			Code:    ErrMissingTag,
			Line:    fig.Line,
		})
	}

	// E105: exactly one of runs / select
	switch {
	case len(fig.Runs) > 0 && fig.Select != nil:
		errs = append(errs, ValidationError{
			Field:   "runs",
			Message: "runs and select are mutually exclusive",
			Code:    ErrRunSelection,
			Line:    fig.Line,
		})
	case len(fig.Runs) == 0 && fig.Select == nil:
		errs = append(errs, ValidationError{
			Field:   "runs",
			Message: "line figures need runs or select",
			Code:    ErrRunSelection,
			Line:    fig.Line,
		})
	case fig.Select != nil && strings.TrimSpace(fig.Select.Prefix) == "":
		errs = append(errs, ValidationError{
			Field:   "select.prefix",
			Message: "select needs a non-empty prefix",
			Code:    ErrRunSelection,
			Line:    fig.Line,
		})
	}
	for i, run := range fig.Runs {
		if strings.TrimSpace(run.Dir) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("runs[%d].dir", i),
				Message: "run dir is required",
				Code:    ErrRunSelection,
				Line:    fig.Line,
			})
		}
	}

	// E109: one chart per group needs a distinct file name per group
	if fig.SplitByGroup && !slices.Contains(ir.Placeholders(fig.Output), "group") {
		errs = append(errs, ValidationError{
			Field:   "output",
			Message: fmt.Sprintf("split_by_group output %q must contain {group}", fig.Output),
			Code:    ErrMissingGroupPattern,
			Line:    fig.Line,
		})
	}

	return errs
}

func validateBand(fig *ir.Figure) []ValidationError {
	var errs []ValidationError

	// E102: tag
	if strings.TrimSpace(fig.Tag) == "" {
		errs = append(errs, ValidationError{
			Field:   "tag",
			Message: "band figures need a scalar tag",
			Code:    ErrMissingTag,
			Line:    fig.Line,
		})
	}

	// E106: conditions
	if len(fig.Conditions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "conditions",
			Message: "band figures need at least one condition",
			Code:    ErrMissingConditions,
			Line:    fig.Line,
		})
	}
	names := make(map[string]bool)
	for i, c := range fig.Conditions {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("conditions[%d].name", i),
				Message: "condition name is required",
				Code:    ErrMissingConditions,
				Line:    fig.Line,
			})
		} else if names[c.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("conditions[%d].name", i),
				Message: fmt.Sprintf("duplicate condition name: %q", c.Name),
				Code:    ErrMissingConditions,
				Line:    fig.Line,
			})
		}
		names[c.Name] = true

		if len(c.Runs) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("conditions[%d].runs", i),
				Message: fmt.Sprintf("condition %q has no runs", c.Name),
				Code:    ErrMissingConditions,
				Line:    fig.Line,
			})
		}
	}

	return errs
}

func validateErrorBar(fig *ir.Figure) []ValidationError {
	var errs []ValidationError

	// E107: inline data
	if len(fig.Series) == 0 {
		errs = append(errs, ValidationError{
			Field:   "series",
			Message: "errorbar figures need at least one series",
			Code:    ErrSeriesLength,
			Line:    fig.Line,
		})
	}
	for i, s := range fig.Series {
		if len(s.X) != len(s.Y) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("series[%d].y", i),
				Message: fmt.Sprintf("series %q has %d x values but %d y values", s.Label, len(s.X), len(s.Y)),
				Code:    ErrSeriesLength,
				Line:    fig.Line,
			})
		}
		if len(s.YErr) > 0 && len(s.YErr) != len(s.Y) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("series[%d].yerr", i),
				Message: fmt.Sprintf("series %q has %d y values but %d yerr values", s.Label, len(s.Y), len(s.YErr)),
				Code:    ErrSeriesLength,
				Line:    fig.Line,
			})
		}
	}

	return errs
}

func validKinds() []string {
	kinds := make([]string, 0, len(ir.ValidKinds))
	for k := range ir.ValidKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
