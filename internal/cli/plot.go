package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/compiler"
	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/logging"
	"github.com/roach88/curves/internal/render"
)

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	*RootOptions
	Only []string // figure names to render; all when empty
}

// FigureFailure reports a figure that could not be rendered.
type FigureFailure struct {
	Figure  string `json:"figure"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlotResult holds the outcome of a plot run.
type PlotResult struct {
	Rendered []render.Result `json:"rendered"`
	Failed   []FigureFailure `json:"failed,omitempty"`
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot <specs-dir>",
		Short: "Render the figures declared in CUE specs",
		Long: `Compile and validate the figure specs in a directory, then read the
referenced runs from the log directory and write one chart file per figure
(or per group for split figures) into the plots directory.

Runs whose logs are missing, empty or unreadable are skipped with a warning.
A figure left with no data is reported and the remaining figures are still
rendered; the command then exits with status 1.`,
		Example: `  curves plot specs/
  curves plot specs/ --only q2_search --only q4_search
  curves plot specs/ --log-dir runs --plots-dir out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "render only the named figures (repeatable)")

	return cmd
}

func runPlot(opts *PlotOptions, specsDir string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadFigures(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	figures, err := filterFigures(loadResult.Figures, opts.Only)
	if err != nil {
		return outputCompileError(formatter, ErrCodeInvalidFlag, err.Error(), nil)
	}

	var validationErrors []compiler.ValidationError
	for i := range figures {
		for _, verr := range compiler.Validate(&figures[i]) {
			verr.Field = "figure." + figures[i].Name + "." + verr.Field
			validationErrors = append(validationErrors, verr)
		}
	}
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	loader, closeCache := opts.loader()
	defer closeCache()

	pipeline := render.New(render.Options{
		LogDir:   opts.Config.LogDir,
		PlotsDir: opts.Config.PlotsDir,
	}, loader, logging.New("render").With("batch", uuid.NewString()))

	result := &PlotResult{Rendered: []render.Result{}}
	for i := range figures {
		fig := &figures[i]
		formatter.Verbosef("Rendering figure: %s (%s)", fig.Name, fig.Kind)

		res, err := pipeline.Render(fig)
		if err != nil {
			code := ErrCodeGeneric
			if errors.Is(err, render.ErrNoData) {
				code = ErrCodeNoData
			}
			result.Failed = append(result.Failed, FigureFailure{Figure: fig.Name, Code: code, Message: err.Error()})
			continue
		}
		result.Rendered = append(result.Rendered, *res)
	}

	return outputPlotResult(formatter, result)
}

// filterFigures keeps the figures named in only, in spec order. Every name
// in only must exist.
func filterFigures(figures []ir.Figure, only []string) ([]ir.Figure, error) {
	if len(only) == 0 {
		return figures, nil
	}

	known := make([]string, len(figures))
	for i, fig := range figures {
		known[i] = fig.Name
	}
	for _, name := range only {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("unknown figure %q in --only (have %s)", name, strings.Join(known, ", "))
		}
	}

	var out []ir.Figure
	for _, fig := range figures {
		if slices.Contains(only, fig.Name) {
			out = append(out, fig)
		}
	}
	return out, nil
}

// outputPlotResult prints rendered outputs and failures.
func outputPlotResult(formatter *OutputFormatter, result *PlotResult) error {
	var failure error
	if len(result.Failed) > 0 {
		failure = exitError(ExitFailure, fmt.Sprintf("%d figure(s) failed", len(result.Failed)), nil)
	}

	if formatter.JSON() {
		var cerr *CLIError
		if failure != nil {
			cerr = &CLIError{Code: result.Failed[0].Code, Message: result.Failed[0].Message}
		}
		if err := formatter.Report(result, cerr); err != nil {
			return err
		}
		return failure
	}

	for _, res := range result.Rendered {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", res.Figure)
		for _, out := range res.Outputs {
			fmt.Fprintf(formatter.Writer, "    wrote %s\n", out)
		}
		writeSkips(formatter.Writer, "    ", res.Skipped)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(formatter.Writer, "✗ %s\n  %s: %s\n", f.Figure, f.Code, f.Message)
	}

	return failure
}
