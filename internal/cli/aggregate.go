package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/render"
	"github.com/roach88/curves/internal/series"
)

// AggregateOptions holds flags for the aggregate command.
type AggregateOptions struct {
	*RootOptions
	Tag    string
	Window int
}

// AggregatePoint is one row of aggregate output.
type AggregatePoint struct {
	Step int64   `json:"step"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// AggregateResult is the output of the aggregate command.
type AggregateResult struct {
	Tag     string           `json:"tag"`
	Window  int              `json:"window"`
	Runs    int              `json:"runs"`
	Skipped []render.Skip    `json:"skipped,omitempty"`
	Points  []AggregatePoint `json:"points"`
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AggregateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "aggregate <run-dir>...",
		Short: "Mean and standard deviation of a tag across runs",
		Long: `Load the same tag from several runs (typically seeds of one condition),
align them on the first run's steps by linear interpolation and print the
pointwise mean and population standard deviation.

Runs without a usable series are skipped with a warning. With --window the
mean and std are each smoothed by a centered rolling mean.`,
		Example: `  curves aggregate hw3_dqn_seed1 hw3_dqn_seed2 hw3_dqn_seed3 --tag Eval_AverageReturn`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "scalar tag to read (required)")
	cmd.Flags().IntVarP(&opts.Window, "window", "w", 1, "centered rolling-mean window")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}

func runAggregate(opts *AggregateOptions, runs []string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	if opts.Window < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, fmt.Sprintf("--window must be at least 1, got %d", opts.Window), nil)
	}

	loader, closeCache := opts.loader()
	defer closeCache()
	result := AggregateResult{Tag: opts.Tag, Window: opts.Window}

	var loaded []*series.Series
	for _, run := range runs {
		s, err := loader.LoadContext(cmd.Context(), opts.resolveRun(run), opts.Tag)
		if errors.Is(err, series.ErrNotFound) {
			opts.Logger.Warn("skipping run", "run", run, "tag", opts.Tag, "reason", series.ReasonOf(err), "error", err)
			result.Skipped = append(result.Skipped, render.Skip{Run: filepath.Base(run), Reason: string(series.ReasonOf(err))})
			continue
		}
		if err != nil {
			return formatter.SeriesError(err)
		}
		formatter.Verbosef("Loaded %s: %d step(s)", run, s.Len())
		loaded = append(loaded, s)
	}

	if len(loaded) == 0 {
		message := fmt.Sprintf("none of %d run(s) has data for tag %q", len(runs), opts.Tag)
		return formatter.Fail(ExitFailure, ErrCodeNoData, message, result.Skipped)
	}

	agg, err := series.Aggregate(loaded)
	if err != nil {
		return formatter.SeriesError(err)
	}
	mean, err := series.Smooth(agg.Mean, opts.Window)
	if err != nil {
		return formatter.SeriesError(err)
	}
	std, err := series.Smooth(agg.Std, opts.Window)
	if err != nil {
		return formatter.SeriesError(err)
	}

	result.Runs = agg.Runs
	result.Points = make([]AggregatePoint, len(agg.Steps))
	for i, step := range agg.Steps {
		result.Points[i] = AggregatePoint{Step: step, Mean: mean[i], Std: std[i]}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s across %d run(s)\n", result.Tag, result.Runs)
	writeSkips(formatter.Writer, "  ", result.Skipped)
	t := newTable(formatter.Writer, "step", "mean", "std")
	for _, p := range result.Points {
		t.AppendRow(table.Row{p.Step, formatFloat(p.Mean), formatFloat(p.Std)})
	}
	t.Render()
	return nil
}
