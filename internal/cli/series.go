package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/series"
)

// SeriesOptions holds flags for the series command.
type SeriesOptions struct {
	*RootOptions
	Tag    string
	Window int
}

// SeriesPoint is one row of series output.
type SeriesPoint struct {
	Step     int64   `json:"step"`
	Value    float64 `json:"value"`
	Smoothed float64 `json:"smoothed"`
}

// SeriesResult is the output of the series command.
type SeriesResult struct {
	Run    string        `json:"run"`
	Tag    string        `json:"tag"`
	Window int           `json:"window"`
	Points []SeriesPoint `json:"points"`
}

// NewSeriesCommand creates the series command.
func NewSeriesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeriesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "series <run-dir>",
		Short: "Print one scalar series from a run's event log",
		Long: `Read the event log of a run directory and print the series for a tag.

Records logged more than once for the same step are averaged, so steps are
unique and increasing. With --window the centered rolling mean is printed
alongside the raw values.`,
		Example: `  curves series q2_b1000_r0.01_InvertedPendulum-v4_01-10-2025_21-12-20 --tag Eval_AverageReturn
  curves series data/q1_sb_rtg_na --tag Eval_AverageReturn --window 5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeries(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "scalar tag to read (required)")
	cmd.Flags().IntVarP(&opts.Window, "window", "w", 1, "centered rolling-mean window")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}

func runSeries(opts *SeriesOptions, run string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	if opts.Window < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, fmt.Sprintf("--window must be at least 1, got %d", opts.Window), nil)
	}

	dir := opts.resolveRun(run)
	formatter.Verbosef("Reading %s from %s", opts.Tag, dir)

	loader, closeCache := opts.loader()
	defer closeCache()

	s, err := loader.LoadContext(cmd.Context(), dir, opts.Tag)
	if err != nil {
		return formatter.SeriesError(err)
	}
	smoothed, err := series.Smooth(s.Values(), opts.Window)
	if err != nil {
		return formatter.SeriesError(err)
	}

	result := SeriesResult{Run: run, Tag: s.Tag, Window: opts.Window, Points: make([]SeriesPoint, s.Len())}
	for i, p := range s.Points {
		result.Points[i] = SeriesPoint{Step: p.Step, Value: p.Value, Smoothed: smoothed[i]}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	t := newTable(formatter.Writer, "step", "value", "smoothed")
	for _, p := range result.Points {
		t.AppendRow(table.Row{p.Step, formatFloat(p.Value), formatFloat(p.Smoothed)})
	}
	t.Render()
	return nil
}
