// Package render turns compiled figures into chart files.
//
// A Pipeline resolves the run directories a figure names, labels and loads
// each run, reduces the series (smoothing, or aggregation across seeds for
// band figures) and saves one or more charts. Runs that cannot be labelled
// or loaded are skipped with a warning and reported in Result.Skipped; a
// figure that ends up with nothing to draw fails with ErrNoData.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/curves/internal/chart"
	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/logging"
	"github.com/roach88/curves/internal/series"
)

// ErrNoData is returned when none of a figure's runs produced data.
var ErrNoData = errors.New("no data to plot")

// Skip reasons that do not come from series.NotFoundError.
const (
	ReasonLabel       = "label_unrecognized"
	ReasonNoCondition = "condition_without_data"
)

// Options configures a Pipeline.
type Options struct {
	// LogDir is the base directory of run directories. Relative run dirs and
	// figure log_dir values resolve against it.
	LogDir string

	// PlotsDir receives the chart files.
	PlotsDir string
}

// Skip records one run (or band condition) left out of a figure.
type Skip struct {
	Run    string `json:"run"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result reports what rendering one figure produced.
type Result struct {
	Figure  string   `json:"figure"`
	Outputs []string `json:"outputs"`
	Skipped []Skip   `json:"skipped,omitempty"`
}

// Pipeline renders figures.
type Pipeline struct {
	opts   Options
	loader *series.Loader
	logger *slog.Logger
}

// New returns a Pipeline. A nil loader uses the default event log prefix; a
// nil logger discards diagnostics.
func New(opts Options, loader *series.Loader, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	if loader == nil {
		loader = series.NewLoader("", logger)
	}
	return &Pipeline{opts: opts, loader: loader, logger: logger}
}

// Render draws fig and writes its chart files.
func (p *Pipeline) Render(fig *ir.Figure) (*Result, error) {
	f := *fig
	f.Defaults()

	res := &Result{Figure: f.Name}
	var err error
	switch f.Kind {
	case ir.KindLine:
		err = p.renderLine(&f, res)
	case ir.KindBand:
		err = p.renderBand(&f, res)
	case ir.KindErrorBar:
		err = p.renderErrorBar(&f, res)
	default:
		err = fmt.Errorf("unknown figure kind %q", f.Kind)
	}
	if err != nil {
		return res, fmt.Errorf("figure %s: %w", f.Name, err)
	}

	p.logger.Info("rendered figure", "figure", f.Name, "outputs", len(res.Outputs), "skipped", len(res.Skipped))
	return res, nil
}

// logDir returns the directory holding fig's runs.
func (p *Pipeline) logDir(fig *ir.Figure) string {
	switch {
	case fig.LogDir == "":
		return p.opts.LogDir
	case filepath.IsAbs(fig.LogDir):
		return fig.LogDir
	default:
		return filepath.Join(p.opts.LogDir, fig.LogDir)
	}
}

// runPath resolves a run dir against the figure's log dir.
func runPath(logDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(logDir, dir)
}

// load reads one run, recording a Skip for NotFound failures. ok is false
// when the run was skipped.
func (p *Pipeline) load(res *Result, dir, tag string) (*series.Series, bool, error) {
	s, err := p.loader.Load(dir, tag)
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, series.ErrNotFound) {
		return nil, false, err
	}

	reason := series.ReasonOf(err)
	p.logger.Warn("skipping run", "figure", res.Figure, "dir", dir, "tag", tag, "reason", reason, "error", err)
	res.Skipped = append(res.Skipped, Skip{Run: filepath.Base(dir), Reason: string(reason), Detail: err.Error()})
	return nil, false, nil
}

// save writes c under the plots dir and records the output path.
func (p *Pipeline) save(res *Result, c *chart.Chart, name string) error {
	path := filepath.Join(p.opts.PlotsDir, name)
	if err := chart.Save(c, path); err != nil {
		return err
	}
	p.logger.Debug("saved chart", "figure", res.Figure, "path", path, "curves", len(c.Curves))
	res.Outputs = append(res.Outputs, path)
	return nil
}

// newChart returns a chart with fig's text fields expanded with vars.
func newChart(fig *ir.Figure, vars ir.Vars) *chart.Chart {
	c := &chart.Chart{
		Title:       ir.Expand(fig.Title, vars),
		XLabel:      ir.Expand(fig.XLabel, vars),
		YLabel:      ir.Expand(fig.YLabel, vars),
		LegendTitle: ir.Expand(fig.LegendTitle, vars),
		Width:       fig.Width,
		Height:      fig.Height,
	}
	for _, ref := range fig.RefLines {
		c.RefLines = append(c.RefLines, chart.RefLine{Label: ref.Label, Y: ref.Y, Color: ref.Color})
	}
	return c
}

// selectRuns lists the subdirectories of logDir whose names start with
// prefix, sorted by name.
func selectRuns(logDir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
