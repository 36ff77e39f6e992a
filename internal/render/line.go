package render

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/roach88/curves/internal/chart"
	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/label"
	"github.com/roach88/curves/internal/series"
)

// ungrouped is the group key of runs whose label scheme assigns none.
const ungrouped = "all"

// bestColor is the line color of best-run charts.
const bestColor = "blue"

type loadedRun struct {
	label    label.Label
	raw      *series.Series
	smoothed *series.Series
}

func (p *Pipeline) renderLine(fig *ir.Figure, res *Result) error {
	parse, err := label.Lookup(fig.Labels)
	if err != nil {
		return err
	}

	logDir := p.logDir(fig)
	refs, err := p.lineRuns(fig, logDir)
	if err != nil {
		return err
	}

	var runs []loadedRun
	for _, ref := range refs {
		name := filepath.Base(ref.Dir)
		lbl := label.Label{Text: ref.Label}
		if ref.Label == "" {
			lbl, err = parse(name)
			if err != nil {
				p.logger.Warn("skipping run", "figure", fig.Name, "dir", ref.Dir, "reason", ReasonLabel, "error", err)
				res.Skipped = append(res.Skipped, Skip{Run: name, Reason: ReasonLabel, Detail: err.Error()})
				continue
			}
		}

		s, ok, err := p.load(res, runPath(logDir, ref.Dir), fig.Tag)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		values, err := series.Smooth(s.Values(), fig.Window)
		if err != nil {
			return err
		}
		runs = append(runs, loadedRun{label: lbl, raw: s, smoothed: s.WithValues(values)})
	}

	if len(runs) == 0 {
		return ErrNoData
	}

	vars := fig.Vars()
	if fig.SplitByGroup {
		if err := p.renderGroups(fig, res, vars, runs); err != nil {
			return err
		}
	} else {
		c := newChart(fig, vars)
		c.Curves = curves(runs)
		if err := p.save(res, c, ir.Expand(fig.Output, vars)); err != nil {
			return err
		}
	}

	if fig.Best != nil {
		return p.renderBest(fig, res, vars, runs)
	}
	return nil
}

// lineRuns returns the runs of a line figure: the explicit list, or every
// directory under logDir matching the selector prefix.
func (p *Pipeline) lineRuns(fig *ir.Figure, logDir string) ([]ir.RunRef, error) {
	if fig.Select == nil {
		return fig.Runs, nil
	}
	names, err := selectRuns(logDir, fig.Select.Prefix)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("selected runs", "figure", fig.Name, "prefix", fig.Select.Prefix, "runs", len(names))

	refs := make([]ir.RunRef, len(names))
	for i, name := range names {
		refs[i] = ir.RunRef{Dir: name}
	}
	return refs, nil
}

// renderGroups saves one chart per label group, in group key order.
func (p *Pipeline) renderGroups(fig *ir.Figure, res *Result, vars ir.Vars, runs []loadedRun) error {
	groups := make(map[string][]loadedRun)
	titles := make(map[string]string)
	for _, r := range runs {
		key := r.label.Group
		if key == "" {
			key = ungrouped
		}
		groups[key] = append(groups[key], r)
		if _, ok := titles[key]; !ok {
			titles[key] = r.label.GroupTitle
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		title := titles[key]
		if title == "" {
			title = key
		}
		gv := vars.With("group", key).With("group_title", title)

		c := newChart(fig, gv)
		c.Curves = curves(groups[key])
		if err := p.save(res, c, ir.Expand(fig.Output, gv)); err != nil {
			return fmt.Errorf("group %s: %w", key, err)
		}
	}
	return nil
}

// renderBest saves the smoothed curve of the run with the highest final raw
// value on its own chart.
func (p *Pipeline) renderBest(fig *ir.Figure, res *Result, vars ir.Vars, runs []loadedRun) error {
	raws := make([]*series.Series, len(runs))
	for i, r := range runs {
		raws[i] = r.raw
	}
	best := runs[series.Best(raws)]
	text := best.label.Text

	title := fig.Best.Title
	if title == "" {
		title = fig.Title
	}
	bf := *fig
	bf.Title = title
	bf.LegendTitle = ""

	c := newChart(&bf, vars.With("label", text))
	c.Curves = []chart.Curve{curve(best, bestColor)}

	output := ir.Expand(fig.Best.Output, vars.With("label", ir.FileSafe(text)))
	p.logger.Info("best run", "figure", fig.Name, "label", text, "final", lastValue(best.raw))
	return p.save(res, c, output)
}

func curves(runs []loadedRun) []chart.Curve {
	out := make([]chart.Curve, len(runs))
	for i, r := range runs {
		out[i] = curve(r, "")
	}
	return out
}

func curve(r loadedRun, color string) chart.Curve {
	return chart.Curve{
		Label: r.label.Text,
		X:     r.smoothed.X(),
		Y:     r.smoothed.Values(),
		Color: color,
	}
}

func lastValue(s *series.Series) float64 {
	last, _ := s.Last()
	return last.Value
}
