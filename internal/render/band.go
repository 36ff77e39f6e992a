package render

import (
	"github.com/roach88/curves/internal/chart"
	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/series"
)

// renderBand aggregates each condition's runs into a mean curve with a
// ±std band.
func (p *Pipeline) renderBand(fig *ir.Figure, res *Result) error {
	logDir := p.logDir(fig)
	vars := fig.Vars()
	c := newChart(fig, vars)

	for _, cond := range fig.Conditions {
		var runs []*series.Series
		for _, dir := range cond.Runs {
			s, ok, err := p.load(res, runPath(logDir, dir), fig.Tag)
			if err != nil {
				return err
			}
			if ok {
				runs = append(runs, s)
			}
		}
		if len(runs) == 0 {
			p.logger.Warn("skipping condition", "figure", fig.Name, "condition", cond.Name, "reason", ReasonNoCondition)
			res.Skipped = append(res.Skipped, Skip{Run: cond.Name, Reason: ReasonNoCondition})
			continue
		}

		agg, err := series.Aggregate(runs)
		if err != nil {
			return err
		}
		p.logger.Debug("aggregated condition", "figure", fig.Name, "condition", cond.Name, "runs", agg.Runs, "steps", len(agg.Steps))

		curve, err := bandCurve(cond, agg, fig.Window)
		if err != nil {
			return err
		}
		c.Curves = append(c.Curves, curve)
	}

	if len(c.Curves) == 0 {
		return ErrNoData
	}
	return p.save(res, c, ir.Expand(fig.Output, vars))
}

func bandCurve(cond ir.Condition, agg *series.Aggregated, window int) (chart.Curve, error) {
	mean, err := series.Smooth(agg.Mean, window)
	if err != nil {
		return chart.Curve{}, err
	}
	std, err := series.Smooth(agg.Std, window)
	if err != nil {
		return chart.Curve{}, err
	}

	lower := make([]float64, len(mean))
	upper := make([]float64, len(mean))
	for i := range mean {
		lower[i] = mean[i] - std[i]
		upper[i] = mean[i] + std[i]
	}
	return chart.Curve{
		Label: cond.Name,
		X:     agg.X(),
		Y:     mean,
		Lower: lower,
		Upper: upper,
		Color: cond.Color,
	}, nil
}

// renderErrorBar draws inline series with symmetric y error bars.
func (p *Pipeline) renderErrorBar(fig *ir.Figure, res *Result) error {
	if len(fig.Series) == 0 {
		return ErrNoData
	}
	vars := fig.Vars()
	c := newChart(fig, vars)
	for _, s := range fig.Series {
		yerr := s.YErr
		if len(yerr) == 0 {
			yerr = nil
		}
		c.Curves = append(c.Curves, chart.Curve{
			Label:   s.Label,
			X:       s.X,
			Y:       s.Y,
			YErr:    yerr,
			Markers: true,
		})
	}
	return p.save(res, c, ir.Expand(fig.Output, vars))
}
