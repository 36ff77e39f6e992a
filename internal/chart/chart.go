// Package chart draws training curves with gonum/plot.
//
// A Chart is a plain description of one figure: curves, optional ±std bands,
// optional error bars and horizontal reference lines. Save renders it to a
// file whose extension (png, svg, pdf, ...) selects the format.
package chart

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoCurves is returned when a chart has nothing to draw.
var ErrNoCurves = errors.New("chart has no curves")

// bandAlpha is the opacity of ±std bands.
const bandAlpha = 0.2

// Curve is one legend entry. Lower and Upper, when set, draw a filled band
// around Y; YErr, when set, draws symmetric error bars.
type Curve struct {
	Label string
	X     []float64
	Y     []float64
	Lower []float64
	Upper []float64
	YErr  []float64
	Color string

	// Markers draws a point at every sample in addition to the line.
	Markers bool
}

// RefLine is a dashed horizontal line across the whole chart.
type RefLine struct {
	Label string
	Y     float64
	Color string
}

// Chart describes one figure.
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string

	// Width and Height are in inches.
	Width  float64
	Height float64

	Curves   []Curve
	RefLines []RefLine
}

// errPoints pairs points with their y errors for plotter.NewYErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Plot builds the gonum plot for c.
func (c *Chart) Plot() (*plot.Plot, error) {
	if len(c.Curves) == 0 {
		return nil, ErrNoCurves
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if c.LegendTitle != "" {
		p.Legend.Add(c.LegendTitle)
	}

	drawn := 0
	for i, curve := range c.Curves {
		ok, err := addCurve(p, curve, i)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", curve.Label, err)
		}
		if ok {
			drawn++
		}
	}
	if drawn == 0 {
		return nil, ErrNoCurves
	}

	for i, ref := range c.RefLines {
		if err := addRefLine(p, ref, len(c.Curves)+i); err != nil {
			return nil, fmt.Errorf("reference line %q: %w", ref.Label, err)
		}
	}

	return p, nil
}

// addCurve draws c and reports whether any of it was finite. Non-finite
// samples (a diverged run) break the line and band into segments and are
// left out of markers and error bars.
func addCurve(p *plot.Plot, c Curve, i int) (bool, error) {
	n := len(c.X)
	if len(c.Y) != n {
		return false, fmt.Errorf("%d x values but %d y values", n, len(c.Y))
	}
	if n == 0 {
		return false, errors.New("no points")
	}
	band := c.Lower != nil || c.Upper != nil
	if band && (len(c.Lower) != n || len(c.Upper) != n) {
		return false, fmt.Errorf("band bounds need %d values, got %d lower and %d upper", n, len(c.Lower), len(c.Upper))
	}
	if c.YErr != nil && len(c.YErr) != n {
		return false, fmt.Errorf("%d y values but %d errors", n, len(c.YErr))
	}
	col, err := pick(c.Color, i)
	if err != nil {
		return false, err
	}

	keep := func(j int) bool {
		if !finite(c.X[j]) || !finite(c.Y[j]) {
			return false
		}
		return !band || (finite(c.Lower[j]) && finite(c.Upper[j]))
	}
	segs := segments(n, keep)
	if len(segs) == 0 {
		return false, nil
	}

	var thumbs []plot.Thumbnailer
	for k, seg := range segs {
		lo, hi := seg[0], seg[1]
		if band {
			poly, err := plotter.NewPolygon(bandOutline(c.X[lo:hi], c.Lower[lo:hi], c.Upper[lo:hi]))
			if err != nil {
				return false, err
			}
			poly.Color = translucent(col, bandAlpha)
			poly.LineStyle.Width = 0
			p.Add(poly)
			if k == 0 {
				thumbs = append(thumbs, poly)
			}
		}

		line, err := plotter.NewLine(xys(c.X[lo:hi], c.Y[lo:hi]))
		if err != nil {
			return false, err
		}
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if k == 0 {
			thumbs = append(thumbs, line)
		}
	}

	if c.Markers || c.YErr != nil {
		var pts plotter.XYs
		var yerrs plotter.YErrors
		for _, seg := range segs {
			for j := seg[0]; j < seg[1]; j++ {
				pts = append(pts, plotter.XY{X: c.X[j], Y: c.Y[j]})
				if c.YErr != nil {
					e := c.YErr[j]
					if !finite(e) {
						e = 0
					}
					yerrs = append(yerrs, plotter.YErrors{{Low: e, High: e}}...)
				}
			}
		}

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return false, err
		}
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		thumbs = append(thumbs, scatter)

		if c.YErr != nil {
			bars, err := plotter.NewYErrorBars(errPoints{XYs: pts, YErrors: yerrs})
			if err != nil {
				return false, err
			}
			bars.LineStyle.Color = col
			bars.CapWidth = vg.Points(8)
			p.Add(bars)
		}
	}

	if c.Label != "" {
		p.Legend.Add(c.Label, thumbs...)
	}
	return true, nil
}

// segments returns the [lo, hi) index ranges of consecutive samples for
// which keep holds.
func segments(n int, keep func(int) bool) [][2]int {
	var segs [][2]int
	lo := -1
	for j := 0; j < n; j++ {
		switch {
		case keep(j) && lo < 0:
			lo = j
		case !keep(j) && lo >= 0:
			segs = append(segs, [2]int{lo, j})
			lo = -1
		}
	}
	if lo >= 0 {
		segs = append(segs, [2]int{lo, n})
	}
	return segs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func addRefLine(p *plot.Plot, ref RefLine, i int) error {
	if !finite(ref.Y) {
		return fmt.Errorf("invalid y %v", ref.Y)
	}
	col, err := pick(ref.Color, i)
	if err != nil {
		return err
	}

	y := ref.Y
	fn := plotter.NewFunction(func(float64) float64 { return y })
	fn.LineStyle.Color = col
	fn.LineStyle.Width = vg.Points(1.5)
	fn.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(fn)

	// Functions report no data range; keep the line inside the y axis.
	p.Y.Min = math.Min(p.Y.Min, y)
	p.Y.Max = math.Max(p.Y.Max, y)

	if ref.Label != "" {
		p.Legend.Add(ref.Label, fn)
	}
	return nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}
	return pts
}

// bandOutline walks the upper bound left to right and the lower bound back.
func bandOutline(x, lower, upper []float64) plotter.XYs {
	n := len(x)
	pts := make(plotter.XYs, 0, 2*n)
	for i := 0; i < n; i++ {
		pts = append(pts, plotter.XY{X: x[i], Y: upper[i]})
	}
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: x[i], Y: lower[i]})
	}
	return pts
}

// Save renders c to path, creating the parent directory. The file extension
// picks the image format.
func Save(c *Chart, path string) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	w := vg.Length(c.Width) * vg.Inch
	h := vg.Length(c.Height) * vg.Inch
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
