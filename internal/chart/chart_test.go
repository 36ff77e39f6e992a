package chart

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChart() *Chart {
	return &Chart{
		Title:       "Q1 returns",
		XLabel:      "Iteration",
		YLabel:      "Eval_AverageReturn",
		LegendTitle: "Config",
		Width:       6,
		Height:      4,
		Curves: []Curve{
			{Label: "RTG + DSA", X: []float64{0, 1, 2, 3}, Y: []float64{10, 20, 15, 30}},
			{
				Label: "DQN",
				X:     []float64{0, 1, 2, 3},
				Y:     []float64{5, 6, 7, 8},
				Lower: []float64{4, 5, 6, 7},
				Upper: []float64{6, 7, 8, 9},
				Color: "tab:blue",
			},
			{
				Label: "DAgger",
				X:     []float64{1, 2, 3},
				Y:     []float64{2, 4, 6},
				YErr:  []float64{0.5, 1, 0},
			},
		},
		RefLines: []RefLine{{Label: "Expert", Y: 50, Color: "r"}},
	}
}

func TestSave_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	require.NoError(t, Save(sampleChart(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "expected PNG signature")
}

func TestSave_SVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")

	require.NoError(t, Save(sampleChart(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestSave_UnsupportedExtension(t *testing.T) {
	err := Save(sampleChart(), filepath.Join(t.TempDir(), "out.bmp"))
	require.Error(t, err)
}

func TestPlot_RefLineExtendsAxis(t *testing.T) {
	p, err := sampleChart().Plot()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, p.Y.Max, 50.0)
	assert.LessOrEqual(t, p.Y.Min, 4.0)
}

func TestPlot_Errors(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
	}{
		{"length mismatch", Curve{X: []float64{1, 2}, Y: []float64{1}}},
		{"no points", Curve{}},
		{"band bounds", Curve{X: []float64{1, 2}, Y: []float64{1, 2}, Lower: []float64{0}}},
		{"yerr length", Curve{X: []float64{1, 2}, Y: []float64{1, 2}, YErr: []float64{1}}},
		{"bad color", Curve{X: []float64{1}, Y: []float64{1}, Color: "chartreuse-ish"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Chart{Width: 4, Height: 3, Curves: []Curve{tt.curve}}
			_, err := c.Plot()
			require.Error(t, err)
		})
	}
}

func TestPlot_NonFiniteValues(t *testing.T) {
	nan := math.NaN()
	c := &Chart{Width: 4, Height: 3, Curves: []Curve{
		{Label: "good", X: []float64{0, 1, 2}, Y: []float64{1, 2, 3}},
		{Label: "diverged", X: []float64{0, 1, 2, 3}, Y: []float64{1, nan, math.Inf(1), 4}, Markers: true},
		{
			Label: "band",
			X:     []float64{0, 1, 2},
			Y:     []float64{1, 2, 3},
			Lower: []float64{0, nan, 2},
			Upper: []float64{2, 3, 4},
		},
		{Label: "all nan", X: []float64{0, 1}, Y: []float64{nan, nan}},
	}}

	_, err := c.Plot()
	require.NoError(t, err)
	require.NoError(t, Save(c, filepath.Join(t.TempDir(), "nan.png")))

	allNaN := &Chart{Width: 4, Height: 3, Curves: []Curve{{X: []float64{1}, Y: []float64{nan}}}}
	_, err = allNaN.Plot()
	assert.ErrorIs(t, err, ErrNoCurves)
}

func TestSegments(t *testing.T) {
	vals := []float64{1, math.NaN(), 2, 3, math.NaN(), math.NaN(), 4}
	segs := segments(len(vals), func(i int) bool { return finite(vals[i]) })
	assert.Equal(t, [][2]int{{0, 1}, {2, 4}, {6, 7}}, segs)
	assert.Empty(t, segments(2, func(int) bool { return false }))
}

func TestPlot_NoCurves(t *testing.T) {
	c := &Chart{Width: 4, Height: 3, RefLines: []RefLine{{Label: "Expert", Y: 1}}}
	_, err := c.Plot()
	assert.ErrorIs(t, err, ErrNoCurves)

	err = Save(c, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrNoCurves)
}

func TestPlot_InvalidRefLine(t *testing.T) {
	c := &Chart{Width: 4, Height: 3,
		Curves:   []Curve{{X: []float64{1}, Y: []float64{1}}},
		RefLines: []RefLine{{Y: math.Inf(1)}},
	}
	_, err := c.Plot()
	require.Error(t, err)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"tab:orange", color.NRGBA{0xff, 0x7f, 0x0e, 0xff}},
		{"r", color.NRGBA{0xff, 0x00, 0x00, 0xff}},
		{" Green ", color.NRGBA{0x00, 0x80, 0x00, 0xff}},
		{"#1f77b4", color.NRGBA{0x1f, 0x77, 0xb4, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "#12345", "#zzzzzz", "tab:teal"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestTranslucent(t *testing.T) {
	c := translucent(color.NRGBA{R: 10, G: 20, B: 30, A: 0xff}, bandAlpha)
	assert.Equal(t, uint8(51), c.A)
	assert.Equal(t, uint8(10), c.R)
}

func TestBandOutline(t *testing.T) {
	pts := bandOutline([]float64{0, 1}, []float64{-1, -2}, []float64{1, 2})
	require.Len(t, pts, 4)
	assert.Equal(t, 0.0, pts[0].X)
	assert.Equal(t, 1.0, pts[0].Y)
	assert.Equal(t, 2.0, pts[1].Y)
	assert.Equal(t, -2.0, pts[2].Y)
	assert.Equal(t, -1.0, pts[3].Y)
}
