package series

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidWindow is returned by Smooth for windows smaller than one.
var ErrInvalidWindow = errors.New("smoothing window must be at least 1")

// Smooth returns the centered rolling mean of values. The window for index i
// covers window values positioned as pandas' rolling(center=True) does:
// (window-1)/2 after i and the rest before it. Windows are truncated at the
// edges and NaN values are skipped, so an output is NaN only when every
// value in its window is NaN, and len(out) == len(values). A window of 1
// returns a copy of values.
func Smooth(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	n := len(values)
	ahead := (window - 1) / 2
	behind := window - 1 - ahead

	out := make([]float64, n)
	buf := make([]float64, 0, min(window, n))
	for i := range values {
		lo := max(0, i-behind)
		hi := min(n, i+ahead+1)
		buf = buf[:0]
		for _, v := range values[lo:hi] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(buf, nil)
	}
	return out, nil
}

// Interp evaluates the piecewise-linear function through (xp, fp) at each x,
// holding the end values outside [xp[0], xp[len(xp)-1]]. xp must be
// increasing and non-empty, and len(fp) == len(xp).
func Interp(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	last := len(xp) - 1
	for i, v := range x {
		switch {
		case v <= xp[0]:
			out[i] = fp[0]
		case v >= xp[last]:
			out[i] = fp[last]
		default:
			// xp[j-1] < v <= xp[j]
			j := sort.SearchFloat64s(xp, v)
			if xp[j] == v {
				out[i] = fp[j]
				continue
			}
			slope := (fp[j] - fp[j-1]) / (xp[j] - xp[j-1])
			out[i] = slope*(v-xp[j-1]) + fp[j-1]
		}
	}
	return out
}

// Aggregated is the pointwise mean and population standard deviation of
// several runs on the first run's step axis.
type Aggregated struct {
	Steps []int64   `json:"steps"`
	Mean  []float64 `json:"mean"`
	Std   []float64 `json:"std"`
	Runs  int       `json:"runs"`
}

// X returns the step axis as float64.
func (a *Aggregated) X() []float64 {
	xs := make([]float64, len(a.Steps))
	for i, s := range a.Steps {
		xs[i] = float64(s)
	}
	return xs
}

// Aggregate aligns every series onto the steps of runs[0] by linear
// interpolation and computes, per step, the mean and the population (N
// divisor) standard deviation across runs. An empty input, or a series
// without points, is a *NotFoundError.
func Aggregate(runs []*Series) (*Aggregated, error) {
	if len(runs) == 0 {
		return nil, &NotFoundError{Reason: ReasonNoRuns}
	}

	ref := runs[0]
	x := ref.X()
	aligned := make([][]float64, len(runs))
	for i, s := range runs {
		if s.Len() == 0 {
			return nil, &NotFoundError{Tag: s.Tag, Reason: ReasonEmptyLog, Err: fmt.Errorf("run %d has no points", i)}
		}
		aligned[i] = Interp(x, s.X(), s.Values())
	}

	agg := &Aggregated{
		Steps: ref.Steps(),
		Mean:  make([]float64, len(x)),
		Std:   make([]float64, len(x)),
		Runs:  len(runs),
	}
	column := make([]float64, len(runs))
	for j := range x {
		for i := range aligned {
			column[i] = aligned[i][j]
		}
		if len(column) == 1 {
			agg.Mean[j] = column[0]
			continue
		}
		agg.Mean[j], agg.Std[j] = stat.PopMeanStdDev(column, nil)
	}
	return agg, nil
}

// Best returns the index of the series with the highest final value, the
// earliest on ties, or -1 if no series has points.
func Best(runs []*Series) int {
	best := -1
	var bestValue float64
	for i, s := range runs {
		last, ok := s.Last()
		if !ok {
			continue
		}
		if best < 0 || last.Value > bestValue {
			best, bestValue = i, last.Value
		}
	}
	return best
}
