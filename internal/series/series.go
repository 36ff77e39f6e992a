package series

import "sort"

// Record is one raw scalar observation from an event log.
type Record struct {
	Tag   string  `json:"tag"`
	Step  int64   `json:"step"`
	Value float64 `json:"value"`
}

// Point is one (step, value) pair of a Series.
type Point struct {
	Step  int64   `json:"step"`
	Value float64 `json:"value"`
}

// Series is a scalar metric keyed by step. Steps are unique and strictly
// increasing.
type Series struct {
	Tag    string  `json:"tag"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s *Series) Len() int {
	return len(s.Points)
}

// Steps returns the step axis.
func (s *Series) Steps() []int64 {
	steps := make([]int64, len(s.Points))
	for i, p := range s.Points {
		steps[i] = p.Step
	}
	return steps
}

// Values returns the values in step order.
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// X returns the step axis as float64, ready for plotting or interpolation.
func (s *Series) X() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = float64(p.Step)
	}
	return xs
}

// Last returns the final point.
func (s *Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// WithValues returns a copy of s with the values replaced. values must have
// the same length as s.Points.
func (s *Series) WithValues(values []float64) *Series {
	out := &Series{Tag: s.Tag, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = Point{Step: p.Step, Value: values[i]}
	}
	return out
}

// Dedupe groups records by step, averages the values of each group and
// returns the points sorted by step. The tag of the records is not checked.
func Dedupe(records []Record) []Point {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[int64]*acc, len(records))
	for _, r := range records {
		a, ok := groups[r.Step]
		if !ok {
			a = &acc{}
			groups[r.Step] = a
		}
		a.sum += r.Value
		a.count++
	}

	points := make([]Point, 0, len(groups))
	for step, a := range groups {
		points = append(points, Point{Step: step, Value: a.sum / float64(a.count)})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Step < points[j].Step
	})
	return points
}
