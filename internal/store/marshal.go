package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/roach88/curves/internal/series"
)

// pointSize is the encoded size of one point: int64 step, float64 value.
const pointSize = 16

// marshalPoints encodes points as little-endian (step, value bits) pairs.
// Bit-exact, so NaN and ±Inf values logged by diverged runs survive.
func marshalPoints(points []series.Point) []byte {
	buf := make([]byte, len(points)*pointSize)
	for i, p := range points {
		off := i * pointSize
		binary.LittleEndian.PutUint64(buf[off:], uint64(p.Step))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(p.Value))
	}
	return buf
}

// unmarshalPoints decodes the output of marshalPoints.
func unmarshalPoints(data []byte, count int) ([]series.Point, error) {
	if len(data) != count*pointSize {
		return nil, fmt.Errorf("unmarshal points: %d bytes for %d points", len(data), count)
	}
	points := make([]series.Point, count)
	for i := range points {
		off := i * pointSize
		points[i] = series.Point{
			Step:  int64(binary.LittleEndian.Uint64(data[off:])),
			Value: math.Float64frombits(binary.LittleEndian.Uint64(data[off+8:])),
		}
	}
	return points, nil
}
