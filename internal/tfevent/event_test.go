package tfevent

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func writeEvents(t *testing.T, events ...*Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, e := range events {
		require.NoError(t, w.WriteEvent(e))
	}
	return buf.Bytes()
}

func readAll(t *testing.T, data []byte) ([]*Event, error) {
	t.Helper()
	r := NewReader(bytes.NewReader(data))
	var events []*Event
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

func TestMaskedCRC_Empty(t *testing.T) {
	// crc32c("") is zero, so the masked value is the mask delta itself.
	assert.Equal(t, uint32(0xa282ead8), MaskedCRC(nil))
}

func TestReader_ReadsWhatWriterWrote(t *testing.T) {
	data := writeEvents(t,
		&Event{WallTime: 1700000000.5, FileVersion: "brain.Event:2"},
		&Event{WallTime: 1700000001, Step: 0, Summary: []Value{
			{Tag: "Eval_AverageReturn", Form: SimpleValue, Scalar: 100},
		}},
		&Event{WallTime: 1700000002, Step: 10, Summary: []Value{
			{Tag: "Eval_AverageReturn", Form: SimpleValue, Scalar: 300},
			{Tag: "Train_AverageReturn", Form: TensorValue, Scalar: 12.25, Plugin: ScalarPlugin},
		}},
	)

	events, err := readAll(t, data)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "brain.Event:2", events[0].FileVersion)
	assert.Equal(t, 1700000000.5, events[0].WallTime)
	assert.Empty(t, events[0].Summary)

	require.Len(t, events[1].Summary, 1)
	assert.Equal(t, int64(0), events[1].Step)
	assert.Equal(t, "Eval_AverageReturn", events[1].Summary[0].Tag)
	assert.Equal(t, SimpleValue, events[1].Summary[0].Form)
	assert.Equal(t, 100.0, events[1].Summary[0].Scalar)

	require.Len(t, events[2].Summary, 2)
	assert.Equal(t, int64(10), events[2].Step)
	tensor := events[2].Summary[1]
	assert.Equal(t, TensorValue, tensor.Form)
	assert.Equal(t, ScalarPlugin, tensor.Plugin)
	assert.Equal(t, 12.25, tensor.Scalar)
}

func TestReader_NegativeStep(t *testing.T) {
	data := writeEvents(t, &Event{Step: -3, Summary: []Value{{Tag: "x", Form: SimpleValue, Scalar: 1}}})

	events, err := readAll(t, data)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(-3), events[0].Step)
}

func TestReader_TruncatedTail(t *testing.T) {
	data := writeEvents(t,
		&Event{Step: 1, Summary: []Value{{Tag: "x", Form: SimpleValue, Scalar: 1}}},
		&Event{Step: 2, Summary: []Value{{Tag: "x", Form: SimpleValue, Scalar: 2}}},
	)

	tests := []struct {
		name string
		cut  int
	}{
		{"inside header", 5},
		{"inside data", 14},
		{"inside footer", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := len(writeEvents(t, &Event{Step: 1, Summary: []Value{{Tag: "x", Form: SimpleValue, Scalar: 1}}}))
			var cutAt int
			if tt.name == "inside footer" {
				cutAt = len(data) - tt.cut
			} else {
				cutAt = first + tt.cut
			}

			events, err := readAll(t, data[:cutAt])
			require.ErrorIs(t, err, ErrTruncated)
			require.Len(t, events, 1)
			assert.Equal(t, int64(1), events[0].Step)
		})
	}
}

func TestReader_CorruptData(t *testing.T) {
	data := writeEvents(t, &Event{Step: 7, Summary: []Value{{Tag: "x", Form: SimpleValue, Scalar: 1}}})
	data[headerSize+1] ^= 0xff

	_, err := readAll(t, data)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestReader_CorruptLength(t *testing.T) {
	data := writeEvents(t, &Event{Step: 7})
	data[0] ^= 0x01

	_, err := readAll(t, data)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestReader_MalformedPayload(t *testing.T) {
	var buf bytes.Buffer
	// A lone tag byte with no value is not a valid message.
	require.NoError(t, NewWriter(&buf).WriteRecord([]byte{0x12}))

	_, err := readAll(t, buf.Bytes())
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReader_EmptyStream(t *testing.T) {
	events, err := readAll(t, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

// tensorValue builds a Summary.Value with a hand-encoded tensor so decoding of
// the encodings real TF2 writers use can be exercised.
func tensorValue(tag, plugin string, tensor []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, valueTag, protowire.BytesType)
	b = protowire.AppendString(b, tag)
	b = protowire.AppendTag(b, valueTensor, protowire.BytesType)
	b = protowire.AppendBytes(b, tensor)
	if plugin != "" {
		var pd, md []byte
		pd = protowire.AppendTag(pd, pluginName, protowire.BytesType)
		pd = protowire.AppendString(pd, plugin)
		md = protowire.AppendTag(md, metadataPluginData, protowire.BytesType)
		md = protowire.AppendBytes(md, pd)
		b = protowire.AppendTag(b, valueMetadata, protowire.BytesType)
		b = protowire.AppendBytes(b, md)
	}
	return b
}

func eventWithValue(step int64, value []byte) []byte {
	var summary, b []byte
	summary = protowire.AppendTag(summary, summaryValue, protowire.BytesType)
	summary = protowire.AppendBytes(summary, value)
	b = protowire.AppendTag(b, eventStep, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(step))
	b = protowire.AppendTag(b, eventSummary, protowire.BytesType)
	b = protowire.AppendBytes(b, summary)
	return b
}

func floatTensor(dims []uint64, content []byte, packed []float32) []byte {
	var t []byte
	t = protowire.AppendTag(t, tensorDtype, protowire.VarintType)
	t = protowire.AppendVarint(t, dtypeFloat)

	var shape []byte
	for _, d := range dims {
		var dim []byte
		dim = protowire.AppendTag(dim, shapeDimSize, protowire.VarintType)
		dim = protowire.AppendVarint(dim, d)
		shape = protowire.AppendTag(shape, shapeDim, protowire.BytesType)
		shape = protowire.AppendBytes(shape, dim)
	}
	t = protowire.AppendTag(t, tensorShape, protowire.BytesType)
	t = protowire.AppendBytes(t, shape)

	if content != nil {
		t = protowire.AppendTag(t, tensorContent, protowire.BytesType)
		t = protowire.AppendBytes(t, content)
	}
	if len(packed) > 0 {
		var vals []byte
		for _, f := range packed {
			vals = binary.LittleEndian.AppendUint32(vals, math.Float32bits(f))
		}
		t = protowire.AppendTag(t, tensorFloatVal, protowire.BytesType)
		t = protowire.AppendBytes(t, vals)
	}
	return t
}

func TestUnmarshalEvent_TensorScalars(t *testing.T) {
	content := binary.LittleEndian.AppendUint32(nil, math.Float32bits(2.5))

	tests := []struct {
		name   string
		value  []byte
		form   ScalarForm
		scalar float64
	}{
		{
			name:   "float_val packed with scalars plugin",
			value:  tensorValue("loss", ScalarPlugin, floatTensor(nil, nil, []float32{0.5})),
			form:   TensorValue,
			scalar: 0.5,
		},
		{
			name:   "tensor_content without metadata",
			value:  tensorValue("loss", "", floatTensor(nil, content, nil)),
			form:   TensorValue,
			scalar: 2.5,
		},
		{
			name:   "shape [1] counts as scalar",
			value:  tensorValue("loss", ScalarPlugin, floatTensor([]uint64{1}, nil, []float32{4})),
			form:   TensorValue,
			scalar: 4,
		},
		{
			name:  "histogram plugin is not scalar",
			value: tensorValue("weights", "histograms", floatTensor(nil, nil, []float32{1})),
			form:  NotScalar,
		},
		{
			name:  "multi-element tensor is not scalar",
			value: tensorValue("loss", ScalarPlugin, floatTensor([]uint64{3}, nil, []float32{1, 2, 3})),
			form:  NotScalar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := UnmarshalEvent(eventWithValue(5, tt.value))
			require.NoError(t, err)
			require.Len(t, e.Summary, 1)
			assert.Equal(t, int64(5), e.Step)
			assert.Equal(t, tt.form, e.Summary[0].Form)
			if tt.form != NotScalar {
				assert.Equal(t, tt.scalar, e.Summary[0].Scalar)
			}
		})
	}
}

func TestUnmarshalEvent_SkipsUnknownFields(t *testing.T) {
	var b []byte
	// graph_def (field 4) and log_message (field 6) are ignored.
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("graph bytes"))
	b = protowire.AppendTag(b, eventStep, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)
	b = protowire.AppendTag(b, 6, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0x08, 0x01})

	e, err := UnmarshalEvent(b)
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.Step)
	assert.Empty(t, e.Summary)
}

func TestUnmarshalEvent_NodeNameFallback(t *testing.T) {
	var v []byte
	v = protowire.AppendTag(v, valueNodeName, protowire.BytesType)
	v = protowire.AppendString(v, "old_style")
	v = protowire.AppendTag(v, valueSimpleValue, protowire.Fixed32Type)
	v = protowire.AppendFixed32(v, math.Float32bits(3))

	e, err := UnmarshalEvent(eventWithValue(1, v))
	require.NoError(t, err)
	require.Len(t, e.Summary, 1)
	assert.Equal(t, "old_style", e.Summary[0].Tag)
	assert.True(t, e.Summary[0].IsScalar())
}
