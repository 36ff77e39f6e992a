package tfevent

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from tensorflow/core/util/event.proto and
// tensorflow/core/framework/{summary,tensor,tensor_shape}.proto.
const (
	eventWallTime    protowire.Number = 1
	eventStep        protowire.Number = 2
	eventFileVersion protowire.Number = 3
	eventSummary     protowire.Number = 5

	summaryValue protowire.Number = 1

	valueTag         protowire.Number = 1
	valueSimpleValue protowire.Number = 2
	valueNodeName    protowire.Number = 7
	valueTensor      protowire.Number = 8
	valueMetadata    protowire.Number = 9

	metadataPluginData protowire.Number = 1
	metadataDataClass  protowire.Number = 4
	pluginName         protowire.Number = 1

	tensorDtype      protowire.Number = 1
	tensorShape      protowire.Number = 2
	tensorContent    protowire.Number = 4
	tensorFloatVal   protowire.Number = 5
	tensorDoubleVal  protowire.Number = 6
	shapeDim         protowire.Number = 2
	shapeDimSize     protowire.Number = 1
	shapeUnknownRank protowire.Number = 3
)

const (
	dataClassScalar = 1
	dtypeFloat      = 1
	dtypeDouble     = 2
)

// ScalarPlugin is the TensorBoard plugin name attached to scalar summaries.
const ScalarPlugin = "scalars"

// ScalarForm describes how a summary value carries its scalar.
type ScalarForm int

const (
	// NotScalar marks images, histograms, text and other non-scalar values.
	NotScalar ScalarForm = iota
	// SimpleValue is the legacy float simple_value field.
	SimpleValue
	// TensorValue is a size-1 float or double tensor.
	TensorValue
)

// Event is the decoded subset of a tensorflow.Event.
type Event struct {
	WallTime    float64
	Step        int64
	FileVersion string
	Summary     []Value
}

// Value is one summary entry of an event.
type Value struct {
	Tag    string
	Plugin string
	Form   ScalarForm
	Scalar float64
}

// IsScalar reports whether the value carries a scalar metric.
func (v Value) IsScalar() bool {
	return v.Form != NotScalar
}

// UnmarshalEvent decodes a serialized tensorflow.Event.
func UnmarshalEvent(b []byte) (*Event, error) {
	e := &Event{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch {
		case num == eventWallTime && typ == protowire.Fixed64Type:
			e.WallTime = fixed64(raw)
		case num == eventStep && typ == protowire.VarintType:
			e.Step = int64(varint(raw))
		case num == eventFileVersion && typ == protowire.BytesType:
			e.FileVersion = string(bytesField(raw))
		case num == eventSummary && typ == protowire.BytesType:
			values, err := unmarshalSummary(bytesField(raw))
			if err != nil {
				return err
			}
			e.Summary = append(e.Summary, values...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalSummary(b []byte) ([]Value, error) {
	var values []Value
	err := walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		if num != summaryValue || typ != protowire.BytesType {
			return nil
		}
		v, err := unmarshalValue(bytesField(raw))
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

func unmarshalValue(b []byte) (Value, error) {
	var (
		v         Value
		nodeName  string
		simple    float64
		hasSimple bool
		tensor    []byte
		hasTensor bool
		hasMeta   bool
		dataClass uint64
	)
	err := walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch {
		case num == valueTag && typ == protowire.BytesType:
			v.Tag = string(bytesField(raw))
		case num == valueNodeName && typ == protowire.BytesType:
			nodeName = string(bytesField(raw))
		case num == valueSimpleValue && typ == protowire.Fixed32Type:
			simple = float64(fixed32(raw))
			hasSimple = true
		case num == valueTensor && typ == protowire.BytesType:
			tensor = bytesField(raw)
			hasTensor = true
		case num == valueMetadata && typ == protowire.BytesType:
			hasMeta = true
			plugin, class, err := unmarshalMetadata(bytesField(raw))
			if err != nil {
				return err
			}
			v.Plugin = plugin
			dataClass = class
		}
		return nil
	})
	if err != nil {
		return Value{}, err
	}

	if v.Tag == "" {
		v.Tag = nodeName
	}

	switch {
	case hasSimple:
		v.Form = SimpleValue
		v.Scalar = simple
	case hasTensor && (!hasMeta || v.Plugin == ScalarPlugin || dataClass == dataClassScalar):
		// TF2 writers attach metadata only to the first value of a tag, so a
		// bare tensor is still a scalar candidate; the size check decides.
		scalar, ok, err := tensorScalar(tensor)
		if err != nil {
			return Value{}, err
		}
		if ok {
			v.Form = TensorValue
			v.Scalar = scalar
		}
	}
	return v, nil
}

func unmarshalMetadata(b []byte) (plugin string, dataClass uint64, err error) {
	err = walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch {
		case num == metadataPluginData && typ == protowire.BytesType:
			return walk(bytesField(raw), func(num protowire.Number, typ protowire.Type, raw []byte) error {
				if num == pluginName && typ == protowire.BytesType {
					plugin = string(bytesField(raw))
				}
				return nil
			})
		case num == metadataDataClass && typ == protowire.VarintType:
			dataClass = varint(raw)
		}
		return nil
	})
	return plugin, dataClass, err
}

// tensorScalar extracts the value of a single-element float or double tensor.
func tensorScalar(b []byte) (float64, bool, error) {
	var (
		dtype   uint64
		shape   []byte
		content []byte
		floats  []float64
		doubles []float64
	)
	err := walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch {
		case num == tensorDtype && typ == protowire.VarintType:
			dtype = varint(raw)
		case num == tensorShape && typ == protowire.BytesType:
			shape = bytesField(raw)
		case num == tensorContent && typ == protowire.BytesType:
			content = bytesField(raw)
		case num == tensorFloatVal && typ == protowire.Fixed32Type:
			floats = append(floats, float64(fixed32(raw)))
		case num == tensorFloatVal && typ == protowire.BytesType:
			for packed := bytesField(raw); len(packed) >= 4; packed = packed[4:] {
				floats = append(floats, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed))))
			}
		case num == tensorDoubleVal && typ == protowire.Fixed64Type:
			doubles = append(doubles, fixed64(raw))
		case num == tensorDoubleVal && typ == protowire.BytesType:
			for packed := bytesField(raw); len(packed) >= 8; packed = packed[8:] {
				doubles = append(doubles, math.Float64frombits(binary.LittleEndian.Uint64(packed)))
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	elems, err := shapeElements(shape)
	if err != nil || elems != 1 {
		return 0, false, err
	}

	switch dtype {
	case dtypeFloat:
		if len(content) == 4 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(content))), true, nil
		}
		if len(floats) > 0 {
			return floats[0], true, nil
		}
	case dtypeDouble:
		if len(content) == 8 {
			return math.Float64frombits(binary.LittleEndian.Uint64(content)), true, nil
		}
		if len(doubles) > 0 {
			return doubles[0], true, nil
		}
	}
	return 0, false, nil
}

// shapeElements returns the element count of a TensorShapeProto, -1 when the
// rank is unknown.
func shapeElements(b []byte) (int64, error) {
	elems := int64(1)
	err := walk(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch {
		case num == shapeUnknownRank && typ == protowire.VarintType:
			if varint(raw) != 0 {
				elems = -1
			}
		case num == shapeDim && typ == protowire.BytesType:
			size := int64(1)
			err := walk(bytesField(raw), func(num protowire.Number, typ protowire.Type, raw []byte) error {
				if num == shapeDimSize && typ == protowire.VarintType {
					size = int64(varint(raw))
				}
				return nil
			})
			if err != nil {
				return err
			}
			if elems >= 0 {
				elems *= size
			}
		}
		return nil
	})
	return elems, err
}

// MarshalEvent serializes e. Scalar values are written in their Form:
// SimpleValue as a float simple_value, TensorValue as a rank-0 double tensor.
func MarshalEvent(e *Event) []byte {
	var b []byte
	if e.WallTime != 0 {
		b = protowire.AppendTag(b, eventWallTime, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(e.WallTime))
	}
	if e.Step != 0 {
		b = protowire.AppendTag(b, eventStep, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Step))
	}
	if e.FileVersion != "" {
		b = protowire.AppendTag(b, eventFileVersion, protowire.BytesType)
		b = protowire.AppendString(b, e.FileVersion)
	}
	if len(e.Summary) > 0 {
		var summary []byte
		for _, v := range e.Summary {
			summary = protowire.AppendTag(summary, summaryValue, protowire.BytesType)
			summary = protowire.AppendBytes(summary, marshalValue(v))
		}
		b = protowire.AppendTag(b, eventSummary, protowire.BytesType)
		b = protowire.AppendBytes(b, summary)
	}
	return b
}

func marshalValue(v Value) []byte {
	var b []byte
	b = protowire.AppendTag(b, valueTag, protowire.BytesType)
	b = protowire.AppendString(b, v.Tag)

	switch v.Form {
	case SimpleValue:
		b = protowire.AppendTag(b, valueSimpleValue, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(float32(v.Scalar)))
	case TensorValue:
		var t []byte
		t = protowire.AppendTag(t, tensorDtype, protowire.VarintType)
		t = protowire.AppendVarint(t, dtypeDouble)
		t = protowire.AppendTag(t, tensorShape, protowire.BytesType)
		t = protowire.AppendBytes(t, nil)
		t = protowire.AppendTag(t, tensorDoubleVal, protowire.BytesType)
		t = protowire.AppendBytes(t, protowire.AppendFixed64(nil, math.Float64bits(v.Scalar)))
		b = protowire.AppendTag(b, valueTensor, protowire.BytesType)
		b = protowire.AppendBytes(b, t)
	}

	if v.Plugin != "" {
		var pd []byte
		pd = protowire.AppendTag(pd, pluginName, protowire.BytesType)
		pd = protowire.AppendString(pd, v.Plugin)
		var md []byte
		md = protowire.AppendTag(md, metadataPluginData, protowire.BytesType)
		md = protowire.AppendBytes(md, pd)
		b = protowire.AppendTag(b, valueMetadata, protowire.BytesType)
		b = protowire.AppendBytes(b, md)
	}
	return b
}

// walk calls fn with the raw encoding of every field in a message. The raw
// slice has already been bounds-checked by protowire.ConsumeFieldValue.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, raw []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		if err := fn(num, typ, b[:m]); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func varint(raw []byte) uint64 {
	v, _ := protowire.ConsumeVarint(raw)
	return v
}

func fixed32(raw []byte) float32 {
	v, _ := protowire.ConsumeFixed32(raw)
	return math.Float32frombits(v)
}

func fixed64(raw []byte) float64 {
	v, _ := protowire.ConsumeFixed64(raw)
	return math.Float64frombits(v)
}

func bytesField(raw []byte) []byte {
	v, _ := protowire.ConsumeBytes(raw)
	return v
}
