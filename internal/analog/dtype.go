// Package analog implements the host side of an analog matrix-vector
// multiply accelerator: the quantization codec, host/device tensor
// containers, tile-state bookkeeping, and the operation sequencer.
package analog

import "math"

// Elem is a constraint for host tensor element types.
type Elem interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32
}

// Quant is a constraint for device (quantized) element types.
// Quantizing transfers additionally require a floating-point host type
// and an integral device type; that pairing is checked at container
// construction, not per call.
type Quant interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32
}

// DataType represents runtime type information for device buffers.
type DataType int

// Supported device element types.
const (
	Int8 DataType = iota
	Int16
	Int32
	Float32
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Integral reports whether the type is one of the fixed-point device
// types (as opposed to a float passthrough type).
func (dt DataType) Integral() bool {
	switch dt {
	case Int8, Int16, Int32:
		return true
	default:
		return false
	}
}

// Limits returns the representable range of a fixed-point device type.
// The maximum is the quantization denominator and both bounds are the
// saturation clamp. Panics for float types, which have no fixed-point
// limits.
func (dt DataType) Limits() (min, max float64) {
	switch dt {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	default:
		panic("no fixed-point limits for " + dt.String())
	}
}

// inferDataType infers the runtime DataType from a generic type.
func inferDataType[T Elem](dummy T) DataType {
	switch any(dummy).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported type")
	}
}
