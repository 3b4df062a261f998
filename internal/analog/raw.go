package analog

import (
	"fmt"
	"unsafe"
)

// Geometry is the device-fixed staging shape of one tile: matrices
// occupy Rows x Cols, vectors occupy Cols. These are hardware-generation
// constants supplied at configure time, never derived from host data.
type Geometry struct {
	Rows int
	Cols int
}

// DefaultGeometry matches the reference hardware generation.
var DefaultGeometry = Geometry{Rows: 5, Cols: 6}

func (g Geometry) validate() error {
	if g.Rows <= 0 || g.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, g.Rows, g.Cols)
	}
	return nil
}

// Raw is the device-native staging buffer handed across the ISA
// boundary. Storage is a flat byte buffer reinterpreted through typed
// views, so the instruction interface does not need to be generic over
// element types. The buffer is allocated once per container and reused
// by every transfer.
type Raw struct {
	data  []byte
	rows  int // 1 for vectors
	cols  int
	dtype DataType
}

func newRaw(rows, cols int, dtype DataType) *Raw {
	return &Raw{
		data:  make([]byte, rows*cols*dtype.Size()),
		rows:  rows,
		cols:  cols,
		dtype: dtype,
	}
}

// Rows returns the device row count (1 for vectors).
func (r *Raw) Rows() int { return r.rows }

// Cols returns the device column count.
func (r *Raw) Cols() int { return r.cols }

// NumElements returns the total number of device elements.
func (r *Raw) NumElements() int { return r.rows * r.cols }

// DType returns the device element type.
func (r *Raw) DType() DataType { return r.dtype }

// Data returns the raw byte buffer.
// WARNING: direct access to the staging memory the hardware reads and
// writes. Use with caution.
func (r *Raw) Data() []byte { return r.data }

// AsInt8 interprets the buffer as []int8.
// Panics if the buffer's dtype is not Int8.
func (r *Raw) AsInt8() []int8 {
	if r.dtype != Int8 {
		panic(fmt.Sprintf("device buffer dtype is %s, not int8", r.dtype))
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt16 interprets the buffer as []int16.
// Panics if the buffer's dtype is not Int16.
func (r *Raw) AsInt16() []int16 {
	if r.dtype != Int16 {
		panic(fmt.Sprintf("device buffer dtype is %s, not int16", r.dtype))
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the buffer as []int32.
// Panics if the buffer's dtype is not Int32.
func (r *Raw) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("device buffer dtype is %s, not int32", r.dtype))
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat32 interprets the buffer as []float32.
// Panics if the buffer's dtype is not Float32.
func (r *Raw) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("device buffer dtype is %s, not float32", r.dtype))
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the buffer as []float64.
// Panics if the buffer's dtype is not Float64.
func (r *Raw) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("device buffer dtype is %s, not float64", r.dtype))
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// view reinterprets the buffer as a typed slice from generic code.
// The container constructors guarantee Q matches the buffer's dtype.
func view[Q Quant](r *Raw) []Q {
	return unsafe.Slice((*Q)(unsafe.Pointer(&r.data[0])), r.NumElements())
}
