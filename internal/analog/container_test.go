package analog

import (
	"errors"
	"math"
	"testing"
)

var testGeom = Geometry{Rows: 5, Cols: 6}

func TestVectorQuantizeEffectiveScale(t *testing.T) {
	v, err := WrapVector[float32, int8](testGeom, []float32{2, 2, 2, 2})
	if err != nil {
		t.Fatalf("WrapVector: %v", err)
	}
	v.TransferToDevice()

	want := 2.0 / 127
	if got := v.ScaleFactor(); math.Abs(got-want) > 1e-12 {
		t.Errorf("effective scale = %v, want %v", got, want)
	}
	for i, q := range v.Device().AsInt8()[:4] {
		if q != 127 {
			t.Errorf("dev[%d] = %d, want 127", i, q)
		}
	}
	// Padding beyond the host length stays zero.
	for i, q := range v.Device().AsInt8()[4:] {
		if q != 0 {
			t.Errorf("padding[%d] = %d, want 0", i, q)
		}
	}
}

func TestVectorIdentityRoundTrip(t *testing.T) {
	host := []int32{7, -3, 0, 12}
	v, err := WrapVector[int32, int32](testGeom, host)
	if err != nil {
		t.Fatalf("WrapVector: %v", err)
	}
	v.TransferToDevice()
	// Scramble the host, then restore from the device. The scale
	// argument is ignored on the identity path.
	for i := range host {
		host[i] = -99
	}
	v.TransferToHost(123.0)
	want := []int32{7, -3, 0, 12}
	for i := range want {
		if host[i] != want[i] {
			t.Errorf("host[%d] = %d, want %d", i, host[i], want[i])
		}
	}
	if v.ScaleFactor() != 1.0 {
		t.Errorf("identity scale = %v, want 1.0", v.ScaleFactor())
	}
}

func TestVectorDeviceBufferReused(t *testing.T) {
	v, err := NewVector[float32, int8](testGeom, 4)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	v.TransferToDevice()
	first := &v.Device().Data()[0]
	copy(v.Host(), []float32{1, 2, 3, 4})
	v.TransferToDevice()
	if first != &v.Device().Data()[0] {
		t.Error("TransferToDevice should reuse the device buffer")
	}
	if v.Device().AsInt8()[3] != 127 {
		t.Errorf("dev[3] = %d, want 127 after requantize", v.Device().AsInt8()[3])
	}
}

func TestWrapVectorAliasesCaller(t *testing.T) {
	host := make([]float32, 4)
	v, err := WrapVector[float32, int32](testGeom, host)
	if err != nil {
		t.Fatalf("WrapVector: %v", err)
	}
	if v.Owned() {
		t.Error("wrapped vector should not own the host buffer")
	}
	v.Device().AsInt32()[0] = 50
	v.TransferToHost(0.5)
	if host[0] != 25 {
		t.Errorf("caller slice = %v, want dequantized 25", host[0])
	}
}

func TestVectorShapeExceedsDevice(t *testing.T) {
	_, err := WrapVector[float32, int8](testGeom, make([]float32, 7))
	if !errors.Is(err, ErrShapeExceedsDevice) {
		t.Errorf("err = %v, want ErrShapeExceedsDevice", err)
	}
}

func TestNonFloatQuantizeRejectedAtConstruction(t *testing.T) {
	if _, err := NewVector[int32, int8](testGeom, 4); !errors.Is(err, ErrNonFloatQuantize) {
		t.Errorf("int host, narrower int device: err = %v, want ErrNonFloatQuantize", err)
	}
	if _, err := NewMatrix[float32, float64](testGeom, 2, 2); !errors.Is(err, ErrNonFloatQuantize) {
		t.Errorf("float host, float device of different width: err = %v, want ErrNonFloatQuantize", err)
	}
}

func TestMatrixQuantize(t *testing.T) {
	host := [][]float32{
		{3, 3, 3, 3},
		{3, 3, 3, 3},
		{3, 3, 3, 3},
	}
	m, err := WrapMatrix[float32, int8](testGeom, host)
	if err != nil {
		t.Fatalf("WrapMatrix: %v", err)
	}
	m.TransferToDevice()

	want := 3.0 / 127
	if got := m.ScaleFactor(); math.Abs(got-want) > 1e-12 {
		t.Errorf("effective scale = %v, want %v", got, want)
	}
	dev := m.Device().AsInt8()
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			if dev[i*testGeom.Cols+j] != 127 {
				t.Errorf("dev[%d,%d] = %d, want 127", i, j, dev[i*testGeom.Cols+j])
			}
		}
	}
	// Rows and columns beyond the host shape stay zero.
	for j := 4; j < testGeom.Cols; j++ {
		if dev[j] != 0 {
			t.Errorf("padding col %d = %d, want 0", j, dev[j])
		}
	}
	for j := 0; j < testGeom.Cols; j++ {
		if dev[3*testGeom.Cols+j] != 0 {
			t.Errorf("padding row 3 col %d = %d, want 0", j, dev[3*testGeom.Cols+j])
		}
	}
}

func TestMatrixAllZeroScale(t *testing.T) {
	m, err := NewMatrix[float32, int16](testGeom, 2, 2)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	m.TransferToDevice()
	_, max := Int16.Limits()
	if got := m.ScaleFactor(); got != 1.0/max {
		t.Errorf("all-zero effective scale = %v, want %v", got, 1.0/max)
	}
	for i, q := range m.Device().AsInt16() {
		if q != 0 {
			t.Errorf("dev[%d] = %d, want 0", i, q)
		}
	}
}

func TestMatrixShapeValidation(t *testing.T) {
	if _, err := NewMatrix[float32, int8](testGeom, 6, 4); !errors.Is(err, ErrShapeExceedsDevice) {
		t.Errorf("too many rows: err = %v, want ErrShapeExceedsDevice", err)
	}
	if _, err := NewMatrix[float32, int8](testGeom, 3, 7); !errors.Is(err, ErrShapeExceedsDevice) {
		t.Errorf("too many cols: err = %v, want ErrShapeExceedsDevice", err)
	}
	ragged := [][]float32{{1, 2}, {1}}
	if _, err := WrapMatrix[float32, int8](testGeom, ragged); err == nil {
		t.Error("ragged host matrix should be rejected")
	}
}

func TestQuantizeSaturatesMixedMagnitudes(t *testing.T) {
	// 0.005 quantizes to round(0.005/10*127) = 0; the max maps to 127.
	v, err := WrapVector[float64, int8](testGeom, []float64{10.0, -10.0, 0.005})
	if err != nil {
		t.Fatalf("WrapVector: %v", err)
	}
	v.TransferToDevice()
	dev := v.Device().AsInt8()
	if dev[0] != 127 || dev[1] != -127 || dev[2] != 0 {
		t.Errorf("dev = %v, want [127 -127 0 ...]", dev[:3])
	}
}
