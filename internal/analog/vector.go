package analog

import "fmt"

// Vector stages one host vector for loading into, or storing out of, a
// tile. The device side is always Geometry.Cols elements in the
// quantized type regardless of the host length.
type Vector[T Elem, Q Quant] struct {
	host  []T
	dev   *Raw
	mode  transferMode
	raw   float64 // raw scale from the last quantizing transfer
	owned bool
}

func newVector[T Elem, Q Quant](geom Geometry, host []T, owned bool) (*Vector[T, Q], error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}
	if len(host) > geom.Cols {
		return nil, fmt.Errorf("%w: vector length %d, device %d",
			ErrShapeExceedsDevice, len(host), geom.Cols)
	}
	var ht T
	var dt Q
	mode, err := modeFor(inferDataType(ht), inferDataType(dt))
	if err != nil {
		return nil, err
	}
	return &Vector[T, Q]{
		host:  host,
		dev:   newRaw(1, geom.Cols, inferDataType(dt)),
		mode:  mode,
		raw:   1.0,
		owned: owned,
	}, nil
}

// NewVector creates an owning vector: host storage is allocated by the
// container and zero-initialized.
func NewVector[T Elem, Q Quant](geom Geometry, length int) (*Vector[T, Q], error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: vector length %d", ErrShapeExceedsDevice, length)
	}
	return newVector[T, Q](geom, make([]T, length), true)
}

// WrapVector creates a borrowing vector over a caller-owned slice. The
// caller keeps ownership and must keep it alive for at least the
// container's lifetime; transfers to host are visible through the
// caller's slice.
func WrapVector[T Elem, Q Quant](geom Geometry, host []T) (*Vector[T, Q], error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("%w: empty host vector", ErrShapeExceedsDevice)
	}
	return newVector[T, Q](geom, host, false)
}

// TransferToDevice (re)populates the device buffer from the host vector
// and updates the stored scale. The device buffer is reused across
// calls; padding beyond the host length stays zero.
func (v *Vector[T, Q]) TransferToDevice() {
	dev := view[Q](v.dev)
	if v.mode == modeDirect {
		copySlice(v.host, dev[:len(v.host)])
		return
	}
	quantizeTransfers.Inc()
	min, max := v.dev.DType().Limits()
	v.raw = quantizeSlice(v.host, dev[:len(v.host)], min, max)
}

// TransferToHost fills the host vector from the device buffer, applying
// the given dequantization scale. On the identity path the scale is
// ignored. The scale must be the one the Context derived for the
// producing tile or the values are silently wrong.
func (v *Vector[T, Q]) TransferToHost(scale float64) {
	dev := view[Q](v.dev)
	if v.mode == modeDirect {
		copyBackSlice(dev[:len(v.host)], v.host)
		return
	}
	dequantizeSlice(dev[:len(v.host)], v.host, scale)
}

// Device returns the device staging buffer passed to the hardware.
func (v *Vector[T, Q]) Device() *Raw { return v.dev }

// ScaleFactor returns the effective scale of the device values.
func (v *Vector[T, Q]) ScaleFactor() float64 {
	if v.mode == modeDirect {
		return v.raw
	}
	_, max := v.dev.DType().Limits()
	return v.raw / max
}

// Host returns the host slice. For owning vectors this is the
// container's storage; for borrowing ones it aliases the caller's.
func (v *Vector[T, Q]) Host() []T { return v.host }

// Len returns the host length.
func (v *Vector[T, Q]) Len() int { return len(v.host) }

// Owned reports whether the container allocated the host storage.
func (v *Vector[T, Q]) Owned() bool { return v.owned }
