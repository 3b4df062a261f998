package analog

import "fmt"

// Matrix stages one host matrix for residency on a tile. The host side
// is row-major via row slices; the device side is a fixed Geometry.Rows
// x Geometry.Cols buffer in the quantized type, zero-padded beyond the
// host shape.
type Matrix[T Elem, Q Quant] struct {
	host  [][]T
	rows  int
	cols  int
	dev   *Raw
	mode  transferMode
	raw   float64 // raw scale from the last quantizing transfer
	owned bool
}

func newMatrix[T Elem, Q Quant](geom Geometry, host [][]T, rows, cols int, owned bool) (*Matrix[T, Q], error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}
	if rows > geom.Rows || cols > geom.Cols {
		return nil, fmt.Errorf("%w: matrix %dx%d, device %dx%d",
			ErrShapeExceedsDevice, rows, cols, geom.Rows, geom.Cols)
	}
	var ht T
	var dt Q
	mode, err := modeFor(inferDataType(ht), inferDataType(dt))
	if err != nil {
		return nil, err
	}
	return &Matrix[T, Q]{
		host:  host,
		rows:  rows,
		cols:  cols,
		dev:   newRaw(geom.Rows, geom.Cols, inferDataType(dt)),
		mode:  mode,
		raw:   1.0,
		owned: owned,
	}, nil
}

// NewMatrix creates an owning matrix: host storage is allocated by the
// container and zero-initialized.
func NewMatrix[T Elem, Q Quant](geom Geometry, rows, cols int) (*Matrix[T, Q], error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: matrix %dx%d", ErrShapeExceedsDevice, rows, cols)
	}
	host := make([][]T, rows)
	for i := range host {
		host[i] = make([]T, cols)
	}
	return newMatrix[T, Q](geom, host, rows, cols, true)
}

// WrapMatrix creates a borrowing matrix over caller-owned row slices.
// The caller keeps ownership and must keep the rows alive for at least
// the container's lifetime. All rows must have the same length.
func WrapMatrix[T Elem, Q Quant](geom Geometry, host [][]T) (*Matrix[T, Q], error) {
	if len(host) == 0 || len(host[0]) == 0 {
		return nil, fmt.Errorf("%w: empty host matrix", ErrShapeExceedsDevice)
	}
	cols := len(host[0])
	for i, row := range host {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged host matrix: row %d has %d elements, want %d", i, len(row), cols)
		}
	}
	return newMatrix[T, Q](geom, host, len(host), cols, false)
}

// TransferToDevice (re)populates the device buffer from the host matrix
// and updates the stored scale. The device buffer is reused across
// calls; padding beyond the host shape stays zero.
func (m *Matrix[T, Q]) TransferToDevice() {
	dev := view[Q](m.dev)
	stride := m.dev.Cols()
	if m.mode == modeDirect {
		for i, row := range m.host {
			copySlice(row, dev[i*stride:i*stride+m.cols])
		}
		return
	}

	quantizeTransfers.Inc()
	scale := 0.0
	for _, row := range m.host {
		if a := maxAbs(row); a > scale {
			scale = a
		}
	}
	if scale == 0 {
		scale = 1.0
	}
	m.raw = scale
	min, max := m.dev.DType().Limits()
	clipped := 0
	for i, row := range m.host {
		for j, v := range row {
			q, sat := clampRound(float64(v)/scale*max, min, max)
			if sat {
				clipped++
			}
			dev[i*stride+j] = Q(q)
		}
	}
	if clipped > 0 {
		saturatedElements.Add(float64(clipped))
	}
}

// Device returns the device staging buffer passed to the hardware.
func (m *Matrix[T, Q]) Device() *Raw { return m.dev }

// ScaleFactor returns the effective scale of the device values.
func (m *Matrix[T, Q]) ScaleFactor() float64 {
	if m.mode == modeDirect {
		return m.raw
	}
	_, max := m.dev.DType().Limits()
	return m.raw / max
}

// Host returns the host rows. For owning matrices this is the
// container's storage; for borrowing ones it aliases the caller's.
func (m *Matrix[T, Q]) Host() [][]T { return m.host }

// HostRows returns the host row count.
func (m *Matrix[T, Q]) HostRows() int { return m.rows }

// HostCols returns the host column count.
func (m *Matrix[T, Q]) HostCols() int { return m.cols }

// Owned reports whether the container allocated the host storage.
func (m *Matrix[T, Q]) Owned() bool { return m.owned }
