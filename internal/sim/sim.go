// Package sim provides a software reference implementation of the
// accelerator's instruction set, for tests and development without
// hardware. Fixed-point tiles accumulate exact integer dot products in
// device units; float passthrough tiles multiply through gonum.
package sim

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/analog-ml/crossbar/internal/analog"
)

// Status values reported by the simulated hardware. The driver does not
// interpret these; tests match on them directly.
const (
	StatusBadTile   analog.Status = 0x0001
	StatusNoOperand analog.Status = 0x0002
	StatusBadBuffer analog.Status = 0x0003
)

// tile is one simulated compute slot. Operands are held in device units
// as float64: exact for every representable int32 product and sum at
// the supported geometries.
type tile struct {
	matrix   *analog.Raw
	in       []float64
	acc      []float64
	computed bool
}

// Simulator implements analog.ISA in software.
type Simulator struct {
	geom  analog.Geometry
	tiles []tile
	log   zerolog.Logger
	fault func(op analog.Op, tile analog.TileID) analog.Status
}

var _ analog.ISA = (*Simulator)(nil)

// New creates a simulator with numTiles tiles of the given geometry.
func New(geom analog.Geometry, numTiles int) *Simulator {
	return &Simulator{
		geom:  geom,
		tiles: make([]tile, numTiles),
		log:   zerolog.Nop(),
	}
}

// SetLogger enables per-instruction debug logging.
func (s *Simulator) SetLogger(log zerolog.Logger) {
	s.log = log
}

// InjectFault installs a hook consulted before every instruction; a
// non-zero return is reported to the driver instead of executing.
func (s *Simulator) InjectFault(f func(op analog.Op, tile analog.TileID) analog.Status) {
	s.fault = f
}

// enter consults the fault hook exactly once per instruction and
// resolves the tile register file.
func (s *Simulator) enter(op analog.Op, id analog.TileID) (*tile, analog.Status) {
	if s.fault != nil {
		if st := s.fault(op, id); st != analog.StatusOK {
			return nil, st
		}
	}
	return s.tileAt(id)
}

func (s *Simulator) tileAt(id analog.TileID) (*tile, analog.Status) {
	if int(id) >= len(s.tiles) {
		return nil, StatusBadTile
	}
	return &s.tiles[id], analog.StatusOK
}

// SetMatrix makes the staged matrix resident on the tile.
func (s *Simulator) SetMatrix(m *analog.Raw, id analog.TileID) analog.Status {
	t, st := s.enter(analog.OpSetMatrix, id)
	if st != analog.StatusOK {
		return st
	}
	if m == nil || m.Rows() != s.geom.Rows || m.Cols() != s.geom.Cols {
		return StatusBadBuffer
	}
	t.matrix = m
	t.acc = nil
	t.computed = false
	s.log.Debug().Uint16("tile", uint16(id)).Str("dtype", m.DType().String()).Msg("matrix resident")
	return analog.StatusOK
}

// LoadVector latches the staged vector as the tile's MVM input.
func (s *Simulator) LoadVector(v *analog.Raw, id analog.TileID) analog.Status {
	t, st := s.enter(analog.OpLoadVector, id)
	if st != analog.StatusOK {
		return st
	}
	if v == nil || v.NumElements() != s.geom.Cols {
		return StatusBadBuffer
	}
	t.in = toFloat64(v)
	t.computed = false
	s.log.Debug().Uint16("tile", uint16(id)).Msg("vector loaded")
	return analog.StatusOK
}

// Compute performs one MVM pass in device units.
func (s *Simulator) Compute(id analog.TileID) analog.Status {
	t, st := s.enter(analog.OpCompute, id)
	if st != analog.StatusOK {
		return st
	}
	if t.matrix == nil || t.in == nil {
		return StatusNoOperand
	}
	md := toFloat64(t.matrix)
	if t.matrix.DType().Integral() {
		// Exact integer accumulate, as the crossbar ADC would report.
		acc := make([]int64, s.geom.Rows)
		for i := 0; i < s.geom.Rows; i++ {
			var sum int64
			for j := 0; j < s.geom.Cols; j++ {
				sum += int64(md[i*s.geom.Cols+j]) * int64(t.in[j])
			}
			acc[i] = sum
		}
		t.acc = make([]float64, s.geom.Rows)
		for i, v := range acc {
			t.acc[i] = float64(v)
		}
	} else {
		dense := mat.NewDense(s.geom.Rows, s.geom.Cols, md)
		var y mat.VecDense
		y.MulVec(dense, mat.NewVecDense(s.geom.Cols, t.in))
		t.acc = make([]float64, s.geom.Rows)
		copy(t.acc, y.RawVector().Data)
	}
	t.computed = true
	s.log.Debug().Uint16("tile", uint16(id)).Msg("mvm pass complete")
	return analog.StatusOK
}

// StoreVector writes the tile's result registers into the staging
// buffer, saturating into its element type.
func (s *Simulator) StoreVector(out *analog.Raw, id analog.TileID) analog.Status {
	t, st := s.enter(analog.OpStoreVector, id)
	if st != analog.StatusOK {
		return st
	}
	if !t.computed {
		return StatusNoOperand
	}
	// The result register holds one value per device row; a staging
	// buffer that cannot hold them all would silently drop rows.
	if out == nil || out.NumElements() < len(t.acc) {
		return StatusBadBuffer
	}
	vals := make([]float64, out.NumElements())
	copy(vals, t.acc)
	fromFloat64(vals, out)
	s.log.Debug().Uint16("tile", uint16(id)).Msg("result stored")
	return analog.StatusOK
}

// MoveVector copies src's result registers into dst's input register.
func (s *Simulator) MoveVector(src, dst analog.TileID) analog.Status {
	ts, st := s.enter(analog.OpMoveVector, src)
	if st != analog.StatusOK {
		return st
	}
	td, stDst := s.tileAt(dst)
	if stDst != analog.StatusOK {
		return stDst
	}
	if !ts.computed {
		return StatusNoOperand
	}
	// The input register is Cols wide; a taller result cannot chain.
	if len(ts.acc) > s.geom.Cols {
		return StatusBadBuffer
	}
	in := make([]float64, s.geom.Cols)
	copy(in, ts.acc)
	td.in = in
	td.computed = false
	s.log.Debug().Uint16("src", uint16(src)).Uint16("dst", uint16(dst)).Msg("result chained")
	return analog.StatusOK
}

// toFloat64 widens a device buffer to float64 values.
func toFloat64(r *analog.Raw) []float64 {
	out := make([]float64, r.NumElements())
	switch r.DType() {
	case analog.Int8:
		for i, v := range r.AsInt8() {
			out[i] = float64(v)
		}
	case analog.Int16:
		for i, v := range r.AsInt16() {
			out[i] = float64(v)
		}
	case analog.Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case analog.Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case analog.Float64:
		copy(out, r.AsFloat64())
	}
	return out
}

// fromFloat64 narrows device-unit values into a buffer, saturating
// fixed-point types at their limits.
func fromFloat64(vals []float64, r *analog.Raw) {
	clampTo := func(v float64) float64 {
		min, max := r.DType().Limits()
		return math.Min(math.Max(v, min), max)
	}
	switch r.DType() {
	case analog.Int8:
		dst := r.AsInt8()
		for i, v := range vals {
			dst[i] = int8(clampTo(v))
		}
	case analog.Int16:
		dst := r.AsInt16()
		for i, v := range vals {
			dst[i] = int16(clampTo(v))
		}
	case analog.Int32:
		dst := r.AsInt32()
		for i, v := range vals {
			dst[i] = int32(clampTo(v))
		}
	case analog.Float32:
		dst := r.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case analog.Float64:
		copy(r.AsFloat64(), vals)
	}
}
