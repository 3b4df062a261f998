// Copyright 2025 Crossbar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package analog is the public API of the crossbar driver: quantized
// tensor containers, tile-state bookkeeping, and the five-operation
// sequencer over an opaque hardware instruction interface.
package analog

import (
	ianalog "github.com/analog-ml/crossbar/internal/analog"
)

// Type constraints for container element types.

// Elem is a constraint for host tensor element types.
type Elem = ianalog.Elem

// Quant is a constraint for device (quantized) element types.
type Quant = ianalog.Quant

// DataType represents runtime type information for device buffers.
type DataType = ianalog.DataType

// Supported device element types.
const (
	Int8    DataType = ianalog.Int8
	Int16   DataType = ianalog.Int16
	Int32   DataType = ianalog.Int32
	Float32 DataType = ianalog.Float32
	Float64 DataType = ianalog.Float64
)

// Geometry is the device-fixed staging shape of one tile, a
// hardware-generation constant supplied at configure time.
type Geometry = ianalog.Geometry

// DefaultGeometry matches the reference hardware generation.
var DefaultGeometry = ianalog.DefaultGeometry

// Raw is the device-native staging buffer handed across the ISA
// boundary.
type Raw = ianalog.Raw

// TileID addresses one hardware tile slot.
type TileID = ianalog.TileID

// Status is the raw flag returned by every hardware instruction; zero
// is success, anything else is hardware-defined.
type Status = ianalog.Status

// StatusOK is the only status value the driver assigns meaning to.
const StatusOK = ianalog.StatusOK

// Op identifies one of the five hardware instructions.
type Op = ianalog.Op

// The instruction set of one tile generation.
const (
	OpSetMatrix   Op = ianalog.OpSetMatrix
	OpLoadVector  Op = ianalog.OpLoadVector
	OpCompute     Op = ianalog.OpCompute
	OpStoreVector Op = ianalog.OpStoreVector
	OpMoveVector  Op = ianalog.OpMoveVector
)

// ISA is the instruction-issue boundary to the accelerator.
type ISA = ianalog.ISA

// Scaled is the view of a tensor container the Context tracks.
type Scaled = ianalog.Scaled

// TileState is the lifecycle position of one tile slot.
type TileState = ianalog.TileState

// Tile slot states.
const (
	TileEmpty          TileState = ianalog.TileEmpty
	TileMatrixResident TileState = ianalog.TileMatrixResident
	TileVectorLoaded   TileState = ianalog.TileVectorLoaded
	TileComputed       TileState = ianalog.TileComputed
	TileStored         TileState = ianalog.TileStored
	TileChained        TileState = ianalog.TileChained
)

// Matrix stages one host matrix for residency on a tile.
type Matrix[T Elem, Q Quant] = ianalog.Matrix[T, Q]

// Vector stages one host vector for loading into, or storing out of, a
// tile.
type Vector[T Elem, Q Quant] = ianalog.Vector[T, Q]

// Context tracks resident tensors and scale factors per tile slot.
type Context = ianalog.Context

// Driver sequences hardware operations against a Context.
type Driver = ianalog.Driver

// Sentinel errors; match with errors.Is. A non-zero hardware status is
// reported as a *HardwareError.
var (
	ErrTileOutOfRange     = ianalog.ErrTileOutOfRange
	ErrNoMatrix           = ianalog.ErrNoMatrix
	ErrNoVector           = ianalog.ErrNoVector
	ErrNotComputed        = ianalog.ErrNotComputed
	ErrShapeExceedsDevice = ianalog.ErrShapeExceedsDevice
	ErrNonFloatQuantize   = ianalog.ErrNonFloatQuantize
	ErrInvalidGeometry    = ianalog.ErrInvalidGeometry
	ErrNoTiles            = ianalog.ErrNoTiles
)

// HardwareError reports a non-zero status flag from the accelerator.
type HardwareError = ianalog.HardwareError

// Construction

// NewContext creates a Context for numTiles hardware tile slots.
func NewContext(numTiles int) (*Context, error) {
	return ianalog.NewContext(numTiles)
}

// NewDriver creates a Driver issuing instructions through isa and
// tracking tile state in ctx.
func NewDriver(isa ISA, ctx *Context) *Driver {
	return ianalog.NewDriver(isa, ctx)
}

// NewMatrix creates an owning matrix; host storage is allocated by the
// container.
func NewMatrix[T Elem, Q Quant](geom Geometry, rows, cols int) (*Matrix[T, Q], error) {
	return ianalog.NewMatrix[T, Q](geom, rows, cols)
}

// WrapMatrix creates a borrowing matrix over caller-owned row slices.
func WrapMatrix[T Elem, Q Quant](geom Geometry, host [][]T) (*Matrix[T, Q], error) {
	return ianalog.WrapMatrix[T, Q](geom, host)
}

// NewVector creates an owning vector; host storage is allocated by the
// container.
func NewVector[T Elem, Q Quant](geom Geometry, length int) (*Vector[T, Q], error) {
	return ianalog.NewVector[T, Q](geom, length)
}

// WrapVector creates a borrowing vector over a caller-owned slice.
func WrapVector[T Elem, Q Quant](geom Geometry, host []T) (*Vector[T, Q], error) {
	return ianalog.WrapVector[T, Q](geom, host)
}

// Operations. Each issues exactly one hardware instruction and returns
// the raw status flag alongside the driver error.

// SetMatrix quantizes m to the device, records it on the tile, and
// makes it resident in hardware.
func SetMatrix[T Elem, Q Quant](d *Driver, tile TileID, m *Matrix[T, Q]) (Status, error) {
	return ianalog.SetMatrix(d, tile, m)
}

// LoadVector quantizes v to the device, records it as the tile's input,
// and loads it in hardware.
func LoadVector[T Elem, Q Quant](d *Driver, tile TileID, v *Vector[T, Q]) (Status, error) {
	return ianalog.LoadVector(d, tile, v)
}

// Compute performs one MVM pass on the tile and derives its output
// scale.
func Compute(d *Driver, tile TileID) (Status, error) {
	return ianalog.Compute(d, tile)
}

// StoreVector reads the tile's result into out and dequantizes it using
// the tile's output scale.
func StoreVector[T Elem, Q Quant](d *Driver, tile TileID, out *Vector[T, Q]) (Status, error) {
	return ianalog.StoreVector(d, tile, out)
}

// MoveVector chains src's result into dst as its next input without a
// host round trip.
func MoveVector(d *Driver, src, dst TileID) (Status, error) {
	return ianalog.MoveVector(d, src, dst)
}
