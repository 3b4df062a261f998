package analog

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Driver sequences hardware operations against a Context. Each of the
// five operations performs the host-side codec step, the Context
// bookkeeping, and the hardware invocation in that fixed order
// (StoreVector inverts it: the data must arrive before it can be
// dequantized). Every call is synchronous and issued exactly once; the
// status flag is returned alongside the error so callers see the raw
// hardware value even on failure.
type Driver struct {
	isa ISA
	ctx *Context
	log zerolog.Logger
}

// NewDriver creates a Driver issuing instructions through isa and
// tracking tile state in ctx. Logging is disabled until SetLogger.
func NewDriver(isa ISA, ctx *Context) *Driver {
	return &Driver{isa: isa, ctx: ctx, log: zerolog.Nop()}
}

// SetLogger enables per-operation debug logging.
func (d *Driver) SetLogger(log zerolog.Logger) {
	d.log = log
}

// Context returns the Driver's tile bookkeeping.
func (d *Driver) Context() *Context { return d.ctx }

// issued records one completed hardware invocation.
func (d *Driver) issued(op Op, tile TileID, st Status) error {
	opsIssued.WithLabelValues(op.String()).Inc()
	d.log.Debug().Str("op", op.String()).Uint16("tile", uint16(tile)).
		Uint16("status", uint16(st)).Msg("instruction issued")
	if st != StatusOK {
		hardwareFailures.Inc()
		return &HardwareError{Op: op, Tile: tile, Status: st}
	}
	return nil
}

// SetMatrix quantizes m to the device, records it on the tile, and makes
// it resident in hardware.
func SetMatrix[T Elem, Q Quant](d *Driver, tile TileID, m *Matrix[T, Q]) (Status, error) {
	m.TransferToDevice()
	if err := d.ctx.SetMatrix(tile, m); err != nil {
		return StatusOK, fmt.Errorf("set matrix: %w", err)
	}
	st := d.isa.SetMatrix(m.Device(), tile)
	return st, d.issued(OpSetMatrix, tile, st)
}

// LoadVector quantizes v to the device, records it as the tile's input,
// and loads it in hardware.
func LoadVector[T Elem, Q Quant](d *Driver, tile TileID, v *Vector[T, Q]) (Status, error) {
	v.TransferToDevice()
	if err := d.ctx.LoadVector(tile, v); err != nil {
		return StatusOK, fmt.Errorf("load vector: %w", err)
	}
	st := d.isa.LoadVector(v.Device(), tile)
	return st, d.issued(OpLoadVector, tile, st)
}

// Compute performs one MVM pass on the tile. The output scale is derived
// only after the hardware reports success, so a failed pass leaves the
// slot's scales untouched.
func Compute(d *Driver, tile TileID) (Status, error) {
	state, err := d.ctx.State(tile)
	if err != nil {
		return StatusOK, fmt.Errorf("compute: %w", err)
	}
	if state != TileVectorLoaded {
		return StatusOK, fmt.Errorf("compute: %w: tile %d is %s", ErrNoVector, tile, state)
	}
	st := d.isa.Compute(tile)
	if err := d.issued(OpCompute, tile, st); err != nil {
		return st, err
	}
	if err := d.ctx.Compute(tile); err != nil {
		return st, fmt.Errorf("compute: %w", err)
	}
	return st, nil
}

// StoreVector reads the tile's result into out's device buffer, then
// dequantizes it to the host using the tile's derived output scale.
// Only a computed tile can be stored: drained and chained slots keep
// their output scale readable but no longer hold a storable result.
func StoreVector[T Elem, Q Quant](d *Driver, tile TileID, out *Vector[T, Q]) (Status, error) {
	state, err := d.ctx.State(tile)
	if err != nil {
		return StatusOK, fmt.Errorf("store vector: %w", err)
	}
	if state != TileComputed {
		return StatusOK, fmt.Errorf("store vector: %w: tile %d is %s", ErrNotComputed, tile, state)
	}
	scale, err := d.ctx.OutputScale(tile)
	if err != nil {
		return StatusOK, fmt.Errorf("store vector: %w", err)
	}
	st := d.isa.StoreVector(out.Device(), tile)
	if err := d.issued(OpStoreVector, tile, st); err != nil {
		return st, err
	}
	out.TransferToHost(scale)
	if err := d.ctx.MarkStored(tile); err != nil {
		return st, fmt.Errorf("store vector: %w", err)
	}
	return st, nil
}

// MoveVector chains src's result into dst as its next input without a
// host round trip.
func MoveVector(d *Driver, src, dst TileID) (Status, error) {
	if err := d.ctx.MoveVector(src, dst); err != nil {
		return StatusOK, fmt.Errorf("move vector: %w", err)
	}
	st := d.isa.MoveVector(src, dst)
	opsIssued.WithLabelValues(OpMoveVector.String()).Inc()
	d.log.Debug().Str("op", OpMoveVector.String()).Uint16("src", uint16(src)).
		Uint16("dst", uint16(dst)).Uint16("status", uint16(st)).Msg("instruction issued")
	if st != StatusOK {
		hardwareFailures.Inc()
		return st, &HardwareError{Op: OpMoveVector, Tile: src, Status: st}
	}
	return st, nil
}
