package analog

// TileID addresses one hardware tile slot.
type TileID uint16

// Status is the raw flag returned by every hardware instruction. Zero is
// success; any other value is hardware-defined and the driver propagates
// it uninterpreted.
type Status uint16

// StatusOK is the only status value the driver assigns meaning to.
const StatusOK Status = 0

// Op identifies one of the five hardware instructions.
type Op int

// The instruction set of one tile generation.
const (
	OpSetMatrix Op = iota
	OpLoadVector
	OpCompute
	OpStoreVector
	OpMoveVector
)

// String returns the mnemonic of the instruction.
func (op Op) String() string {
	switch op {
	case OpSetMatrix:
		return "mvm.set"
	case OpLoadVector:
		return "mvm.l"
	case OpCompute:
		return "mvm"
	case OpStoreVector:
		return "mvm.s"
	case OpMoveVector:
		return "mvm.mv"
	default:
		return "unknown"
	}
}

// ISA is the instruction-issue boundary to the accelerator. Each method
// issues exactly one hardware instruction and blocks until the tile has
// completed it. There is no timeout or cancellation: a hung
// implementation blocks the caller indefinitely. The driver treats any
// non-zero status as an uninterpreted failure and never retries.
//
// Implementations:
//   - internal/sim: software reference implementation
//   - trace.Recorder: decorator recording the instruction stream
type ISA interface {
	// SetMatrix makes the staged matrix resident on the tile.
	SetMatrix(m *Raw, tile TileID) Status

	// LoadVector loads the staged vector as the tile's MVM input.
	LoadVector(v *Raw, tile TileID) Status

	// Compute performs one MVM pass on the tile.
	Compute(tile TileID) Status

	// StoreVector writes the tile's result into the staging buffer.
	StoreVector(out *Raw, tile TileID) Status

	// MoveVector feeds src's result to dst as its next input without a
	// host round trip.
	MoveVector(src, dst TileID) Status
}
