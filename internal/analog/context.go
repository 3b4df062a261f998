package analog

import "fmt"

// TileState is the lifecycle position of one tile slot.
type TileState int

// Tile slot states. Stored and Chained slots remain readable (their
// output scale can still be queried) but cannot serve as a compute
// source without reloading.
const (
	TileEmpty TileState = iota
	TileMatrixResident
	TileVectorLoaded
	TileComputed
	TileStored
	TileChained
)

// String returns a human-readable state name.
func (s TileState) String() string {
	switch s {
	case TileEmpty:
		return "empty"
	case TileMatrixResident:
		return "matrix-resident"
	case TileVectorLoaded:
		return "vector-loaded"
	case TileComputed:
		return "computed"
	case TileStored:
		return "stored"
	case TileChained:
		return "chained"
	default:
		return "unknown"
	}
}

// tileSlot is the bookkeeping record for one hardware tile. Scales are
// captured as scalars when the tensors are recorded, so chained moves
// never mutate caller-owned containers.
type tileSlot struct {
	state    TileState
	matrix   Scaled
	vector   Scaled
	matScale float64
	vecScale float64
	outScale float64
}

// Context tracks, for a fixed number of hardware tiles, which matrix
// and input vector are resident and the scale factors needed to
// interpret computed results. It holds references only; tensor data is
// never copied and never owned.
//
// A Context assumes a single controlling goroutine. Concurrent use must
// be serialized by the caller.
type Context struct {
	slots []tileSlot
}

// NewContext creates a Context for numTiles hardware tile slots.
func NewContext(numTiles int) (*Context, error) {
	if numTiles <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoTiles, numTiles)
	}
	slots := make([]tileSlot, numTiles)
	for i := range slots {
		slots[i] = tileSlot{matScale: 1.0, vecScale: 1.0, outScale: 1.0}
	}
	return &Context{slots: slots}, nil
}

// NumTiles returns the number of tile slots.
func (c *Context) NumTiles() int { return len(c.slots) }

func (c *Context) slot(tile TileID) (*tileSlot, error) {
	if int(tile) >= len(c.slots) {
		return nil, fmt.Errorf("%w: tile %d of %d", ErrTileOutOfRange, tile, len(c.slots))
	}
	return &c.slots[tile], nil
}

// State returns the slot's current state.
func (c *Context) State(tile TileID) (TileState, error) {
	s, err := c.slot(tile)
	if err != nil {
		return TileEmpty, err
	}
	return s.state, nil
}

// SetMatrix records m as the tile's resident matrix, capturing its
// effective scale. Allowed in any state: overwriting is idempotent and
// discards any loaded vector or computed result.
func (c *Context) SetMatrix(tile TileID, m Scaled) error {
	s, err := c.slot(tile)
	if err != nil {
		return err
	}
	*s = tileSlot{
		state:    TileMatrixResident,
		matrix:   m,
		matScale: m.ScaleFactor(),
		vecScale: 1.0,
		outScale: 1.0,
	}
	return nil
}

// Matrix returns the tile's resident matrix.
func (c *Context) Matrix(tile TileID) (Scaled, error) {
	s, err := c.slot(tile)
	if err != nil {
		return nil, err
	}
	if s.matrix == nil {
		return nil, fmt.Errorf("%w: tile %d", ErrNoMatrix, tile)
	}
	return s.matrix, nil
}

// LoadVector records v as the tile's MVM input, capturing its effective
// scale. Requires a resident matrix.
func (c *Context) LoadVector(tile TileID, v Scaled) error {
	s, err := c.slot(tile)
	if err != nil {
		return err
	}
	if s.matrix == nil {
		return fmt.Errorf("%w: tile %d", ErrNoMatrix, tile)
	}
	s.vector = v
	s.vecScale = v.ScaleFactor()
	s.outScale = 1.0
	s.state = TileVectorLoaded
	return nil
}

// InputVector returns the tile's loaded input vector.
func (c *Context) InputVector(tile TileID) (Scaled, error) {
	s, err := c.slot(tile)
	if err != nil {
		return nil, err
	}
	if s.vector == nil {
		return nil, fmt.Errorf("%w: tile %d", ErrNoVector, tile)
	}
	return s.vector, nil
}

// Compute derives the tile's output scale as the product of the
// resident matrix's and input vector's scales. One MVM pass multiplies
// the two quantized operands, so their implicit scales multiply.
func (c *Context) Compute(tile TileID) error {
	s, err := c.slot(tile)
	if err != nil {
		return err
	}
	if s.state != TileVectorLoaded {
		return fmt.Errorf("%w: tile %d is %s", ErrNoVector, tile, s.state)
	}
	s.outScale = s.matScale * s.vecScale
	s.state = TileComputed
	return nil
}

// OutputScale returns the dequantization multiplier for the tile's
// computed result. Valid from Computed onward, including drained slots.
func (c *Context) OutputScale(tile TileID) (float64, error) {
	s, err := c.slot(tile)
	if err != nil {
		return 0, err
	}
	switch s.state {
	case TileComputed, TileStored, TileChained:
		return s.outScale, nil
	default:
		return 0, fmt.Errorf("%w: tile %d is %s", ErrNotComputed, tile, s.state)
	}
}

// MarkStored drains the tile after its result has been read back. The
// slot stays readable but cannot compute again without a new vector.
func (c *Context) MarkStored(tile TileID) error {
	s, err := c.slot(tile)
	if err != nil {
		return err
	}
	if s.state != TileComputed {
		return fmt.Errorf("%w: tile %d is %s", ErrNotComputed, tile, s.state)
	}
	s.state = TileStored
	return nil
}

// MoveVector transplants src's post-compute result into dst's input
// slot: dst inherits src's output scale as its input-vector scale along
// with the vector reference, enabling on-device chaining without a host
// round trip. Requires a computed result on src and a resident matrix
// on dst. src is left chained and cannot compute again without
// reloading.
func (c *Context) MoveVector(src, dst TileID) error {
	ss, err := c.slot(src)
	if err != nil {
		return err
	}
	ds, err := c.slot(dst)
	if err != nil {
		return err
	}
	if ss.state != TileComputed {
		return fmt.Errorf("%w: tile %d is %s", ErrNotComputed, src, ss.state)
	}
	if ds.matrix == nil {
		return fmt.Errorf("%w: tile %d", ErrNoMatrix, dst)
	}
	ds.vector = ss.vector
	ds.vecScale = ss.outScale
	ds.outScale = 1.0
	ds.state = TileVectorLoaded
	ss.state = TileChained
	return nil
}
