package analog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeISA records issued instructions and returns scripted statuses.
type fakeISA struct {
	calls     []string
	statuses  map[Op]Status
	storeFill []int32 // written into the out buffer on StoreVector
}

func (f *fakeISA) status(op Op) Status {
	if f.statuses == nil {
		return StatusOK
	}
	return f.statuses[op]
}

func (f *fakeISA) SetMatrix(m *Raw, tile TileID) Status {
	f.calls = append(f.calls, fmt.Sprintf("set:%d", tile))
	return f.status(OpSetMatrix)
}

func (f *fakeISA) LoadVector(v *Raw, tile TileID) Status {
	f.calls = append(f.calls, fmt.Sprintf("load:%d", tile))
	return f.status(OpLoadVector)
}

func (f *fakeISA) Compute(tile TileID) Status {
	f.calls = append(f.calls, fmt.Sprintf("compute:%d", tile))
	return f.status(OpCompute)
}

func (f *fakeISA) StoreVector(out *Raw, tile TileID) Status {
	f.calls = append(f.calls, fmt.Sprintf("store:%d", tile))
	copy(out.AsInt32(), f.storeFill)
	return f.status(OpStoreVector)
}

func (f *fakeISA) MoveVector(src, dst TileID) Status {
	f.calls = append(f.calls, fmt.Sprintf("move:%d:%d", src, dst))
	return f.status(OpMoveVector)
}

func newTestDriver(t *testing.T, isa ISA, tiles int) *Driver {
	t.Helper()
	ctx, err := NewContext(tiles)
	require.NoError(t, err)
	return NewDriver(isa, ctx)
}

func loadedPair(t *testing.T) (*Matrix[float32, int8], *Vector[float32, int8]) {
	t.Helper()
	m, err := WrapMatrix[float32, int8](testGeom, [][]float32{{3, 3}, {3, 3}})
	require.NoError(t, err)
	v, err := WrapVector[float32, int8](testGeom, []float32{2, 2})
	require.NoError(t, err)
	return m, v
}

func TestDriverSequencesOneInstructionPerOp(t *testing.T) {
	fake := &fakeISA{storeFill: []int32{10, 20}}
	d := newTestDriver(t, fake, 1)
	m, v := loadedPair(t)
	out, err := NewVector[float32, int32](testGeom, 2)
	require.NoError(t, err)

	_, err = SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = LoadVector(d, 0, v)
	require.NoError(t, err)
	_, err = Compute(d, 0)
	require.NoError(t, err)
	_, err = StoreVector(d, 0, out)
	require.NoError(t, err)

	assert.Equal(t, []string{"set:0", "load:0", "compute:0", "store:0"}, fake.calls)

	// The stored result was dequantized with the tile's derived scale,
	// proving the hardware call preceded the host transfer.
	scale := m.ScaleFactor() * v.ScaleFactor()
	assert.InDelta(t, float64(10)*scale, float64(out.Host()[0]), 1e-6)
	assert.InDelta(t, float64(20)*scale, float64(out.Host()[1]), 1e-6)

	state, _ := d.Context().State(0)
	assert.Equal(t, TileStored, state)
}

func TestDriverPreconditionFailureSkipsHardware(t *testing.T) {
	fake := &fakeISA{}
	d := newTestDriver(t, fake, 1)
	_, v := loadedPair(t)

	_, err := LoadVector(d, 0, v)
	assert.ErrorIs(t, err, ErrNoMatrix)
	_, err = Compute(d, 0)
	assert.ErrorIs(t, err, ErrNoVector)
	out, errOut := NewVector[float32, int32](testGeom, 2)
	require.NoError(t, errOut)
	_, err = StoreVector(d, 0, out)
	assert.ErrorIs(t, err, ErrNotComputed)
	_, err = MoveVector(d, 0, 0)
	assert.ErrorIs(t, err, ErrNotComputed)

	assert.Empty(t, fake.calls, "no instruction may reach the hardware")
}

func TestDriverOutOfRangeTile(t *testing.T) {
	fake := &fakeISA{}
	d := newTestDriver(t, fake, 1)
	m, _ := loadedPair(t)

	_, err := SetMatrix(d, 5, m)
	assert.ErrorIs(t, err, ErrTileOutOfRange)
	_, err = Compute(d, 5)
	assert.ErrorIs(t, err, ErrTileOutOfRange)
	assert.Empty(t, fake.calls)
}

func TestDriverPropagatesHardwareStatus(t *testing.T) {
	fake := &fakeISA{statuses: map[Op]Status{OpCompute: 0xBEEF}}
	d := newTestDriver(t, fake, 1)
	m, v := loadedPair(t)

	_, err := SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = LoadVector(d, 0, v)
	require.NoError(t, err)

	st, err := Compute(d, 0)
	assert.Equal(t, Status(0xBEEF), st, "raw status is returned uninterpreted")

	var hwErr *HardwareError
	require.ErrorAs(t, err, &hwErr)
	assert.Equal(t, OpCompute, hwErr.Op)
	assert.Equal(t, Status(0xBEEF), hwErr.Status)

	// Exactly one issue attempt: the driver never retries.
	assert.Equal(t, []string{"set:0", "load:0", "compute:0"}, fake.calls)

	// A failed pass does not transition the slot.
	state, _ := d.Context().State(0)
	assert.Equal(t, TileVectorLoaded, state)
	_, err = d.Context().OutputScale(0)
	assert.ErrorIs(t, err, ErrNotComputed)
}

func TestDriverStoreOnDrainedTileSkipsHardware(t *testing.T) {
	fake := &fakeISA{storeFill: []int32{10, 20}}
	d := newTestDriver(t, fake, 1)
	m, v := loadedPair(t)
	out, err := NewVector[float32, int32](testGeom, 2)
	require.NoError(t, err)

	_, err = SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = LoadVector(d, 0, v)
	require.NoError(t, err)
	_, err = Compute(d, 0)
	require.NoError(t, err)
	_, err = StoreVector(d, 0, out)
	require.NoError(t, err)
	stored := append([]float32(nil), out.Host()...)

	// The slot is drained: a second store must fail before any
	// instruction is issued and must leave the out-vector untouched.
	fake.storeFill = []int32{77, 88}
	_, err = StoreVector(d, 0, out)
	assert.ErrorIs(t, err, ErrNotComputed)
	assert.Equal(t, []string{"set:0", "load:0", "compute:0", "store:0"}, fake.calls)
	assert.Equal(t, stored, out.Host())
}

func TestDriverStoreOnChainedSourceSkipsHardware(t *testing.T) {
	fake := &fakeISA{}
	d := newTestDriver(t, fake, 2)
	m, v := loadedPair(t)
	m2, err := WrapMatrix[float32, int8](testGeom, [][]float32{{4, 4}, {4, 4}})
	require.NoError(t, err)
	out, err := NewVector[float32, int32](testGeom, 2)
	require.NoError(t, err)

	_, err = SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = LoadVector(d, 0, v)
	require.NoError(t, err)
	_, err = Compute(d, 0)
	require.NoError(t, err)
	_, err = SetMatrix(d, 1, m2)
	require.NoError(t, err)
	_, err = MoveVector(d, 0, 1)
	require.NoError(t, err)

	_, err = StoreVector(d, 0, out)
	assert.ErrorIs(t, err, ErrNotComputed)
	assert.NotContains(t, fake.calls, "store:0")
	assert.Equal(t, []float32{0, 0}, out.Host())
}

func TestDriverMoveVector(t *testing.T) {
	fake := &fakeISA{}
	d := newTestDriver(t, fake, 2)
	m, v := loadedPair(t)
	m2, err := WrapMatrix[float32, int8](testGeom, [][]float32{{4, 4}, {4, 4}})
	require.NoError(t, err)

	_, err = SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = LoadVector(d, 0, v)
	require.NoError(t, err)
	_, err = Compute(d, 0)
	require.NoError(t, err)
	_, err = SetMatrix(d, 1, m2)
	require.NoError(t, err)

	_, err = MoveVector(d, 0, 1)
	require.NoError(t, err)
	assert.Contains(t, fake.calls, "move:0:1")

	state, _ := d.Context().State(1)
	assert.Equal(t, TileVectorLoaded, state)

	// The chained source is no longer a valid compute source.
	_, err = Compute(d, 0)
	assert.ErrorIs(t, err, ErrNoVector)
}

func TestHardwareErrorMessage(t *testing.T) {
	err := &HardwareError{Op: OpSetMatrix, Tile: 3, Status: 0x0007}
	assert.Equal(t, "mvm.set on tile 3: hardware status 0x0007", err.Error())
	assert.False(t, errors.Is(err, ErrNoMatrix))
}
