package trace_test

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analog-ml/crossbar/internal/analog"
	"github.com/analog-ml/crossbar/internal/sim"
	"github.com/analog-ml/crossbar/internal/trace"
)

func TestRecorderCapturesIssueOrder(t *testing.T) {
	geom := analog.Geometry{Rows: 5, Cols: 6}
	rec := trace.New(sim.New(geom, 1))
	ctx, err := analog.NewContext(1)
	require.NoError(t, err)
	d := analog.NewDriver(rec, ctx)

	m, err := analog.WrapMatrix[float32, int8](geom, [][]float32{{1, 2}})
	require.NoError(t, err)
	x, err := analog.WrapVector[float32, int8](geom, []float32{3, 4})
	require.NoError(t, err)
	y, err := analog.NewVector[float32, int32](geom, 1)
	require.NoError(t, err)

	_, err = analog.SetMatrix(d, 0, m)
	require.NoError(t, err)
	_, err = analog.LoadVector(d, 0, x)
	require.NoError(t, err)
	_, err = analog.Compute(d, 0)
	require.NoError(t, err)
	_, err = analog.StoreVector(d, 0, y)
	require.NoError(t, err)

	entries := rec.Entries()
	require.Len(t, entries, 4)

	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Op
		assert.Equal(t, uint64(i), e.Seq)
		assert.Equal(t, analog.StatusOK, e.Status)
	}
	assert.Equal(t, []string{"mvm.set", "mvm.l", "mvm", "mvm.s"}, ops)
	assert.Equal(t, "int8", entries[0].DType)
	assert.Equal(t, 30, entries[0].Elems)
	assert.Equal(t, "int32", entries[3].DType)
}

func TestRecorderRecordsFailures(t *testing.T) {
	geom := analog.Geometry{Rows: 2, Cols: 2}
	hw := sim.New(geom, 1)
	hw.InjectFault(func(op analog.Op, tile analog.TileID) analog.Status {
		return 0x0042
	})
	rec := trace.New(hw)

	st := rec.Compute(0)
	assert.Equal(t, analog.Status(0x0042), st)

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, analog.Status(0x0042), entries[0].Status)
}

func TestDumpRoundTripsThroughCBOR(t *testing.T) {
	geom := analog.Geometry{Rows: 2, Cols: 2}
	rec := trace.New(sim.New(geom, 2))
	rec.MoveVector(0, 1) // fails with no computed result, still recorded

	var buf bytes.Buffer
	require.NoError(t, rec.Dump(&buf))

	var decoded []trace.Entry
	require.NoError(t, cbor.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "mvm.mv", decoded[0].Op)
	assert.Equal(t, analog.TileID(0), decoded[0].Tile)
	assert.Equal(t, analog.TileID(1), decoded[0].Dst)
	assert.Equal(t, sim.StatusNoOperand, decoded[0].Status)
}
