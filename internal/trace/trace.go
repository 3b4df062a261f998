// Package trace records the instruction stream a driver issues to an
// accelerator. A Recorder wraps any ISA implementation and notes every
// instruction in issue order; traces can be dumped as CBOR for offline
// inspection.
package trace

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/analog-ml/crossbar/internal/analog"
)

// Entry describes one issued hardware instruction.
type Entry struct {
	Seq    uint64        `cbor:"seq"`
	Op     string        `cbor:"op"`
	Tile   analog.TileID `cbor:"tile"`
	Dst    analog.TileID `cbor:"dst,omitempty"`
	DType  string        `cbor:"dtype,omitempty"`
	Elems  int           `cbor:"elems,omitempty"`
	Status analog.Status `cbor:"status"`
}

// Recorder is an ISA decorator that records every instruction passed
// through it. Like the driver it assumes one controlling goroutine.
type Recorder struct {
	next    analog.ISA
	entries []Entry
	seq     uint64
}

var _ analog.ISA = (*Recorder)(nil)

// New creates a Recorder forwarding to next.
func New(next analog.ISA) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) record(e Entry) {
	e.Seq = r.seq
	r.seq++
	r.entries = append(r.entries, e)
}

// SetMatrix forwards the instruction and records it.
func (r *Recorder) SetMatrix(m *analog.Raw, tile analog.TileID) analog.Status {
	st := r.next.SetMatrix(m, tile)
	r.record(Entry{Op: analog.OpSetMatrix.String(), Tile: tile,
		DType: m.DType().String(), Elems: m.NumElements(), Status: st})
	return st
}

// LoadVector forwards the instruction and records it.
func (r *Recorder) LoadVector(v *analog.Raw, tile analog.TileID) analog.Status {
	st := r.next.LoadVector(v, tile)
	r.record(Entry{Op: analog.OpLoadVector.String(), Tile: tile,
		DType: v.DType().String(), Elems: v.NumElements(), Status: st})
	return st
}

// Compute forwards the instruction and records it.
func (r *Recorder) Compute(tile analog.TileID) analog.Status {
	st := r.next.Compute(tile)
	r.record(Entry{Op: analog.OpCompute.String(), Tile: tile, Status: st})
	return st
}

// StoreVector forwards the instruction and records it.
func (r *Recorder) StoreVector(out *analog.Raw, tile analog.TileID) analog.Status {
	st := r.next.StoreVector(out, tile)
	r.record(Entry{Op: analog.OpStoreVector.String(), Tile: tile,
		DType: out.DType().String(), Elems: out.NumElements(), Status: st})
	return st
}

// MoveVector forwards the instruction and records it.
func (r *Recorder) MoveVector(src, dst analog.TileID) analog.Status {
	st := r.next.MoveVector(src, dst)
	r.record(Entry{Op: analog.OpMoveVector.String(), Tile: src, Dst: dst, Status: st})
	return st
}

// Entries returns the recorded instructions in issue order.
func (r *Recorder) Entries() []Entry {
	return r.entries
}

// Dump encodes the recorded trace as CBOR.
func (r *Recorder) Dump(w io.Writer) error {
	if err := cbor.NewEncoder(w).Encode(r.entries); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}
