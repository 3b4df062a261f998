// Copyright 2025 Crossbar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trace records the instruction stream a driver issues to an
// accelerator.
package trace

import (
	"github.com/analog-ml/crossbar/analog"
	itrace "github.com/analog-ml/crossbar/internal/trace"
)

// Entry describes one issued hardware instruction.
type Entry = itrace.Entry

// Recorder is an ISA decorator that records every instruction passed
// through it. Dump encodes the trace as CBOR.
type Recorder = itrace.Recorder

// New creates a Recorder forwarding to next.
func New(next analog.ISA) *Recorder {
	return itrace.New(next)
}
