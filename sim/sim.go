// Copyright 2025 Crossbar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sim provides the software reference implementation of the
// accelerator instruction set, for development and tests without
// hardware.
package sim

import (
	"github.com/analog-ml/crossbar/analog"
	isim "github.com/analog-ml/crossbar/internal/sim"
)

// Simulator implements analog.ISA in software.
type Simulator = isim.Simulator

// Simulated hardware status values.
const (
	StatusBadTile   analog.Status = isim.StatusBadTile
	StatusNoOperand analog.Status = isim.StatusNoOperand
	StatusBadBuffer analog.Status = isim.StatusBadBuffer
)

// New creates a simulator with numTiles tiles of the given geometry.
func New(geom analog.Geometry, numTiles int) *Simulator {
	return isim.New(geom, numTiles)
}
