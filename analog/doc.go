// Copyright 2025 Crossbar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package analog drives a fixed-function analog matrix-vector multiply
// accelerator from the host.
//
// The accelerator exposes a small number of tiles, each able to hold
// one matrix and multiply it against loaded vectors in a quantized
// fixed-point representation. The driver's job is bookkeeping, not
// arithmetic: it converts host tensors to the device representation,
// tracks the per-tensor scale factors needed to interpret quantized
// results, and sequences the five hardware operations in the required
// order.
//
// One MVM pass:
//
//	geom := analog.DefaultGeometry
//	ctx, _ := analog.NewContext(1)
//	drv := analog.NewDriver(hw, ctx) // hw implements analog.ISA
//
//	m, _ := analog.WrapMatrix[float32, int8](geom, rows)
//	x, _ := analog.WrapVector[float32, int8](geom, input)
//	y, _ := analog.NewVector[float32, int32](geom, geom.Cols)
//
//	analog.SetMatrix(drv, 0, m)
//	analog.LoadVector(drv, 0, x)
//	analog.Compute(drv, 0)
//	analog.StoreVector(drv, 0, y) // y.Host() now holds the result
//
// Quantization contract: for a float host tensor quantized to an
// integral device type, scale = max(|x|) (1.0 for all-zero input),
// device values are round-half-away-from-zero of x/scale*max_limit and
// saturate at the type limits. The effective scale reported by a
// container is scale/max_limit, directly usable as a dequantization
// multiplier; a computed tile's output scale is the product of its
// matrix and input-vector effective scales. Containers whose host and
// device types match transfer values unchanged.
//
// The driver is synchronous and single-threaded per Context: every ISA
// call blocks until the tile finishes, nothing is retried, and
// concurrent use of one Context must be serialized by the caller.
package analog
