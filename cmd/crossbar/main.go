// Command crossbar runs a demonstration MVM pass on the software
// simulator: a host matrix and vector are quantized to int8, multiplied
// on a simulated tile, stored back as a dequantized float result, and
// compared against the exact float computation.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/analog-ml/crossbar/analog"
	"github.com/analog-ml/crossbar/sim"
	"github.com/analog-ml/crossbar/trace"
)

var (
	numTiles  = flag.Int("tiles", 1, "Number of hardware tile slots")
	devRows   = flag.Int("rows", analog.DefaultGeometry.Rows, "Device matrix rows (hardware constant)")
	devCols   = flag.Int("cols", analog.DefaultGeometry.Cols, "Device matrix columns (hardware constant)")
	tracePath = flag.String("trace", "", "Write a CBOR instruction trace to this file")
	verbose   = flag.Bool("verbose", false, "Enable per-instruction debug logging")
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	flag.Parse()
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("demo failed")
	}
}

func run() error {
	geom := analog.Geometry{Rows: *devRows, Cols: *devCols}

	hostMat := [][]float32{
		{3.0, 3.0, 3.0, 3.0},
		{3.0, 3.0, 3.0, 3.0},
		{3.0, 3.0, 3.0, 3.0},
	}
	hostVec := []float32{2.0, 2.0, 2.0, 2.0}

	hw := sim.New(geom, *numTiles)
	if *verbose {
		hw.SetLogger(log.Logger)
	}
	var isa analog.ISA = hw
	var rec *trace.Recorder
	if *tracePath != "" {
		rec = trace.New(isa)
		isa = rec
	}

	ctx, err := analog.NewContext(*numTiles)
	if err != nil {
		return err
	}
	drv := analog.NewDriver(isa, ctx)
	if *verbose {
		drv.SetLogger(log.Logger)
	}

	m, err := analog.WrapMatrix[float32, int8](geom, hostMat)
	if err != nil {
		return err
	}
	x, err := analog.WrapVector[float32, int8](geom, hostVec)
	if err != nil {
		return err
	}
	y, err := analog.NewVector[float32, int32](geom, len(hostMat))
	if err != nil {
		return err
	}

	const tile analog.TileID = 0
	if _, err := analog.SetMatrix(drv, tile, m); err != nil {
		return err
	}
	if _, err := analog.LoadVector(drv, tile, x); err != nil {
		return err
	}
	if _, err := analog.Compute(drv, tile); err != nil {
		return err
	}
	if _, err := analog.StoreVector(drv, tile, y); err != nil {
		return err
	}

	log.Info().
		Float64("matrix_scale", m.ScaleFactor()).
		Float64("vector_scale", x.ScaleFactor()).
		Msg("quantized MVM pass complete")

	// Exact float reference for the quantization error report.
	ref := exactReference(hostMat, hostVec)
	var maxErr float64
	for i, got := range y.Host() {
		want := ref.AtVec(i)
		if e := abs(float64(got) - want); e > maxErr {
			maxErr = e
		}
		fmt.Printf("y[%d] = %g (exact %g)\n", i, got, want)
	}
	log.Info().Float64("max_abs_error", maxErr).Msg("compared against exact result")

	if rec != nil {
		f, err := os.Create(*tracePath)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		defer f.Close()
		if err := rec.Dump(f); err != nil {
			return err
		}
		log.Info().Str("path", *tracePath).Int("instructions", len(rec.Entries())).Msg("trace written")
	}
	return nil
}

func exactReference(m [][]float32, v []float32) *mat.VecDense {
	rows, cols := len(m), len(m[0])
	dense := mat.NewDense(rows, cols, nil)
	for i, row := range m {
		for j, val := range row {
			dense.Set(i, j, float64(val))
		}
	}
	vec := mat.NewVecDense(cols, nil)
	for i, val := range v {
		vec.SetVec(i, float64(val))
	}
	var y mat.VecDense
	y.MulVec(dense, vec)
	return &y
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
