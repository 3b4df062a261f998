package analog

import (
	"errors"
	"fmt"
)

// Driver error taxonomy. Precondition and resource errors are sentinel
// values so callers can match them with errors.Is; hardware-reported
// failures carry the raw status flag in a HardwareError.
var (
	ErrTileOutOfRange     = errors.New("tile id out of range")
	ErrNoMatrix           = errors.New("no matrix resident on tile")
	ErrNoVector           = errors.New("no input vector loaded on tile")
	ErrNotComputed        = errors.New("tile has no computed result")
	ErrShapeExceedsDevice = errors.New("host shape exceeds device geometry")
	ErrNonFloatQuantize   = errors.New("quantization requires a floating-point host type and an integral device type")
	ErrInvalidGeometry    = errors.New("device geometry dimensions must be positive")
	ErrNoTiles            = errors.New("context requires at least one tile")
)

// HardwareError reports a non-zero status flag returned by the
// accelerator. The flag's meaning is defined by the hardware; the driver
// propagates it without decoding and never retries.
type HardwareError struct {
	Op     Op
	Tile   TileID
	Status Status
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("%s on tile %d: hardware status 0x%04x", e.Op, e.Tile, uint16(e.Status))
}
