package analog

import "fmt"

// transferMode selects the transfer implementation once, at container
// construction. It is never re-derived per call.
type transferMode int

const (
	// modeDirect copies values unchanged; host and device types match.
	modeDirect transferMode = iota
	// modeQuantize rescales a floating host type into an integral
	// device type, tracking the scale factor.
	modeQuantize
)

// modeFor validates the host/device type pairing. Identical types get
// the identity transfer; a floating host with an integral device type
// gets the quantizing transfer; anything else is not constructible.
func modeFor(host, dev DataType) (transferMode, error) {
	if host == dev {
		return modeDirect, nil
	}
	if !host.Integral() && dev.Integral() {
		return modeQuantize, nil
	}
	return 0, fmt.Errorf("%w: host %s, device %s", ErrNonFloatQuantize, host, dev)
}

// Scaled is the view of a tensor container the Context tracks: a device
// buffer and the effective scale relating its values back to host
// magnitudes. Both Matrix and Vector implement it regardless of their
// element types.
type Scaled interface {
	// Device returns the device staging buffer.
	Device() *Raw

	// ScaleFactor returns the effective dequantization multiplier:
	// the raw scale for identity transfers, raw/max_type_limit for
	// quantizing ones.
	ScaleFactor() float64
}
