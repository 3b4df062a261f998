package analog

import "math"

// Quantization codec. Quantized values are proportional to
// true_value / scale * max_type_limit, so the raw scale is the largest
// magnitude present in the host data. Rounding is half-away-from-zero,
// matching the hardware's fixed-point convention (llround); out-of-range
// values saturate to the type limits, never wrap.

// maxAbs returns max(|x|) over the slice, 0 for an empty slice.
func maxAbs[T Elem](vals []T) float64 {
	var m float64
	for _, v := range vals {
		a := math.Abs(float64(v))
		if a > m {
			m = a
		}
	}
	return m
}

// clampRound rounds half away from zero and saturates to [min, max].
// Returns the saturated value and whether saturation occurred.
func clampRound(x, min, max float64) (float64, bool) {
	r := math.Round(x)
	if r > max {
		return max, true
	}
	if r < min {
		return min, true
	}
	return r, false
}

// quantizeSlice writes round(host[i]/scale*max) into dev with
// saturation. scale is max(|host|), clamped to 1.0 for all-zero input so
// the division is always defined. Returns the raw scale.
func quantizeSlice[T Elem, Q Quant](host []T, dev []Q, min, max float64) float64 {
	scale := maxAbs(host)
	if scale == 0 {
		scale = 1.0
	}
	clipped := 0
	for i, v := range host {
		q, sat := clampRound(float64(v)/scale*max, min, max)
		if sat {
			clipped++
		}
		dev[i] = Q(q)
	}
	if clipped > 0 {
		saturatedElements.Add(float64(clipped))
	}
	return scale
}

// dequantizeSlice writes T(dev[i]) * scale into host.
func dequantizeSlice[Q Quant, T Elem](dev []Q, host []T, scale float64) {
	for i := range host {
		host[i] = T(float64(dev[i]) * scale)
	}
}

// copySlice is the identity transfer used when host and device types
// match: a pure value copy with no rescale.
func copySlice[T Elem, Q Quant](src []T, dst []Q) {
	for i, v := range src {
		dst[i] = Q(v)
	}
}

// copyBackSlice is the inverse identity transfer; the scale argument of
// a dequantizing transfer is ignored on this path.
func copyBackSlice[Q Quant, T Elem](src []Q, dst []T) {
	for i := range dst {
		dst[i] = T(src[i])
	}
}
