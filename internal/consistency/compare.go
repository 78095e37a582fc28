package consistency

import "math"

// Comparison policy.
const (
	RelativeTolerance = 1e-5
	SourceTolerance   = 5e-6
	// MaxULPs is the single-precision distance allowed between backends.
	MaxULPs = 4
)

// CloseRelative reports |expected - actual| <= tol·|actual|.
func CloseRelative(expected, actual, tol float64) bool {
	return math.Abs(expected-actual) <= tol*math.Abs(actual)
}

// FloatEqual reports whether a and b are equal after rounding to single
// precision, allowing MaxULPs units in the last place.
func FloatEqual(a, b float64) bool {
	fa, fb := float32(a), float32(b)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return ulpDistance(fa, fb) <= MaxULPs
}

func ulpDistance(a, b float32) uint32 {
	x, y := biased(math.Float32bits(a)), biased(math.Float32bits(b))
	if x >= y {
		return x - y
	}
	return y - x
}

// biased maps sign-magnitude bits onto an unsigned line so adjacent floats
// differ by one.
func biased(bits uint32) uint32 {
	const sign = 1 << 31
	if bits&sign != 0 {
		return ^bits + 1
	}
	return bits | sign
}
