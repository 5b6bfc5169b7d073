package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Normalized numeric limits for the sample types the DSP
 *		blocks can run on.
 *
 * Description:	Floating point samples are normalized to [-1, 1].
 *		Integer samples use their full signed range and are
 *		treated as fixed point fractions of that range.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

// Sample is the set of numeric representations the filters, oscillators
// and smoothers are implemented for.
type Sample interface {
	int16 | int32 | float32 | float64
}

// Maximum returns the largest normalized magnitude of T: full scale for
// the integer types, 1.0 for floating point.
func Maximum[T Sample]() float64 {
	var zero T
	switch any(zero).(type) {
	case int16:
		return math.MaxInt16
	case int32:
		return math.MaxInt32
	default:
		return 1.0
	}
}

// Bits returns the width of a fixed point T, or zero when T is floating point.
func Bits[T Sample]() uint {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 16
	case int32:
		return 32
	default:
		return 0
	}
}

// IsFixed reports whether T is one of the fixed point representations.
func IsFixed[T Sample]() bool {
	return Bits[T]() != 0
}

/*------------------------------------------------------------------
 *
 * Name:        coefShift
 *
 * Purpose:     Right shift applied after a fixed point multiply-accumulate
 *		in the FIR runtime.
 *
 * Description:	Coefficients are stored with (bits - 2) fractional bits so
 *		a tap magnitude up to 2.0 still fits.  Shifting the product
 *		by the same amount restores the sample scale.
 *
 *----------------------------------------------------------------*/

func coefShift[T Sample]() uint {
	var b = Bits[T]()
	if b == 0 {
		return 0
	}
	return b - 2
}

// fromUnit scales a normalized value in [-1, 1] into T, saturating
// integer types at their limits.
func fromUnit[T Sample](v float64) T {
	if !IsFixed[T]() {
		return T(v)
	}
	return saturate[T](math.Round(v * Maximum[T]()))
}

// toUnit is the inverse of fromUnit.
func toUnit[T Sample](v T) float64 {
	return float64(v) / Maximum[T]()
}

// saturate converts an already scaled value into T, clamping to the
// representable range of the integer types.
func saturate[T Sample](v float64) T {
	if !IsFixed[T]() {
		return T(v)
	}
	var hi = Maximum[T]()
	var lo = -hi - 1
	if v > hi {
		v = hi
	} else if v < lo {
		v = lo
	}
	return T(v)
}

// saturate64 is saturate for a widened integer intermediate.
func saturate64[T Sample](v int64) T {
	if !IsFixed[T]() {
		return T(v)
	}
	var hi = int64(Maximum[T]())
	var lo = -hi - 1
	if v > hi {
		v = hi
	} else if v < lo {
		v = lo
	}
	return T(v)
}
