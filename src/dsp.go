package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Window shapes and ideal filter responses used to
 *		generate FIR filter kernels.
 *
 * Description:	Everything here is evaluated for an odd-length kernel
 *		centered at zero, so n runs from -N/2 to +N/2.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

// WindowFunc returns the window weight at offset n of an N tap kernel.
type WindowFunc func(n int, N int) float64

// windowAngle is 2*pi*k*j/(N-1) with j the zero based tap index.
func windowAngle(k float64, n int, N int) float64 {
	var j = float64(n + N/2)
	return (k * math.Pi * j) / float64(N-1)
}

func HammingWindow(n int, N int) float64 {
	return 0.54 - 0.46*math.Cos(windowAngle(2, n, N))
}

func HannWindow(n int, N int) float64 {
	return 0.50 * (1.0 - math.Cos(windowAngle(2, n, N)))
}

func BlackmanWindow(n int, N int) float64 {
	return 0.426590 -
		0.496560*math.Cos(windowAngle(2, n, N)) +
		0.076849*math.Cos(windowAngle(4, n, N))
}

// BlackmanExactWindow uses the exact rational Blackman coefficients.
func BlackmanExactWindow(n int, N int) float64 {
	return (7938.0 / 18608.0) -
		(9240.0/18608.0)*math.Cos(windowAngle(2, n, N)) +
		(1430.0/18608.0)*math.Cos(windowAngle(4, n, N))
}

func NuttallWindow(n int, N int) float64 {
	return 0.355768 -
		0.487396*math.Cos(windowAngle(2, n, N)) +
		0.144232*math.Cos(windowAngle(4, n, N)) -
		0.012604*math.Cos(windowAngle(6, n, N))
}

func BlackmanNuttallWindow(n int, N int) float64 {
	return 0.3635819 -
		0.4891775*math.Cos(windowAngle(2, n, N)) +
		0.1365995*math.Cos(windowAngle(4, n, N)) -
		0.0106511*math.Cos(windowAngle(6, n, N))
}

func BlackmanHarrisWindow(n int, N int) float64 {
	return 0.35875 -
		0.48829*math.Cos(windowAngle(2, n, N)) +
		0.14128*math.Cos(windowAngle(4, n, N)) -
		0.01168*math.Cos(windowAngle(6, n, N))
}

func FlatTopWindow(n int, N int) float64 {
	return 1.0 -
		1.93*math.Cos(windowAngle(2, n, N)) +
		1.29*math.Cos(windowAngle(4, n, N)) -
		0.388*math.Cos(windowAngle(6, n, N)) +
		0.028*math.Cos(windowAngle(8, n, N))
}

func RectangleWindow(_ int, _ int) float64 {
	return 1.0
}

/*------------------------------------------------------------------
 *
 * Ideal responses.
 *
 * Inputs:	omega	- Normalized angular cutoff in [0, pi].
 *		n	- Tap offset from the kernel center.
 *		N	- Kernel length.
 *
 *----------------------------------------------------------------*/

func IdealLowPass(omega float64, n int, _ int) float64 {
	if n == 0 {
		return omega / math.Pi
	}
	return math.Sin(omega*float64(n)) / (math.Pi * float64(n))
}

func IdealHighPass(omega float64, n int, _ int) float64 {
	if n == 0 {
		return 1.0 - omega/math.Pi
	}
	return -math.Sin(omega*float64(n)) / (math.Pi * float64(n))
}

// IdealResonant is a peaking response centered on omega.
func IdealResonant(omega float64, n int, N int) float64 {
	return math.Cos(omega*float64(n)) / (float64(N) / math.Pi)
}

func IdealBandPass(omega1 float64, omega2 float64, n int, N int) float64 {
	if n == 0 {
		return (omega2 - omega1) / math.Pi
	}
	return IdealLowPass(omega2, n, N) - IdealLowPass(omega1, n, N)
}

func IdealBandStop(omega1 float64, omega2 float64, n int, N int) float64 {
	if n == 0 {
		return 1.0 - (omega2-omega1)/math.Pi
	}
	return IdealLowPass(omega1, n, N) - IdealLowPass(omega2, n, N)
}

// IdealTwinPeak sums two resonant responses.
func IdealTwinPeak(omega1 float64, omega2 float64, n int, N int) float64 {
	return IdealResonant(omega1, n, N) + IdealResonant(omega2, n, N)
}
