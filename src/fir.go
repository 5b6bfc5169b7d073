package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Windowed-sinc FIR filter design and a circular buffer
 *		runtime to go with it.
 *
 * Description:	A filter is described by a FilterSpec, turned into
 *		normalized coefficients, then converted to the sample
 *		type of the runtime.  Each filter also remembers the
 *		frequencies where its passband should be measured so
 *		OverallGain can calibrate against the real kernel.
 *
 *----------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math"
)

type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
	BandStop
	Resonant
	TwinPeak
)

func (t FilterType) String() string {
	switch t {
	case LowPass:
		return "LowPass"
	case HighPass:
		return "HighPass"
	case BandPass:
		return "BandPass"
	case BandStop:
		return "BandStop"
	case Resonant:
		return "Resonant"
	case TwinPeak:
		return "TwinPeak"
	}
	return fmt.Sprintf("FilterType(%d)", int(t))
}

// dualCutoff reports whether the shape needs two cutoff frequencies.
func (t FilterType) dualCutoff() bool {
	return t == BandPass || t == BandStop || t == TwinPeak
}

var (
	ErrFilterType        = errors.New("unknown filter type")
	ErrFilterConstructor = errors.New("filter type does not match the number of cutoffs")
)

// FilterSpec describes a filter to be designed.
//
// Cutoffs are in Hz when Rate is non-zero, otherwise they are taken as
// normalized angular frequencies in [0, pi].  Cutoff2 is only used by the
// dual cutoff shapes.  A nil Window means rectangular.
type FilterSpec struct {
	Type    FilterType
	Taps    int
	Cutoff1 float64
	Cutoff2 float64
	Window  WindowFunc
	Rate    float64
}

// OddTaps returns the tap count actually used: an even request is
// bumped to the next odd value so the kernel has a center tap.
func OddTaps(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

func (s FilterSpec) omegas() (float64, float64) {
	if s.Rate == 0 {
		return s.Cutoff1, s.Cutoff2
	}
	return 2 * math.Pi * s.Cutoff1 / s.Rate, 2 * math.Pi * s.Cutoff2 / s.Rate
}

/*------------------------------------------------------------------
 *
 * Name:        DesignCoefficients
 *
 * Purpose:     Generate the windowed kernel for a filter spec.
 *
 * Returns:	OddTaps(spec.Taps) normalized coefficients, where
 *		coef[i] = ideal(i - N/2) * window(i - N/2).
 *
 *----------------------------------------------------------------*/

func DesignCoefficients(spec FilterSpec) ([]float64, error) {
	var N = OddTaps(spec.Taps)
	if N < 1 {
		return nil, fmt.Errorf("filter needs at least one tap, got %d", spec.Taps)
	}

	var wf = spec.Window
	if wf == nil {
		wf = RectangleWindow
	}

	var w1, w2 = spec.omegas()

	var ideal func(n int) float64
	switch spec.Type {
	case LowPass:
		ideal = func(n int) float64 { return IdealLowPass(w1, n, N) }
	case HighPass:
		ideal = func(n int) float64 { return IdealHighPass(w1, n, N) }
	case Resonant:
		ideal = func(n int) float64 { return IdealResonant(w1, n, N) }
	case BandPass:
		ideal = func(n int) float64 { return IdealBandPass(w1, w2, n, N) }
	case BandStop:
		ideal = func(n int) float64 { return IdealBandStop(w1, w2, n, N) }
	case TwinPeak:
		ideal = func(n int) float64 { return IdealTwinPeak(w1, w2, n, N) }
	default:
		return nil, fmt.Errorf("%w: %v", ErrFilterType, spec.Type)
	}

	var limit = N / 2
	var coefs = make([]float64, N)
	for n := -limit; n <= limit; n++ {
		coefs[n+limit] = ideal(n) * wf(n, N)
	}

	return coefs, nil
}

/*------------------------------------------------------------------
 *
 * Name:        testOmegas
 *
 * Purpose:     Angular frequencies where the passband of a shape is
 *		measured for gain calibration.
 *
 *----------------------------------------------------------------*/

func (s FilterSpec) testOmegas() []float64 {
	var w1, w2 = s.omegas()
	switch s.Type {
	case LowPass:
		return []float64{w1 / 2} // mid passband
	case HighPass:
		return []float64{(w1 + math.Pi) / 2}
	case Resonant:
		return []float64{w1}
	case BandPass:
		return []float64{(w1 + w2) / 2}
	case BandStop:
		return []float64{math.Min(w1, w2) / 2} // below the notch
	case TwinPeak:
		return []float64{w1, w2}
	}
	return nil
}

// FirFilter is the runtime for a designed or custom kernel.  It owns its
// coefficients and history; it is not safe for concurrent use.
type FirFilter[T Sample] struct {
	coefs   []T
	history []T
	pos     int
	value   T
	shift   uint
	omegas  []float64
}

/*------------------------------------------------------------------
 *
 * Name:        NewFirFilter
 *
 * Purpose:     Build a low-pass, high-pass or resonant filter.
 *
 * Inputs:	t	- LowPass, HighPass or Resonant.
 *		taps	- Requested length, forced odd.
 *		fc	- Cutoff or center in Hz, or normalized angular
 *			  frequency when fs is 0.
 *		fs	- Sample rate.
 *		wf	- Window, nil for rectangular.
 *
 * Errors:	ErrFilterConstructor for a dual cutoff shape,
 *		ErrFilterType for an unknown one.
 *
 *----------------------------------------------------------------*/

func NewFirFilter[T Sample](t FilterType, taps int, fc float64, fs float64, wf WindowFunc) (*FirFilter[T], error) {
	switch t {
	case LowPass, HighPass, Resonant:
	case BandPass, BandStop, TwinPeak:
		return nil, fmt.Errorf("%w: %v needs two cutoffs", ErrFilterConstructor, t)
	default:
		return nil, fmt.Errorf("%w: %v", ErrFilterType, t)
	}

	return NewFirFilterFromSpec[T](FilterSpec{Type: t, Taps: taps, Cutoff1: fc, Window: wf, Rate: fs})
}

// NewBandFilter builds a band-pass, band-stop or twin-peak filter.  The
// arguments follow NewFirFilter with two cutoffs.
func NewBandFilter[T Sample](t FilterType, taps int, f1 float64, f2 float64, fs float64, wf WindowFunc) (*FirFilter[T], error) {
	switch t {
	case BandPass, BandStop, TwinPeak:
	case LowPass, HighPass, Resonant:
		return nil, fmt.Errorf("%w: %v takes a single cutoff", ErrFilterConstructor, t)
	default:
		return nil, fmt.Errorf("%w: %v", ErrFilterType, t)
	}

	return NewFirFilterFromSpec[T](FilterSpec{Type: t, Taps: taps, Cutoff1: f1, Cutoff2: f2, Window: wf, Rate: fs})
}

func NewFirFilterFromSpec[T Sample](spec FilterSpec) (*FirFilter[T], error) {
	var coefs, err = DesignCoefficients(spec)
	if err != nil {
		return nil, err
	}

	var f = newFirFilter[T](len(coefs))
	for i, c := range coefs {
		f.coefs[i] = scaleCoef[T](c)
	}
	f.omegas = spec.testOmegas()

	return f, nil
}

/*------------------------------------------------------------------
 *
 * Name:        NewCustomFirFilter
 *
 * Purpose:     Build a filter from caller supplied taps.
 *
 * Description:	The taps are in the runtime's own representation.  An
 *		even count gets one trailing zero tap.  Custom filters have
 *		no test frequencies until SetTestOmegas is called.
 *
 *----------------------------------------------------------------*/

func NewCustomFirFilter[T Sample](coefs []T) *FirFilter[T] {
	var f = newFirFilter[T](OddTaps(len(coefs)))
	copy(f.coefs, coefs)
	for i := len(coefs); i < len(f.coefs); i++ {
		f.coefs[i] = 0
	}
	return f
}

func newFirFilter[T Sample](n int) *FirFilter[T] {
	return &FirFilter[T]{
		coefs:   make([]T, n),
		history: make([]T, n),
		shift:   coefShift[T](),
	}
}

// scaleCoef converts a normalized tap into T.  Fixed point taps carry
// coefShift fractional bits.
func scaleCoef[T Sample](c float64) T {
	if !IsFixed[T]() {
		return T(c)
	}
	return saturate[T](math.Round(c * float64(int64(1)<<coefShift[T]())))
}

func (f *FirFilter[T]) Len() int {
	return len(f.coefs)
}

// Coefficients returns the taps normalized back to floating point.
func (f *FirFilter[T]) Coefficients() []float64 {
	var out = make([]float64, len(f.coefs))
	for i, c := range f.coefs {
		if f.shift > 0 {
			out[i] = float64(c) / float64(int64(1)<<f.shift)
		} else {
			out[i] = float64(c)
		}
	}
	return out
}

/*------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     Push one sample and return the filter output.
 *
 * Description:	The sample is stored at the cursor, the cursor advances
 *		and wraps, then the taps are applied starting from the new
 *		cursor, i.e. from the oldest sample in the history.
 *
 *----------------------------------------------------------------*/

func (f *FirFilter[T]) Run(sample T) T {
	var n = len(f.history)

	f.history[f.pos] = sample
	f.pos++
	if f.pos == n {
		f.pos = 0
	}

	var p = f.pos
	if f.shift > 0 {
		var acc int64
		for _, c := range f.coefs {
			acc += int64(f.history[p]) * int64(c)
			p++
			if p == n {
				p = 0
			}
		}
		f.value = saturate64[T](acc >> f.shift)
	} else {
		var acc float64
		for _, c := range f.coefs {
			acc += float64(f.history[p]) * float64(c)
			p++
			if p == n {
				p = 0
			}
		}
		f.value = T(acc)
	}

	return f.value
}

// Value returns the most recent output.
func (f *FirFilter[T]) Value() T {
	return f.value
}

// Clear zeroes the history and resets the cursor.
func (f *FirFilter[T]) Clear() {
	clear(f.history)
	f.pos = 0
	f.value = 0
}

// SetTestOmegas replaces the angular frequencies used by OverallGain.
func (f *FirFilter[T]) SetTestOmegas(omegas ...float64) {
	f.omegas = append(f.omegas[:0], omegas...)
}

// OverallGain measures the passband gain of the kernel by running test
// tones through it.  The history is cleared before and after.
func (f *FirFilter[T]) OverallGain() float64 {
	f.Clear()
	var gain = MeasureGain[T](f, f.omegas, f.Len())
	f.Clear()
	return gain
}
