package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Single pole exponential smoothers.
 *
 * Description:	Smoother approximates an RC low-pass, Desmoother an RC
 *		high-pass and Decay an RC low-pass with a diode across
 *		the resistor, i.e. instant attack and exponential release.
 *
 *		For the integer sample types alpha is stored scaled by the
 *		maximum of T and every product is formed in int64 before
 *		being shifted back down by (bits - 1).
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

// LowpassToAlpha returns the alpha that makes a Smoother behave like an
// RC low-pass with cutoff fc at sample rate fs.
func LowpassToAlpha(fs float64, fc float64) float64 {
	var rc = 1.0 / (2.0 * math.Pi * fc)
	var dt = 1.0 / fs
	return dt / (rc + dt)
}

// AlphaToLowpass is the inverse of LowpassToAlpha.
func AlphaToLowpass(alpha float64, fs float64) float64 {
	var dt = 1.0 / fs
	var rc = (dt * (1.0 - alpha)) / alpha
	return 1.0 / (2.0 * math.Pi * rc)
}

// HighpassToAlpha returns the alpha that makes a Desmoother behave like an
// RC high-pass with cutoff fc at sample rate fs.
func HighpassToAlpha(fs float64, fc float64) float64 {
	var rc = 1.0 / (2.0 * math.Pi * fc)
	var dt = 1.0 / fs
	return rc / (rc + dt)
}

// AlphaToHighpass is the inverse of HighpassToAlpha.
func AlphaToHighpass(alpha float64, fs float64) float64 {
	var dt = 1.0 / fs
	var rc = (alpha * dt) / (1.0 - alpha)
	return 1.0 / (2.0 * math.Pi * rc)
}

// pole holds alpha in both representations.
type pole[T Sample] struct {
	alpha float64
	fixed int64
	full  int64
	shift uint
}

func newPole[T Sample](alpha float64) pole[T] {
	var p = pole[T]{alpha: alpha}
	if IsFixed[T]() {
		p.full = int64(Maximum[T]())
		p.fixed = int64(alpha * Maximum[T]())
		p.shift = Bits[T]() - 1
	}
	return p
}

// blend returns alpha*a + (1-alpha)*b.
func (p pole[T]) blend(a T, b T) T {
	if p.shift > 0 {
		return saturate64[T]((int64(a)*p.fixed)>>p.shift + (int64(b)*(p.full-p.fixed))>>p.shift)
	}
	return T(float64(a)*p.alpha + float64(b)*(1.0-p.alpha))
}

// Smoother is an exponential moving average.
type Smoother[T Sample] struct {
	p     pole[T]
	state T
}

func NewSmoother[T Sample](alpha float64, seed T) *Smoother[T] {
	return &Smoother[T]{p: newPole[T](alpha), state: seed}
}

func (s *Smoother[T]) Alpha() float64 {
	return s.p.alpha
}

// Run computes state = alpha*in + (1-alpha)*state.
func (s *Smoother[T]) Run(in T) T {
	s.state = s.p.blend(in, s.state)
	return s.state
}

func (s *Smoother[T]) Value() T {
	return s.state
}

func (s *Smoother[T]) Clear() {
	s.state = 0
}

// Desmoother is a first difference high-pass.
type Desmoother[T Sample] struct {
	p  pole[T]
	x1 T
	y1 T
}

func NewDesmoother[T Sample](alpha float64, seed T) *Desmoother[T] {
	return &Desmoother[T]{p: newPole[T](alpha), x1: seed, y1: seed}
}

func (d *Desmoother[T]) Alpha() float64 {
	return d.p.alpha
}

// Run computes y = alpha*y1 + alpha*(x - x1).
func (d *Desmoother[T]) Run(x T) T {
	if d.p.shift > 0 {
		var y = (d.p.fixed*int64(d.y1))>>d.p.shift + (d.p.fixed*(int64(x)-int64(d.x1)))>>d.p.shift
		d.y1 = saturate64[T](y)
	} else {
		d.y1 = T(d.p.alpha*float64(d.y1) + d.p.alpha*(float64(x)-float64(d.x1)))
	}
	d.x1 = x
	return d.y1
}

func (d *Desmoother[T]) Value() T {
	return d.y1
}

func (d *Desmoother[T]) Clear() {
	d.x1 = 0
	d.y1 = 0
}

// Decay follows rising input instantly and falls like a Smoother.
type Decay[T Sample] struct {
	p     pole[T]
	state T
}

func NewDecay[T Sample](alpha float64, seed T) *Decay[T] {
	return &Decay[T]{p: newPole[T](alpha), state: seed}
}

func (d *Decay[T]) Alpha() float64 {
	return d.p.alpha
}

func (d *Decay[T]) Run(in T) T {
	if in >= d.state {
		d.state = in
		return d.state
	}
	d.state = d.p.blend(in, d.state)
	return d.state
}

func (d *Decay[T]) Value() T {
	return d.state
}

func (d *Decay[T]) Clear() {
	d.state = 0
}
