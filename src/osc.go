package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Phase accumulating sine oscillator.
 *
 * Description:	The frequency can be replaced between any two samples
 *		without touching the phase, so retuning produces
 *		continuous phase FM.  An angular error term lets a
 *		caller trim the instantaneous frequency by up to 50%.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

const twoPi = 2 * math.Pi

type Osc[T Sample] struct {
	omega  float64 // radians per sample
	offset float64 // fixed phase offset
	theta  float64 // accumulated phase, [0, 2pi)
}

func NewOsc[T Sample](f0 float64, fs float64) *Osc[T] {
	return &Osc[T]{omega: twoPi * f0 / fs}
}

// NewOscPhase adds a constant phase offset p, in radians, to every sample.
func NewOscPhase[T Sample](f0 float64, fs float64, p float64) *Osc[T] {
	return &Osc[T]{omega: twoPi * f0 / fs, offset: p}
}

// NewOscOmega takes the increment directly in radians per sample.
func NewOscOmega[T Sample](omega float64) *Osc[T] {
	return &Osc[T]{omega: omega}
}

// SetFreq changes frequency and leaves the phase alone.
func (o *Osc[T]) SetFreq(f0 float64, fs float64) {
	o.omega = twoPi * f0 / fs
}

func (o *Osc[T]) Omega() float64 {
	return o.omega
}

// Phase returns the accumulated phase, not including the offset.
func (o *Osc[T]) Phase() float64 {
	return o.theta
}

/*------------------------------------------------------------------
 *
 * Name:        Read
 *
 * Purpose:     Produce one sample and advance the phase.
 *
 * Inputs:	e	- Angular error.  Clamped to [-0.5, 0.5]; the
 *			  phase advances by omega * (1 + e).
 *
 * Returns:	sin(theta + offset) scaled to full scale of T.
 *
 *----------------------------------------------------------------*/

func (o *Osc[T]) Read(e float64) T {
	var result = math.Sin(o.theta + o.offset)

	if e > 0.5 {
		e = 0.5
	} else if e < -0.5 {
		e = -0.5
	}

	o.theta += o.omega * (1.0 + e)
	if o.theta >= twoPi || o.theta < 0 {
		o.theta = math.Mod(o.theta, twoPi)
		if o.theta < 0 {
			o.theta += twoPi
		}
	}

	return fromUnit[T](result)
}

// ComplexOsc is a pair of phase locked oscillators 90 degrees apart.
type ComplexOsc[T Sample] struct {
	i *Osc[T]
	q *Osc[T]
}

func NewComplexOsc[T Sample](f0 float64, fs float64) *ComplexOsc[T] {
	return &ComplexOsc[T]{
		i: NewOscPhase[T](f0, fs, 0),
		q: NewOscPhase[T](f0, fs, math.Pi/2),
	}
}

// Read returns the in-phase and quadrature samples.
func (c *ComplexOsc[T]) Read(e float64) (T, T) {
	return c.i.Read(e), c.q.Read(e)
}

func (c *ComplexOsc[T]) SetFreq(f0 float64, fs float64) {
	c.i.SetFreq(f0, fs)
	c.q.SetFreq(f0, fs)
}
