package ft8modem

import (
	"math"
)

/*------------------------------------------------------------------
 *
 * Name:        Shaper
 *
 * Purpose:     Raised cosine envelope for keying a carrier on and off
 *		without splatter.
 *
 * Description:	The counter moves one step per call toward samples when
 *		keyed and toward zero when not.  The gain at a counter
 *		value c is max * (0.5 - 0.5 cos(c pi / samples)).
 *
 *----------------------------------------------------------------*/

type Shaper[T Sample] struct {
	samples int
	phi     float64
	ctr     int
}

func NewShaper[T Sample](samples int) *Shaper[T] {
	if samples < 0 {
		samples = 0
	}
	var s = &Shaper[T]{samples: samples}
	if samples > 0 {
		s.phi = math.Pi / float64(samples)
	}
	return s
}

// Size is the ramp length in samples.
func (s *Shaper[T]) Size() int {
	return s.samples
}

func (s *Shaper[T]) Run(key bool) T {
	if key {
		if s.ctr < s.samples {
			s.ctr++
		} else {
			return fromUnit[T](1.0)
		}
	} else {
		if s.ctr > 0 {
			s.ctr--
		} else {
			return 0
		}
	}

	return fromUnit[T](0.5 - 0.5*math.Cos(float64(s.ctr)*s.phi))
}
