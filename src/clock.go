package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Wall clock helpers anchored to the UTC minute.
 *
 *----------------------------------------------------------------*/

import (
	"time"
)

// Clock is the time source used by the modem scheduler.
type Clock interface {
	// Seconds returns the wall clock modulo mod.  Seconds(60) is the
	// time elapsed since the start of the current UTC minute.
	Seconds(mod float64) float64

	// Now returns the current absolute time.
	Now() time.Time
}

// FrameClock is the Clock backed by the system time.  It holds no mutable
// state and is safe for concurrent use.
type FrameClock struct {
	now func() time.Time
}

func NewFrameClock() *FrameClock {
	return &FrameClock{now: time.Now}
}

/*------------------------------------------------------------------
 *
 * Name:        Seconds
 *
 * Purpose:     Position within the current frame.
 *
 * Inputs:	mod	- Frame length in seconds, e.g. 15 for FT8,
 *			  7.5 for FT4 or 60 for the whole minute.
 *
 * Returns:	Seconds in [0, mod) with nanosecond resolution.
 *
 * Description:	Unix time has no leap seconds so its epoch is aligned to
 *		a UTC minute, and every mod that divides 60 stays aligned.
 *		The modulo is taken in integer nanoseconds so fractional
 *		frame lengths keep full precision.
 *
 *----------------------------------------------------------------*/

func (c *FrameClock) Seconds(mod float64) float64 {
	var modNs = int64(mod * float64(time.Second))
	if modNs <= 0 {
		return 0
	}

	var rem = c.now().UnixNano() % modNs
	if rem < 0 {
		rem += modNs
	}

	return float64(rem) / float64(time.Second)
}

func (c *FrameClock) Now() time.Time {
	return c.now()
}

// AbsTime returns the absolute time in seconds since the Unix epoch.
func AbsTime(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
