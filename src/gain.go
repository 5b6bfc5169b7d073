package ft8modem

import (
	"math"
)

// Filter is a single-input single-output block that can be calibrated.
type Filter[T Sample] interface {
	Run(sample T) T
	Clear()
}

/*------------------------------------------------------------------
 *
 * Name:        MeasureGain
 *
 * Purpose:     Measure the peak gain of a filter at one or more
 *		frequencies.
 *
 * Inputs:	filter	- Filter under test.
 *		omegas	- Normalized angular test frequencies.
 *		samples	- Settling length.  Each tone runs for twice
 *			  this and the peak is taken over the second half.
 *
 * Returns:	Largest peak over all frequencies as a fraction of full
 *		scale of T.
 *
 * Description:	A fresh oscillator drives each tone and the filter is
 *		cleared after each one so the next measurement starts
 *		from silence.
 *
 *----------------------------------------------------------------*/

func MeasureGain[T Sample](filter Filter[T], omegas []float64, samples int) float64 {
	var peak float64

	for _, w := range omegas {
		var source = NewOscOmega[T](w)
		for i := 0; i < 2*samples; i++ {
			var out = math.Abs(float64(filter.Run(source.Read(0))))
			if i >= samples && out > peak {
				peak = out
			}
		}
		filter.Clear()
	}

	return peak / Maximum[T]()
}

// MeasureGainHz is MeasureGain with test frequencies in Hz at rate fs.
func MeasureGainHz[T Sample](filter Filter[T], freqs []float64, fs float64, samples int) float64 {
	var omegas = make([]float64, len(freqs))
	for i, f := range freqs {
		omegas[i] = 2 * math.Pi * f / fs
	}
	return MeasureGain[T](filter, omegas, samples)
}
