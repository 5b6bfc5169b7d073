package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     General purpose continuous phase MFSK modulator.
 *
 * Description:	A message is a string of symbol digits.  Symbol k is
 *		sent at f0 + k*shift for round(fs/baud) samples.  The tone
 *		target is slewed through a single pole low-pass at the
 *		symbol rate so adjacent symbols blend instead of stepping,
 *		and a raised cosine envelope ramps the carrier in at the
 *		start and out during the last symbol.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

// Number of carrier cycles in each envelope ramp.
const shaperCycles = 10

type Modulator[T Sample] struct {
	bitRatio int
	fs       float64
	f0       float64
	baud     float64
	shift    float64
	volume   float64

	msg       []byte  // symbol digits of the message being sent
	pending   []byte  // message accepted while busy
	pendingF0 float64 // base frequency of pending, 0 to keep f0
	idx     int    // current symbol
	ctr     int    // samples emitted for the current symbol
	lead    int    // lead-in silence, samples
	leadCtr int

	osc *Osc[float64]
	lpf *Smoother[float64]
	env *Shaper[float64]
}

/*------------------------------------------------------------------
 *
 * Name:        NewModulator
 *
 * Inputs:	fs	- Sample rate.
 *		f0	- Frequency of symbol 0.
 *		baud	- Symbols per second.
 *		shift	- Spacing between adjacent tones, Hz.
 *
 * Description:	Lead-in defaults to 1/8 second and volume to 0.9.
 *
 *----------------------------------------------------------------*/

func NewModulator[T Sample](fs float64, f0 float64, baud float64, shift float64) *Modulator[T] {
	var rampLen = 0
	if usableFreq(f0) {
		rampLen = int(shaperCycles * fs / f0)
	}

	var m = &Modulator[T]{
		bitRatio: int(math.Round(fs / baud)),
		fs:       fs,
		f0:       f0,
		baud:     baud,
		shift:    shift,
		volume:   0.9,
		lead:     int(fs / 8),
		osc:      NewOsc[float64](f0, fs),
		lpf:      NewSmoother[float64](LowpassToAlpha(fs, baud), f0),
		env:      NewShaper[float64](rampLen),
	}
	m.clear()
	return m
}

func (m *Modulator[T]) BitRatio() int {
	return m.bitRatio
}

func (m *Modulator[T]) SetLead(samples int) {
	m.lead = samples
}

func (m *Modulator[T]) Lead() int {
	return m.lead
}

func (m *Modulator[T]) SetVolume(v float64) {
	m.volume = v
}

func (m *Modulator[T]) Volume() float64 {
	return m.volume
}

// Idle reports that no symbol or lead-in sample of the current message
// has been produced yet, or there is no message at all.
func (m *Modulator[T]) Idle() bool {
	return len(m.msg) == 0 || (m.idx == 0 && m.ctr == 0 && m.leadCtr == 0)
}

// Busy reports whether a message is loaded, started or not.
func (m *Modulator[T]) Busy() bool {
	return len(m.msg) != 0
}

// Pending reports whether a message is waiting for the current one to end.
func (m *Modulator[T]) Pending() bool {
	return len(m.pending) != 0
}

/*------------------------------------------------------------------
 *
 * Name:        Transmit
 *
 * Purpose:     Load a message.
 *
 * Inputs:	message	- Symbol string.  Anything but ASCII digits is
 *			  dropped.
 *		f0	- New base frequency, ignored unless positive
 *			  and finite.
 *
 * Description:	An idle modulator takes the message immediately.  A busy
 *		one keeps sending on its own frequency and switches to the
 *		new message, and its frequency, once the current one is
 *		complete.
 *
 *----------------------------------------------------------------*/

func (m *Modulator[T]) Transmit(message string, f0 float64) {
	if !usableFreq(f0) {
		f0 = 0
	}

	var clean = make([]byte, 0, len(message))
	for i := 0; i < len(message); i++ {
		if message[i] >= '0' && message[i] <= '9' {
			clean = append(clean, message[i])
		}
	}

	if m.Idle() {
		if f0 != 0 {
			m.f0 = f0
		}
		m.msg = clean
		m.pending = nil
		m.pendingF0 = 0
		m.idx = 0
		m.ctr = 0
		m.leadCtr = 0
		return
	}

	m.pending = clean
	m.pendingF0 = f0
}

func usableFreq(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// Clear drops the current and any pending message.
func (m *Modulator[T]) Clear() {
	m.pending = nil
	m.pendingF0 = 0
	m.clear()
}

func (m *Modulator[T]) clear() {
	m.msg = m.msg[:0]
	m.idx = 0
	m.ctr = 0
	m.leadCtr = 0
}

// finish ends the current message and promotes a pending one.
func (m *Modulator[T]) finish() {
	m.clear()
	if len(m.pending) != 0 {
		m.msg = m.pending
		if m.pendingF0 != 0 {
			m.f0 = m.pendingF0
		}
	}
	m.pending = nil
	m.pendingF0 = 0
}

// Target returns the unsmoothed tone frequency of the current symbol.
func (m *Modulator[T]) Target() float64 {
	if len(m.msg) == 0 {
		return m.f0
	}
	return m.tone(m.idx)
}

func (m *Modulator[T]) tone(idx int) float64 {
	return m.f0 + m.shift*float64(m.msg[idx]-'0')
}

/*------------------------------------------------------------------
 *
 * Name:        Read
 *
 * Purpose:     Render the waveform.
 *
 * Outputs:	buffer	- Filled from the start.
 *
 * Returns:	Samples written.  Less than len(buffer) means the message
 *		ended inside this buffer; 0 means there is nothing to send.
 *
 *----------------------------------------------------------------*/

func (m *Modulator[T]) Read(buffer []T) int {
	if len(m.msg) == 0 {
		return 0
	}

	var count = len(buffer)
	var samples = 0

	for m.leadCtr < m.lead && samples < count {
		buffer[samples] = 0
		m.leadCtr++
		samples++
	}
	if samples == count {
		return count
	}

	var f = m.tone(m.idx)
	var last = len(m.msg) - 1

	for samples < count {
		var leadOut = m.idx == last && m.ctr >= m.bitRatio-m.env.Size()

		m.osc.SetFreq(m.lpf.Run(f), m.fs)
		buffer[samples] = fromUnit[T](m.osc.Read(0) * m.volume * m.env.Run(!leadOut))
		samples++

		m.ctr++
		if m.ctr == m.bitRatio {
			m.ctr = 0
			m.idx++
			if m.idx == len(m.msg) {
				m.finish()
				break
			}
			f = m.tone(m.idx)
		}
	}

	return samples
}
