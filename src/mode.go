package ft8modem

import (
	"errors"
	"fmt"
	"strings"
)

// DecodeRate is the sample rate the external decoder expects.
const DecodeRate = 12000

var (
	ErrMode       = errors.New("unsupported mode")
	ErrFrameOrder = errors.New("frame timing must satisfy 0 <= end < start < size")
)

/*------------------------------------------------------------------
 *
 * Purpose:     Timing and keying parameters of a slotted mode.
 *
 * Description:	Times are seconds within a frame.  A capture runs from
 *		FrameStart, just before the frame boundary, until FrameEnd
 *		of the following frame.  A transmission may only start
 *		inside [TxWinStart, TxWinEnd).
 *
 *----------------------------------------------------------------*/

type Mode struct {
	Name       string
	TxWinStart float64
	TxWinEnd   float64
	FrameSize  float64
	FrameStart float64
	FrameEnd   float64
	Baud       float64 // symbols per second
	Shift      float64 // tone spacing, Hz
	FullFrame  float64 // seconds of audio handed to the decoder
}

var FT8 = Mode{
	Name:       "FT8",
	TxWinStart: 0.0,
	TxWinEnd:   2.0,
	FrameSize:  15.0,
	FrameStart: 14.9,
	FrameEnd:   13.0,
	Baud:       6.25,
	Shift:      6.25,
	FullFrame:  13.5,
}

var FT4 = Mode{
	Name:       "FT4",
	TxWinStart: 0.0,
	TxWinEnd:   1.0,
	FrameSize:  15.0 / 2,
	FrameStart: 14.9 / 2,
	FrameEnd:   13.0 / 2,
	Baud:       12000.0 / 576.0,
	Shift:      12000.0 / 576.0,
	FullFrame:  6.5,
}

// ParseMode looks up a mode by name, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FT8":
		return FT8, nil
	case "FT4":
		return FT4, nil
	}
	return Mode{}, fmt.Errorf("%w: %q", ErrMode, s)
}

// Lower is the mode name as used on decoder and encoder command lines.
func (m Mode) Lower() string {
	return strings.ToLower(m.Name)
}

// Validate checks the frame boundaries are ordered so the capture window
// wraps across the frame boundary exactly once.
func (m Mode) Validate() error {
	if !(m.FrameEnd >= 0 && m.FrameEnd < m.FrameStart && m.FrameStart < m.FrameSize) {
		return fmt.Errorf("%w: mode %s has end=%g start=%g size=%g", ErrFrameOrder, m.Name, m.FrameEnd, m.FrameStart, m.FrameSize)
	}
	if m.Baud <= 0 {
		return fmt.Errorf("mode %s: baud must be positive", m.Name)
	}
	return nil
}

// InCapture reports whether sec falls inside the capture window.
func (m Mode) InCapture(sec float64) bool {
	return sec >= m.FrameStart || sec < m.FrameEnd
}

// InTxWindow reports whether a transmission may start at sec.
func (m Mode) InTxWindow(sec float64) bool {
	return sec >= m.TxWinStart && sec < m.TxWinEnd
}
