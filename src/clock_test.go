package ft8modem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func fixedFrameClock(t time.Time) *FrameClock {
	return &FrameClock{now: func() time.Time { return t }}
}

func TestFrameClockSeconds(t *testing.T) {
	var c = fixedFrameClock(time.Unix(1_700_000_007, 500_000_000))

	assert.InDelta(t, 12.5, c.Seconds(15), 1e-9)
	assert.InDelta(t, 5.0, c.Seconds(7.5), 1e-9)
	assert.InDelta(t, 27.5, c.Seconds(60), 1e-9)
	assert.Equal(t, 0.0, c.Seconds(0))

	assert.InDelta(t, 1_700_000_007.5, AbsTime(c.Now()), 1e-6)
}

func TestFrameClockRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var ns = rapid.Int64Range(0, 4_000_000_000*int64(time.Second)).Draw(t, "ns")
		var mod = rapid.SampledFrom([]float64{7.5, 15, 30, 60}).Draw(t, "mod")

		var s = fixedFrameClock(time.Unix(0, ns)).Seconds(mod)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.Less(t, s, mod)
	})
}

func TestFrameClockFrameBoundaries(t *testing.T) {
	// Every FT4 frame boundary is also on the 15 second grid or half way.
	var c = fixedFrameClock(time.Unix(1_699_999_980, 0).Add(7500 * time.Millisecond))
	assert.InDelta(t, 0.0, c.Seconds(7.5), 1e-9)
	assert.InDelta(t, 7.5, c.Seconds(15), 1e-9)
}
