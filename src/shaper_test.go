package ft8modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShaperRamps(t *testing.T) {
	var s = NewShaper[float32](10)
	assert.Equal(t, 10, s.Size())

	var last float32
	for i := 0; i < 10; i++ {
		var v = s.Run(true)
		assert.Greater(t, v, last, "ramp up at %d", i)
		last = v
	}
	assert.InDelta(t, 1.0, last, 1e-6)
	assert.Equal(t, float32(1), s.Run(true))

	for i := 0; i < 10; i++ {
		var v = s.Run(false)
		assert.Less(t, v, last, "ramp down at %d", i)
		last = v
	}
	assert.InDelta(t, 0.0, last, 1e-6)
	assert.Equal(t, float32(0), s.Run(false))
}

func TestShaperZeroLength(t *testing.T) {
	var s = NewShaper[int16](-3)
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, int16(32767), s.Run(true))
	assert.Equal(t, int16(0), s.Run(false))
}
