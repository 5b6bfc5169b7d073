package ft8modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAlphaConversionsRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var fs = rapid.Float64Range(1000, 192000).Draw(t, "fs")
		var fc = rapid.Float64Range(1, fs/4).Draw(t, "fc")

		var lp = LowpassToAlpha(fs, fc)
		assert.Greater(t, lp, 0.0)
		assert.Less(t, lp, 1.0)
		assert.InEpsilon(t, fc, AlphaToLowpass(lp, fs), 1e-9)

		var hp = HighpassToAlpha(fs, fc)
		assert.Greater(t, hp, 0.0)
		assert.Less(t, hp, 1.0)
		assert.InEpsilon(t, fc, AlphaToHighpass(hp, fs), 1e-9)
	})
}

func TestSmootherConverges(t *testing.T) {
	var s = NewSmoother[float64](0.1, 0)
	assert.InDelta(t, 0.1, s.Run(1), 1e-12)
	for i := 0; i < 500; i++ {
		s.Run(1)
	}
	assert.InDelta(t, 1.0, s.Value(), 1e-9)

	s.Clear()
	assert.Equal(t, 0.0, s.Value())

	var fixed = NewSmoother[int16](0.1, 0)
	for i := 0; i < 500; i++ {
		fixed.Run(10000)
	}
	assert.InDelta(t, 10000, int(fixed.Value()), 50)
	assert.Equal(t, 0.1, fixed.Alpha())
}

func TestDesmootherBlocksDC(t *testing.T) {
	var d = NewDesmoother[float64](0.9, 0)
	assert.InDelta(t, 0.9, d.Run(1), 1e-12)
	for i := 0; i < 300; i++ {
		d.Run(1)
	}
	assert.InDelta(t, 0.0, d.Value(), 1e-6)
}

func TestDecayAttackAndRelease(t *testing.T) {
	var d = NewDecay[float32](0.5, 0)

	assert.Equal(t, float32(1), d.Run(1))
	assert.Equal(t, float32(0.5), d.Run(0))
	assert.Equal(t, float32(0.25), d.Run(0))
	assert.Equal(t, float32(0.75), d.Run(0.75))
}
