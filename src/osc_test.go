package ft8modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func angularDistance(a, b float64) float64 {
	var d = math.Abs(a - b)
	return math.Min(d, twoPi-d)
}

func TestOscPhaseWraps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var omega = rapid.Float64Range(0.001, math.Pi).Draw(t, "omega")
		var n = rapid.IntRange(1, 2000).Draw(t, "n")

		var o = NewOscOmega[float64](omega)
		for i := 0; i < n; i++ {
			o.Read(0)
		}

		var p = o.Phase()
		assert.GreaterOrEqual(t, p, 0.0)
		assert.Less(t, p, twoPi)
		assert.Less(t, angularDistance(math.Mod(float64(n)*omega, twoPi), p), 1e-6)
	})
}

func TestOscOutput(t *testing.T) {
	var o = NewOsc[float64](1000, 4000)
	assert.InDelta(t, math.Pi/2, o.Omega(), 1e-12)

	var want = []float64{0, 1, 0, -1, 0}
	for i, w := range want {
		assert.InDelta(t, w, o.Read(0), 1e-9, "sample %d", i)
	}

	var fixed = NewOsc[int16](1000, 4000)
	fixed.Read(0)
	assert.Equal(t, int16(math.MaxInt16), fixed.Read(0))
}

func TestOscErrorIsClamped(t *testing.T) {
	var o = NewOscOmega[float32](0.1)
	o.Read(5)
	assert.InDelta(t, 0.15, o.Phase(), 1e-12)

	o = NewOscOmega[float32](0.1)
	o.Read(-5)
	assert.InDelta(t, 0.05, o.Phase(), 1e-12)
}

func TestOscSetFreqKeepsPhase(t *testing.T) {
	var o = NewOsc[float64](100, 8000)
	for i := 0; i < 10; i++ {
		o.Read(0)
	}
	var before = o.Phase()

	o.SetFreq(200, 8000)
	assert.Equal(t, before, o.Phase())
	assert.InDelta(t, twoPi*200/8000, o.Omega(), 1e-12)
}

func TestComplexOscQuadrature(t *testing.T) {
	var c = NewComplexOsc[float64](500, 8000)
	for i := 0; i < 100; i++ {
		var re, im = c.Read(0)
		assert.InDelta(t, 1.0, re*re+im*im, 1e-9)
	}
}
