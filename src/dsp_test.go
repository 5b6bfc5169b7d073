package ft8modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowShapes(t *testing.T) {
	const N = 25

	var tests = []struct {
		name   string
		wf     WindowFunc
		edge   float64
		center float64
	}{
		{"hamming", HammingWindow, 0.08, 1.0},
		{"hann", HannWindow, 0.0, 1.0},
		{"blackman", BlackmanWindow, 0.006879, 1.0},
		{"flattop", FlatTopWindow, 0.0, 4.636},
		{"rectangle", RectangleWindow, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.edge, tt.wf(-N/2, N), 1e-5)
			assert.InDelta(t, tt.edge, tt.wf(N/2, N), 1e-5)
			assert.InDelta(t, tt.center, tt.wf(0, N), 1e-5)

			for n := 1; n <= N/2; n++ {
				assert.InDelta(t, tt.wf(-n, N), tt.wf(n, N), 1e-9, "window should be symmetric at %d", n)
			}
		})
	}
}

func TestIdealResponsesAtCenter(t *testing.T) {
	var w = math.Pi / 4

	assert.InDelta(t, 0.25, IdealLowPass(w, 0, 25), 1e-12)
	assert.InDelta(t, 0.75, IdealHighPass(w, 0, 25), 1e-12)
	assert.InDelta(t, 0.25, IdealBandPass(w, math.Pi/2, 0, 25), 1e-12)
	assert.InDelta(t, 0.75, IdealBandStop(w, math.Pi/2, 0, 25), 1e-12)

	// Low-pass and high-pass are complementary away from the center.
	for n := 1; n < 12; n++ {
		assert.InDelta(t, 0.0, IdealLowPass(w, n, 25)+IdealHighPass(w, n, 25), 1e-12)
	}
}
