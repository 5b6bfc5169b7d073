package ft8modem

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEncode(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "cq.wav")
	var enc = &fakeEncoder{symbols: "0123"}
	var out bytes.Buffer

	require.NoError(t, RunEncode([]string{"FT8", "12000", "1000", path, "CQ K1ABC FN42"}, enc, &out))
	assert.Equal(t, []string{"CQ K1ABC FN42"}, enc.texts)

	var samples, rate, err = ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 12000, rate)

	// Lead-in and four symbols, then at least half a second of silence
	// in whole chunks.
	var tones = 1500 + 4*1920
	assert.Equal(t, tones+47*encodeChunk, len(samples))
	assert.Contains(t, out.String(), "Wrote 15196 samples")

	for _, s := range samples[tones:] {
		require.Equal(t, 0.0, s)
	}
}

func TestRunEncodeErrors(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "x.wav")
	var enc = &fakeEncoder{symbols: "0"}
	var out bytes.Buffer

	var tests = [][]string{
		{"FT8", "12000", "1000", path},
		{"JT65", "12000", "1000", path, "x"},
		{"FT8", "fast", "1000", path, "x"},
		{"FT8", "12000", "-5", path, "x"},
		{"FT8", "12000", "NaN", path, "x"},
		{"FT8", "12000", "Inf", path, "x"},
		{"FT8", "12000", "6000", path, "x"},
	}
	for _, args := range tests {
		assert.Error(t, RunEncode(args, enc, &out), "%v", args)
	}

	var boom = errors.New("boom")
	assert.ErrorIs(t, RunEncode([]string{"FT4", "12000", "1000", path, "x"}, &fakeEncoder{err: boom}, &out), boom)
}
