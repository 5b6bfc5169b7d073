package ft8modem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "t.wav")
	var in = []int16{0, 16384, -16384, 32767, -32768}

	require.NoError(t, WriteWAV16(path, DecodeRate, in, 0o600))

	var st, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	var out, rate, readErr = ReadWAV(path)
	require.NoError(t, readErr)
	assert.Equal(t, DecodeRate, rate)
	require.Len(t, out, len(in))

	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
	assert.InDelta(t, -0.5, out[2], 1e-9)
	assert.InDelta(t, -1.0, out[4], 1e-9)
}

func TestWAVFloat(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "f.wav")
	require.NoError(t, WriteWAVFloat(path, 48000, []float32{0.25, 2, -2}, 0o644))

	var out, rate, err = ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, rate)
	assert.InDelta(t, 0.25, out[0], 1e-4)
	assert.InDelta(t, 1.0, out[1], 1e-4, "clipped")
	assert.InDelta(t, -1.0, out[2], 1e-4, "clipped")
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file at all"), 0o600))

	var _, _, err = ReadWAV(path)
	assert.Error(t, err)

	_, _, err = ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
