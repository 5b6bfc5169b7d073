package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Read and write 16 bit PCM WAV files.
 *
 *----------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV16 writes mono 16 bit PCM to path, creating it with mode perm.
// The mode is applied again after creation so a permissive umask cannot
// widen it.
func WriteWAV16(path string, rate int, samples []int16, perm os.FileMode) error {
	var f, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if chmodErr := os.Chmod(path, perm); chmodErr != nil {
		f.Close()
		return chmodErr
	}

	var data = make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	var enc = wav.NewEncoder(f, rate, 16, 1, 1)
	var writeErr = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	})
	var encErr = enc.Close()
	var closeErr = f.Close()

	return errors.Join(writeErr, encErr, closeErr)
}

// WriteWAVFloat is WriteWAV16 for normalized float samples.
func WriteWAVFloat[T float32 | float64](path string, rate int, samples []T, perm os.FileMode) error {
	var pcm = make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = fromUnit[int16](float64(s))
	}
	return WriteWAV16(path, rate, pcm, perm)
}

// ReadWAV returns the first channel of a PCM WAV file normalized to
// [-1, 1], along with its sample rate.
func ReadWAV(path string) ([]float64, int, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var dec = wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}

	var buf, bufErr = dec.FullPCMBuffer()
	if bufErr != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, bufErr)
	}

	var channels = max(int(dec.NumChans), 1)
	var full = float64(int64(1) << (dec.BitDepth - 1))

	var out = make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		out = append(out, float64(buf.Data[i])/full)
	}

	return out, int(dec.SampleRate), nil
}
