package ft8modem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDecoder checks the WAV it is given and replies with canned lines.
type fakeDecoder struct {
	lines   []string
	err     error
	gate    chan struct{} // when not nil, Decode waits for it to close
	samples chan int      // length of each WAV seen

	running atomic.Int32
	peak    atomic.Int32 // most Decode calls seen at once
}

func (f *fakeDecoder) Decode(ctx context.Context, _ Mode, _ int, path string, emit func(string)) error {
	var n = f.running.Add(1)
	defer f.running.Add(-1)
	for {
		var p = f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	var pcm, rate, err = ReadWAV(path)
	if err != nil {
		return err
	}
	if rate != DecodeRate {
		return errors.New("wrong rate")
	}
	if f.samples != nil {
		f.samples <- len(pcm)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, l := range f.lines {
		emit(l)
	}
	return f.err
}

func writeScript(t *testing.T, name string, body string) string {
	t.Helper()
	var path = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestKeepDecodeLine(t *testing.T) {
	var tests = []struct {
		raw  string
		want string
		keep bool
	}{
		{"000000 -12  0.3 1234 ~  CQ K1ABC FN42  ", "000000 -12  0.3 1234 ~  CQ K1ABC FN42", true},
		{"  123456  -1 ", "123456  -1", true},
		{"<DecodeFinished>   0   1   0", "", false},
		{"1", "", false},
		{"", "", false},
		{"a1 junk", "", false},
	}

	for _, tt := range tests {
		var got, keep = KeepDecodeLine(tt.raw)
		assert.Equal(t, tt.keep, keep, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestCaptureDecodes(t *testing.T) {
	var dir = t.TempDir()
	var c = NewCapture(dir, "000000_000000.wav", FT8.FrameSize)
	assert.Equal(t, CaptureIdle, c.State())

	c.begin(100.25)
	assert.Equal(t, Capturing, c.State())
	assert.Equal(t, 100.25, c.Start())

	assert.Equal(t, 3, c.Write([]float32{0.5, -0.5, 0}))
	assert.Equal(t, 2, c.WriteInt16([]int16{1, 2}))
	assert.Equal(t, 5, c.Len())

	var dec = &fakeDecoder{
		lines:   []string{"000000 -12  0.3 1234 ~  CQ K1ABC FN42", "junk", "<DecodeFinished>"},
		samples: make(chan int, 1),
	}

	var doneErr = make(chan error, 1)
	c.handOff(context.Background(), FT8, 2, dec, func(err error) { doneErr <- err })
	assert.Equal(t, HandedOff, c.State())

	var lines, err = c.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"000000 -12  0.3 1234 ~  CQ K1ABC FN42"}, lines)
	assert.Equal(t, int(FT8.FullFrame*DecodeRate), <-dec.samples, "WAV is padded to the full frame")
	assert.NoError(t, <-doneErr)

	assert.True(t, c.Done())
	assert.True(t, c.Reusable())
	assert.Equal(t, CaptureIdle, c.State())
	assert.NoFileExists(t, c.Path)
}

func TestCaptureTruncatesToFullFrame(t *testing.T) {
	var c = NewCapture(t.TempDir(), "a.wav", FT8.FrameSize)
	c.begin(0)

	var chunk = make([]float32, DecodeRate)
	for i := 0; i < 20; i++ {
		c.Write(chunk)
	}
	assert.Equal(t, int(FT8.FrameSize*DecodeRate), c.Len(), "writes past the buffer are dropped")

	var dec = &fakeDecoder{samples: make(chan int, 1)}
	c.StartDecode(context.Background(), FT8, 1, dec, func(error) {})

	var _, err = c.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, int(FT8.FullFrame*DecodeRate), <-dec.samples)
}

func TestCaptureReportsDecoderError(t *testing.T) {
	var c = NewCapture(t.TempDir(), "a.wav", FT4.FrameSize)
	c.begin(0)

	var boom = errors.New("boom")
	var dec = &fakeDecoder{err: boom}
	var doneErr = make(chan error, 1)
	c.handOff(context.Background(), FT4, 1, dec, func(err error) { doneErr <- err })

	var _, err = c.Wait(5 * time.Second)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, <-doneErr, boom)
}

func TestCaptureDiscardsStaleResult(t *testing.T) {
	var c = NewCapture(t.TempDir(), "a.wav", FT8.FrameSize)
	c.begin(0)

	var dec = &fakeDecoder{lines: []string{"000000 1 2 3 ~ X"}, gate: make(chan struct{})}
	var finished = make(chan struct{})
	c.handOff(context.Background(), FT8, 1, dec, func(error) { close(finished) })

	require.Eventually(t, c.Reusable, 5*time.Second, 10*time.Millisecond)
	assert.False(t, c.Done())

	c.begin(15)
	close(dec.gate)
	<-finished

	var _, ok = c.take()
	assert.False(t, ok, "result belongs to an older capture")
	assert.Equal(t, Capturing, c.State())
}

func TestCaptureReuseCancelsOlderDecode(t *testing.T) {
	var c = NewCapture(t.TempDir(), "a.wav", FT8.FrameSize)
	c.begin(0)

	var old = &fakeDecoder{lines: []string{"000000 1 2 3 ~ OLD"}, gate: make(chan struct{})}
	var oldErr = make(chan error, 1)
	c.handOff(context.Background(), FT8, 1, old, func(err error) { oldErr <- err })

	require.Eventually(t, func() bool { return old.running.Load() == 1 }, 5*time.Second, time.Millisecond)
	require.True(t, c.Reusable())

	c.begin(15)
	c.Write(make([]float32, DecodeRate))

	var dec = &fakeDecoder{lines: []string{"000000 1 2 3 ~ NEW"}, samples: make(chan int, 1)}
	c.handOff(context.Background(), FT8, 1, dec, func(error) {})

	var lines, err = c.Wait(5 * time.Second)
	require.NoError(t, err, "the newer WAV must survive the older worker's cleanup")
	assert.Equal(t, []string{"000000 1 2 3 ~ NEW"}, lines)
	assert.NoError(t, <-oldErr, "a cancelled decode is not an error")
	assert.NoFileExists(t, c.Path)
}

func TestCaptureWaitTimesOut(t *testing.T) {
	var c = NewCapture(t.TempDir(), "a.wav", FT8.FrameSize)
	c.begin(0)

	var _, err = c.Wait(20 * time.Millisecond)
	assert.Error(t, err)
}

func TestProcessDecoder(t *testing.T) {
	var script = writeScript(t, "jt9", `echo "$1 $2 $3"
echo "000000 -10  0.2 1500 ~  CQ TEST"
`)

	var wavPath = filepath.Join(t.TempDir(), "x.wav")
	var got []string
	var err = ProcessDecoder{Program: script}.Decode(context.Background(), FT4, 3, wavPath, func(l string) {
		got = append(got, l)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"--ft4 -d 3", "000000 -10  0.2 1500 ~  CQ TEST"}, got)

	err = ProcessDecoder{Program: writeScript(t, "fail", "exit 3\n")}.Decode(context.Background(), FT8, 1, wavPath, func(string) {})
	assert.Error(t, err)
}

func TestProcessEncoder(t *testing.T) {
	var script = writeScript(t, "ft8code", `echo "Message: $1"
echo ""
echo "  3140652000  "
echo ""
`)

	var enc = ProcessEncoder{Programs: map[string]string{"ft8": script}}
	var symbols, err = enc.Encode(FT8, "CQ K1ABC FN42")
	require.NoError(t, err)
	assert.Equal(t, "3140652000", symbols)

	_, err = ProcessEncoder{}.Encode(Mode{Name: "JT9"}, "x")
	assert.ErrorIs(t, err, ErrMode)

	_, err = ProcessEncoder{Programs: map[string]string{"ft4": filepath.Join(t.TempDir(), "missing")}}.Encode(FT4, "x")
	assert.Error(t, err)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "c", LastLine("a\nb\n c \n\n"))
	assert.Equal(t, "", LastLine(""))
	assert.Equal(t, "one", LastLine("one"))
}
