package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Capture slots and the decode worker.
 *
 * Description:	A capture slot holds one frame of audio at the decode
 *		rate in a buffer allocated once, so the audio callback only
 *		ever copies samples into it.
 *
 *		When the frame ends the callback hands the slot to a decode
 *		worker goroutine.  The worker writes the WAV file, runs the
 *		external decoder on it, removes the file and posts the
 *		result on the slot's channel.  Poll picks it up from there
 *		without blocking.
 *
 *		The callback must not refill a slot while a worker is still
 *		reading its buffer.  The writing flag is raised before the
 *		worker starts and dropped once the WAV file is complete.
 *
 *		Starting a new capture on a slot cancels that slot's older
 *		decode, and a slot's next worker waits for the older one to
 *		exit before it touches the WAV file.  So there is at most
 *		one decoder per slot, two in all.
 *
 *----------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Decoder runs the external decoder on a WAV file.  Every raw output
// line is passed to emit as it arrives.
type Decoder interface {
	Decode(ctx context.Context, mode Mode, depth int, path string, emit func(line string)) error
}

// ProcessDecoder runs a jt9 compatible program as
// "<program> --ft8|--ft4 -d <depth> <path>".
type ProcessDecoder struct {
	Program string
}

func (p ProcessDecoder) Decode(ctx context.Context, mode Mode, depth int, path string, emit func(line string)) error {
	var program = p.Program
	if program == "" {
		program = "jt9"
	}

	var cmd = exec.CommandContext(ctx, program, "--"+mode.Lower(), "-d", strconv.Itoa(depth), path)
	cmd.Dir = filepath.Dir(path)

	var stdout, pipeErr = cmd.StdoutPipe()
	if pipeErr != nil {
		return pipeErr
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", program, err)
	}

	var scanner = bufio.NewScanner(stdout)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	var scanErr = scanner.Err()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", program, err)
	}
	return scanErr
}

// KeepDecodeLine trims a raw decoder line and reports whether it is a
// decode, i.e. it starts with two digits.
func KeepDecodeLine(raw string) (string, bool) {
	var line = strings.TrimSpace(raw)
	if len(line) < 2 || !isDigit(line[0]) || !isDigit(line[1]) {
		return "", false
	}
	return line, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

type captureState int32

const (
	CaptureIdle captureState = iota
	Capturing
	HandedOff
)

func (s captureState) String() string {
	switch s {
	case CaptureIdle:
		return "Idle"
	case Capturing:
		return "Capturing"
	case HandedOff:
		return "HandedOff"
	}
	return "captureState(" + strconv.Itoa(int(s)) + ")"
}

type decodeResult struct {
	gen   uint64
	start float64
	lines []string
	err   error
}

// Capture is one of the alternating capture slots.
type Capture struct {
	Name string
	Path string

	samples []int16
	n       int
	start   float64 // absolute time the capture began

	state   atomic.Int32
	gen     atomic.Uint64
	writing atomic.Bool // worker still reading samples
	busy    atomic.Bool // worker running
	results chan decodeResult

	// Owned by whoever calls begin and handOff.
	cancel   context.CancelFunc // stops the latest worker's decoder
	finished chan struct{}      // closed when the latest worker exits
}

/*------------------------------------------------------------------
 *
 * Name:        NewCapture
 *
 * Inputs:	dir	- Directory for the WAV file.
 *		name	- File name within dir.
 *		seconds	- Longest capture to hold.
 *
 *----------------------------------------------------------------*/

func NewCapture(dir string, name string, seconds float64) *Capture {
	return &Capture{
		Name:    name,
		Path:    filepath.Join(dir, name),
		samples: make([]int16, int(seconds*DecodeRate)),
		results: make(chan decodeResult, 2),
	}
}

func (c *Capture) State() captureState {
	return captureState(c.state.Load())
}

// Len is the number of samples captured so far.
func (c *Capture) Len() int {
	return c.n
}

// Start is the absolute time the capture began.
func (c *Capture) Start() float64 {
	return c.start
}

// Reusable reports whether the buffer may be refilled.
func (c *Capture) Reusable() bool {
	return !c.writing.Load()
}

// begin resets the slot for a new capture.  A decode still running for
// an older generation is cancelled and any result it queued is discarded.
func (c *Capture) begin(start float64) {
	c.gen.Add(1)
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
drain:
	for {
		select {
		case <-c.results:
		default:
			break drain
		}
	}
	c.n = 0
	c.start = start
	c.state.Store(int32(Capturing))
}

// Write appends normalized samples, dropping anything past the end of
// the buffer.
func (c *Capture) Write(in []float32) int {
	var room = len(c.samples) - c.n
	if len(in) > room {
		in = in[:room]
	}
	for i, s := range in {
		c.samples[c.n+i] = fromUnit[int16](float64(s))
	}
	c.n += len(in)
	return len(in)
}

// WriteInt16 appends samples that are already 16 bit PCM.
func (c *Capture) WriteInt16(in []int16) int {
	var n = copy(c.samples[c.n:], in)
	c.n += n
	return n
}

/*------------------------------------------------------------------
 *
 * Name:        handOff
 *
 * Purpose:     Close the capture and start its decode worker.
 *
 * Inputs:	ctx	- Cancelling it stops the decoder.  begin also
 *			  cancels it when the slot is reused.
 *
 *		done	- Called with the decode error once the worker
 *			  has finished.  A cancelled decode is not an error.
 *
 * Description:	Called on the audio thread.  The flags are raised here,
 *		before the goroutine exists, so the callback never sees a
 *		slot that is decoding but not yet marked busy.
 *
 *----------------------------------------------------------------*/

func (c *Capture) handOff(ctx context.Context, mode Mode, depth int, dec Decoder, done func(error)) {
	c.state.Store(int32(HandedOff))
	c.writing.Store(true)
	c.busy.Store(true)

	var wctx, cancel = context.WithCancel(ctx)
	var prev = c.finished
	var finished = make(chan struct{})
	c.cancel = cancel
	c.finished = finished

	var gen = c.gen.Load()
	go func() {
		defer close(finished)
		defer cancel()

		if prev != nil {
			<-prev
		}
		done(c.decode(wctx, gen, mode, depth, dec))
	}()
}

// StartDecode hands the capture to a decode worker outside the modem
// scheduler, e.g. when replaying a file.
func (c *Capture) StartDecode(ctx context.Context, mode Mode, depth int, dec Decoder, done func(error)) {
	c.handOff(ctx, mode, depth, dec, done)
}

func (c *Capture) decode(ctx context.Context, gen uint64, mode Mode, depth int, dec Decoder) error {
	var res = decodeResult{gen: gen, start: c.start}

	var err = c.writeWAV(mode)
	c.writing.Store(false)

	if err == nil {
		err = dec.Decode(ctx, mode, depth, c.Path, func(raw string) {
			if line, ok := KeepDecodeLine(raw); ok {
				res.lines = append(res.lines, line)
			}
		})
		os.Remove(c.Path)
	}

	// A newer generation owns the busy flag and the results.
	var current = gen == c.gen.Load()
	if current {
		c.busy.Store(false)
	}
	if ctx.Err() != nil {
		return nil
	}

	res.err = err
	if current {
		select {
		case c.results <- res:
		default:
		}
	}

	return err
}

// writeWAV pads or truncates the capture to the mode's full frame.
func (c *Capture) writeWAV(mode Mode) error {
	var full = int(mode.FullFrame * DecodeRate)
	var pcm = make([]int16, full)
	copy(pcm, c.samples[:min(c.n, full)])

	if err := WriteWAV16(c.Path, DecodeRate, pcm, 0o600); err != nil {
		return fmt.Errorf("capture %s: %w", c.Name, err)
	}
	return nil
}

// Done reports whether the worker has finished.
func (c *Capture) Done() bool {
	return !c.busy.Load()
}

// take returns the current generation's result if it is ready.
func (c *Capture) take() (decodeResult, bool) {
	for {
		select {
		case res := <-c.results:
			if res.gen != c.gen.Load() {
				continue
			}
			c.state.Store(int32(CaptureIdle))
			return res, true
		default:
			return decodeResult{}, false
		}
	}
}

// Wait blocks until the current generation's result is ready or the
// timeout expires.  Not for use on the audio thread.
func (c *Capture) Wait(timeout time.Duration) ([]string, error) {
	var deadline = time.After(timeout)
	for {
		select {
		case res := <-c.results:
			if res.gen != c.gen.Load() {
				continue
			}
			c.state.Store(int32(CaptureIdle))
			return res.lines, res.err
		case <-deadline:
			return nil, fmt.Errorf("capture %s: decode timed out", c.Name)
		}
	}
}
