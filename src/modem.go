package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Frame synchronized capture, decode hand-off and
 *		transmit scheduling for a slotted mode.
 *
 * Description:	Process is the audio callback.  It runs on the audio
 *		thread with a hard deadline, so it never blocks on I/O,
 *		never logs and only takes the mutex for the transmit
 *		check.  Anything worth reporting is published on the
 *		event channel with a non-blocking send.
 *
 *		Receive side fields (current capture, frame counter,
 *		decimation state) belong to the audio thread.  The only
 *		receive side value shared with other goroutines is the
 *		decoding slot, which is an atomic pointer.
 *
 *		Transmit side fields (modulator, abort, slot preference,
 *		lead, volume) are guarded by mu.  sending is written
 *		under mu and is atomic so the receive path can test it
 *		without locking.
 *
 *----------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	ErrSampleRate   = errors.New("sample rate must be a multiple of 12000 Hz")
	ErrWindowSize   = errors.New("window size must be a multiple of the decimation factor")
	ErrDepth        = errors.New("decode depth must be 1 to 3")
	ErrVolume       = errors.New("volume must be in (0, 1]")
	ErrEmptySymbols = errors.New("encoder returned no symbols")
	ErrFrequency    = errors.New("frequency must be positive and below half the sample rate")
)

// Slot is the transmit slot preference.
type Slot int

const (
	NextSlot Slot = 0
	OddSlot  Slot = 1
	EvenSlot Slot = 2
)

func (s Slot) String() string {
	switch s {
	case NextSlot:
		return "next"
	case OddSlot:
		return "odd"
	case EvenSlot:
		return "even"
	}
	return "Slot(" + strconv.Itoa(int(s)) + ")"
}

// Matches reports whether frame number slotNum within the minute is
// acceptable for this preference.
func (s Slot) Matches(slotNum int) bool {
	switch s {
	case OddSlot:
		return slotNum%2 == 1
	case EvenSlot:
		return slotNum%2 == 0
	}
	return true
}

type EventKind int

const (
	EventCaptureStart EventKind = iota
	EventCaptureEnd
	EventDecodeOverrun
	EventDecodeError
	EventSlotCheck
	EventTxOn
	EventTxOff
)

func (k EventKind) String() string {
	switch k {
	case EventCaptureStart:
		return "CaptureStart"
	case EventCaptureEnd:
		return "CaptureEnd"
	case EventDecodeOverrun:
		return "DecodeOverrun"
	case EventDecodeError:
		return "DecodeError"
	case EventSlotCheck:
		return "SlotCheck"
	case EventTxOn:
		return "TxOn"
	case EventTxOff:
		return "TxOff"
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// Event reports something the audio thread did.  Only the fields that
// make sense for Kind are set.
type Event struct {
	Kind    EventKind
	Sec     float64 // position in the frame
	Capture string  // capture slot name
	Target  Slot    // EventSlotCheck
	SlotNow int     // EventSlotCheck
	Match   bool    // EventSlotCheck
	Err     error   // EventDecodeError
}

const eventQueueLen = 64

// ModemConfig describes a ModemDevice.  Clock, Encoder and Decoder default
// to the system clock, ft8code/ft4code and jt9.
type ModemConfig struct {
	Mode    Mode
	Rate    int
	Window  int
	TempDir string
	Clock   Clock
	Encoder Encoder
	Decoder Decoder
}

// DecodedLine is one decode, stamped with the whole second at or after
// the start of the capture it came from.
type DecodedLine struct {
	Time    int64
	Content string
}

type ModemDevice struct {
	mode    Mode
	clock   Clock
	encoder Encoder
	decoder Decoder
	rate    int
	decFact int

	// audio thread only
	filter       *FirFilter[float32]
	scratch      []float32
	decPhase     int
	captures     [2]*Capture
	current      *Capture
	frameCounter int
	stalled      bool
	slotLogged   bool

	decoding atomic.Pointer[Capture]
	depth    atomic.Int32
	active   atomic.Bool
	sending  atomic.Bool

	mu     sync.Mutex
	mfsk   *Modulator[float32]
	abort  bool
	slot   Slot
	lead   int
	volume float32

	events  chan Event
	workers sync.WaitGroup
	ctx     context.Context // parent of every decode
	stop    context.CancelFunc
}

/*------------------------------------------------------------------
 *
 * Name:        NewModemDevice
 *
 * Purpose:     Validate the configuration and allocate everything the
 *		audio callback will need.
 *
 * Errors:	ErrSampleRate	- Rate is not a multiple of 12000.
 *		ErrWindowSize	- Window is not a multiple of rate/12000.
 *		ErrFrameOrder	- Mode timings are out of order.
 *
 * Description:	Defaults are 1/8 second of lead-in, volume 0.5 and depth 1.
 *
 *----------------------------------------------------------------*/

func NewModemDevice(cfg ModemConfig) (*ModemDevice, error) {
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	if cfg.Rate <= 0 || cfg.Rate%DecodeRate != 0 {
		return nil, fmt.Errorf("%w: %d", ErrSampleRate, cfg.Rate)
	}

	var decFact = cfg.Rate / DecodeRate
	if cfg.Window <= 0 || cfg.Window%decFact != 0 {
		return nil, fmt.Errorf("%w: window %d, factor %d", ErrWindowSize, cfg.Window, decFact)
	}

	var d = &ModemDevice{
		mode:    cfg.Mode,
		clock:   cfg.Clock,
		encoder: cfg.Encoder,
		decoder: cfg.Decoder,
		rate:    cfg.Rate,
		decFact: decFact,
		scratch: make([]float32, cfg.Window/decFact),
		lead:    cfg.Rate / 8,
		volume:  0.5,
		events:  make(chan Event, eventQueueLen),
	}
	d.depth.Store(1)

	if d.clock == nil {
		d.clock = NewFrameClock()
	}
	if d.encoder == nil {
		d.encoder = ProcessEncoder{}
	}
	if d.decoder == nil {
		d.decoder = ProcessDecoder{}
	}

	var tempDir = cfg.TempDir
	if tempDir == "" {
		tempDir = "/tmp/"
	}
	d.captures[0] = NewCapture(tempDir, "100000_000000.wav", cfg.Mode.FrameSize)
	d.captures[1] = NewCapture(tempDir, "110000_000000.wav", cfg.Mode.FrameSize)

	var filter, err = NewFirFilter[float32](LowPass, 25, 5000, float64(cfg.Rate), HammingWindow)
	if err != nil {
		return nil, err
	}
	d.filter = filter

	d.ctx, d.stop = context.WithCancel(context.Background())

	return d, nil
}

func (d *ModemDevice) Mode() Mode {
	return d.mode
}

func (d *ModemDevice) Rate() int {
	return d.rate
}

// Events delivers what the audio thread did.  Events are dropped when
// nobody keeps up with the channel.
func (d *ModemDevice) Events() <-chan Event {
	return d.events
}

// Active reports whether the audio callback has run at least once.
func (d *ModemDevice) Active() bool {
	return d.active.Load()
}

// Sending reports whether the modulator is on the air.
func (d *ModemDevice) Sending() bool {
	return d.sending.Load()
}

// Armed reports whether a transmission is queued or in progress.
func (d *ModemDevice) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mfsk != nil
}

func (d *ModemDevice) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
	}
}

/*------------------------------------------------------------------
 *
 * Name:        Process
 *
 * Purpose:     Audio callback.
 *
 * Inputs:	in	- Microphone samples at the device rate.
 *
 * Outputs:	out	- Filled with modulator output or silence.
 *
 *----------------------------------------------------------------*/

func (d *ModemDevice) Process(in []float32, out []float32) {
	var sec = d.clock.Seconds(d.mode.FrameSize)

	if len(in) > 0 || len(out) > 0 {
		d.active.Store(true)
	}

	d.receive(in, sec)
	d.transmit(out, sec)
}

func (d *ModemDevice) receive(in []float32, sec float64) {
	var cur = d.current

	if cur == nil && d.mode.InCapture(sec) {
		cur = d.beginCapture(sec)
	}

	d.decimate(in, cur, cur != nil && !d.sending.Load())

	if cur != nil && !d.mode.InCapture(sec) {
		d.endCapture(cur, sec)
	}
}

// decimate low-pass filters the input and keeps every decFact'th sample,
// feeding the result to cur.  The filter runs whether or not anything is
// being captured so its history is always current.
func (d *ModemDevice) decimate(in []float32, cur *Capture, feed bool) {
	if d.decFact == 1 {
		if feed {
			cur.Write(in)
		}
		return
	}

	var k = 0
	for _, s := range in {
		var v = d.filter.Run(s)
		if d.decPhase == 0 {
			d.scratch[k] = v
			k++
			if k == len(d.scratch) {
				if feed {
					cur.Write(d.scratch[:k])
				}
				k = 0
			}
		}
		d.decPhase++
		if d.decPhase == d.decFact {
			d.decPhase = 0
		}
	}

	if feed && k > 0 {
		cur.Write(d.scratch[:k])
	}
}

// beginCapture starts a capture on the slot not used last time.  A slot
// whose WAV file is still being written is skipped until it is free.
func (d *ModemDevice) beginCapture(sec float64) *Capture {
	var slot = d.captures[d.frameCounter]
	if !slot.Reusable() {
		if !d.stalled {
			d.stalled = true
			d.emit(Event{Kind: EventDecodeOverrun, Sec: sec, Capture: slot.Name})
		}
		return nil
	}
	d.stalled = false

	slot.begin(AbsTime(d.clock.Now()))
	d.frameCounter ^= 1
	d.current = slot
	d.emit(Event{Kind: EventCaptureStart, Sec: sec, Capture: slot.Name})

	return slot
}

// endCapture moves the capture into the decoding slot and starts its
// worker.  An unfinished previous decode is abandoned.
func (d *ModemDevice) endCapture(cur *Capture, sec float64) {
	d.current = nil

	var prev = d.decoding.Swap(cur)
	if prev != nil && prev != cur && !prev.Done() {
		d.emit(Event{Kind: EventDecodeOverrun, Sec: sec, Capture: prev.Name})
	}

	d.workers.Add(1)
	cur.handOff(d.ctx, d.mode, d.Depth(), d.decoder, func(err error) {
		if err != nil {
			d.emit(Event{Kind: EventDecodeError, Capture: cur.Name, Err: err})
		}
		d.workers.Done()
	})

	d.emit(Event{Kind: EventCaptureEnd, Sec: sec, Capture: cur.Name})
}

/*------------------------------------------------------------------
 *
 * Name:        transmit
 *
 * Purpose:     Transmit arbitration and emission, under the mutex.
 *
 * Description:	An armed modulator goes on the air inside the TX window
 *		of a frame that matches the slot preference.  It comes off
 *		when it runs out of samples or an abort is requested; the
 *		rest of the buffer is silence.  A message queued behind the
 *		one that just finished stays armed for a later frame.
 *
 *----------------------------------------------------------------*/

func (d *ModemDevice) transmit(out []float32, sec float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sending = d.sending.Load()

	if d.abort && !sending {
		d.mfsk = nil
		d.abort = false
	}

	if !d.mode.InTxWindow(sec) {
		d.slotLogged = false
	} else if !sending && d.mfsk != nil {
		var match = true
		if d.slot != NextSlot {
			var slotNum = int(d.clock.Seconds(60) / d.mode.FrameSize)
			match = d.slot.Matches(slotNum)
			if !d.slotLogged {
				d.slotLogged = true
				d.emit(Event{Kind: EventSlotCheck, Sec: sec, Target: d.slot, SlotNow: slotNum, Match: match})
			}
		}
		if match {
			sending = true
			d.sending.Store(true)
			d.emit(Event{Kind: EventTxOn, Sec: sec})
		}
	}

	if !sending {
		clear(out)
		return
	}

	var ct = 0
	var aborted = d.abort
	if !aborted {
		ct = d.mfsk.Read(out)
	}

	// Idle after a read means the message finished, possibly exactly at
	// the end of the buffer, and anything pending has not started.
	if aborted || ct < len(out) || d.mfsk.Idle() {
		d.sending.Store(false)
		d.abort = false
		if aborted || !d.mfsk.Busy() {
			d.mfsk = nil
		}
		d.emit(Event{Kind: EventTxOff, Sec: sec})
	}

	clear(out[ct:])
}

/*------------------------------------------------------------------
 *
 * Name:        Transmit
 *
 * Purpose:     Queue a message for the next matching frame.
 *
 * Inputs:	text	- Free text, passed to the encoder.
 *		f0	- Base tone frequency, Hz.
 *		slot	- Frame parity preference.
 *
 * Errors:	ErrFrequency unless 0 < f0 < rate/2, encoder failure or an
 *		empty symbol string.  Nothing is queued in that case.
 *
 * Description:	The encoder runs before the lock is taken since it is an
 *		external process.  The modulator is created here, on the
 *		caller's goroutine; the audio thread only ever drops it.
 *
 *----------------------------------------------------------------*/

func (d *ModemDevice) Transmit(text string, f0 float64, slot Slot) error {
	if !(f0 > 0 && f0 < float64(d.rate)/2) {
		return fmt.Errorf("%w: %v Hz at %d Hz", ErrFrequency, f0, d.rate)
	}

	var symbols, err = d.encoder.Encode(d.mode, text)
	if err != nil {
		return fmt.Errorf("encode %q: %w", text, err)
	}
	if !strings.ContainsAny(symbols, "0123456789") {
		return fmt.Errorf("encode %q: %w", text, ErrEmptySymbols)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mfsk == nil {
		d.mfsk = NewModulator[float32](float64(d.rate), f0, d.mode.Baud, d.mode.Shift)
		d.mfsk.SetLead(d.lead)
		d.mfsk.SetVolume(float64(d.volume))
	}
	if !d.sending.Load() {
		d.abort = false
	}

	d.mfsk.Transmit(symbols, f0)
	d.slot = slot

	return nil
}

// CancelTransmit asks the audio thread to drop the current or queued
// transmission.  It takes effect on the next callback.
func (d *ModemDevice) CancelTransmit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.abort = true
}

/*------------------------------------------------------------------
 *
 * Name:        Poll
 *
 * Purpose:     Collect finished decodes without blocking.
 *
 * Returns:	The lines of the last completed decode, or nil when the
 *		decode slot is empty or still running.  Each line has the
 *		7 character decoder time prefix removed.
 *
 *----------------------------------------------------------------*/

func (d *ModemDevice) Poll() []DecodedLine {
	var c = d.decoding.Load()
	if c == nil {
		return nil
	}

	var res, ok = c.take()
	if !ok {
		return nil
	}
	d.decoding.CompareAndSwap(c, nil)

	var when = int64(math.Ceil(res.start))
	var lines = make([]DecodedLine, 0, len(res.lines))
	for _, l := range res.lines {
		lines = append(lines, DecodedLine{Time: when, Content: decodeContent(l)})
	}

	return lines
}

// decodeContent drops the "hhmmss " time prefix of a decoder line.
func decodeContent(line string) string {
	if len(line) <= 7 {
		return ""
	}
	return line[7:]
}

// Close stops any decode still running and waits for the workers to
// exit.  Call it after the audio stream has stopped.
func (d *ModemDevice) Close() {
	d.stop()
	d.workers.Wait()
}

func (d *ModemDevice) SetDepth(depth int) (int, error) {
	if depth < 1 || depth > 3 {
		return d.Depth(), fmt.Errorf("%w: %d", ErrDepth, depth)
	}
	d.depth.Store(int32(depth))
	return depth, nil
}

func (d *ModemDevice) Depth() int {
	return int(d.depth.Load())
}

// SetLead sets the lead-in silence, in samples, of later transmissions.
func (d *ModemDevice) SetLead(samples int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lead = samples
	return d.lead
}

func (d *ModemDevice) Lead() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.lead
}

// SetVolume sets the normalized output level.  A transmission already
// queued picks it up as well.
func (d *ModemDevice) SetVolume(v float32) float32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.volume = v
	if d.mfsk != nil {
		d.mfsk.SetVolume(float64(v))
	}
	return d.volume
}

func (d *ModemDevice) Volume() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.volume
}
