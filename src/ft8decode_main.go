package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Decode a recorded WAV file the same way the modem decodes
 *		a frame.
 *
 * Usage:	ft8decode [-m mode] [-d depth] <wav>
 *
 *		The file must be mono, 12000 Hz.  Each decode is printed as
 *		"--> line".
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const decodeTimeout = 60 * time.Second

func DecodeMain() {
	var modeName = pflag.StringP("mode", "m", "FT8", "FT8 or FT4.")
	var depth = pflag.IntP("depth", "d", 3, "Decoder depth, 1 to 3.")
	var program = pflag.StringP("decoder", "D", "jt9", "Decoder program.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] <wav>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	var mode, err = ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if err := RunDecodeFile(pflag.Arg(0), mode, *depth, ProcessDecoder{Program: *program}, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// RunDecodeFile loads path into a capture slot, decodes it and prints the
// results to w.
func RunDecodeFile(path string, mode Mode, depth int, dec Decoder, w io.Writer) error {
	if depth < 1 || depth > 3 {
		return fmt.Errorf("%w: %d", ErrDepth, depth)
	}

	var samples, rate, err = ReadWAV(path)
	if err != nil {
		return err
	}
	if rate != DecodeRate {
		return fmt.Errorf("%s: %w: got %d Hz, want %d", path, ErrSampleRate, rate, DecodeRate)
	}

	var dir, dirErr = os.MkdirTemp("", "ft8decode")
	if dirErr != nil {
		return dirErr
	}
	defer os.RemoveAll(dir)

	var c = NewCapture(dir, "000000_000000.wav", mode.FrameSize)
	c.begin(AbsTime(time.Now()))

	var pcm = make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = fromUnit[int16](s)
	}
	c.WriteInt16(pcm)

	var ctx, cancel = context.WithTimeout(context.Background(), decodeTimeout)
	var finished = make(chan struct{})
	defer func() {
		cancel()
		<-finished
	}()
	c.StartDecode(ctx, mode, depth, dec, func(error) { close(finished) })

	var lines, waitErr = c.Wait(decodeTimeout)
	for _, l := range lines {
		fmt.Fprintf(w, "--> %s\n", l)
	}
	return waitErr
}
