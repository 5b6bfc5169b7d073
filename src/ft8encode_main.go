package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Write a message to a WAV file, as the modem would send it.
 *
 * Usage:	ft8encode <mode> <fs> <freq> <wav> '<txt>'
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

const encodeChunk = 128

func EncodeMain() {
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <mode> <fs> <freq> <wav> '<txt>'\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if pflag.NArg() != 5 {
		pflag.Usage()
		os.Exit(1)
	}

	if err := RunEncode(pflag.Args(), ProcessEncoder{}, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

/*------------------------------------------------------------------
 *
 * Name:        RunEncode
 *
 * Inputs:	args	- mode, sample rate, base tone Hz, output file, text.
 *		enc	- Symbol encoder.
 *		w	- Progress messages.
 *
 * Description:	The modulator runs at volume 0.5 until it has nothing
 *		left, then half a second of silence is added.
 *
 *----------------------------------------------------------------*/

func RunEncode(args []string, enc Encoder, w io.Writer) error {
	if len(args) != 5 {
		return fmt.Errorf("expected 5 arguments, got %d", len(args))
	}

	var mode, modeErr = ParseMode(args[0])
	if modeErr != nil {
		return modeErr
	}

	var rate, rateErr = strconv.Atoi(args[1])
	if rateErr != nil || rate <= 0 {
		return fmt.Errorf("invalid sample rate %q", args[1])
	}

	var f0, f0Err = strconv.ParseFloat(args[2], 64)
	if f0Err != nil || !(f0 > 0 && f0 < float64(rate)/2) {
		return fmt.Errorf("%w: %q at %d Hz", ErrFrequency, args[2], rate)
	}

	var symbols, encErr = enc.Encode(mode, args[4])
	if encErr != nil {
		return encErr
	}

	var mfsk = NewModulator[float32](float64(rate), f0, mode.Baud, mode.Shift)
	mfsk.SetVolume(0.5)
	mfsk.Transmit(symbols, f0)

	var samples []float32
	var buffer = make([]float32, encodeChunk)
	for {
		var count = mfsk.Read(buffer)
		if count == 0 {
			break
		}
		samples = append(samples, buffer[:count]...)
	}

	clear(buffer)
	var target = len(samples) + rate/2
	for len(samples) < target {
		samples = append(samples, buffer...)
	}

	if err := WriteWAVFloat(args[3], rate, samples, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %d samples (%g sec).\n", len(samples), float64(len(samples))/float64(rate))
	return nil
}
