package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to the sound card through PortAudio.
 *
 * Description:	One full duplex stream, mono in and mono out, float32,
 *		at the modem's rate.  PortAudio calls the modem from its
 *		own thread once per window.
 *
 *		The caller owns portaudio.Initialize and Terminate.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// AudioProcessor is called with each window of input and fills the
// matching output window.
type AudioProcessor interface {
	Process(in []float32, out []float32)
}

// ListAudioDevices prints the index, name and channel counts of every
// device.
func ListAudioDevices(w io.Writer) error {
	var devices, err = portaudio.Devices()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Audio devices:\n")
	for i, d := range devices {
		var v = d.Name
		if d.MaxInputChannels > 0 {
			v += fmt.Sprintf(" (in:%v)", d.MaxInputChannels)
		}
		if d.MaxOutputChannels > 0 {
			v += fmt.Sprintf(" (out:%v)", d.MaxOutputChannels)
		}
		fmt.Fprintf(w, "  %3d: %s\n", i, v)
	}
	return nil
}

// findDevice accepts a device index or a name prefix.
func findDevice(dev string) (*portaudio.DeviceInfo, error) {
	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	if i, convErr := strconv.Atoi(dev); convErr == nil {
		if i < 0 || i >= len(devices) {
			return nil, fmt.Errorf("audio device %d out of range 0 to %d", i, len(devices)-1)
		}
		return devices[i], nil
	}

	for _, d := range devices {
		if strings.HasPrefix(d.Name, dev) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("audio device not found: %s", dev)
}

type AudioStream struct {
	Name   string
	stream *portaudio.Stream
}

/*------------------------------------------------------------------
 *
 * Name:        OpenAudio
 *
 * Purpose:     Open and start the duplex stream.
 *
 * Inputs:	dev	- Device index or name prefix.
 *		rate	- Sample rate, Hz.
 *		window	- Frames per callback.
 *		proc	- Called for every window.
 *
 *----------------------------------------------------------------*/

func OpenAudio(dev string, rate int, window int, proc AudioProcessor) (*AudioStream, error) {
	var info, err = findDevice(dev)
	if err != nil {
		return nil, err
	}
	if info.MaxInputChannels < 1 || info.MaxOutputChannels < 1 {
		return nil, fmt.Errorf("audio device %s must have both input and output", info.Name)
	}

	var p = portaudio.HighLatencyParameters(info, info)
	p.Input.Channels = 1
	p.Output.Channels = 1
	p.SampleRate = float64(rate)
	p.FramesPerBuffer = window

	var stream, openErr = portaudio.OpenStream(p, func(in, out []float32) {
		proc.Process(in, out)
	})
	if openErr != nil {
		return nil, fmt.Errorf("open audio %s: %w", info.Name, openErr)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start audio %s: %w", info.Name, err)
	}

	return &AudioStream{Name: info.Name, stream: stream}, nil
}

func (a *AudioStream) Close() error {
	if a.stream == nil {
		return nil
	}
	var stopErr = a.stream.Stop()
	var closeErr = a.stream.Close()
	a.stream = nil
	return errors.Join(stopErr, closeErr)
}
