package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Activate the transmitter.
 *
 * Description:	The modem itself only produces audio.  Something else has
 *		to key the radio while that audio plays, unless the radio
 *		has VOX or the host uses CAT.  Supported here:
 *
 *		none	- Nothing.  Rely on VOX.
 *
 *		serial	- RTS or DTR of a serial port, with optional
 *			  inversion.  Common with homebrew interfaces.
 *
 *		gpio	- A GPIO line via the Linux character device,
 *			  e.g. on a Raspberry Pi.
 *
 *		cm108	- One of the GPIO pins of a CM108/CM119 USB audio
 *			  chip, as found on many cheap interfaces and the
 *			  AIOC.  Written as a HID report.
 *
 *		RunKeyer follows the modem's TxOn and TxOff events.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"
	"github.com/warthog618/go-gpiocdev"
)

var ErrPTTMethod = errors.New("unknown PTT method")

type PTT interface {
	Set(on bool) error
	Close() error
}

type PTTConfig struct {
	Method string `yaml:"method"` // none, serial, gpio or cm108
	Device string `yaml:"device"` // serial port or hidraw device
	Line   string `yaml:"line"`   // RTS or DTR
	Invert bool   `yaml:"invert"`
	Chip   string `yaml:"chip"` // e.g. gpiochip0
	GPIO   int    `yaml:"gpio"` // line offset on Chip
	Pin    int    `yaml:"pin"`  // CM108 GPIO pin, 1 to 8
}

func (c PTTConfig) method() string {
	var m = strings.ToLower(strings.TrimSpace(c.Method))
	if m == "" {
		return "none"
	}
	return m
}

// Validate checks the method is known and its parameters are in range.
func (c PTTConfig) Validate() error {
	switch c.method() {
	case "none":
	case "serial":
		if c.Device == "" {
			return errors.New("serial PTT needs a device")
		}
		switch strings.ToUpper(c.Line) {
		case "", "RTS", "DTR":
		default:
			return fmt.Errorf("serial PTT line %q must be RTS or DTR", c.Line)
		}
	case "gpio":
		if c.GPIO < 0 {
			return fmt.Errorf("GPIO line %d must not be negative", c.GPIO)
		}
	case "cm108":
		if c.Pin < 1 || c.Pin > 8 {
			return fmt.Errorf("CM108 GPIO pin %d must be 1 to 8", c.Pin)
		}
	default:
		return fmt.Errorf("%w: %q", ErrPTTMethod, c.Method)
	}
	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        NewPTT
 *
 * Purpose:    	Open the PTT output and set it to receive.
 *
 *--------------------------------------------------------------------*/

func NewPTT(cfg PTTConfig) (PTT, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var p PTT
	var err error

	switch cfg.method() {
	case "none":
		return nonePTT{}, nil
	case "serial":
		p, err = openSerialPTT(cfg)
	case "gpio":
		p, err = openGPIOPTT(cfg)
	case "cm108":
		p, err = openCM108PTT(cfg)
	}
	if err != nil {
		return nil, err
	}

	if setErr := p.Set(false); setErr != nil {
		p.Close()
		return nil, setErr
	}
	return p, nil
}

type nonePTT struct{}

func (nonePTT) Set(bool) error { return nil }
func (nonePTT) Close() error   { return nil }

// level applies inversion to a PTT request.
func level(on bool, invert bool) bool {
	return on != invert
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

/* Serial port control lines. */

type modemLines interface {
	SetRTS(bool) error
	SetDTR(bool) error
	Close() error
}

type serialPTT struct {
	port   modemLines
	dtr    bool
	invert bool
}

func openSerialPTT(cfg PTTConfig) (*serialPTT, error) {
	var port, err = term.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("PTT serial port %s: %w", cfg.Device, err)
	}

	return &serialPTT{
		port:   port,
		dtr:    strings.EqualFold(cfg.Line, "DTR"),
		invert: cfg.Invert,
	}, nil
}

func (s *serialPTT) Set(on bool) error {
	var v = level(on, s.invert)
	if s.dtr {
		return s.port.SetDTR(v)
	}
	return s.port.SetRTS(v)
}

func (s *serialPTT) Close() error {
	return s.port.Close()
}

/* GPIO character device. */

// gpioOutputLine is the part of *gpiocdev.Line used for keying.
type gpioOutputLine interface {
	SetValue(int) error
	Close() error
}

type gpioPTT struct {
	line   gpioOutputLine
	invert bool
}

func openGPIOPTT(cfg PTTConfig) (*gpioPTT, error) {
	var chip = cfg.Chip
	if chip == "" {
		chip = "gpiochip0"
	}

	var line, err = gpiocdev.RequestLine(chip, cfg.GPIO,
		gpiocdev.AsOutput(boolToInt(cfg.Invert)),
		gpiocdev.WithConsumer("ft8modem"))
	if err != nil {
		return nil, fmt.Errorf("PTT %s line %d: %w", chip, cfg.GPIO, err)
	}

	return &gpioPTT{line: line, invert: cfg.Invert}, nil
}

func (g *gpioPTT) Set(on bool) error {
	if g.line == nil {
		return errors.New("PTT GPIO line not open")
	}
	return g.line.SetValue(boolToInt(level(on, g.invert)))
}

func (g *gpioPTT) Close() error {
	if g.line == nil {
		return nil
	}
	var err = g.line.Close()
	g.line = nil
	return err
}

/*-------------------------------------------------------------------
 *
 * Name:        RunKeyer
 *
 * Purpose:    	Key and unkey the transmitter from modem events until
 *		the context is done or the events channel is closed.
 *
 * Inputs:	events	- Modem events.  Each one is passed on to
 *			  next, if not nil, after any keying.
 *
 * Description:	The transmitter is always left unkeyed on return.
 *
 *--------------------------------------------------------------------*/

func RunKeyer(ctx context.Context, ptt PTT, events <-chan Event, next func(Event), logger *log.Logger) error {
	defer func() {
		if err := ptt.Set(false); err != nil {
			logger.Error("PTT release failed", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case EventTxOn, EventTxOff:
				var on = ev.Kind == EventTxOn
				if err := ptt.Set(on); err != nil {
					logger.Error("PTT failed", "on", on, "err", err)
				}
			}
			if next != nil {
				next(ev)
			}
		}
	}
}
