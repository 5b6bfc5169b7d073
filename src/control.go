package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Text command interface for client applications.
 *
 * Description:	Clients send one command per line over TCP, a pseudo
 *		terminal or a serial port:
 *
 *		<freq>[E|O] <text>	Send text with the lowest tone at freq
 *					Hz, in the next, even or odd slot.
 *		STOP			Cancel the transmission.
 *		LEVEL <1-100>		Output level, percent.
 *		DEPTH <1-3>		Decoder depth.
 *		LOGS			List recent decodes.
 *		WIPE			Forget recent decodes.
 *		CQONLYENABLED		Only keep decodes that are CQ calls.
 *		CQONLYDISABLED		Keep every decode.
 *		QRZCOUNTRY;<call>	Country of a call sign.
 *
 *		Anything other than letters, digits, space and ".-+;" is
 *		discarded.  CR or LF ends the line.  Only LOGS and
 *		QRZCOUNTRY answer the client; everything else is logged.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/pkg/term"
)

const maxCommandLen = 256

var ErrCommand = errors.New("invalid command")

// Radio is what the commands act on; *ModemDevice satisfies it.
type Radio interface {
	Transmit(text string, f0 float64, slot Slot) error
	CancelTransmit()
	SetVolume(v float32) float32
	SetDepth(depth int) (int, error)
}

type Commander struct {
	radio  Radio
	cache  *DecodedCache
	logger *log.Logger
}

func NewCommander(radio Radio, cache *DecodedCache, logger *log.Logger) *Commander {
	return &Commander{radio: radio, cache: cache, logger: logger}
}

/*-------------------------------------------------------------------
 *
 * Name:        Execute
 *
 * Purpose:    	Carry out one command line.
 *
 * Returns:	Text for the client, usually empty, and an error for a
 *		malformed command or one the radio refused.
 *
 *--------------------------------------------------------------------*/

func (c *Commander) Execute(line string) (string, error) {
	var cmd = strings.ToUpper(strings.TrimSpace(line))

	switch cmd {
	case "":
		return "", nil
	case "CQONLYENABLED":
		c.cache.SetCQOnly(true)
		c.logger.Info("Only CQ calls will be listed")
		return "", nil
	case "CQONLYDISABLED":
		c.cache.SetCQOnly(false)
		c.logger.Info("All band activity will be listed")
		return "", nil
	case "WIPE":
		c.cache.Wipe()
		c.logger.Info("Decoded message cache cleared")
		return "", nil
	case "LOGS":
		return c.cache.List(), nil
	case "STOP":
		c.radio.CancelTransmit()
		c.logger.Info("Cancel transmit")
		return "", nil
	}

	if strings.HasPrefix(cmd, "QRZCOUNTRY") {
		var i = strings.IndexByte(cmd, ';')
		if i < 0 {
			return "", fmt.Errorf("%w: QRZCOUNTRY needs ;<call>", ErrCommand)
		}
		c.logger.Debug("Country lookup", "call", cmd[i+1:])
		return "QRZCOUNTRY;UNKNOWN\n\r", nil
	}

	var verb, arg, found = strings.Cut(cmd, " ")
	if !found {
		return "", fmt.Errorf("%w: no frequency specified", ErrCommand)
	}
	arg = strings.TrimSpace(arg)

	switch verb {
	case "LEVEL":
		var n, err = strconv.Atoi(arg)
		if err != nil || n < 1 || n > 100 {
			return "", fmt.Errorf("%w: level %q must be 1 to 100", ErrCommand, arg)
		}
		c.radio.SetVolume(float32(n) / 100)
		c.logger.Info("Level changed", "percent", n)
		return "", nil

	case "DEPTH":
		var n, err = strconv.Atoi(arg)
		if err != nil {
			return "", fmt.Errorf("%w: depth %q must be 1 to 3", ErrCommand, arg)
		}
		if _, err := c.radio.SetDepth(n); err != nil {
			return "", err
		}
		c.logger.Info("Depth changed", "depth", n)
		return "", nil
	}

	var f0, slot, err = parseFrequency(verb)
	if err != nil {
		return "", err
	}
	if arg == "" {
		return "", fmt.Errorf("%w: nothing to send", ErrCommand)
	}

	if err := c.radio.Transmit(arg, f0, slot); err != nil {
		return "", err
	}
	c.logger.Info("Send", "freq", f0, "slot", slot, "text", arg)

	return "", nil
}

// parseFrequency reads "1500", "1500E" or "1500O".  An unknown suffix
// letter is ignored.  The number is plain decimal: no sign, exponent,
// Inf or NaN.
func parseFrequency(s string) (float64, Slot, error) {
	var slot = NextSlot

	if s != "" && !isDigit(s[len(s)-1]) {
		switch s[len(s)-1] {
		case 'E':
			slot = EvenSlot
		case 'O':
			slot = OddSlot
		}
		s = s[:len(s)-1]
	}

	if strings.Trim(s, "0123456789.") != "" {
		return 0, NextSlot, fmt.Errorf("%w: invalid frequency %q", ErrCommand, s)
	}

	var f, err = strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, NextSlot, fmt.Errorf("%w: invalid frequency %q", ErrCommand, s)
	}
	return f, slot, nil
}

func commandChar(b byte) bool {
	return isDigit(b) || isAlpha(b) || strings.IndexByte(" .-+;", b) >= 0
}

// LineBuffer assembles command lines from a byte stream.
type LineBuffer struct {
	buf []byte
}

// Feed adds received bytes and returns any lines they complete.  Empty
// lines are not returned.
func (l *LineBuffer) Feed(p []byte) []string {
	var lines []string
	for _, b := range p {
		switch {
		case b == '\r' || b == '\n':
			if len(l.buf) > 0 {
				lines = append(lines, string(l.buf))
				l.buf = l.buf[:0]
			}
		case commandChar(b):
			if len(l.buf) < maxCommandLen {
				l.buf = append(l.buf, b)
			}
		}
	}
	return lines
}

// readCommands executes commands from rw until it fails or is closed.
func (c *Commander) readCommands(rw io.ReadWriter, peer string) error {
	var lb LineBuffer
	var p = make([]byte, 256)

	for {
		var n, err = rw.Read(p)
		for _, line := range lb.Feed(p[:n]) {
			var reply, cmdErr = c.Execute(line)
			if cmdErr != nil {
				c.logger.Warn("Command failed", "peer", peer, "line", line, "err", cmdErr)
			}
			if reply != "" {
				if _, werr := io.WriteString(rw, reply); werr != nil {
					return werr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// serveStream runs readCommands until it returns or ctx is done.  The
// stream is closed either way.
func (c *Commander) serveStream(ctx context.Context, rw io.ReadWriteCloser, peer string) error {
	var done = make(chan error, 1)
	go func() {
		done <- c.readCommands(rw, peer)
	}()

	select {
	case <-ctx.Done():
		rw.Close()
		return nil
	case err := <-done:
		rw.Close()
		return err
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Serve
 *
 * Purpose:    	Accept TCP clients until ctx is done.
 *
 * Description:	Each client gets its own goroutine.  Replies go to the
 *		client that asked.
 *
 *--------------------------------------------------------------------*/

func (c *Commander) Serve(ctx context.Context, ln net.Listener) error {
	var stop = context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	c.logger.Info("Ready to accept control clients", "addr", ln.Addr())

	for {
		var conn, err = ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("control accept: %w", err)
		}

		var peer = conn.RemoteAddr().String()
		c.logger.Info("Control client attached", "peer", peer)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.serveStream(ctx, conn, peer); err != nil {
				c.logger.Debug("Control client error", "peer", peer, "err", err)
			}
			c.logger.Info("Control client detached", "peer", peer)
		}()
	}
}

func (c *Commander) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	var ln, err = lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("control listen %s: %w", addr, err)
	}
	return c.Serve(ctx, ln)
}

/*-------------------------------------------------------------------
 *
 * Name:        ServePTY
 *
 * Purpose:    	Offer the command interface on a pseudo terminal.
 *
 * Inputs:	symlink	- Stable name for the terminal, e.g. /tmp/ft8modem.
 *			  The pts name changes every time.
 *
 * Description:	The slave side is held open so reads on the master do
 *		not fail while no client has it open.
 *
 *--------------------------------------------------------------------*/

func (c *Commander) ServePTY(ctx context.Context, symlink string) error {
	var ptmx, pts, err = pty.Open()
	if err != nil {
		return fmt.Errorf("could not create pseudo terminal: %w", err)
	}
	defer pts.Close()

	if symlink != "" {
		os.Remove(symlink)
		if err := os.Symlink(pts.Name(), symlink); err != nil {
			ptmx.Close()
			return fmt.Errorf("symlink %s: %w", symlink, err)
		}
		defer os.Remove(symlink)
		c.logger.Info("Created symlink", "link", symlink, "pty", pts.Name())
	}

	c.logger.Info("Control interface available", "pty", pts.Name())

	return c.serveStream(ctx, ptmx, pts.Name())
}

// ServeSerial offers the command interface on a serial port.
func (c *Commander) ServeSerial(ctx context.Context, device string, baud int) error {
	var port, err = term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return fmt.Errorf("control serial port %s: %w", device, err)
	}

	c.logger.Info("Control interface available", "serial", device, "baud", baud)

	return c.serveStream(ctx, port, device)
}
