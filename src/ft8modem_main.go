package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the ft8modem sound card modem.
 *
 * Description:	Opens the sound card, runs the modem in the audio
 *		callback, and offers the text command interface to client
 *		applications.  Decodes are printed, cached for the LOGS
 *		command and optionally saved to a log file.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const pollInterval = 100 * time.Millisecond

func ModemMain() {
	var configPath = pflag.StringP("config", "c", "", "Configuration file.  Default is to search ./ft8modem.yaml, ~/.config/ft8modem/ft8modem.yaml, /etc/ft8modem.yaml.")
	var listDevices = pflag.BoolP("list-devices", "l", false, "List audio devices and exit.")
	var rate = pflag.IntP("rate", "r", 48000, "Audio sample rate, a multiple of 12000.")
	var window = pflag.IntP("window", "w", 256, "Audio frames per callback.")
	var listen = pflag.StringP("listen", "p", ":6666", "TCP address for control clients.  Empty to disable.")
	var ptyLink = pflag.StringP("pty", "t", "", "Create a pseudo terminal for control, with this symlink.")
	var serialDev = pflag.StringP("serial", "s", "", "Serial port for control.")
	var baud = pflag.IntP("baud", "b", 9600, "Serial port speed.")
	var dnssdOn = pflag.BoolP("dnssd", "n", false, "Announce the control port with DNS-SD.")
	var grid = pflag.StringP("grid", "g", "", "Station grid square, for distances.")
	var logDir = pflag.StringP("log-dir", "L", "", "Directory for daily decode logs.")
	var logLevel = pflag.StringP("log-level", "v", "info", "debug, info, warn or error.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - FT8/FT4 sound card modem\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] <mode> <device> [depth]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "mode is FT8 or FT4.  device is an audio device number or name,\n")
		fmt.Fprintf(os.Stderr, "see --list-devices.  depth is the decoder depth, 1 to 3.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *version {
		PrintVersion(os.Stdout, false)
		os.Exit(0)
	}

	var cfg, cfgFile, cfgErr = LoadConfig(*configPath)
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", cfgErr)
		os.Exit(1)
	}

	/*
	 * Command line options win over the configuration file.
	 */
	var changed = pflag.CommandLine.Changed
	if changed("rate") {
		cfg.Rate = *rate
	}
	if changed("window") {
		cfg.Window = *window
	}
	if changed("listen") {
		cfg.Control.Listen = *listen
	}
	if changed("pty") {
		cfg.Control.PTY = *ptyLink
	}
	if changed("serial") {
		cfg.Control.Serial = *serialDev
	}
	if changed("baud") {
		cfg.Control.Baud = *baud
	}
	if changed("dnssd") {
		cfg.Control.DNSSD = *dnssdOn
	}
	if changed("grid") {
		cfg.Station.Grid = *grid
	}
	if changed("log-dir") {
		cfg.Log.Dir = *logDir
	}
	if changed("log-level") {
		cfg.Log.Level = *logLevel
	}

	var args = pflag.Args()
	if len(args) > 0 {
		cfg.Mode = args[0]
	}
	if len(args) > 1 {
		cfg.Device = args[1]
	}
	if len(args) > 2 {
		var depth, err = strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid depth %q\n", args[2])
			os.Exit(1)
		}
		cfg.Depth = depth
	}

	var logger = NewLogger(os.Stderr, cfg.Log.Level)
	if cfgFile != "" {
		logger.Info("Configuration", "file", cfgFile)
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("PortAudio initialization failed", "err", err)
	}
	defer portaudio.Terminate()

	if *listDevices {
		if err := ListAudioDevices(os.Stdout); err != nil {
			logger.Fatal("Could not list audio devices", "err", err)
		}
		return
	}

	if cfg.Device == "" {
		pflag.Usage()
		fmt.Fprintf(os.Stderr, "\n")
		ListAudioDevices(os.Stderr)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	if err := runModem(cfg, logger); err != nil {
		logger.Fatal("Modem stopped", "err", err)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        runModem
 *
 * Purpose:    	Start everything and wait for a signal.
 *
 *--------------------------------------------------------------------*/

func runModem(cfg Config, logger *log.Logger) error {
	var mode, _ = ParseMode(cfg.Mode)

	var modem, err = NewModemDevice(ModemConfig{
		Mode:    mode,
		Rate:    cfg.Rate,
		Window:  cfg.Window,
		TempDir: cfg.TempDir,
		Encoder: ProcessEncoder{Programs: cfg.Encoders},
		Decoder: ProcessDecoder{Program: cfg.Decoder},
	})
	if err != nil {
		return err
	}
	defer modem.Close()

	modem.SetDepth(cfg.Depth)
	modem.SetVolume(float32(cfg.Volume))
	modem.SetLead(int(cfg.Lead * float64(cfg.Rate)))

	var ptt, pttErr = NewPTT(cfg.PTT)
	if pttErr != nil {
		return pttErr
	}
	defer ptt.Close()

	var dlog *DecodeLog
	switch {
	case cfg.Log.Dir != "":
		dlog = NewDecodeLog(true, cfg.Log.Dir, cfg.Station.Grid, logger)
	case cfg.Log.File != "":
		dlog = NewDecodeLog(false, cfg.Log.File, cfg.Station.Grid, logger)
	}
	if dlog != nil {
		defer dlog.Close()
	}

	var stream, audioErr = OpenAudio(cfg.Device, cfg.Rate, cfg.Window, modem)
	if audioErr != nil {
		return audioErr
	}
	defer stream.Close()

	logger.Info("Modem running", "mode", mode.Name, "device", stream.Name, "rate", cfg.Rate, "depth", modem.Depth())

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var g, gctx = errgroup.WithContext(ctx)

	var cache = NewDecodedCache()
	var commander = NewCommander(modem, cache, logger)

	g.Go(func() error {
		return RunKeyer(gctx, ptt, modem.Events(), func(ev Event) { logEvent(logger, ev) }, logger)
	})

	g.Go(func() error {
		return pollDecodes(gctx, modem, cache, dlog, cfg.Station.Grid, logger)
	})

	if cfg.Control.Listen != "" {
		g.Go(func() error {
			return commander.ListenAndServe(gctx, cfg.Control.Listen)
		})

		if cfg.Control.DNSSD {
			var port, portErr = listenPort(cfg.Control.Listen)
			if portErr != nil {
				return portErr
			}
			g.Go(func() error {
				if err := Announce(gctx, cfg.Control.Name, port, logger); err != nil {
					logger.Error("DNS-SD announcement stopped", "err", err)
				}
				return nil
			})
		}
	}

	if cfg.Control.PTY != "" {
		g.Go(func() error {
			return commander.ServePTY(gctx, cfg.Control.PTY)
		})
	}

	if cfg.Control.Serial != "" {
		g.Go(func() error {
			return commander.ServeSerial(gctx, cfg.Control.Serial, cfg.Control.Baud)
		})
	}

	err = g.Wait()
	logger.Info("Shutting down")
	return err
}

func listenPort(addr string) (int, error) {
	var _, portStr, err = net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("control address %q: %w", addr, err)
	}
	return strconv.Atoi(portStr)
}

// pollDecodes collects finished decodes until ctx is done.
func pollDecodes(ctx context.Context, modem *ModemDevice, cache *DecodedCache, dlog *DecodeLog, grid string, logger *log.Logger) error {
	var ticker = time.NewTicker(pollInterval)
	defer ticker.Stop()

	var started = time.Now()
	var warned bool

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !warned && !modem.Active() && time.Since(started) > 5*time.Second {
			logger.Warn("No audio callbacks yet, check the sound card")
			warned = true
		}

		var lines = modem.Poll()
		if len(lines) == 0 {
			continue
		}

		for _, l := range lines {
			if dlog != nil {
				dlog.Write(modem.Mode(), l)
			}
		}

		for _, l := range cache.Add(lines...) {
			fmt.Println(FormatDecode(l, grid))
		}
	}
}

// FormatDecode renders a decode for the console as "HH:MM:SS content",
// with the distance to a CQ caller's grid when the station grid is known.
func FormatDecode(l DecodedLine, grid string) string {
	var stamp, err = strftime.Format("%H:%M:%S", time.Unix(l.Time, 0).UTC())
	if err != nil {
		stamp = strconv.FormatInt(l.Time, 10)
	}

	var s = stamp + " " + l.Content

	var words = SplitMessage(l.Content)
	if grid != "" && len(words.To) >= 2 && words.To[:2] == "CQ" && IsGrid(words.Extra) {
		if km, err := GridDistance(grid, words.Extra); err == nil {
			s += fmt.Sprintf("  (%.0f km)", km)
		}
	}
	return s
}

func logEvent(logger *log.Logger, ev Event) {
	switch ev.Kind {
	case EventCaptureStart, EventCaptureEnd:
		logger.Debug(ev.Kind.String(), "sec", fmt.Sprintf("%.3f", ev.Sec), "capture", ev.Capture)
	case EventSlotCheck:
		logger.Debug("Slot check", "want", ev.Target, "slot", ev.SlotNow, "match", ev.Match)
	case EventDecodeOverrun:
		logger.Warn("Decoder still busy, frame dropped", "capture", ev.Capture)
	case EventDecodeError:
		logger.Error("Decode failed", "capture", ev.Capture, "err", ev.Err)
	case EventTxOn:
		logger.Info("Transmit on", "sec", fmt.Sprintf("%.3f", ev.Sec))
	case EventTxOff:
		logger.Info("Transmit off", "sec", fmt.Sprintf("%.3f", ev.Sec))
	}
}
