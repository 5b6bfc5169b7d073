package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:	Read the configuration file.
 *
 * Description:	Everything has a usable default, so the file is optional.
 *		Command line options are applied on top of it by the
 *		caller.
 *
 *		mode: FT8
 *		device: "2"
 *		rate: 48000
 *		depth: 2
 *		control:
 *		  listen: ":6666"
 *		  pty: /tmp/ft8modem
 *		ptt:
 *		  method: cm108
 *		  pin: 3
 *		station:
 *		  grid: FN42
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

type ControlConfig struct {
	Listen string `yaml:"listen"` // TCP address, empty to disable
	PTY    string `yaml:"pty"`    // symlink to a pseudo terminal, empty to disable
	Serial string `yaml:"serial"` // serial device, empty to disable
	Baud   int    `yaml:"baud"`
	DNSSD  bool   `yaml:"dnssd"`
	Name   string `yaml:"name"` // DNS-SD instance name
}

type StationConfig struct {
	Grid string `yaml:"grid"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`  // daily decode logs
	File  string `yaml:"file"` // single decode log, if Dir is empty
}

type Config struct {
	Mode     string            `yaml:"mode"`
	Device   string            `yaml:"device"` // index or name prefix
	Rate     int               `yaml:"rate"`
	Window   int               `yaml:"window"`
	Depth    int               `yaml:"depth"`
	Volume   float64           `yaml:"volume"`
	Lead     float64           `yaml:"lead"` // seconds of silence before each transmission
	TempDir  string            `yaml:"tempdir"`
	Decoder  string            `yaml:"decoder"`
	Encoders map[string]string `yaml:"encoders"` // by lower case mode name
	Control  ControlConfig     `yaml:"control"`
	PTT      PTTConfig         `yaml:"ptt"`
	Station  StationConfig     `yaml:"station"`
	Log      LogConfig         `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Mode:    "FT8",
		Rate:    48000,
		Window:  256,
		Depth:   2,
		Volume:  0.5,
		Lead:    0.125,
		TempDir: "/tmp/",
		Decoder: "jt9",
		Encoders: map[string]string{
			"ft8": "ft8code",
			"ft4": "ft4code",
		},
		Control: ControlConfig{
			Listen: ":6666",
			Baud:   9600,
		},
		PTT: PTTConfig{
			Method: "none",
			Line:   "RTS",
			Chip:   "gpiochip0",
			Pin:    3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// If the search order is changed, update the usage text too.
var configLocations = []string{
	"ft8modem.yaml", // Current working directory
	"~/.config/ft8modem/ft8modem.yaml",
	"/etc/ft8modem.yaml",
}

/*------------------------------------------------------------------
 *
 * Function:	LoadConfig
 *
 * Purpose:	Read the configuration over the defaults.
 *
 * Inputs:	path	- Explicit file name.  Empty means try the usual
 *			  locations and use the defaults if none exist.
 *
 * Returns:	The configuration, the file actually used (empty for
 *		none) and any error.
 *
 *------------------------------------------------------------------*/

func LoadConfig(path string) (Config, string, error) {
	var cfg = DefaultConfig()

	if path != "" {
		var err = readConfigFile(path, &cfg)
		return cfg, path, err
	}

	for _, location := range configLocations {
		var name = expandHome(location)
		if _, err := os.Stat(name); err != nil {
			continue
		}
		var err = readConfigFile(name, &cfg)
		return cfg, name, err
	}

	return cfg, "", nil
}

func readConfigFile(path string, cfg *Config) error {
	var fp, err = os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()

	var data, readErr = io.ReadAll(fp)
	if readErr != nil {
		return fmt.Errorf("reading config %s: %w", path, readErr)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	var home, err = os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Validate checks ranges the modem would otherwise reject later.
func (c Config) Validate() error {
	var errs []error

	var mode, modeErr = ParseMode(c.Mode)
	if modeErr != nil {
		errs = append(errs, modeErr)
	} else if err := mode.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Depth < 1 || c.Depth > 3 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrDepth, c.Depth))
	}
	if !(c.Volume > 0 && c.Volume <= 1) {
		errs = append(errs, fmt.Errorf("%w: %g", ErrVolume, c.Volume))
	}
	if c.Rate <= 0 || c.Rate%DecodeRate != 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrSampleRate, c.Rate))
	} else if c.Window <= 0 || c.Window%(c.Rate/DecodeRate) != 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrWindowSize, c.Window))
	}
	if c.Lead < 0 {
		errs = append(errs, fmt.Errorf("lead %g must not be negative", c.Lead))
	}
	if c.Station.Grid != "" {
		if _, _, err := GridToLatLng(c.Station.Grid); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.PTT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrLogLevel, c.Log.Level))
		}
	}

	return errors.Join(errs...)
}
