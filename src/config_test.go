package ft8modem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	var cfg = DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "FT8", cfg.Mode)
	assert.Equal(t, ":6666", cfg.Control.Listen)
	assert.Equal(t, "ft4code", cfg.Encoders["ft4"])
}

func TestLoadConfigFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "ft8modem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: ft4
device: "USB Audio"
depth: 3
volume: 0.8
control:
  listen: "127.0.0.1:7000"
  dnssd: true
ptt:
  method: cm108
  pin: 4
station:
  grid: FN42
`), 0o600))

	var cfg, used, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, "ft4", cfg.Mode)
	assert.Equal(t, "USB Audio", cfg.Device)
	assert.Equal(t, 3, cfg.Depth)
	assert.Equal(t, 0.8, cfg.Volume)
	assert.Equal(t, "127.0.0.1:7000", cfg.Control.Listen)
	assert.True(t, cfg.Control.DNSSD)
	assert.Equal(t, "cm108", cfg.PTT.Method)
	assert.Equal(t, 4, cfg.PTT.Pin)
	assert.Equal(t, "FN42", cfg.Station.Grid)

	// Untouched values keep their defaults.
	assert.Equal(t, 48000, cfg.Rate)
	assert.Equal(t, 9600, cfg.Control.Baud)
	assert.Equal(t, "RTS", cfg.PTT.Line)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	var _, _, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var path = filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: [1, 2"), 0o600))
	_, _, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigSearch(t *testing.T) {
	var dir = t.TempDir()
	var wd, wdErr = os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var cfg, used, err = LoadConfig("")
	require.NoError(t, err)
	if used == "" {
		assert.Equal(t, DefaultConfig(), cfg)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ft8modem.yaml"), []byte("depth: 1\n"), 0o600))
	cfg, used, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ft8modem.yaml", used)
	assert.Equal(t, 1, cfg.Depth)
}

func TestConfigValidate(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.Mode = "JT65"
	cfg.Depth = 0
	cfg.Volume = 1.5
	cfg.Rate = 44100
	cfg.Station.Grid = "nowhere"
	cfg.PTT.Method = "hamlib"
	cfg.Log.Level = "chatty"

	var err = cfg.Validate()
	assert.ErrorIs(t, err, ErrMode)
	assert.ErrorIs(t, err, ErrDepth)
	assert.ErrorIs(t, err, ErrVolume)
	assert.ErrorIs(t, err, ErrSampleRate)
	assert.ErrorIs(t, err, ErrGrid)
	assert.ErrorIs(t, err, ErrPTTMethod)
	assert.ErrorIs(t, err, ErrLogLevel)

	cfg = DefaultConfig()
	cfg.Window = 255
	assert.ErrorIs(t, cfg.Validate(), ErrWindowSize)

	cfg = DefaultConfig()
	cfg.Lead = -1
	assert.Error(t, cfg.Validate())
}

func TestExpandHome(t *testing.T) {
	var home, err = os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x.yaml"), expandHome("~/x.yaml"))
	assert.Equal(t, "/etc/x.yaml", expandHome("/etc/x.yaml"))
	assert.Equal(t, "~", expandHome("~"))
}
