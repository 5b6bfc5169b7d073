package ft8modem

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var ErrLogLevel = errors.New("log level must be debug, info, warn, error or fatal")

// NewLogger returns a logger writing to w at the named level, one of
// debug, info, warn, error or fatal.  An unknown level falls back to info;
// Config.Validate reports it with ErrLogLevel.
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	var lvl, err = log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
