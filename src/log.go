package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:	Save decodes to a log file.
 *
 * Description: Each decode is split into its fields and written as CSV
 *		for easy reading and later processing.
 *
 *		There are two alternatives here.
 *
 *		Path is a file	All decodes go to that one file.
 *
 *		Path is a dir	Daily names, 2006-01-02.log, are created
 *				there.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const decodeLogHeader = "utime,isotime,mode,snr,dt,freq,to,from,extra,distance\n"

type DecodeLog struct {
	mu         sync.Mutex
	dailyNames bool
	path       string
	fp         *os.File
	openName   string
	grid       string // station locator, for distance
	logger     *log.Logger
	now        func() time.Time
}

/*------------------------------------------------------------------
 *
 * Function:	NewDecodeLog
 *
 * Inputs:	dailyNames	- True if path is a directory for daily files.
 *				  It is created if needed.
 *
 *		path		- Log file name or directory.
 *
 *		grid		- Station locator, may be empty.
 *
 * Description:	When the directory can't be used, the current working
 *		directory is used instead.
 *
 *------------------------------------------------------------------*/

func NewDecodeLog(dailyNames bool, path string, grid string, logger *log.Logger) *DecodeLog {
	var l = &DecodeLog{
		dailyNames: dailyNames,
		grid:       grid,
		logger:     logger,
		now:        time.Now,
	}

	if dailyNames {
		var stat, statErr = os.Stat(path)
		switch {
		case statErr == nil && stat.IsDir():
			l.path = path
		case statErr == nil:
			logger.Error("Log file location is not a directory, using current working directory instead", "path", path)
			l.path = "."
		default:
			if err := os.MkdirAll(path, 0o755); err != nil {
				logger.Error("Failed to create log file location, using current working directory instead", "path", path, "err", err)
				l.path = "."
			} else {
				logger.Info("Log file location has been created", "path", path)
				l.path = path
			}
		}
	} else {
		logger.Info("Log file", "path", path)
		l.path = path
	}

	return l
}

// open makes sure the right file is open, starting a new one with its
// header when it did not exist.
func (l *DecodeLog) open(now time.Time) bool {
	var full = l.path

	if l.dailyNames {
		var fname = now.Format("2006-01-02.log")
		if l.fp != nil && fname != l.openName {
			l.closeFile()
		}
		full = filepath.Join(l.path, fname)
		l.openName = fname
	}

	if l.fp != nil {
		return true
	}

	var _, statErr = os.Stat(full)
	var alreadyThere = statErr == nil

	l.logger.Info("Opening log file", "path", full)

	var f, err = os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		l.logger.Error("Can't open log file for write", "path", full, "err", err)
		l.openName = ""
		return false
	}
	l.fp = f

	if !alreadyThere {
		if _, err := f.WriteString(decodeLogHeader); err != nil {
			l.logger.Error("Log header write failed", "err", err)
		}
	}
	return true
}

// Write appends one decode.
func (l *DecodeLog) Write(mode Mode, d DecodedLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path == "" {
		return
	}

	var now = l.now().UTC()
	if !l.open(now) {
		return
	}

	var fields = strings.Fields(d.Content)
	var field = func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	var words = SplitMessage(d.Content)

	var distance string
	if l.grid != "" && IsGrid(words.Extra) {
		if km, err := GridDistance(l.grid, words.Extra); err == nil {
			distance = strconv.FormatFloat(km, 'f', 0, 64)
		}
	}

	var w = csv.NewWriter(l.fp)
	w.Write([]string{
		strconv.FormatInt(d.Time, 10), time.Unix(d.Time, 0).UTC().Format("2006-01-02T15:04:05Z"),
		mode.Name, field(0), field(1), field(2),
		words.To, words.From, words.Extra, distance,
	})
	w.Flush()

	if err := w.Error(); err != nil {
		l.logger.Error("CSV write error", "err", err)
	}
}

func (l *DecodeLog) closeFile() {
	if l.fp != nil {
		l.logger.Info("Closing log file", "name", l.fp.Name())
		l.fp.Close()
		l.fp = nil
		l.openName = ""
	}
}

// Close any open log file.
func (l *DecodeLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeFile()
}
