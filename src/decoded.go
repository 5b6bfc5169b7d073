package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Recent decode cache and its LOGS rendering.
 *
 * Description:	The cache keeps the most recent decodes, newest first.
 *		With the CQ filter on, only lines containing "CQ " are
 *		kept.  Turning the filter on or off empties the cache.
 *
 *		LOGS renders one line per decode:
 *
 *		    "%10d;<snr>;<dt>;<freq>;<from>;<to>;<extra>;" CR LF
 *
 *		where the decode fields are cut to 36 characters.  A
 *		second word of 5 characters or fewer after the first call
 *		("CQ DX", "CQ POTA") stays with it.  Missing fields are
 *		rendered as "-".
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	DecodedCacheSize = 16
	csvFieldsWidth   = 36
)

type DecodedCache struct {
	mu     sync.Mutex
	lines  []DecodedLine
	cqOnly bool
	limit  int
}

func NewDecodedCache() *DecodedCache {
	return &DecodedCache{limit: DecodedCacheSize}
}

// Add stores new decodes and returns the ones that were kept.
func (c *DecodedCache) Add(lines ...DecodedLine) []DecodedLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	var kept []DecodedLine
	for _, l := range lines {
		if c.cqOnly && !strings.Contains(l.Content, "CQ ") {
			continue
		}
		c.lines = append([]DecodedLine{l}, c.lines...)
		if len(c.lines) > c.limit {
			c.lines = c.lines[:c.limit]
		}
		kept = append(kept, l)
	}
	return kept
}

func (c *DecodedCache) SetCQOnly(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cqOnly = on
	c.lines = nil
}

func (c *DecodedCache) CQOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cqOnly
}

func (c *DecodedCache) Wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
}

// Lines returns a copy of the cache, newest first.
func (c *DecodedCache) Lines() []DecodedLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]DecodedLine(nil), c.lines...)
}

func (c *DecodedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

// List renders the cache for the LOGS command.
func (c *DecodedCache) List() string {
	var lines = c.Lines()

	if len(lines) == 0 {
		return "EMPTY\n\r"
	}

	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%10d;%.*s\n\r", l.Time, csvFieldsWidth, CSVFields(l.Content))
	}
	return sb.String()
}

func (c *DecodedCache) WriteLogs(w io.Writer) error {
	var _, err = io.WriteString(w, c.List())
	return err
}

/*------------------------------------------------------------------
 *
 * Name:        CSVFields
 *
 * Purpose:     Split decode content into LOGS fields.
 *
 * Inputs:	content	- "snr dt freq ~ from to extra", e.g.
 *			  "-12  0.3 1234 ~  CQ K1ABC FN42".
 *
 *----------------------------------------------------------------*/

func CSVFields(content string) string {
	var toks = strings.Fields(content)
	var next = func() (string, bool) {
		if len(toks) == 0 {
			return "", false
		}
		var t = toks[0]
		toks = toks[1:]
		return t, true
	}

	var sb strings.Builder
	var field = func(s string, ok bool) {
		if !ok {
			s = "-"
		}
		sb.WriteString(s)
		sb.WriteByte(';')
	}

	field(next()) // snr
	field(next()) // dt
	field(next()) // freq
	next()        // "~"

	var from, ok = next()
	if ok && len(toks) > 0 && len(toks[0]) <= 5 {
		var second, _ = next()
		from += " " + second
	}
	field(from, ok)
	field(next()) // to
	field(next()) // grid, report or sign-off

	return sb.String()
}
