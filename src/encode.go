package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Conversion from message text to keying symbols.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"os/exec"
	"strings"
)

// Encoder maps free text to a string of symbol digits.
type Encoder interface {
	Encode(mode Mode, text string) (string, error)
}

// ProcessEncoder runs ft8code or ft4code.  Programs overrides the program
// used for a mode, keyed by lower case mode name.
type ProcessEncoder struct {
	Programs map[string]string
}

func (p ProcessEncoder) program(mode Mode) (string, error) {
	if prog, ok := p.Programs[mode.Lower()]; ok && prog != "" {
		return prog, nil
	}
	switch mode.Lower() {
	case "ft8":
		return "ft8code", nil
	case "ft4":
		return "ft4code", nil
	}
	return "", fmt.Errorf("%w: %q", ErrMode, mode.Name)
}

/*------------------------------------------------------------------
 *
 * Name:        Encode
 *
 * Returns:	The trimmed last line of the encoder output, which holds
 *		the channel symbols.
 *
 *----------------------------------------------------------------*/

func (p ProcessEncoder) Encode(mode Mode, text string) (string, error) {
	var prog, err = p.program(mode)
	if err != nil {
		return "", err
	}

	var out, runErr = exec.Command(prog, text).Output()
	if runErr != nil {
		return "", fmt.Errorf("%s: %w", prog, runErr)
	}

	return LastLine(string(out)), nil
}

// LastLine returns the last non-blank line of s, trimmed.
func LastLine(s string) string {
	var lines = strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
