package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:     Classify the words of a decoded message.
 *
 * Description:	A standard message is "<to> <from> <extra>" where extra
 *		is a grid, a signal report, a roger or a sign-off.  These
 *		helpers tell them apart.  All comparisons ignore case.
 *
 *----------------------------------------------------------------*/

import (
	"slices"
	"strings"
)

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// IsReport matches "+NN", "-NN", "R+NN" and "R-NN".
func IsReport(s string) bool {
	s = strings.ToUpper(s)
	switch len(s) {
	case 3:
		return (s[0] == '+' || s[0] == '-') && allDigits(s[1:])
	case 4:
		return s[0] == 'R' && (s[1] == '+' || s[1] == '-') && allDigits(s[2:])
	}
	return false
}

// IsRoger matches RRR, RR73 and a report with the R prefix.
func IsRoger(s string) bool {
	if s == "" {
		return false
	}
	s = strings.ToUpper(s)
	return s == "RRR" || s == "RR73" || (s[0] == 'R' && IsReport(s))
}

func Is73(s string) bool {
	s = strings.ToUpper(s)
	return s == "RR73" || s == "73" || s == "TU73"
}

// IsGrid matches a four character Maidenhead square such as "EM16".
func IsGrid(s string) bool {
	s = strings.ToUpper(s)
	if s == "RR73" || s == "TU73" {
		return false
	}
	return len(s) == 4 && isAlpha(s[0]) && isAlpha(s[1]) && isDigit(s[2]) && isDigit(s[3])
}

/*------------------------------------------------------------------
 *
 * Name:        IsCall
 *
 * Purpose:     Decide whether a word looks like a call sign.
 *
 * Description:	At least one digit and two letters, nothing but letters,
 *		digits and '/'.  Hashed calls in angle brackets count.
 *		Grids and sign-offs such as RR73 do not.
 *
 *----------------------------------------------------------------*/

func IsCall(s string) bool {
	if s == "" || Is73(s) || IsGrid(s) {
		return false
	}

	if len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = s[1 : len(s)-1]
	}

	var digits, letters int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case isDigit(c):
			digits++
		case isAlpha(c):
			letters++
		case c == '/':
		default:
			return false
		}
	}

	return digits >= 1 && letters >= 2
}

// BaseCall strips prefixes and suffixes, e.g. "VE3/AB0CD" -> "AB0CD".
// When more than one part is a call the longest wins, the later one on a
// tie.  The result is empty if s is not a call.
func BaseCall(s string) string {
	if !IsCall(s) {
		return ""
	}

	s = strings.ToUpper(s)
	if len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = s[1 : len(s)-1]
	}

	var parts = strings.Split(s, "/")
	if len(parts) == 1 {
		return s
	}

	var result string
	for _, p := range parts {
		if IsCall(p) && len(p) >= len(result) {
			result = p
		}
	}
	return result
}

// Words of a standard message.
type MessageWords struct {
	To    string
	From  string
	Extra string
}

// SplitMessage picks apart the message text of a decode, i.e. what
// follows the "~" marker.  A leading "CQ" with a short modifier such as
// "CQ DX" is kept together in To.
func SplitMessage(text string) MessageWords {
	var words = strings.Fields(text)
	if i := slices.Index(words, "~"); i >= 0 {
		words = words[i+1:]
	}

	var m MessageWords
	if len(words) >= 2 && strings.EqualFold(words[0], "CQ") && !IsCall(words[1]) && len(words) > 2 {
		words = append([]string{words[0] + " " + words[1]}, words[2:]...)
	}
	if len(words) > 0 {
		m.To = words[0]
	}
	if len(words) > 1 {
		m.From = words[1]
	}
	if len(words) > 2 {
		m.Extra = words[2]
	}
	return m
}
