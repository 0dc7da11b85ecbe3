package prompt

import (
	"strings"
	"unicode"
)

// Admit decides whether r may be appended to current on step in mode, and returns
// the rune to append. Numeric mode takes digits and a single decimal separator.
// Alpha mode takes letters (uppercased), digits and, when the step allows, spaces.
func Admit(step Step, mode Mode, current string, r rune) (rune, bool) {
	switch mode {
	case ModeNumeric:
		if unicode.IsDigit(r) {
			return r, true
		}

		if (r == ',' || r == '.') && !strings.ContainsAny(current, ",.") {
			return r, true
		}

		return 0, false
	case ModeAlpha:
		if unicode.IsLetter(r) {
			return unicode.ToUpper(r), true
		}

		if unicode.IsDigit(r) {
			return r, true
		}

		if r == ' ' && step.AllowSpaces && current != "" {
			return r, true
		}

		return 0, false
	}

	return 0, false
}
