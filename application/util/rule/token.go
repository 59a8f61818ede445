package rule

import (
	"strings"
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if IsAlpha(c) || IsDigit(c) {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote wraps s with double quotes, escaping backslashes and double quotes inside.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.4
func Quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}
