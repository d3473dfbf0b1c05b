package listctl

import (
	"regexp"
	"strings"
)

var leadingDigits = regexp.MustCompile(`^[0-9]{2,}`)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizeSearch reduces free-text input that looks like a job number to
// its digits. Input whose trimmed form starts with two or more digits is
// treated as a job number and stripped to digits only; anything else passes
// through unchanged as a general search string.
func NormalizeSearch(input string) string {
	trimmed := strings.TrimSpace(input)
	if !leadingDigits.MatchString(trimmed) {
		return trimmed
	}
	return nonDigits.ReplaceAllString(trimmed, "")
}
