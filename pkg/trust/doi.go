package trust

import (
	"regexp"
	"strings"
)

var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[^\s"'>)]+`)

// FindDOI extracts the first DOI-like token from the text, or returns the
// empty string when none is present. Trailing sentence punctuation that the
// pattern greedily swallows is trimmed off.
func FindDOI(text string) string {
	match := doiPattern.FindString(text)
	if match == "" {
		return ""
	}
	return strings.TrimRight(match, ".,;)")
}
