package util

import "unicode/utf8"

// TruncateUTF8 shortens s to at most max bytes without splitting a
// multi-byte rune. The cut point backs up to the nearest rune start, so
// the result is always valid UTF-8 when s is.
func TruncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
