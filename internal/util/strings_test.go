package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		// "é" is 2 bytes; cutting at 3 would split the rune
		{"multi-byte boundary", "caféine", 3, "caf"},
		{"inside multi-byte rune", "caféine", 4, "caf"},
		{"after multi-byte rune", "caféine", 5, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateUTF8(tt.in, tt.max)
			if got != tt.want {
				t.Fatalf("TruncateUTF8(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result %q is not valid UTF-8", got)
			}
		})
	}
}

func TestTruncateUTF8StaysValidAcrossCuts(t *testing.T) {
	s := strings.Repeat("神経科学", 4)
	for max := 0; max <= len(s); max++ {
		got := TruncateUTF8(s, max)
		if len(got) > max {
			t.Fatalf("cut at %d produced %d bytes", max, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("cut at %d produced invalid UTF-8: %q", max, got)
		}
	}
}
