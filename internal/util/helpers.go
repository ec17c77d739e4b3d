package util

import "unicode/utf8"

// TruncateRunes cuts s to at most n runes, appending "…" when it cut anything.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n]) + "…"
}
