package service

import (
	"strings"
	"unicode"
)

// TailLines returns the last n lines of s. Used to keep the live preview
// of a streaming reply within the terminal height.
func TailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

// TrimTrailingBlankLines drops blank lines at the end of s, leaving the
// final non-blank line intact.
func TrimTrailingBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

// Summarize collapses whitespace and truncates s to max runes, for
// one-line history entries and status messages.
func Summarize(s string, max int) string {
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
