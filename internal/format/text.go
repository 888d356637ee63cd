// Package format provides shared text formatting utilities for channel
// messages and terminal output.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/spiffcs/nudge/internal/constants"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns,
// ignoring ANSI escape sequences.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// TruncateToWidth truncates plain text to fit within maxWidth display
// columns, appending "..." when anything was cut. Returns the result and its
// visible width. Colors are applied by callers after truncation.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s, width
	}
	if maxWidth <= constants.TruncationSuffixWidth {
		return strings.Repeat(".", maxWidth), maxWidth
	}
	out := runewidth.Truncate(s, maxWidth, "...")
	return out, runewidth.StringWidth(out)
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Capitalize upper-cases the first letter.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Plural renders "1 comment" or "N comments".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
