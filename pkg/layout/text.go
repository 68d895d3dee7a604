package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// VisibleLen returns the visible width of s in terminal cells. ANSI escape
// sequences are ignored and wide characters (CJK, emoji) count as two cells.
func VisibleLen(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to at most maxWidth visible cells. Escape sequences are
// preserved.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "")
}

// TruncateWithTail cuts s to at most maxWidth cells, ending in tail when
// anything was removed. A tail that does not leave room for at least one
// cell of content is dropped.
func TruncateWithTail(s string, maxWidth int, tail string) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleLen(tail) >= maxWidth {
		return Truncate(s, maxWidth)
	}
	return ansi.Truncate(s, maxWidth, tail)
}

// PadRight pads s with trailing spaces up to width cells.
func PadRight(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vis)
}

// PadLeft pads s with leading spaces up to width cells.
func PadLeft(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return strings.Repeat(" ", width-vis) + s
}

// Fit returns s cut or padded to exactly width cells. A wide character that
// would straddle the edge is dropped and replaced by padding.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return PadRight(Truncate(s, width), width)
}

// Sanitize makes s safe to paint on a single row. Colour and attribute
// (SGR) sequences are kept and any other escape sequence is removed. Lone
// control characters such as newlines and tabs become spaces.
func Sanitize(s string) string {
	if utf8.ValidString(s) && !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var state byte
	for len(s) > 0 {
		_, width, n, newState := ansi.DecodeSequence(s, state, nil)
		state = newState
		if n <= 0 {
			n = 1
		}
		seq := s[:n]
		s = s[n:]

		r, size := utf8.DecodeRuneInString(seq)
		switch {
		case width > 0, isSGR(seq):
			b.WriteString(seq)
		case size == len(seq) && isControl(r) && r != '\x1b':
			b.WriteByte(' ')
		case utf8.ValidString(seq) && !strings.ContainsFunc(seq, isControl):
			// Zero-width text such as a lone combining mark.
			b.WriteString(seq)
		}
	}
	return b.String()
}

// isSGR reports whether seq is a complete ESC [ ... m sequence with
// numeric parameters only.
func isSGR(seq string) bool {
	if len(seq) < 3 || !strings.HasPrefix(seq, "\x1b[") || seq[len(seq)-1] != 'm' {
		return false
	}
	return strings.Trim(seq[2:len(seq)-1], "0123456789;:") == ""
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0)
}
