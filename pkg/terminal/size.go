package terminal

import (
	"errors"

	"github.com/mattn/go-isatty"
)

// ErrNotTerminal is returned when the output stream is not attached to a
// terminal.
var ErrNotTerminal = errors.New("terminal: not a terminal")

// ErrNoSize is returned when the terminal reports a zero size, as some
// pseudo terminals do before the emulator has set a window size.
var ErrNoSize = errors.New("terminal: size unknown")

// Size represents terminal dimensions in character cells.
type Size struct {
	Cols int
	Rows int
}

// IsTerminal reports whether fd refers to a terminal. Cygwin and MSYS
// pseudo terminals count.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SizeFunc reports the current size of a terminal.
type SizeFunc func() (Size, error)

// fdWriter is implemented by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// SizeFuncFor returns a SizeFunc querying the terminal behind w. Writers
// that carry no file descriptor, or whose descriptor is not a terminal,
// always fail with ErrNotTerminal.
func SizeFuncFor(w any) SizeFunc {
	f, ok := w.(fdWriter)
	if !ok {
		return func() (Size, error) { return Size{}, ErrNotTerminal }
	}
	fd := f.Fd()
	return func() (Size, error) {
		if !IsTerminal(fd) {
			return Size{}, ErrNotTerminal
		}
		return QuerySize(fd)
	}
}
