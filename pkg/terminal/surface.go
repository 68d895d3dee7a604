package terminal

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/bottombar/pkg/layout"
)

// resetScrollRegion is DECSTBM without parameters. ansi.SetTopBottomMargins
// always emits the separator, which some emulators parse as an explicit
// top margin of zero.
const resetScrollRegion = "\x1b[r"

// Surface reserves the bottom row of a terminal and paints a line into it.
//
// Entering shrinks the scroll region to every row but the last, so normal
// output keeps scrolling above the bar. Every sequence saves and restores
// the cursor, leaving the position and attributes of the program sharing
// the terminal untouched.
//
// A Surface whose output is not a terminal, or whose terminal has fewer
// than two rows, stays inactive and writes nothing.
type Surface struct {
	mu     sync.Mutex
	out    io.Writer
	query  SizeFunc
	sync   bool
	dumb   bool
	size   Size
	active bool
	last   string
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithSizeFunc replaces the size query, which by default asks the terminal
// behind the output writer.
func WithSizeFunc(f SizeFunc) SurfaceOption {
	return func(s *Surface) {
		if f != nil {
			s.query = f
		}
	}
}

// WithSyncOutput forces synchronized output on or off. By default it is on
// for terminals known to support it.
func WithSyncOutput(on bool) SurfaceOption {
	return func(s *Surface) { s.sync = on }
}

// NewSurface returns an inactive Surface writing to out.
func NewSurface(out io.Writer, opts ...SurfaceOption) *Surface {
	term := Detect()
	s := &Surface{
		out:   out,
		query: SizeFuncFor(out),
		sync:  term.SupportsSyncOutput(),
		dumb:  !term.SupportsScrollRegion(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query reports the current terminal size without changing any state.
func (s *Surface) Query() (Size, error) {
	return s.query()
}

// Size returns the size the scroll region was last set up for. It is zero
// while the surface is inactive.
func (s *Surface) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Size{}
	}
	return s.size
}

// Active reports whether the bottom row is currently reserved.
func (s *Surface) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Enter reserves the bottom row. It reports whether the surface is active
// afterwards; false means the output cannot host a bar right now.
func (s *Surface) Enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return true
	}
	if s.dumb {
		return false
	}
	size, err := s.query()
	if err != nil || !usable(size) {
		return false
	}
	s.size = size
	s.active = s.write(reserveSeq(size.Rows))
	return s.active
}

// Resize moves the reservation to the new bottom row and repaints the last
// line. A terminal shrunk below two rows releases the reservation.
func (s *Surface) Resize(size Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || size == s.size {
		return
	}
	if !usable(size) {
		s.exitLocked()
		return
	}
	s.size = size
	s.active = s.write(reserveSeq(size.Rows) + s.paintSeq(s.last))
}

// Paint draws line into the bottom row, cut or padded to the terminal
// width. The line is remembered for repaints after a resize.
func (s *Surface) Paint(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = line
	if !s.active {
		return
	}
	s.active = s.write(s.paintSeq(line))
}

// Exit clears the bottom row and gives it back to normal output by
// resetting the scroll region to the full screen. The region that was in
// place before Enter cannot be queried, so it is not restored.
func (s *Surface) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exitLocked()
}

func (s *Surface) exitLocked() {
	if !s.active {
		return
	}
	s.write(releaseSeq(s.size.Rows))
	s.active = false
}

// write sends seq in one call and reports whether it succeeded. A failed
// write leaves the surface inactive.
func (s *Surface) write(seq string) bool {
	_, err := io.WriteString(s.out, seq)
	return err == nil
}

func usable(size Size) bool {
	return size.Cols >= 1 && size.Rows >= 2
}

// reserveSeq resets the scroll region, scrolls once so that the bottom row
// is free even with the cursor on it, and confines scrolling to the rows
// above it.
func reserveSeq(rows int) string {
	var b strings.Builder
	b.WriteString(ansi.SaveCursor)
	b.WriteString(resetScrollRegion)
	b.WriteString(ansi.RestoreCursor)
	b.WriteString(ansi.Index)
	b.WriteString(ansi.ReverseIndex)
	b.WriteString(ansi.SaveCursor)
	b.WriteString(ansi.SetTopBottomMargins(1, rows-1))
	b.WriteString(ansi.RestoreCursor)
	return b.String()
}

func (s *Surface) paintSeq(line string) string {
	var b strings.Builder
	if s.sync {
		b.WriteString(ansi.SetSynchronizedOutputMode)
	}
	b.WriteString(ansi.SaveCursor)
	b.WriteString(ansi.CursorPosition(1, s.size.Rows))
	b.WriteString(ansi.EraseEntireLine)
	b.WriteString(ansi.ResetAutoWrapMode)
	b.WriteString(ansi.ResetStyle)
	b.WriteString(layout.Fit(line, s.size.Cols))
	b.WriteString(ansi.SetAutoWrapMode)
	b.WriteString(ansi.RestoreCursor)
	if s.sync {
		b.WriteString(ansi.ResetSynchronizedOutputMode)
	}
	return b.String()
}

func releaseSeq(rows int) string {
	var b strings.Builder
	b.WriteString(ansi.SaveCursor)
	b.WriteString(ansi.CursorPosition(1, rows))
	b.WriteString(ansi.EraseEntireLine)
	b.WriteString(resetScrollRegion)
	b.WriteString(ansi.RestoreCursor)
	return b.String()
}
