//go:build unix

package terminal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// QuerySize asks the terminal behind fd for its dimensions with the
// TIOCGWINSZ ioctl.
func QuerySize(fd uintptr) (Size, error) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, fmt.Errorf("terminal: query size: %w", err)
	}
	if ws.Col == 0 || ws.Row == 0 {
		return Size{}, ErrNoSize
	}
	return Size{Cols: int(ws.Col), Rows: int(ws.Row)}, nil
}
