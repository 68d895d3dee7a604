//go:build !unix

package terminal

import (
	"fmt"

	"github.com/charmbracelet/x/term"
)

// QuerySize asks the console behind fd for its dimensions.
func QuerySize(fd uintptr) (Size, error) {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return Size{}, fmt.Errorf("terminal: query size: %w", err)
	}
	if w <= 0 || h <= 0 {
		return Size{}, ErrNoSize
	}
	return Size{Cols: w, Rows: h}, nil
}
