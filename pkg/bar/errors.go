package bar

import "errors"

var (
	// ErrReleased is returned by Handle methods once the item has been
	// removed, either through the handle or by closing the bar.
	ErrReleased = errors.New("bar: item released")

	// ErrClosed is returned by Add after Close.
	ErrClosed = errors.New("bar: closed")

	// ErrInProvider is returned when a value provider tries to release
	// the bar it is being drawn on: removing the last item, closing the
	// bar, or any lifecycle call while the bar is being released.
	ErrInProvider = errors.New("bar: called from a value provider")
)
