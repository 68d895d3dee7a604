//go:build !unix

package bar

import "errors"

var errNoResizeSignal = errors.New("bar: platform has no resize signal")

func watchResizeSignal(func()) (eventSource, error) {
	return nil, errNoResizeSignal
}
