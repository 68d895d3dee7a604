package bar

import "sync"

var (
	defaultBar  *Bar
	defaultOnce sync.Once
)

// Default returns the process-wide bar on os.Stdout, creating it on first
// use.
func Default() *Bar {
	defaultOnce.Do(func() {
		defaultBar = New()
	})
	return defaultBar
}

// Add registers an item on the default bar.
func Add(v Value, opts ...ItemOption) (*Handle, error) {
	return Default().Add(v, opts...)
}

// Redraw queues a redraw of the default bar.
func Redraw() {
	Default().Redraw()
}
