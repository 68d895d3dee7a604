// Package widgets provides ready-made bar content: clocks, timers,
// spinners, host metrics and a file watcher. Each widget yields either a
// provider function for bar.Func / bar.FuncErr or drives a handle itself.
package widgets

// TextSetter receives pushed text. *bar.Handle implements it.
type TextSetter interface {
	SetText(text string) error
}
