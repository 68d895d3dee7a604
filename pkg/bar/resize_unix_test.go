//go:build unix

package bar

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
)

func TestResizeSignalRedraws(t *testing.T) {
	fs := newFakeSurface(10, 10)
	b := newTestBar(t, fs, WithResizeMode(ResizeAuto))
	h, _ := b.Add(Static("x"))
	defer h.Remove()
	flush(t, b)

	fs.setTerm(4, 10)
	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("kill(SIGWINCH) error = %v", err)
	}
	eventually(t, "repaint after SIGWINCH", func() bool { return fs.last() == "x   " })
}

func TestResizeSignalRestoresIgnore(t *testing.T) {
	signal.Ignore(syscall.SIGWINCH)
	t.Cleanup(func() { signal.Reset(syscall.SIGWINCH) })

	fs := newFakeSurface(10, 10)
	b := newTestBar(t, fs, WithResizeMode(ResizeAuto))
	h, _ := b.Add(Static("x"))
	flush(t, b)
	if signal.Ignored(syscall.SIGWINCH) {
		t.Error("SIGWINCH still ignored while the bar is active")
	}

	if err := h.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !signal.Ignored(syscall.SIGWINCH) {
		t.Error("SIGWINCH not ignored again after the bar was released")
	}
}
