//go:build unix

package bar

import (
	"os"
	"os/signal"
	"syscall"
)

// signalWatcher turns SIGWINCH into redraw requests. signal.Notify fans
// each signal out to every registered channel, so handlers installed by
// the host program keep working alongside it.
type signalWatcher struct {
	sigCh      chan os.Signal
	stopCh     chan struct{}
	doneCh     chan struct{}
	wasIgnored bool
}

func watchResizeSignal(request func()) (eventSource, error) {
	w := &signalWatcher{
		sigCh:      make(chan os.Signal, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		wasIgnored: signal.Ignored(syscall.SIGWINCH),
	}
	signal.Notify(w.sigCh, syscall.SIGWINCH)
	go w.loop(request)
	return w, nil
}

func (w *signalWatcher) loop(request func()) {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.sigCh:
			request()
		}
	}
}

// stop unregisters the channel and, if SIGWINCH was ignored before the
// watcher started, ignores it again.
func (w *signalWatcher) stop() {
	signal.Stop(w.sigCh)
	if w.wasIgnored {
		signal.Ignore(syscall.SIGWINCH)
	}
	close(w.stopCh)
	<-w.doneCh
}
