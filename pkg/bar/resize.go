package bar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/terminal"
)

// ResizeMode selects how the bar learns about terminal size changes.
type ResizeMode int

const (
	// ResizeAuto listens for SIGWINCH where the platform has it and polls
	// otherwise.
	ResizeAuto ResizeMode = iota
	// ResizePoll always polls, for hosts that reserve SIGWINCH.
	ResizePoll
)

// DefaultPollInterval is how often the size is polled without SIGWINCH.
const DefaultPollInterval = time.Second

func (m ResizeMode) String() string {
	switch m {
	case ResizeAuto:
		return "auto"
	case ResizePoll:
		return "poll"
	}
	return fmt.Sprintf("ResizeMode(%d)", int(m))
}

// ParseResizeMode converts "auto" or "poll" to a ResizeMode. The empty
// string is auto.
func ParseResizeMode(s string) (ResizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ResizeAuto, nil
	case "poll":
		return ResizePoll, nil
	}
	return ResizeAuto, fmt.Errorf("bar: unknown resize mode %q", s)
}

// eventSource is a running producer of redraw requests.
type eventSource interface {
	stop()
}

// startResizeSource starts the resize watcher for mode. Signal delivery is
// preferred; when the platform has no resize signal the size is polled and
// compared with current, the size the bar last drew at.
func startResizeSource(mode ResizeMode, every time.Duration, query terminal.SizeFunc, current func() terminal.Size, request func(), logger *slog.Logger) eventSource {
	if mode == ResizeAuto {
		src, err := watchResizeSignal(request)
		if err == nil {
			return src
		}
		logger.Debug("resize signal unavailable, polling", "error", err)
	}
	return startPoller(every, query, current, request)
}

// poller compares the terminal size with the size the bar last drew at and
// requests a redraw when they differ. There is no private baseline, so a
// resize that lands before the first tick is still reported.
type poller struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

func startPoller(every time.Duration, query terminal.SizeFunc, current func() terminal.Size, request func()) *poller {
	if every <= 0 {
		every = DefaultPollInterval
	}
	p := &poller{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go p.loop(every, query, current, request)
	return p
}

func (p *poller) loop(every time.Duration, query terminal.SizeFunc, current func() terminal.Size, request func()) {
	defer close(p.doneCh)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			// An inactive surface reports a zero size, so a terminal that
			// was too small keeps being retried until it grows.
			size, err := query()
			if err != nil || size == current() {
				continue
			}
			request()
		}
	}
}

func (p *poller) stop() {
	close(p.stopCh)
	<-p.doneCh
}
