package bar

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/terminal"
)

// Surface is the terminal row the bar paints into. *terminal.Surface is
// the production implementation.
type Surface interface {
	Enter() bool
	Active() bool
	Query() (terminal.Size, error)
	Size() terminal.Size
	Resize(terminal.Size)
	Paint(line string)
	Exit()
}

// scheduler owns the surface while the bar is active. Every redraw runs on
// a single executor goroutine; requests from any goroutine are coalesced
// through a one-slot wake channel, so a burst of updates costs at most one
// extra redraw.
type scheduler struct {
	surface Surface
	render  func(width int) string
	logger  *slog.Logger

	wake   chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	mu      sync.Mutex
	waiters []chan struct{}
	stopped bool

	// timerMu guards timer. Stopping a timer never waits for the
	// executor, so providers may rearm it.
	timerMu sync.Mutex
	timer   *refreshTimer

	resize eventSource
	execID *atomic.Uint64
}

type schedulerConfig struct {
	surface      Surface
	render       func(width int) string
	logger       *slog.Logger
	resizeMode   ResizeMode
	pollInterval time.Duration
	// execID, when set, holds the executor's goroutine id while it runs.
	execID *atomic.Uint64
}

// startScheduler reserves the bottom row, queues the first redraw and
// starts the executor and the resize watcher.
func startScheduler(cfg schedulerConfig) *scheduler {
	s := &scheduler{
		surface: cfg.surface,
		render:  cfg.render,
		logger:  cfg.logger,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		execID:  cfg.execID,
	}
	if !s.surface.Enter() {
		s.logger.Debug("output cannot host a bar, drawing disabled until it can")
	}
	go s.run()
	s.resize = startResizeSource(cfg.resizeMode, cfg.pollInterval, s.surface.Query, s.surface.Size, func() { s.request(nil) }, s.logger)
	return s
}

// request queues a redraw. A non-nil done channel is closed once a redraw
// that started after this call has finished. request reports false when
// the scheduler is shutting down and the request was dropped.
func (s *scheduler) request(done chan struct{}) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	if done != nil {
		s.waiters = append(s.waiters, done)
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *scheduler) run() {
	defer close(s.doneCh)
	if s.execID != nil {
		s.execID.Store(goid())
		defer s.execID.Store(0)
	}
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.wake:
		}

		s.mu.Lock()
		waiters := s.waiters
		s.waiters = nil
		s.mu.Unlock()

		s.redraw()
		for _, w := range waiters {
			close(w)
		}
	}
}

// redraw follows size changes, renders and paints one line. A panic in a
// formatter is logged and the executor keeps running.
func (s *scheduler) redraw() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("redraw panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	if !s.surface.Active() && !s.surface.Enter() {
		return
	}
	if size, err := s.surface.Query(); err == nil && size != s.surface.Size() {
		s.logger.Debug("terminal resized", "cols", size.Cols, "rows", size.Rows)
		s.surface.Resize(size)
		if !s.surface.Active() {
			return
		}
	}
	s.surface.Paint(s.render(s.surface.Size().Cols))
}

// rearm replaces the refresh timer when the fastest refresh changed.
func (s *scheduler) rearm(set []Refresh) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	want, ok := fastest(set)
	if s.timer != nil && ok && s.timer.refresh == want {
		return
	}
	s.timer.stop()
	s.timer = nil
	if !ok {
		return
	}
	s.timer = startRefreshTimer(want, func(wait bool) <-chan struct{} {
		var done chan struct{}
		if wait {
			done = make(chan struct{})
		}
		if !s.request(done) {
			return nil
		}
		return done
	})
}

// interval returns the period of the running refresh timer, or zero.
func (s *scheduler) interval() time.Duration {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer == nil {
		return 0
	}
	return s.timer.refresh.Interval
}

// stop halts every goroutine, releases the bottom row and wakes any
// Flush callers still waiting.
func (s *scheduler) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.rearm(nil)
	s.resize.stop()
	close(s.stopCh)
	<-s.doneCh
	s.surface.Exit()

	s.mu.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()
	for _, w := range waiters {
		close(w)
	}
}
