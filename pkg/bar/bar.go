// Package bar keeps a status bar on the bottom row of a terminal while a
// program's normal output scrolls above it.
//
// Content is added as items. The bar is active exactly while at least one
// item is registered: the first Add reserves the bottom row and the
// removal of the last item gives it back. All drawing happens on one
// goroutine, so value providers never run concurrently with each other.
//
//	b := bar.New()
//	h, _ := b.Add(bar.Static("building"), bar.WithLabel("step"))
//	defer h.Remove()
//	clock, _ := b.Add(bar.Func(func() string {
//		return time.Now().Format("15:04:05")
//	}), bar.AlignRight(), bar.WithRefresh(time.Second))
//	defer clock.Remove()
package bar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/layout"
	"gitlab.com/tinyland/lab/bottombar/pkg/terminal"
)

// Formatter post-processes the composed line before it is painted. The
// result is cut or padded to width.
type Formatter func(line string, width int) string

type options struct {
	output       io.Writer
	surface      Surface
	logger       *slog.Logger
	layout       layout.Options
	errorText    string
	resizeMode   ResizeMode
	pollInterval time.Duration
	syncOutput   *bool
	formatter    Formatter
}

// Option configures a Bar.
type Option func(*options)

// WithOutput sets the stream the bar draws on. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithSurface replaces the terminal surface entirely; WithOutput and
// WithSyncOutput are then ignored.
func WithSurface(s Surface) Option {
	return func(o *options) { o.surface = s }
}

// WithLogger sets the logger for provider failures and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSeparator sets the text between items of the same group.
func WithSeparator(sep string) Option {
	return func(o *options) { o.layout.Separator = sep }
}

// WithMarker sets the text that ends a truncated value.
func WithMarker(marker string) Option {
	return func(o *options) { o.layout.Marker = marker }
}

// WithErrorText sets what a failing value provider renders as. The
// default is an empty value, which keeps the item's label visible.
func WithErrorText(text string) Option {
	return func(o *options) { o.errorText = text }
}

// WithResizeMode selects signal-driven or polled resize detection.
func WithResizeMode(m ResizeMode) Option {
	return func(o *options) { o.resizeMode = m }
}

// WithPollInterval sets the size polling period used without SIGWINCH.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithSyncOutput forces synchronized output on or off instead of
// detecting terminal support.
func WithSyncOutput(on bool) Option {
	return func(o *options) { o.syncOutput = &on }
}

// WithFormatter installs a hook that rewrites the composed line, for
// example to colour it.
func WithFormatter(f Formatter) Option {
	return func(o *options) { o.formatter = f }
}

// Bar is a bottom status bar. The zero value is not usable; call New.
type Bar struct {
	opts     options
	logger   *slog.Logger
	surface  Surface
	registry *Registry

	// lifeMu serializes activation and teardown. Teardown waits for the
	// executor while holding it, so the executor only ever tries it; see
	// lockLife.
	lifeMu   sync.Mutex
	closed   bool
	sched    atomic.Pointer[scheduler]
	stopping atomic.Bool

	// execID is the goroutine id of the running executor, or zero.
	execID atomic.Uint64

	// failing is only touched by the executor.
	failing map[uint64]bool
}

// New returns an inactive bar. Nothing is written until the first Add.
func New(opts ...Option) *Bar {
	o := options{
		output:       os.Stdout,
		layout:       layout.DefaultOptions(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	surface := o.surface
	if surface == nil {
		var sopts []terminal.SurfaceOption
		if o.syncOutput != nil {
			sopts = append(sopts, terminal.WithSyncOutput(*o.syncOutput))
		}
		surface = terminal.NewSurface(o.output, sopts...)
	}

	return &Bar{
		opts:     o,
		logger:   o.logger.With("component", "bottombar"),
		surface:  surface,
		registry: NewRegistry(),
		failing:  make(map[uint64]bool),
	}
}

// Add registers an item and returns its handle. The first item activates
// the bar. Add fails with ErrClosed after Close.
func (b *Bar) Add(v Value, opts ...ItemOption) (*Handle, error) {
	it := Item{Value: v}
	for _, opt := range opts {
		opt(&it)
	}

	if err := b.lockLife(); err != nil {
		return nil, err
	}
	defer b.lifeMu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	it = b.registry.Add(it)
	s := b.sched.Load()
	if s == nil {
		s = startScheduler(schedulerConfig{
			surface:      b.surface,
			render:       b.render,
			logger:       b.logger,
			resizeMode:   b.opts.resizeMode,
			pollInterval: b.opts.pollInterval,
			execID:       &b.execID,
		})
		b.sched.Store(s)
		b.logger.Debug("bar activated")
	}
	if it.Refresh.Enabled() {
		s.rearm(b.registry.Refreshes())
	}
	s.request(nil)
	return &Handle{bar: b, id: it.ID}, nil
}

// With adds an item, runs fn and removes the item again, even when fn
// panics.
func (b *Bar) With(v Value, fn func(*Handle) error, opts ...ItemOption) (err error) {
	h, err := b.Add(v, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := h.Remove(); rerr != nil && !errors.Is(rerr, ErrReleased) && err == nil {
			err = rerr
		}
	}()
	return fn(h)
}

// Redraw queues a redraw, re-evaluating every provider. It never blocks
// and is a no-op while the bar is inactive.
func (b *Bar) Redraw() {
	if s := b.sched.Load(); s != nil {
		s.request(nil)
	}
}

// Flush queues a redraw and waits until it has been painted, or until ctx
// is done. It returns at once while the bar is inactive.
func (b *Bar) Flush(ctx context.Context) error {
	s := b.sched.Load()
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	if !s.request(done) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active reports whether the bar currently holds the bottom row
// reservation, which is the case while any item is registered.
func (b *Bar) Active() bool {
	return b.sched.Load() != nil
}

// Len returns the number of registered items.
func (b *Bar) Len() int {
	return b.registry.Len()
}

// RefreshInterval returns the period of the running refresh timer, or
// zero when no item asked for periodic redraws.
func (b *Bar) RefreshInterval() time.Duration {
	if s := b.sched.Load(); s != nil {
		return s.interval()
	}
	return 0
}

// Close removes every item, releases the bottom row and makes further Add
// calls fail. Outstanding handles report ErrReleased. Close is idempotent.
// Called from a value provider it returns ErrInProvider and does nothing.
func (b *Bar) Close() error {
	if b.onExecutor() {
		return ErrInProvider
	}
	b.lifeMu.Lock()
	defer b.lifeMu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.registry.Clear()
	b.deactivateLocked()
	return nil
}

func (b *Bar) remove(id uint64) error {
	if err := b.lockLife(); err != nil {
		return err
	}
	defer b.lifeMu.Unlock()

	// Releasing the row waits for the executor, which is the caller here.
	if _, ok := b.registry.Get(id); ok && b.registry.Len() == 1 && b.onExecutor() {
		return ErrInProvider
	}
	remaining, err := b.registry.Remove(id)
	if err != nil {
		return err
	}
	if remaining == 0 {
		b.deactivateLocked()
		return nil
	}
	s := b.sched.Load()
	s.rearm(b.registry.Refreshes())
	s.request(nil)
	return nil
}

// update changes an item and queues a redraw. It does not take lifeMu, so
// value providers may update items from the executor goroutine.
func (b *Bar) update(id uint64, fn func(*Item)) error {
	if err := b.registry.Update(id, fn); err != nil {
		return err
	}
	if s := b.sched.Load(); s != nil {
		s.request(nil)
	}
	return nil
}

func (b *Bar) setRefresh(id uint64, r Refresh) error {
	if err := b.lockLife(); err != nil {
		return err
	}
	defer b.lifeMu.Unlock()

	if err := b.registry.Update(id, func(it *Item) { it.Refresh = r }); err != nil {
		return err
	}
	if s := b.sched.Load(); s != nil {
		s.rearm(b.registry.Refreshes())
		s.request(nil)
	}
	return nil
}

func (b *Bar) deactivateLocked() {
	s := b.sched.Swap(nil)
	if s == nil {
		return
	}
	b.stopping.Store(true)
	s.stop()
	b.stopping.Store(false)
	b.logger.Debug("bar released")
}

// onExecutor reports whether the caller runs on the executor goroutine,
// which is where value providers are evaluated.
func (b *Bar) onExecutor() bool {
	id := b.execID.Load()
	return id != 0 && id == goid()
}

// lockLife takes lifeMu. On the executor it only tries the lock, and gives
// up with ErrInProvider once a teardown holding lifeMu is waiting for the
// current redraw to finish.
func (b *Bar) lockLife() error {
	if !b.onExecutor() {
		b.lifeMu.Lock()
		return nil
	}
	for !b.lifeMu.TryLock() {
		if b.stopping.Load() {
			return ErrInProvider
		}
		runtime.Gosched()
	}
	return nil
}

// render evaluates every item and composes the line. It runs on the
// executor goroutine only.
func (b *Bar) render(width int) string {
	items := b.registry.Snapshot()
	entries := make([]layout.Entry, 0, len(items))
	for _, it := range items {
		text, err := evaluate(it.Value)
		if err != nil {
			if !b.failing[it.ID] {
				b.failing[it.ID] = true
				b.logger.Warn("value provider failed", "item", it.ID, "label", it.Label, "error", err)
			}
			text = b.opts.errorText
		} else if b.failing[it.ID] {
			delete(b.failing, it.ID)
			b.logger.Debug("value provider recovered", "item", it.ID, "label", it.Label)
		}
		entries = append(entries, layout.Entry{
			Label: it.Label,
			Value: text,
			Align: it.Align,
			Order: it.Order,
		})
	}

	line := layout.Compose(entries, width, b.opts.layout)
	if b.opts.formatter != nil {
		line = layout.Fit(b.opts.formatter(line, width), width)
	}
	return line
}
