package bar

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/bottombar/pkg/layout"
)

// Phase selects how the refresh timer schedules its next tick.
type Phase int

const (
	// PhaseExact keeps ticks on a fixed grid: the next tick is the previous
	// target plus the interval, skipping ticks that were missed entirely.
	PhaseExact Phase = iota
	// PhaseDrift waits a full interval after each redraw completes.
	PhaseDrift
)

func (p Phase) String() string {
	switch p {
	case PhaseExact:
		return "exact"
	case PhaseDrift:
		return "drift"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Refresh asks the bar to redraw periodically. The zero value means the
// item is only redrawn on explicit updates.
type Refresh struct {
	Interval time.Duration
	Phase    Phase
}

// Enabled reports whether r requests periodic redraws.
func (r Refresh) Enabled() bool {
	return r.Interval > 0
}

// Item is a registered piece of bar content.
type Item struct {
	ID      uint64
	Label   string
	Value   Value
	Align   layout.Align
	Refresh Refresh
	// Order is the insertion sequence; it positions the item in its group.
	Order uint64
}

// ItemOption configures an item at Add time.
type ItemOption func(*Item)

// WithLabel sets the text shown before the value when there is room.
func WithLabel(label string) ItemOption {
	return func(it *Item) { it.Label = label }
}

// AlignLeft places the item in the left group. This is the default.
func AlignLeft() ItemOption {
	return func(it *Item) { it.Align = layout.AlignLeft }
}

// AlignRight places the item in the right group.
func AlignRight() ItemOption {
	return func(it *Item) { it.Align = layout.AlignRight }
}

// WithAlign places the item in the given group.
func WithAlign(a layout.Align) ItemOption {
	return func(it *Item) { it.Align = a }
}

// WithRefresh redraws the bar every d on a fixed grid, as a clock needs.
func WithRefresh(d time.Duration) ItemOption {
	return func(it *Item) { it.Refresh = Refresh{Interval: d, Phase: PhaseExact} }
}

// WithDriftingRefresh redraws the bar d after the previous redraw
// finished, tolerating drift. Use it for providers that are slow to
// evaluate.
func WithDriftingRefresh(d time.Duration) ItemOption {
	return func(it *Item) { it.Refresh = Refresh{Interval: d, Phase: PhaseDrift} }
}

// fastest picks the refresh the timer should run with: the smallest
// enabled interval, exact phase winning ties.
func fastest(set []Refresh) (Refresh, bool) {
	var best Refresh
	found := false
	for _, r := range set {
		if !r.Enabled() {
			continue
		}
		switch {
		case !found, r.Interval < best.Interval:
			best = r
		case r.Interval == best.Interval && r.Phase == PhaseExact:
			best.Phase = PhaseExact
		}
		found = true
	}
	return best, found
}
