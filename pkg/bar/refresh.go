package bar

import "time"

// nextWake returns when the timer should fire after a tick that was
// scheduled for prev and handled at now.
//
// Exact phase keeps the grid anchored at the first target and skips any
// grid points already in the past, so a stalled process does not fire a
// burst of catch-up ticks. Drift phase simply waits a full interval from
// now.
func nextWake(r Refresh, prev, now time.Time) time.Time {
	if r.Phase == PhaseDrift {
		return now.Add(r.Interval)
	}
	next := prev.Add(r.Interval)
	if next.After(now) {
		return next
	}
	missed := now.Sub(next)/r.Interval + 1
	return next.Add(missed * r.Interval)
}

// refreshTimer requests periodic redraws for the fastest refresh of the
// bar. A drifting timer waits for each redraw to finish before it starts
// counting the next interval.
type refreshTimer struct {
	refresh Refresh
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// startRefreshTimer starts a timer calling redraw for every tick. redraw
// returns a channel closed when the redraw is done, or nil if it was not
// queued.
func startRefreshTimer(r Refresh, redraw func(wait bool) <-chan struct{}) *refreshTimer {
	t := &refreshTimer{
		refresh: r,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go t.loop(redraw)
	return t
}

func (t *refreshTimer) loop(redraw func(wait bool) <-chan struct{}) {
	defer close(t.doneCh)

	target := time.Now().Add(t.refresh.Interval)
	timer := time.NewTimer(time.Until(target))
	defer timer.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-timer.C:
		}

		wait := t.refresh.Phase == PhaseDrift
		if done := redraw(wait); done != nil && wait {
			select {
			case <-done:
			case <-t.stopCh:
				return
			}
		}

		target = nextWake(t.refresh, target, time.Now())
		timer.Reset(time.Until(target))
	}
}

// stop halts the timer and waits for its goroutine. It is safe on nil.
func (t *refreshTimer) stop() {
	if t == nil {
		return
	}
	close(t.stopCh)
	<-t.doneCh
}
