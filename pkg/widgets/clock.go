package widgets

import (
	"fmt"
	"time"
)

// DefaultClockFormat is the time layout used when none is configured.
const DefaultClockFormat = "15:04:05"

// Clock returns a provider rendering the current time with a Go time
// layout.
func Clock(layout string) func() string {
	return clockAt(layout, time.Now)
}

func clockAt(layout string, now func() time.Time) func() string {
	if layout == "" {
		layout = DefaultClockFormat
	}
	return func() string {
		return now().Format(layout)
	}
}

// Elapsed returns a provider rendering the time since start as m:ss, or
// h:mm:ss past the hour.
func Elapsed(start time.Time) func() string {
	return elapsedAt(start, time.Now)
}

func elapsedAt(start time.Time, now func() time.Time) func() string {
	return func() string {
		return FormatElapsed(now().Sub(start))
	}
}

// FormatElapsed renders d as m:ss or h:mm:ss. Negative durations render as
// zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
