package widgets

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

var spinners = map[string]spinner.Spinner{
	"line":      spinner.Line,
	"dot":       spinner.Dot,
	"minidot":   spinner.MiniDot,
	"jump":      spinner.Jump,
	"pulse":     spinner.Pulse,
	"points":    spinner.Points,
	"globe":     spinner.Globe,
	"moon":      spinner.Moon,
	"monkey":    spinner.Monkey,
	"meter":     spinner.Meter,
	"hamburger": spinner.Hamburger,
	"ellipsis":  spinner.Ellipsis,
}

// SpinnerNames lists the available spinner styles.
func SpinnerNames() []string {
	names := make([]string, 0, len(spinners))
	for n := range spinners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Spinner animates a busy indicator. The frame is derived from the clock,
// so the animation speed does not depend on how often the bar redraws.
type Spinner struct {
	frames []string
	fps    time.Duration
	start  time.Time
	now    func() time.Time
}

// NewSpinner returns the named spinner style. An empty name is "line".
func NewSpinner(name string) (*Spinner, error) {
	if name == "" {
		name = "line"
	}
	sp, ok := spinners[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("widgets: unknown spinner %q (have %s)", name, strings.Join(SpinnerNames(), ", "))
	}
	return newSpinnerAt(sp, time.Now), nil
}

func newSpinnerAt(sp spinner.Spinner, now func() time.Time) *Spinner {
	return &Spinner{
		frames: sp.Frames,
		fps:    sp.FPS,
		start:  now(),
		now:    now,
	}
}

// Interval is the time between frames, the refresh the item should use.
func (s *Spinner) Interval() time.Duration {
	return s.fps
}

// Frame returns the frame for the current time.
func (s *Spinner) Frame() string {
	if len(s.frames) == 0 {
		return ""
	}
	if s.fps <= 0 {
		return s.frames[0]
	}
	n := int(s.now().Sub(s.start) / s.fps)
	if n < 0 {
		n = 0
	}
	return s.frames[n%len(s.frames)]
}
