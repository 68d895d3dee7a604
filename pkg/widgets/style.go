package widgets

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Threshold colours, matching the dashboard palette.
const (
	colorOK   = "#4CAF50"
	colorWarn = "#FF9800"
	colorCrit = "#F44336"
)

// Styler colours metric text by utilisation. Colours follow the colour
// profile of the output and vanish when it is not a terminal or NO_COLOR
// is set.
type Styler struct {
	ok, warn, crit lipgloss.Style
	warnAt, critAt float64
}

// NewStyler returns a Styler for text written to w. Values at or above 70
// are warnings and at or above 90 critical.
func NewStyler(w io.Writer) *Styler {
	var opts []termenv.OutputOption
	if termenv.EnvNoColor() {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	r := lipgloss.NewRenderer(w, opts...)
	return &Styler{
		ok:     r.NewStyle().Foreground(lipgloss.Color(colorOK)),
		warn:   r.NewStyle().Foreground(lipgloss.Color(colorWarn)),
		crit:   r.NewStyle().Foreground(lipgloss.Color(colorCrit)).Bold(true),
		warnAt: 70,
		critAt: 90,
	}
}

// Threshold renders text in the colour for pct.
func (s *Styler) Threshold(pct float64, text string) string {
	switch {
	case pct >= s.critAt:
		return s.crit.Render(text)
	case pct >= s.warnAt:
		return s.warn.Render(text)
	default:
		return s.ok.Render(text)
	}
}
