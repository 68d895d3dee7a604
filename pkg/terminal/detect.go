// Package terminal owns the output terminal for the status bar: it finds out
// what the terminal is and how big it is, and it reserves, paints and
// releases the bottom row through the VT100 scroll region.
//
// Detection only inspects environment variables. It never writes queries
// to the terminal, because the bar shares the stream with a program that
// may be reading replies from it.
package terminal

import (
	"os"
	"strings"
)

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown Terminal = iota
	TermGhostty
	TermKitty
	TermWezTerm
	TermITerm2
	TermAlacritty
	TermVTE // GNOME Terminal, Tilix and other VTE widgets
	TermTmux
	TermScreen
	TermVSCode
	TermDumb // TERM=dumb or an editor shell buffer
	TermGeneric
)

var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermAlacritty: "alacritty",
	TermVTE:       "vte",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermVSCode:    "vscode",
	TermDumb:      "dumb",
	TermGeneric:   "generic",
}

func (t Terminal) String() string {
	if t >= 0 && int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// SupportsSyncOutput reports whether the terminal honours synchronized
// output (DEC mode 2026), which lets a bar repaint land in one frame.
func (t Terminal) SupportsSyncOutput() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2, TermAlacritty, TermVTE:
		return true
	default:
		return false
	}
}

// SupportsScrollRegion reports whether the terminal can be expected to
// implement DECSTBM. Only dumb terminals are excluded.
func (t Terminal) SupportsScrollRegion() bool {
	return t != TermDumb
}

// termPrograms maps lower-cased TERM_PROGRAM values to terminals.
var termPrograms = map[string]Terminal{
	"ghostty":   TermGhostty,
	"kitty":     TermKitty,
	"wezterm":   TermWezTerm,
	"iterm.app": TermITerm2,
	"vscode":    TermVSCode,
	"alacritty": TermAlacritty,
	"tmux":      TermTmux,
}

// markerVars are variables whose mere presence identifies a terminal.
// Order matters: emulators are checked before multiplexers so that the
// outer terminal wins when it exports its own marker.
var markerVars = []struct {
	name string
	term Terminal
}{
	{"KITTY_WINDOW_ID", TermKitty},
	{"ITERM_SESSION_ID", TermITerm2},
	{"WEZTERM_EXECUTABLE", TermWezTerm},
	{"VTE_VERSION", TermVTE},
	{"TMUX", TermTmux},
	{"STY", TermScreen},
}

// Detect identifies the terminal emulator from environment variables, in
// order of reliability: TERM_PROGRAM, TERM, emulator marker variables and
// finally multiplexer markers. TERM=dumb always wins.
func Detect() Terminal {
	term := os.Getenv("TERM")
	if term == "dumb" {
		return TermDumb
	}

	if t, ok := termPrograms[strings.ToLower(os.Getenv("TERM_PROGRAM"))]; ok {
		return t
	}

	switch {
	case term == "xterm-ghostty":
		return TermGhostty
	case term == "xterm-kitty":
		return TermKitty
	case strings.HasPrefix(term, "alacritty"):
		return TermAlacritty
	case strings.HasPrefix(term, "screen") && os.Getenv("STY") != "":
		return TermScreen
	}

	for _, m := range markerVars {
		if os.Getenv(m.name) != "" {
			return m.term
		}
	}

	if os.Getenv("LC_TERMINAL") == "iTerm2" {
		return TermITerm2
	}
	if term == "" {
		return TermUnknown
	}
	return TermGeneric
}
