// Package layout composes a single status line out of labeled entries.
//
// Entries are split into a left-aligned and a right-aligned group. Each
// group joins its entries with a separator and the two groups are pushed
// to opposite edges of the line. When the line is too narrow the composer
// degrades in two passes:
//  1. Drop labels, starting in the wider group with the label furthest from
//     the gap between the groups, then alternating between groups.
//  2. Truncate values by water-filling: find the largest per-entry cap such
//     that all entries fit, shorten every entry wider than the cap and end
//     it with the truncation marker.
//
// Widths are measured in display cells, so escape sequences are free and
// wide characters take two cells.
package layout

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultSeparator is placed between entries of the same group.
	DefaultSeparator = " | "
	// DefaultMarker ends a truncated value.
	DefaultMarker = "…"
	// labelSuffix joins a label to its value.
	labelSuffix = ": "
	// minGap is the number of blank cells kept between two non-empty groups.
	minGap = 1
)

// Align selects the group an entry belongs to.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign converts "left" or "right" to an Align. The empty string is
// left.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("layout: unknown alignment %q", s)
}

// Entry is one evaluated item of the line.
type Entry struct {
	Label string
	Value string
	Align Align
	// Order positions the entry within its group, lowest first.
	Order uint64
}

// Options tunes the composer. Empty fields take the defaults.
type Options struct {
	Separator string
	Marker    string
}

// DefaultOptions returns the separator and marker used when none are set.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator, Marker: DefaultMarker}
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	return o
}

type cell struct {
	label   string
	value   string
	labeled bool
}

func (c *cell) text() string {
	if c.labeled {
		return c.label + labelSuffix + c.value
	}
	return c.value
}

func (c *cell) width() int {
	return VisibleLen(c.text())
}

type group struct {
	cells  []*cell
	sepLen int
	// outerFirst is true when the label furthest from the gap is the first
	// one, which holds for the left group.
	outerFirst bool
}

func (g *group) width() int {
	if len(g.cells) == 0 {
		return 0
	}
	w := g.sepLen * (len(g.cells) - 1)
	for _, c := range g.cells {
		w += c.width()
	}
	return w
}

// dropLabel removes the outermost remaining label and reports whether
// there was one.
func (g *group) dropLabel() bool {
	n := len(g.cells)
	for i := 0; i < n; i++ {
		idx := i
		if !g.outerFirst {
			idx = n - 1 - i
		}
		if c := g.cells[idx]; c.labeled {
			c.labeled = false
			return true
		}
	}
	return false
}

func (g *group) join(sep string) string {
	parts := make([]string, len(g.cells))
	for i, c := range g.cells {
		parts[i] = c.text()
	}
	return strings.Join(parts, sep)
}

// Compose lays entries out on a line of exactly width cells. A width of
// zero or less yields the empty string.
func Compose(entries []Entry, width int, opts Options) string {
	if width <= 0 {
		return ""
	}
	opts = opts.withDefaults()

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	sepLen := VisibleLen(opts.Separator)
	left := &group{sepLen: sepLen, outerFirst: true}
	right := &group{sepLen: sepLen}
	for _, e := range sorted {
		c := &cell{
			label:   Sanitize(e.Label),
			value:   Sanitize(e.Value),
			labeled: e.Label != "",
		}
		if e.Align == AlignRight {
			right.cells = append(right.cells, c)
		} else {
			left.cells = append(left.cells, c)
		}
	}

	gap := 0
	if len(left.cells) > 0 && len(right.cells) > 0 {
		gap = minGap
	}
	fits := func() bool { return left.width()+right.width()+gap <= width }

	if !fits() {
		dropLabels(left, right, fits)
	}
	if !fits() {
		truncate(left, right, width-gap, opts.Marker)
	}

	l := left.join(opts.Separator)
	r := right.join(opts.Separator)
	pad := width - VisibleLen(l) - VisibleLen(r)
	if pad < 0 {
		pad = 0
	}
	return Fit(l+strings.Repeat(" ", pad)+r, width)
}

// dropLabels removes labels one at a time until fits reports true or no
// labels remain. The wider group goes first; ties favour the left group.
func dropLabels(left, right *group, fits func() bool) {
	turn, other := left, right
	if right.width() > left.width() {
		turn, other = right, left
	}
	for !fits() {
		if !turn.dropLabel() {
			if !other.dropLabel() {
				return
			}
			continue
		}
		turn, other = other, turn
	}
}

// truncate shortens values so that both groups fit into avail cells.
func truncate(left, right *group, avail int, marker string) {
	cells := make([]*cell, 0, len(left.cells)+len(right.cells))
	cells = append(cells, left.cells...)
	cells = append(cells, right.cells...)
	if len(cells) == 0 {
		return
	}

	for _, g := range []*group{left, right} {
		if n := len(g.cells); n > 0 {
			avail -= g.sepLen * (n - 1)
		}
	}

	widths := make([]int, len(cells))
	for i, c := range cells {
		widths[i] = c.width()
	}
	allots := waterFill(widths, avail)

	for i, c := range cells {
		if allots[i] >= widths[i] {
			continue
		}
		// dropLabels has run to completion, so only values remain.
		c.value = PadRight(TruncateWithTail(c.value, allots[i], marker), allots[i])
	}
}

// waterFill distributes avail cells across entries of the given widths.
// Entries no wider than the resulting cap keep their width; the others get
// the cap, and any cells left over from integer division go one each to
// the earliest over-cap entries.
func waterFill(widths []int, avail int) []int {
	out := make([]int, len(widths))
	if avail <= 0 {
		return out
	}

	asc := make([]int, len(widths))
	copy(asc, widths)
	sort.Ints(asc)

	remaining := avail
	limit, extra := -1, 0
	for i, w := range asc {
		share := remaining / (len(asc) - i)
		if w <= share {
			remaining -= w
			continue
		}
		limit = share
		extra = remaining - share*(len(asc)-i)
		break
	}

	for i, w := range widths {
		switch {
		case limit < 0 || w <= limit:
			out[i] = w
		case extra > 0:
			out[i] = limit + 1
			extra--
		default:
			out[i] = limit
		}
	}
	return out
}
