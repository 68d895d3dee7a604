package bar

import "gitlab.com/tinyland/lab/bottombar/pkg/layout"

// Handle refers to one registered item. Its methods are safe for
// concurrent use and return ErrReleased once the item is gone.
type Handle struct {
	bar *Bar
	id  uint64
}

// ID returns the item's unique identifier.
func (h *Handle) ID() uint64 {
	return h.id
}

// SetValue replaces the item's value and queues a redraw.
func (h *Handle) SetValue(v Value) error {
	return h.bar.update(h.id, func(it *Item) { it.Value = v })
}

// SetText replaces the item's value with fixed text.
func (h *Handle) SetText(text string) error {
	return h.SetValue(Static(text))
}

// SetLabel replaces the item's label.
func (h *Handle) SetLabel(label string) error {
	return h.bar.update(h.id, func(it *Item) { it.Label = label })
}

// SetAlign moves the item to the other group. It keeps its insertion
// position relative to the items of the new group.
func (h *Handle) SetAlign(a layout.Align) error {
	return h.bar.update(h.id, func(it *Item) { it.Align = a })
}

// SetRefresh changes the item's refresh request and re-arms the bar's
// timer.
func (h *Handle) SetRefresh(r Refresh) error {
	return h.bar.setRefresh(h.id, r)
}

// Remove unregisters the item. Removing the last item releases the bottom
// row; a value provider cannot do that and gets ErrInProvider.
func (h *Handle) Remove() error {
	return h.bar.remove(h.id)
}

// Close is Remove, so a handle can be deferred as an io.Closer.
func (h *Handle) Close() error {
	return h.Remove()
}
