package components

import (
	"github.com/gdamore/tcell/v2"

	"github.com/devnullvoid/insightview/internal/scroll"
)

// WindowSource reports terminal size changes to coordinators. tview has no
// resize callback, so the application feeds it from its before-draw hook.
type WindowSource struct {
	*scroll.Notifier
	width, height int
}

var _ scroll.EventSource = (*WindowSource)(nil)

// NewWindowSource creates a source with no known size.
func NewWindowSource() *WindowSource {
	return &WindowSource{Notifier: scroll.NewNotifier()}
}

// Observe records the current screen size and notifies listeners when it
// differs from the previous observation. The first observation only records.
func (w *WindowSource) Observe(screen tcell.Screen) {
	width, height := screen.Size()
	if width == w.width && height == w.height {
		return
	}

	known := w.width != 0 || w.height != 0
	w.width, w.height = width, height
	if known {
		w.Notify()
	}
}

// Size returns the last observed size.
func (w *WindowSource) Size() (width, height int) {
	return w.width, w.height
}
