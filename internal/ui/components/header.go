package components

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/ui/theme"
)

const (
	headerTitle        = "insightview"
	headerMessageDelay = 3 * time.Second
	spinnerInterval    = 100 * time.Millisecond
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Header encapsulates the application header.
type Header struct {
	*tview.TextView

	mu          sync.Mutex
	stopLoading chan struct{}
	// generation invalidates delayed resets queued by an earlier message.
	generation uint64
	post       func(func())
}

// NewHeader creates a new application header.
func NewHeader() *Header {
	header := tview.NewTextView()
	header.SetTextAlign(tview.AlignCenter)
	header.SetText(headerTitle)
	header.SetDynamicColors(true)
	header.SetBackgroundColor(theme.Colors.Header)
	header.SetTextColor(theme.Colors.HeaderText)

	return &Header{TextView: header}
}

// SetPost sets the function used to run updates on the event loop.
func (h *Header) SetPost(post func(func())) {
	h.post = post
}

// ShowLoading displays an animated loading indicator until StopLoading or
// another message replaces it.
func (h *Header) ShowLoading(message string) {
	h.mu.Lock()
	h.stopLocked()
	h.generation++
	stop := make(chan struct{})
	h.stopLoading = stop
	h.mu.Unlock()

	h.SetText(fmt.Sprintf("[%s]%s %s[-]", theme.ColorToTag(theme.Colors.Warning), spinnerFrames[0], message))
	if h.post != nil {
		go h.animateLoading(stop, message)
	}
}

// StopLoading stops the loading animation.
func (h *Header) StopLoading() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// IsLoading reports whether the header is currently showing a loading state.
func (h *Header) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopLoading != nil
}

func (h *Header) stopLocked() {
	if h.stopLoading != nil {
		close(h.stopLoading)
		h.stopLoading = nil
	}
}

// ShowSuccess displays a success message temporarily.
func (h *Header) ShowSuccess(message string) {
	h.showTemporary(fmt.Sprintf("[%s]✓ %s[-]", theme.ColorToTag(theme.Colors.Success), tview.Escape(message)))
}

// ShowError displays an error message temporarily.
func (h *Header) ShowError(message string) {
	h.showTemporary(fmt.Sprintf("[%s]✗ %s[-]", theme.ColorToTag(theme.Colors.Error), tview.Escape(message)))
}

func (h *Header) showTemporary(text string) {
	h.mu.Lock()
	h.stopLocked()
	h.generation++
	gen := h.generation
	h.mu.Unlock()

	h.SetText(text)
	if h.post == nil {
		return
	}

	time.AfterFunc(headerMessageDelay, func() {
		h.post(func() {
			h.mu.Lock()
			current := h.generation == gen
			h.mu.Unlock()
			if current {
				h.SetText(headerTitle)
			}
		})
	})
}

func (h *Header) animateLoading(stop <-chan struct{}, message string) {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	index := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			index = (index + 1) % len(spinnerFrames)
			frame := spinnerFrames[index]
			h.post(func() {
				select {
				case <-stop:
					return
				default:
				}
				h.SetText(fmt.Sprintf("[%s]%s %s[-]", theme.ColorToTag(theme.Colors.Warning), frame, message))
			})
		}
	}
}
