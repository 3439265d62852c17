package components

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/ui/theme"
)

// Footer encapsulates the application footer.
type Footer struct {
	*tview.TextView
	baseText string
	status   string
}

// NewFooter creates a footer listing kb.
func NewFooter(kb config.KeyBindings) *Footer {
	footer := tview.NewTextView()
	footer.SetTextAlign(tview.AlignCenter)
	footer.SetDynamicColors(true)
	footer.SetBackgroundColor(theme.Colors.Footer)

	f := &Footer{TextView: footer}
	f.UpdateKeybindings(kb)
	return f
}

// FormatKeybindings renders kb as footer text.
func FormatKeybindings(kb config.KeyBindings) string {
	entries := []struct{ key, label string }{
		{kb.Search, "Search"},
		{kb.Refresh, "Refresh"},
		{kb.ScrollBackward + "/" + kb.ScrollForward, "Scroll"},
		{kb.HistoryBackward + "/" + kb.HistoryForward, "History"},
		{kb.Quit, "Quit"},
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("[yellow]%s:[%s]%s", tview.Escape(e.key), theme.ColorToTag(theme.Colors.FooterText), e.label))
	}
	return strings.Join(parts, "  ")
}

// UpdateKeybindings updates the footer text with kb.
func (f *Footer) UpdateKeybindings(kb config.KeyBindings) {
	f.baseText = FormatKeybindings(kb)
	f.updateDisplay()
}

// SetStatus shows a short status, such as the metrics address, after the
// bindings. An empty status clears it.
func (f *Footer) SetStatus(status string) {
	f.status = status
	f.updateDisplay()
}

func (f *Footer) updateDisplay() {
	text := f.baseText
	if f.status != "" {
		text = fmt.Sprintf("%s  [green]%s[-]", text, tview.Escape(f.status))
	}
	f.SetText(text)
}
