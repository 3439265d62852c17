package components

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/keys"
)

type bindings struct {
	scrollBackward  keys.Binding
	scrollForward   keys.Binding
	historyBackward keys.Binding
	historyForward  keys.Binding
	search          keys.Binding
	refresh         keys.Binding
	quit            keys.Binding
}

func compileBindings(kb config.KeyBindings) (bindings, error) {
	var b bindings
	targets := []struct {
		name string
		spec string
		dst  *keys.Binding
	}{
		{"scroll_backward", kb.ScrollBackward, &b.scrollBackward},
		{"scroll_forward", kb.ScrollForward, &b.scrollForward},
		{"history_backward", kb.HistoryBackward, &b.historyBackward},
		{"history_forward", kb.HistoryForward, &b.historyForward},
		{"search", kb.Search, &b.search},
		{"refresh", kb.Refresh, &b.refresh},
		{"quit", kb.Quit, &b.quit},
	}

	for _, t := range targets {
		binding, err := keys.Compile(t.spec)
		if err != nil {
			return bindings{}, fmt.Errorf("key binding %s: %w", t.name, err)
		}
		*t.dst = binding
	}
	return b, nil
}

// setupKeyboardHandlers configures global keyboard shortcuts.
func (a *App) setupKeyboardHandlers() {
	a.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	// The search input owns every key while focused.
	if a.searchInput.HasFocus() {
		return event
	}

	switch {
	case a.bindings.quit.Matches(event):
		a.Stop()
	case a.bindings.search.Matches(event):
		a.activateSearch()
	case a.bindings.refresh.Matches(event):
		a.refresh()
	case a.bindings.scrollBackward.Matches(event):
		a.results.Coordinator().TriggerNegative()
	case a.bindings.scrollForward.Matches(event):
		a.results.Coordinator().TriggerPositive()
	case a.bindings.historyBackward.Matches(event):
		a.history.Coordinator().TriggerNegative()
	case a.bindings.historyForward.Matches(event):
		a.history.Coordinator().TriggerPositive()
	default:
		return event
	}
	return nil
}
