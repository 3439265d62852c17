package components

import (
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/store"
)

// createMainLayout builds the main application layout.
func (a *App) createMainLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(a.history, 1, 0, false).
		AddItem(a.results, 0, 1, true).
		AddItem(a.searchInput, 1, 0, false).
		AddItem(a.footer, 1, 0, false)
}

// setupComponentConnections wires up the interactions between components.
func (a *App) setupComponentConnections() {
	a.history.Follow(a.store, a.post)
	a.history.SetSelectedFunc(func(key store.Key) {
		a.search(key, false)
	})
}
