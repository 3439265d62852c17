package components

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/internal/ui/utils"
	"github.com/devnullvoid/insightview/pkg/api"
)

func (a *App) createSearchInput() *tview.InputField {
	input := tview.NewInputField().
		SetLabel("Search: ").
		SetFieldWidth(0).
		SetPlaceholder("insight query, Enter to run, Esc to cancel")

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			text := strings.TrimSpace(input.GetText())
			if text != "" {
				a.search(a.keyFor(text), false)
			}
			a.SetFocus(a.results)
		case tcell.KeyEscape:
			a.SetFocus(a.results)
		}
	})

	return input
}

// activateSearch focuses the search input, prefilled with the current query.
func (a *App) activateSearch() {
	if a.hasCurrent {
		a.searchInput.SetText(a.current.Query)
	}
	a.SetFocus(a.searchInput)
}

// keyFor combines typed query text with the configured parameters.
func (a *App) keyFor(text string) store.Key {
	return store.NewKey(api.SearchRequest{Query: text, Params: a.cfg.Params})
}

// refresh re-runs the current search, bypassing the store.
func (a *App) refresh() {
	if !a.hasCurrent {
		a.header.ShowError("Nothing to refresh")
		return
	}
	a.search(a.current, true)
}

// search loads key off the event loop and shows the outcome. Only the most
// recent search is applied.
func (a *App) search(key store.Key, refresh bool) {
	a.current = key
	a.hasCurrent = true
	a.searchGen++
	gen := a.searchGen

	a.logger.Debug("Searching %q (refresh=%v)", key.Label(), refresh)
	a.header.ShowLoading(fmt.Sprintf("Searching %s", key.Label()))

	go func() {
		rec, err := a.loader.Load(a.ctx, key, refresh)
		a.post(func() {
			a.finishSearch(gen, rec, err)
		})
	}()
}

func (a *App) finishSearch(gen uint64, rec store.Record, err error) {
	if gen != a.searchGen {
		return
	}

	if err != nil {
		a.logger.Error("Search %q failed: %v", a.current.Label(), err)
		a.results.ShowError(err)
		a.header.ShowError("Search failed")
		return
	}

	focused := a.results.HasFocus()
	a.results.Show(rec)
	if focused {
		a.SetFocus(a.results)
	}
	a.header.ShowSuccess(utils.FormatMatchCount(rec.Results))
}
