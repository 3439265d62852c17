package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devnullvoid/insightview/internal/config"
)

func TestHeader_States(t *testing.T) {
	h := NewHeader()
	assert.Equal(t, headerTitle, h.GetText(true))
	assert.False(t, h.IsLoading())

	h.ShowLoading("Searching foo")
	assert.True(t, h.IsLoading())
	assert.Contains(t, h.GetText(true), "Searching foo")

	h.ShowError("Search failed")
	assert.False(t, h.IsLoading())
	assert.Contains(t, h.GetText(true), "Search failed")

	h.ShowSuccess("3 matches")
	assert.Contains(t, h.GetText(true), "3 matches")

	h.StopLoading()
	assert.False(t, h.IsLoading())
}

func TestHeader_SpinnerStopsOnMessage(t *testing.T) {
	loop := newTestLoop()
	h := NewHeader()
	h.SetPost(loop.post)

	h.ShowLoading("Searching")
	loop.runUntil(t, func() bool {
		return h.GetText(true) != spinnerFrames[0]+" Searching"
	})

	h.ShowSuccess("done")
	// Frames queued before the message must not overwrite it.
	for len(loop.queue) > 0 {
		(<-loop.queue)()
	}
	assert.Contains(t, h.GetText(true), "done")
}

func TestFooter_Keybindings(t *testing.T) {
	f := NewFooter(config.DefaultKeyBindings())

	text := f.GetText(true)
	assert.Contains(t, text, "/:Search")
	assert.Contains(t, text, "Ctrl+r:Refresh")
	assert.Contains(t, text, "q:Quit")

	f.SetStatus("metrics on 127.0.0.1:9090")
	assert.Contains(t, f.GetText(true), "metrics on 127.0.0.1:9090")

	f.SetStatus("")
	assert.NotContains(t, f.GetText(true), "metrics")
}
