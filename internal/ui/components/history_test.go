package components

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/devnullvoid/insightview/pkg/api/testutils"
)

func TestHistoryView_SetKeys(t *testing.T) {
	v, err := NewHistoryView(testSettings(newTestLoop()))
	require.NoError(t, err)
	defer v.Close()

	v.SetKeys([]store.Key{{Query: "foo"}, {Query: "bar", Params: map[string]string{"repo": "x"}}})

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []string{"foo │ bar repo:x"}, v.Pane().Lines())

	key, ok := v.KeyAt(1)
	require.True(t, ok)
	assert.Equal(t, "foo", key.Query)

	_, ok = v.KeyAt(4)
	assert.False(t, ok, "separator")

	key, ok = v.KeyAt(6)
	require.True(t, ok)
	assert.Equal(t, "bar", key.Query)
}

func TestHistoryView_FollowsStore(t *testing.T) {
	loop := newTestLoop()
	s := store.New(testutils.NewInMemoryCache())
	_, err := s.Put(store.Key{Query: "one"}, api.SearchResults{})
	require.NoError(t, err)

	v, err := NewHistoryView(testSettings(loop))
	require.NoError(t, err)
	defer v.Close()

	v.Follow(s, loop.post)
	assert.Equal(t, 1, v.Len())

	_, err = s.Put(store.Key{Query: "two"}, api.SearchResults{})
	require.NoError(t, err)
	loop.runUntil(t, func() bool { return v.Len() == 2 })

	v.Unfollow()
	_, err = s.Put(store.Key{Query: "three"}, api.SearchResults{})
	require.NoError(t, err)
	assert.Empty(t, loop.queue)
	assert.Equal(t, 2, v.Len())
}

func TestHistoryView_HorizontalAffordances(t *testing.T) {
	loop := newTestLoop()
	v, err := NewHistoryView(testSettings(loop))
	require.NoError(t, err)
	defer v.Close()

	screen := newSimScreen(t, 30, 1)
	v.SetRect(0, 0, 30, 1)
	v.Draw(screen)

	keys := make([]store.Key, 0, 6)
	for _, q := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"} {
		keys = append(keys, store.Key{Query: q})
	}
	v.SetKeys(keys)

	assert.Equal(t, scroll.LeftToRight, v.Coordinator().Direction())
	loop.runUntil(t, func() bool {
		c := v.Indicator().Capability()
		return c.CanScrollNegative && !c.CanScrollPositive
	})

	v.Coordinator().TriggerNegative()
	loop.runUntil(t, func() bool { return v.Indicator().Capability().CanScrollPositive })
}

func TestHistoryView_ClickSelects(t *testing.T) {
	loop := newTestLoop()
	v, err := NewHistoryView(testSettings(loop))
	require.NoError(t, err)
	defer v.Close()

	screen := newSimScreen(t, 40, 1)
	v.SetRect(0, 0, 40, 1)
	v.Draw(screen)
	v.SetKeys([]store.Key{{Query: "foo"}, {Query: "bar"}})

	var selected []string
	v.SetSelectedFunc(func(k store.Key) { selected = append(selected, k.Query) })

	x, y, _, _ := v.Pane().GetInnerRect()
	handler := v.MouseHandler()
	handler(tview.MouseLeftClick, tcell.NewEventMouse(x+7, y, tcell.Button1, tcell.ModNone), func(tview.Primitive) {})
	handler(tview.MouseLeftClick, tcell.NewEventMouse(x+1, y, tcell.Button1, tcell.ModNone), func(tview.Primitive) {})

	assert.Equal(t, []string{"bar", "foo"}, selected)
}
