package components

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/store"
)

const historySeparator = " │ "

type historySpan struct {
	start, end int
	key        store.Key
}

// HistoryView is a one-line strip of previously stored queries, newest last.
// It scrolls horizontally; clicking an entry selects it.
type HistoryView struct {
	*tview.Flex

	coord     *scroll.Coordinator
	pane      *ScrollPane
	indicator *Indicator
	spans     []historySpan
	onSelect  func(store.Key)
	unfollow  func()
}

// NewHistoryView creates an empty strip and attaches its pane.
func NewHistoryView(settings ScrollSettings) (*HistoryView, error) {
	coord, err := settings.coordinator(scroll.LeftToRight)
	if err != nil {
		return nil, fmt.Errorf("history coordinator: %w", err)
	}

	v := &HistoryView{
		Flex:      tview.NewFlex().SetDirection(tview.FlexColumn),
		coord:     coord,
		pane:      settings.newPane(),
		indicator: NewIndicator(coord, "◀", "▶"),
	}

	label := tview.NewTextView().SetText(" History ")
	v.AddItem(label, 9, 0, false)
	v.AddItem(v.pane, 0, 1, true)
	v.AddItem(v.indicator, 4, 0, false)

	coord.Attach(v.pane)
	return v, nil
}

// SetSelectedFunc sets the handler called with the key of a clicked entry.
func (v *HistoryView) SetSelectedFunc(fn func(store.Key)) *HistoryView {
	v.onSelect = fn
	return v
}

// SetKeys replaces the entries. The strip follows the newest entry unless
// the user scrolled away from the end.
func (v *HistoryView) SetKeys(keys []store.Key) {
	g := v.pane.Geometry()
	atEnd := g.ScrollLeft+g.ClientWidth >= g.ScrollWidth

	var b strings.Builder
	v.spans = v.spans[:0]
	col := 0
	for i, k := range keys {
		if i > 0 {
			b.WriteString(historySeparator)
			col += runewidth.StringWidth(historySeparator)
		}
		label := k.Label()
		w := runewidth.StringWidth(label)
		v.spans = append(v.spans, historySpan{start: col, end: col + w, key: k})
		b.WriteString(label)
		col += w
	}

	v.pane.SetLines([]string{b.String()})
	if atEnd {
		v.pane.ScrollBy(col, 0, false)
	}
}

// Follow keeps the strip in sync with s. Store callbacks run on the writer's
// goroutine, so updates are handed to post. The current keys are shown
// immediately.
func (v *HistoryView) Follow(s *store.Store, post func(func())) {
	v.Unfollow()
	v.SetKeys(s.Keys())
	v.unfollow = s.Subscribe(func(store.Record) {
		post(func() { v.SetKeys(s.Keys()) })
	})
}

// Unfollow stops following the store.
func (v *HistoryView) Unfollow() {
	if v.unfollow != nil {
		v.unfollow()
		v.unfollow = nil
	}
}

// KeyAt returns the entry under content column col.
func (v *HistoryView) KeyAt(col int) (store.Key, bool) {
	for _, s := range v.spans {
		if col >= s.start && col < s.end {
			return s.key, true
		}
	}
	return store.Key{}, false
}

// Len returns the number of entries.
func (v *HistoryView) Len() int {
	return len(v.spans)
}

// Pane returns the strip's scroll pane.
func (v *HistoryView) Pane() *ScrollPane {
	return v.pane
}

// Coordinator returns the strip's scroll coordinator.
func (v *HistoryView) Coordinator() *scroll.Coordinator {
	return v.coord
}

// Indicator returns the affordance indicator.
func (v *HistoryView) Indicator() *Indicator {
	return v.indicator
}

// Close stops following the store and releases the coordinator.
func (v *HistoryView) Close() {
	v.Unfollow()
	v.indicator.Close()
	v.coord.Close()
}

// MouseHandler selects the clicked entry and otherwise defers to the pane
// and indicator.
func (v *HistoryView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return v.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(tview.Primitive)) (consumed bool, capture tview.Primitive) {
		px, py := event.Position()
		if action == tview.MouseLeftClick && v.pane.InRect(px, py) && v.onSelect != nil {
			x, _, _, _ := v.pane.GetInnerRect()
			left, _ := v.pane.Offset()
			if key, ok := v.KeyAt(left + px - x); ok {
				v.onSelect(key)
				return true, nil
			}
		}

		return v.Flex.MouseHandler()(action, event, setFocus)
	})
}
