package components

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/ui/theme"
)

// Indicator shows the backward and forward affordances of a coordinator on a
// single row: the backward label on the left edge, the forward label on the
// right edge. Clicking a label triggers the matching intent.
type Indicator struct {
	*tview.Box

	coord         *scroll.Coordinator
	capability    scroll.Capability
	negativeLabel string
	positiveLabel string
	unsubscribe   func()
}

// NewIndicator subscribes to coord and returns the indicator. Close must be
// called to release the subscription.
func NewIndicator(coord *scroll.Coordinator, negativeLabel, positiveLabel string) *Indicator {
	i := &Indicator{
		Box:           tview.NewBox(),
		coord:         coord,
		negativeLabel: negativeLabel,
		positiveLabel: positiveLabel,
	}
	i.unsubscribe = coord.Subscribe(func(c scroll.Capability) {
		i.capability = c
	})

	return i
}

// Capability returns the last capability received from the coordinator.
func (i *Indicator) Capability() scroll.Capability {
	return i.capability
}

// Close stops following the coordinator.
func (i *Indicator) Close() {
	if i.unsubscribe != nil {
		i.unsubscribe()
		i.unsubscribe = nil
	}
}

func (i *Indicator) Draw(screen tcell.Screen) {
	i.Box.DrawForSubclass(screen, i)
	x, y, width, height := i.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	tview.Print(screen, i.negativeLabel, x, y, width, tview.AlignLeft, affordanceColor(i.capability.CanScrollNegative))
	tview.Print(screen, i.positiveLabel, x, y, width, tview.AlignRight, affordanceColor(i.capability.CanScrollPositive))
}

func affordanceColor(enabled bool) tcell.Color {
	if enabled {
		return theme.Colors.AffordanceOn
	}
	return theme.Colors.AffordanceOff
}

// MouseHandler triggers the intent of the clicked label.
func (i *Indicator) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return i.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if action != tview.MouseLeftClick || !i.InRect(event.Position()) {
			return false, nil
		}

		intent, ok := i.hit(event.Position())
		if !ok {
			return false, nil
		}
		i.coord.Trigger(intent)
		return true, nil
	})
}

func (i *Indicator) hit(px, _ int) (scroll.Intent, bool) {
	x, _, width, _ := i.GetInnerRect()
	if px < x || px >= x+width {
		return 0, false
	}

	if px < x+runewidth.StringWidth(i.negativeLabel) {
		return scroll.Negative, true
	}
	if px >= x+width-runewidth.StringWidth(i.positiveLabel) {
		return scroll.Positive, true
	}
	return 0, false
}
