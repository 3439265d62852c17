package components

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/internal/ui/theme"
	"github.com/devnullvoid/insightview/internal/ui/utils"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// ScrollSettings carries what every scrolling view needs to build its
// coordinator and panes.
type ScrollSettings struct {
	AmountToScroll float64
	Quiescence     time.Duration
	Smooth         bool
	// Post runs a function on the event loop. It backs the coordinator's
	// scheduler and smooth scrolling.
	Post     func(func())
	Window   scroll.EventSource
	Logger   interfaces.Logger
	Recorder scroll.Recorder
}

func (s ScrollSettings) coordinator(dir scroll.Direction) (*scroll.Coordinator, error) {
	var scheduler scroll.Scheduler
	if s.Post != nil {
		scheduler = scroll.NewLoopScheduler(s.Post)
	}

	return scroll.New(scroll.Options{
		Direction:      dir,
		AmountToScroll: s.AmountToScroll,
		Quiescence:     s.Quiescence,
		Scheduler:      scheduler,
		Window:         s.Window,
		Logger:         s.Logger,
		Recorder:       s.Recorder,
	})
}

func (s ScrollSettings) newPane() *ScrollPane {
	return NewScrollPane(s.Post).SetSmooth(s.Smooth)
}

// indicatorLabels returns the affordance labels for dir.
func indicatorLabels(dir scroll.Direction) (negative, positive string) {
	if dir == scroll.LeftToRight {
		return "◀ more", "more ▶"
	}
	return "▲ more", "more ▼"
}

// ResultsView shows the record of the latest search. Every record is shown
// in a freshly mounted pane; an error unmounts it.
type ResultsView struct {
	*tview.Flex

	settings    ScrollSettings
	coord       *scroll.Coordinator
	indicator   *Indicator
	pane        *ScrollPane
	placeholder *tview.TextView
	now         func() time.Time
}

// NewResultsView creates an empty results view scrolling along dir.
func NewResultsView(dir scroll.Direction, settings ScrollSettings) (*ResultsView, error) {
	coord, err := settings.coordinator(dir)
	if err != nil {
		return nil, fmt.Errorf("results coordinator: %w", err)
	}

	negative, positive := indicatorLabels(dir)
	placeholder := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	placeholder.SetTextColor(theme.Colors.Secondary)

	v := &ResultsView{
		Flex:        tview.NewFlex().SetDirection(tview.FlexRow),
		settings:    settings,
		coord:       coord,
		indicator:   NewIndicator(coord, negative, positive),
		placeholder: placeholder,
		now:         time.Now,
	}
	v.SetBorder(true).SetTitle(" Results ")
	v.showPlaceholder("Press [yellow]/[-] to search")

	return v, nil
}

// Show mounts a new pane displaying rec and attaches it to the coordinator.
// The previous pane, if any, is detached first.
func (v *ResultsView) Show(rec store.Record) {
	pane := v.settings.newPane().SetLines(utils.RecordLines(rec, v.now()))

	v.pane = pane
	v.mount(pane)
	v.coord.Attach(pane)
}

// ShowError unmounts the pane and displays err instead.
func (v *ResultsView) ShowError(err error) {
	v.coord.Detach()
	v.pane = nil
	v.showPlaceholder(fmt.Sprintf("[red]%s[-]", tview.Escape(err.Error())))
}

func (v *ResultsView) showPlaceholder(text string) {
	v.placeholder.SetText(text)
	v.mount(v.placeholder)
}

func (v *ResultsView) mount(body tview.Primitive) {
	v.Clear()
	v.AddItem(body, 0, 1, true)
	v.AddItem(v.indicator, 1, 0, false)
}

// Pane returns the mounted pane, or nil.
func (v *ResultsView) Pane() *ScrollPane {
	return v.pane
}

// Coordinator returns the view's scroll coordinator.
func (v *ResultsView) Coordinator() *scroll.Coordinator {
	return v.coord
}

// Indicator returns the affordance indicator.
func (v *ResultsView) Indicator() *Indicator {
	return v.indicator
}

// Close releases the coordinator and the indicator subscription.
func (v *ResultsView) Close() {
	v.indicator.Close()
	v.coord.Close()
}
