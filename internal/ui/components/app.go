package components

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/internal/ui/theme"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Deps are the collaborators of the application.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Loader   *store.Loader
	Logger   interfaces.Logger
	Recorder scroll.Recorder
	// Screen replaces the terminal screen, mainly for simulation in tests.
	Screen tcell.Screen
	// Post runs a function on the event loop. Nil selects
	// Application.QueueUpdateDraw.
	Post func(func())
	// Status is shown in the footer next to the key bindings.
	Status string
}

// App is the main application component.
type App struct {
	*tview.Application

	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	store  *store.Store
	loader *store.Loader
	logger interfaces.Logger
	post   func(func())

	header      *Header
	footer      *Footer
	results     *ResultsView
	history     *HistoryView
	searchInput *tview.InputField
	mainLayout  *tview.Flex
	window      *WindowSource
	bindings    bindings

	current    store.Key
	hasCurrent bool
	// searchGen discards completions of searches that were superseded.
	searchGen uint64
}

// NewApp creates the application and wires its components.
func NewApp(ctx context.Context, deps Deps) (*App, error) {
	if deps.Config == nil || deps.Store == nil || deps.Loader == nil {
		return nil, fmt.Errorf("config, store and loader are required")
	}

	kb, err := compileBindings(deps.Config.KeyBindings)
	if err != nil {
		return nil, err
	}

	dir, err := deps.Config.ScrollDirection()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	appCtx, cancel := context.WithCancel(ctx)
	a := &App{
		Application: tview.NewApplication(),
		ctx:         appCtx,
		cancel:      cancel,
		cfg:         deps.Config,
		store:       deps.Store,
		loader:      deps.Loader,
		logger:      logger,
		window:      NewWindowSource(),
		bindings:    kb,
	}

	a.post = deps.Post
	if a.post == nil {
		a.post = func(fn func()) { a.QueueUpdateDraw(fn) }
	}

	if deps.Screen != nil {
		a.SetScreen(deps.Screen)
	}

	theme.ApplyToTview()

	settings := ScrollSettings{
		AmountToScroll: deps.Config.Scroll.AmountToScroll,
		Quiescence:     deps.Config.Scroll.Quiescence,
		Smooth:         deps.Config.Scroll.Smooth,
		Post:           a.post,
		Window:         a.window,
		Logger:         logger,
		Recorder:       deps.Recorder,
	}

	a.results, err = NewResultsView(dir, settings)
	if err != nil {
		cancel()
		return nil, err
	}

	a.history, err = NewHistoryView(settings)
	if err != nil {
		a.results.Close()
		cancel()
		return nil, err
	}

	a.header = NewHeader()
	a.header.SetPost(a.post)
	a.footer = NewFooter(deps.Config.KeyBindings)
	a.footer.SetStatus(deps.Status)
	a.searchInput = a.createSearchInput()

	a.setupComponentConnections()
	a.mainLayout = a.createMainLayout()
	a.setupKeyboardHandlers()

	a.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		a.window.Observe(screen)
		return false
	})
	a.EnableMouse(true)
	a.SetRoot(a.mainLayout, true)
	a.SetFocus(a.results)

	return a, nil
}

// Run starts the event loop and releases every component when it returns.
func (a *App) Run() error {
	defer a.Close()
	return a.Application.Run()
}

// Close cancels in-flight searches and releases the coordinators. It is safe
// to call more than once.
func (a *App) Close() {
	a.cancel()
	a.history.Close()
	a.results.Close()
}

// Results returns the results view.
func (a *App) Results() *ResultsView {
	return a.results
}

// History returns the history strip.
func (a *App) History() *HistoryView {
	return a.history
}

// Header returns the header.
func (a *App) Header() *Header {
	return a.header
}
