package scroll

import (
	"fmt"
	"time"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// DefaultAmountToScroll is the fraction of the visible extent scrolled per
// trigger.
const DefaultAmountToScroll = 0.9

// Options configures a Coordinator.
type Options struct {
	// Direction is required.
	Direction Direction
	// AmountToScroll is the fraction of the visible extent per trigger.
	// Zero selects DefaultAmountToScroll.
	AmountToScroll float64
	// Quiescence is the coalescing window for recomputation. Zero selects
	// DefaultQuiescence.
	Quiescence time.Duration
	// Scheduler runs deferred recomputation on the event loop. Nil selects a
	// LoopScheduler that runs callbacks on the timer goroutine.
	Scheduler Scheduler
	// Window notifies about terminal/window size changes. Optional.
	Window   EventSource
	Logger   interfaces.Logger
	Recorder Recorder
}

// Coordinator derives scroll capability for the current viewport and applies
// scroll intents to it.
type Coordinator struct {
	dir        Direction
	ref        *Latest[Viewport]
	capability *Latest[Capability]
	intents    *Emitter[Intent]
	pipeline   *pipeline
	logger     interfaces.Logger

	unsubscribers []func()
	closed        bool
}

// New validates opts and returns an idle coordinator.
func New(opts Options) (*Coordinator, error) {
	if _, ok := strategies[opts.Direction]; !ok {
		return nil, fmt.Errorf("invalid scroll direction %d", opts.Direction)
	}

	amount := opts.AmountToScroll
	if amount == 0 {
		amount = DefaultAmountToScroll
	}
	if !(amount > 0 && amount <= 1) {
		return nil, fmt.Errorf("amount to scroll must be within (0, 1], got %v", amount)
	}

	quiescence := opts.Quiescence
	if quiescence <= 0 {
		quiescence = DefaultQuiescence
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = NewLoopScheduler(nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	c := &Coordinator{
		dir:        opts.Direction,
		ref:        NewLatest[Viewport](nil),
		capability: NewLatest(Capability{}),
		intents:    NewEmitter[Intent](),
		logger:     logger,
	}

	c.pipeline = &pipeline{
		dir:        opts.Direction,
		quiescence: quiescence,
		sched:      sched,
		window:     opts.Window,
		out:        c.capability,
		logger:     logger,
		recorder:   recorder,
	}

	effects := &effectHandler{
		dir:      opts.Direction,
		amount:   amount,
		ref:      c.ref,
		logger:   logger,
		recorder: recorder,
	}

	c.unsubscribers = append(c.unsubscribers,
		c.ref.Subscribe(c.pipeline.observe),
		c.intents.Subscribe(effects.handle),
	)

	return c, nil
}

// Direction returns the axis this coordinator manages.
func (c *Coordinator) Direction() Direction {
	return c.dir
}

// SetViewport publishes the current viewport. Pass nil when the viewport is
// unmounted. Listeners of the previous viewport are removed before the new one
// is observed.
func (c *Coordinator) SetViewport(vp Viewport) {
	if c.closed {
		return
	}
	c.ref.Set(vp)
}

// Attach is SetViewport(vp).
func (c *Coordinator) Attach(vp Viewport) {
	c.SetViewport(vp)
}

// Detach is SetViewport(nil).
func (c *Coordinator) Detach() {
	c.SetViewport(nil)
}

// Viewport returns the current viewport, or nil.
func (c *Coordinator) Viewport() Viewport {
	return c.ref.Get()
}

// Capability returns the most recently computed capability pair.
func (c *Coordinator) Capability() Capability {
	return c.capability.Get()
}

// Subscribe calls fn with the current capability and on every recomputation.
func (c *Coordinator) Subscribe(fn func(Capability)) func() {
	return c.capability.Subscribe(fn)
}

// TriggerNegative scrolls the current viewport backward, if there is one.
func (c *Coordinator) TriggerNegative() {
	c.Trigger(Negative)
}

// TriggerPositive scrolls the current viewport forward, if there is one.
func (c *Coordinator) TriggerPositive() {
	c.Trigger(Positive)
}

// Trigger publishes an intent.
func (c *Coordinator) Trigger(intent Intent) {
	if c.closed {
		return
	}
	c.intents.Emit(intent)
}

// Close detaches the viewport and releases every subscription. Capability
// observers receive a final {false,false}. Close is idempotent.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.ref.Set(nil)
	c.closed = true

	for _, unsubscribe := range c.unsubscribers {
		unsubscribe()
	}
	c.unsubscribers = nil
	c.logger.Debug("scroll(%s): coordinator closed", c.dir)
}
