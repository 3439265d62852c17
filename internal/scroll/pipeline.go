package scroll

import (
	"time"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Recorder receives coordinator activity for metrics. Implementations must be
// cheap; they run on the event loop.
type Recorder interface {
	Recomputed(dir Direction)
	IntentApplied(dir Direction, intent Intent)
	IntentDropped(dir Direction, intent Intent)
}

type noopRecorder struct{}

func (noopRecorder) Recomputed(Direction) {}

func (noopRecorder) IntentApplied(Direction, Intent) {}

func (noopRecorder) IntentDropped(Direction, Intent) {}

// pipeline derives the capability pair for whichever viewport is current.
//
// It is Idle when the viewport is nil and Observing otherwise. Entering
// Observing attaches the viewport's scroll and resize listeners plus the
// window listener and runs one synchronous initial computation. Every later
// notification restarts the quiescence timer; the computation runs when the
// timer expires, against the geometry at that moment.
type pipeline struct {
	dir        Direction
	quiescence time.Duration
	sched      Scheduler
	window     EventSource
	out        *Latest[Capability]
	logger     interfaces.Logger
	recorder   Recorder

	current  Viewport
	removers []func()
	timer    Timer
	// generation invalidates callbacks that belong to a replaced viewport.
	generation uint64
}

func (p *pipeline) observe(vp Viewport) {
	p.teardown()

	if vp == nil {
		p.logger.Debug("scroll(%s): idle", p.dir)
		p.out.Set(Capability{})
		return
	}

	p.current = vp
	gen := p.generation
	notify := func() { p.schedule(gen) }

	p.removers = append(p.removers, vp.OnScroll(notify), vp.OnResize(notify))
	if p.window != nil {
		p.removers = append(p.removers, p.window.Subscribe(notify))
	}

	p.logger.Debug("scroll(%s): observing viewport", p.dir)
	p.recompute(gen)
}

func (p *pipeline) schedule(gen uint64) {
	if gen != p.generation {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.sched.AfterFunc(p.quiescence, func() {
		p.timer = nil
		p.recompute(gen)
	})
}

func (p *pipeline) recompute(gen uint64) {
	if gen != p.generation || p.current == nil {
		return
	}
	capability := ComputeCapability(p.dir, p.current.Geometry())
	p.recorder.Recomputed(p.dir)
	p.out.Set(capability)
}

// teardown detaches every listener and cancels the pending timer of the
// current viewport. It is safe to call when Idle.
func (p *pipeline) teardown() {
	p.generation++

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	for _, remove := range p.removers {
		if remove != nil {
			remove()
		}
	}
	p.removers = nil
	p.current = nil
}
