package scroll

import (
	"sort"
	"time"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		due := s.due(target)
		if due == nil {
			break
		}
		s.now = due.at
		due.fired = true
		due.fn()
	}
	s.now = target
}

func (s *manualScheduler) due(target time.Duration) *manualTimer {
	pending := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
	return pending[0]
}

func (s *manualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type scrollCall struct {
	dx, dy int
	smooth bool
}

// fakeViewport clamps scrolls like a real element and notifies scroll
// listeners when its position changes.
type fakeViewport struct {
	geometry Geometry
	scrolls  []scrollCall
	reads    int
	scroll   *Notifier
	resize   *Notifier
}

func newFakeViewport(g Geometry) *fakeViewport {
	return &fakeViewport{geometry: g, scroll: NewNotifier(), resize: NewNotifier()}
}

func (v *fakeViewport) Geometry() Geometry {
	v.reads++
	return v.geometry
}

func (v *fakeViewport) ScrollBy(dx, dy int, smooth bool) {
	v.scrolls = append(v.scrolls, scrollCall{dx: dx, dy: dy, smooth: smooth})

	left := clamp(v.geometry.ScrollLeft+dx, 0, v.geometry.ScrollWidth-v.geometry.ClientWidth)
	top := clamp(v.geometry.ScrollTop+dy, 0, v.geometry.ScrollHeight-v.geometry.ClientHeight)
	if left == v.geometry.ScrollLeft && top == v.geometry.ScrollTop {
		return
	}
	v.geometry.ScrollLeft = left
	v.geometry.ScrollTop = top
	v.scroll.Notify()
}

func (v *fakeViewport) OnScroll(fn func()) func() { return v.scroll.Subscribe(fn) }

func (v *fakeViewport) OnResize(fn func()) func() { return v.resize.Subscribe(fn) }

func (v *fakeViewport) listeners() int { return v.scroll.Len() + v.resize.Len() }

func clamp(n, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

type countingRecorder struct {
	recomputed int
	applied    []Intent
	dropped    []Intent
}

func (r *countingRecorder) Recomputed(Direction) { r.recomputed++ }

func (r *countingRecorder) IntentApplied(_ Direction, i Intent) { r.applied = append(r.applied, i) }

func (r *countingRecorder) IntentDropped(_ Direction, i Intent) { r.dropped = append(r.dropped, i) }

// tallGeometry is a vertical viewport at the top of overflowing content.
func tallGeometry() Geometry {
	return Geometry{ClientWidth: 80, ClientHeight: 20, ScrollWidth: 80, ScrollHeight: 100}
}

// wideGeometry is a horizontal viewport at the left of overflowing content.
func wideGeometry() Geometry {
	return Geometry{ClientWidth: 40, ClientHeight: 10, ScrollWidth: 200, ScrollHeight: 10}
}
