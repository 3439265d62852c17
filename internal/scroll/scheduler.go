package scroll

import (
	"sync"
	"time"
)

// DefaultQuiescence approximates one display refresh.
const DefaultQuiescence = 16 * time.Millisecond

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler runs callbacks on the coordinator's event loop after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// LoopScheduler arms real timers and hands expired callbacks to Post, which
// must run them on the event loop (for tview, Application.QueueUpdateDraw).
type LoopScheduler struct {
	Post func(fn func())
}

// NewLoopScheduler returns a scheduler that posts through post. A nil post
// runs callbacks on the timer goroutine, which is only safe for tests and
// headless use.
func NewLoopScheduler(post func(fn func())) *LoopScheduler {
	return &LoopScheduler{Post: post}
}

// AfterFunc implements Scheduler.
func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		if s.Post == nil {
			lt.fire(fn)
			return
		}
		s.Post(func() { lt.fire(fn) })
	})
	return lt
}

// loopTimer guards against a callback that was already posted to the loop
// when Stop ran.
type loopTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (t *loopTimer) fire(fn func()) {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()

	if !stopped {
		fn()
	}
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	return t.timer.Stop()
}
