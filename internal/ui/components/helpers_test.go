package components

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
)

// testLoop stands in for the tview event loop: posted functions run on the
// test goroutine inside runUntil.
type testLoop struct {
	queue chan func()
}

func newTestLoop() *testLoop {
	return &testLoop{queue: make(chan func(), 256)}
}

func (l *testLoop) post(fn func()) {
	l.queue <- fn
}

func (l *testLoop) runUntil(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case fn := <-l.queue:
			fn()
		case <-deadline:
			t.Fatal("condition not met before deadline")
		}
	}
}

func newSimScreen(t *testing.T, width, height int) tcell.Screen {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

// rowText returns the runes of screen row y between x and x+width.
func rowText(screen tcell.Screen, x, y, width int) string {
	out := make([]rune, 0, width)
	for i := 0; i < width; i++ {
		r, _, _, _ := screen.GetContent(x+i, y)
		if r == 0 {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = string(rune('a'+i%26)) + " line"
	}
	return lines
}

func testSettings(loop *testLoop) ScrollSettings {
	return ScrollSettings{
		AmountToScroll: 0.9,
		Quiescence:     time.Millisecond,
		Post:           loop.post,
	}
}
