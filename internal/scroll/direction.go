// Package scroll coordinates scroll affordances for a single scrollable viewport.
//
// A Coordinator continuously derives whether the current viewport can scroll
// backward or forward along one axis and exposes imperative triggers that
// scroll it by a fraction of its visible extent. The viewport can be attached,
// detached and replaced at any time; every listener and pending timer that
// belongs to a replaced viewport is torn down before the next one is observed.
//
// All Coordinator methods, and every callback it schedules, are expected to
// run on a single event loop (the tview event goroutine in this application).
// The Scheduler abstraction is how deferred work gets back onto that loop.
package scroll

import (
	"fmt"
	"math"
	"strings"
)

// Direction selects the axis a coordinator reads and mutates.
type Direction int

const (
	// LeftToRight observes and scrolls the horizontal axis.
	LeftToRight Direction = iota
	// TopToBottom observes and scrolls the vertical axis.
	TopToBottom
)

// String returns the configuration name of the direction.
func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "left-to-right"
	case TopToBottom:
		return "top-to-bottom"
	default:
		return "unknown"
	}
}

// ParseDirection converts a configuration value into a Direction.
// Accepted spellings are case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left-to-right", "lefttoright", "ltr", "horizontal", "x":
		return LeftToRight, nil
	case "top-to-bottom", "toptobottom", "ttb", "vertical", "y":
		return TopToBottom, nil
	default:
		return 0, fmt.Errorf("unknown scroll direction %q", s)
	}
}

// Intent is a request to scroll one step backward or forward.
type Intent int

const (
	// Negative scrolls toward the start of the axis.
	Negative Intent = iota
	// Positive scrolls toward the end of the axis.
	Positive
)

// String returns "negative" or "positive".
func (i Intent) String() string {
	if i == Positive {
		return "positive"
	}
	return "negative"
}

// Capability reports whether the viewport can currently scroll toward the
// start (negative) or the end (positive) of its axis.
type Capability struct {
	CanScrollNegative bool
	CanScrollPositive bool
}

// Geometry is a snapshot of a viewport's scroll position and extents, in cells.
// Client sizes are the visible extents; Scroll sizes are the total content
// extents and are never smaller than the client sizes.
type Geometry struct {
	ScrollLeft   int
	ScrollTop    int
	ClientWidth  int
	ClientHeight int
	ScrollWidth  int
	ScrollHeight int
}

// Viewport is the scrollable element observed by a coordinator.
//
// OnScroll and OnResize register listeners and return a function that removes
// them. ScrollBy requests a relative scroll; implementations clamp to their
// content and may animate when smooth is true.
type Viewport interface {
	Geometry() Geometry
	ScrollBy(dx, dy int, smooth bool)
	OnScroll(fn func()) (remove func())
	OnResize(fn func()) (remove func())
}

type strategy struct {
	capability func(g Geometry) Capability
	delta      func(g Geometry, intent Intent, amount float64) (dx, dy int)
}

var strategies = map[Direction]strategy{
	LeftToRight: {
		capability: func(g Geometry) Capability {
			return Capability{
				CanScrollNegative: g.ScrollLeft > 0,
				CanScrollPositive: g.ScrollLeft+g.ClientWidth < g.ScrollWidth,
			}
		},
		delta: func(g Geometry, intent Intent, amount float64) (int, int) {
			return signed(scaled(g.ClientWidth, amount), intent), 0
		},
	},
	TopToBottom: {
		capability: func(g Geometry) Capability {
			return Capability{
				CanScrollNegative: g.ScrollTop > 0,
				CanScrollPositive: g.ScrollTop+g.ClientHeight < g.ScrollHeight,
			}
		},
		delta: func(g Geometry, intent Intent, amount float64) (int, int) {
			return 0, signed(scaled(g.ClientHeight, amount), intent)
		},
	},
}

func scaled(extent int, amount float64) int {
	return int(math.Round(float64(extent) * amount))
}

func signed(n int, intent Intent) int {
	if intent == Negative {
		return -n
	}
	return n
}

// ComputeCapability derives the capability pair from a geometry snapshot.
// Unknown directions report no capability.
func ComputeCapability(dir Direction, g Geometry) Capability {
	s, ok := strategies[dir]
	if !ok {
		return Capability{}
	}
	return s.capability(g)
}

// ScrollDelta returns the relative scroll that an intent produces for the
// given geometry. The orthogonal component is always zero.
func ScrollDelta(dir Direction, g Geometry, intent Intent, amount float64) (dx, dy int) {
	s, ok := strategies[dir]
	if !ok {
		return 0, 0
	}
	return s.delta(g, intent, amount)
}

// TriggerScroll requests a smooth scroll of vp by amount of its visible
// extent. It does not check capability first; scrolling past either end is
// clamped by the viewport.
func TriggerScroll(dir Direction, vp Viewport, intent Intent, amount float64) {
	if vp == nil {
		return
	}
	dx, dy := ScrollDelta(dir, vp.Geometry(), intent, amount)
	vp.ScrollBy(dx, dy, true)
}
