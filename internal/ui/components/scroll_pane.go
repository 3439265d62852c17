package components

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/ui/theme"
)

const (
	// smoothFrame is the delay between animation steps of a smooth scroll.
	smoothFrame = 16 * time.Millisecond
	// smoothSteps is the number of frames a smooth scroll is spread over.
	smoothSteps = 4
)

// ScrollPane is a text primitive with independent horizontal and vertical
// offsets. It implements scroll.Viewport: offsets and extents are reported
// in cells, scroll changes and size changes are announced to listeners.
//
// All methods must run on the tview event goroutine. Smooth scrolling posts
// its animation frames back onto that goroutine through post.
type ScrollPane struct {
	*tview.Box

	lines        []string
	contentWidth int

	left, top     int
	width, height int

	smooth  bool
	post    func(func())
	animGen uint64

	textColor tcell.Color

	scrolled *scroll.Notifier
	resized  *scroll.Notifier
}

var _ scroll.Viewport = (*ScrollPane)(nil)

// NewScrollPane creates an empty pane. post schedules a function on the event
// loop; nil disables smooth scrolling.
func NewScrollPane(post func(func())) *ScrollPane {
	return &ScrollPane{
		Box:       tview.NewBox(),
		smooth:    post != nil,
		post:      post,
		textColor: theme.Colors.Primary,
		scrolled:  scroll.NewNotifier(),
		resized:   scroll.NewNotifier(),
	}
}

// SetSmooth enables or disables animated scrolling. Smooth requests are
// applied immediately when disabled.
func (p *ScrollPane) SetSmooth(smooth bool) *ScrollPane {
	p.smooth = smooth && p.post != nil
	return p
}

// SetTextColor sets the color of the pane's text.
func (p *ScrollPane) SetTextColor(c tcell.Color) *ScrollPane {
	p.textColor = c
	return p
}

// SetLines replaces the content. A content change is reported to resize
// listeners; offsets are clamped to the new content.
func (p *ScrollPane) SetLines(lines []string) *ScrollPane {
	p.lines = lines
	p.contentWidth = 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > p.contentWidth {
			p.contentWidth = w
		}
	}

	p.clampOffsets()
	p.resized.Notify()
	return p
}

// Lines returns the current content.
func (p *ScrollPane) Lines() []string {
	return p.lines
}

// Offset returns the current horizontal and vertical scroll offsets.
func (p *ScrollPane) Offset() (left, top int) {
	return p.left, p.top
}

// Geometry implements scroll.Viewport.
func (p *ScrollPane) Geometry() scroll.Geometry {
	return scroll.Geometry{
		ScrollLeft:   p.left,
		ScrollTop:    p.top,
		ClientWidth:  p.width,
		ClientHeight: p.height,
		ScrollWidth:  max(p.contentWidth, p.width),
		ScrollHeight: max(len(p.lines), p.height),
	}
}

// ScrollBy implements scroll.Viewport. The target is clamped to the content.
// A smooth scroll replaces any animation still in progress.
func (p *ScrollPane) ScrollBy(dx, dy int, smooth bool) {
	p.animGen++
	targetLeft, targetTop := p.clamp(p.left+dx, p.top+dy)

	if !smooth || !p.smooth {
		p.scrollTo(targetLeft, targetTop)
		return
	}

	p.animate(p.animGen, p.left, p.top, targetLeft, targetTop, 1)
}

// OnScroll implements scroll.Viewport.
func (p *ScrollPane) OnScroll(fn func()) func() {
	return p.scrolled.Subscribe(fn)
}

// OnResize implements scroll.Viewport.
func (p *ScrollPane) OnResize(fn func()) func() {
	return p.resized.Subscribe(fn)
}

// Listeners reports how many scroll and resize listeners are registered.
func (p *ScrollPane) Listeners() (scrollListeners, resizeListeners int) {
	return p.scrolled.Len(), p.resized.Len()
}

func (p *ScrollPane) animate(gen uint64, fromLeft, fromTop, toLeft, toTop, step int) {
	left := fromLeft + (toLeft-fromLeft)*step/smoothSteps
	top := fromTop + (toTop-fromTop)*step/smoothSteps
	p.scrollTo(left, top)

	if step >= smoothSteps {
		return
	}

	time.AfterFunc(smoothFrame, func() {
		p.post(func() {
			if gen != p.animGen {
				return
			}
			p.animate(gen, fromLeft, fromTop, toLeft, toTop, step+1)
		})
	})
}

func (p *ScrollPane) scrollTo(left, top int) {
	left, top = p.clamp(left, top)
	if left == p.left && top == p.top {
		return
	}

	p.left, p.top = left, top
	p.scrolled.Notify()
}

func (p *ScrollPane) clamp(left, top int) (int, int) {
	g := p.Geometry()
	left = min(max(left, 0), g.ScrollWidth-g.ClientWidth)
	top = min(max(top, 0), g.ScrollHeight-g.ClientHeight)
	return left, top
}

func (p *ScrollPane) clampOffsets() {
	left, top := p.clamp(p.left, p.top)
	if left != p.left || top != p.top {
		p.left, p.top = left, top
		p.scrolled.Notify()
	}
}

// Draw renders the visible window of the content. A change of the inner
// rectangle since the previous draw is reported to resize listeners.
func (p *ScrollPane) Draw(screen tcell.Screen) {
	p.Box.DrawForSubclass(screen, p)
	x, y, width, height := p.GetInnerRect()

	if width != p.width || height != p.height {
		p.width, p.height = width, height
		p.clampOffsets()
		p.resized.Notify()
	}

	style := tcell.StyleDefault.Foreground(p.textColor).Background(p.GetBackgroundColor())
	for row := 0; row < height && p.top+row < len(p.lines); row++ {
		drawLine(screen, p.lines[p.top+row], p.left, x, y+row, width, style)
	}
}

// drawLine prints the cells of line starting at display column skip.
// A wide rune cut by the left edge is replaced by spaces.
func drawLine(screen tcell.Screen, line string, skip, x, y, width int, style tcell.Style) {
	col := 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}

		start := col - skip
		col += w
		if start+w <= 0 {
			continue
		}
		if start >= width {
			return
		}
		if start < 0 || start+w > width {
			for i := max(start, 0); i < min(start+w, width); i++ {
				screen.SetContent(x+i, y, ' ', nil, style)
			}
			continue
		}

		screen.SetContent(x+start, y, r, nil, style)
	}
}

// InputHandler scrolls by single cells with the arrow keys and by pages with
// PgUp/PgDn.
func (p *ScrollPane) InputHandler() func(event *tcell.EventKey, setFocus func(tview.Primitive)) {
	return p.WrapInputHandler(func(event *tcell.EventKey, setFocus func(tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp:
			p.ScrollBy(0, -1, false)
		case tcell.KeyDown:
			p.ScrollBy(0, 1, false)
		case tcell.KeyLeft:
			p.ScrollBy(-1, 0, false)
		case tcell.KeyRight:
			p.ScrollBy(1, 0, false)
		case tcell.KeyPgUp:
			p.ScrollBy(0, -p.height, false)
		case tcell.KeyPgDn:
			p.ScrollBy(0, p.height, false)
		case tcell.KeyHome:
			p.ScrollBy(-p.left, -p.top, false)
		case tcell.KeyEnd:
			p.ScrollBy(0, len(p.lines), false)
		}
	})
}

// MouseHandler scrolls with the mouse wheel and takes focus on click.
func (p *ScrollPane) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return p.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if !p.InRect(event.Position()) {
			return false, nil
		}

		switch action {
		case tview.MouseLeftDown:
			setFocus(p)
			return true, nil
		case tview.MouseScrollUp:
			p.ScrollBy(0, -1, false)
			return true, nil
		case tview.MouseScrollDown:
			p.ScrollBy(0, 1, false)
			return true, nil
		case tview.MouseScrollLeft:
			p.ScrollBy(-1, 0, false)
			return true, nil
		case tview.MouseScrollRight:
			p.ScrollBy(1, 0, false)
			return true, nil
		}
		return false, nil
	})
}
