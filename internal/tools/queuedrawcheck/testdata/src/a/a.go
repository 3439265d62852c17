package a

type app struct{}

func (app) QueueUpdateDraw(f func()) {}

func (app) QueueUpdate(f func()) {}

func (app) Draw() {}

func nested(a app) {
	a.QueueUpdateDraw(func() {
		a.QueueUpdateDraw(func() {}) // want "nested QueueUpdateDraw inside QueueUpdateDraw callback can deadlock tview"
	})

	a.QueueUpdate(func() {
		a.Draw()
		a.QueueUpdateDraw(func() {}) // want "nested QueueUpdateDraw inside QueueUpdate callback can deadlock tview"
	})
}

func allowed(a app) {
	a.QueueUpdateDraw(func() {
		a.Draw()
		go func() {
			a.QueueUpdateDraw(func() {})
		}()
	})

	cb := func() {}
	a.QueueUpdate(cb)
}
