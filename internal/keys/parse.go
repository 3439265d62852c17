// Package keys parses user-configurable key bindings and matches them
// against tcell key events.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var namedKeys = map[string]tcell.Key{
	"TAB":       tcell.KeyTab,
	"BACKTAB":   tcell.KeyBacktab,
	"ENTER":     tcell.KeyEnter,
	"RETURN":    tcell.KeyEnter,
	"ESC":       tcell.KeyEsc,
	"ESCAPE":    tcell.KeyEsc,
	"UP":        tcell.KeyUp,
	"DOWN":      tcell.KeyDown,
	"LEFT":      tcell.KeyLeft,
	"RIGHT":     tcell.KeyRight,
	"HOME":      tcell.KeyHome,
	"END":       tcell.KeyEnd,
	"PGUP":      tcell.KeyPgUp,
	"PAGEUP":    tcell.KeyPgUp,
	"PGDN":      tcell.KeyPgDn,
	"PAGEDOWN":  tcell.KeyPgDn,
	"SPACE":     tcell.KeyRune,
	"BACKSPACE": tcell.KeyBackspace2,
}

// Parse converts a key specification like "Ctrl+A" or "F5" to tcell values.
// It returns the key, optional rune, and modifier mask.
func Parse(spec string) (tcell.Key, rune, tcell.ModMask, error) {
	if spec == "" {
		return 0, 0, 0, fmt.Errorf("empty key specification")
	}

	// A lone "+" is the plus key, not a separator.
	parts := []string{spec}
	if spec != "+" {
		parts = strings.Split(spec, "+")
	}
	base := strings.TrimSpace(parts[len(parts)-1])
	var mods tcell.ModMask
	shiftUsed := false
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			mods |= tcell.ModCtrl
		case "alt", "opt", "option":
			mods |= tcell.ModAlt
		case "shift":
			mods |= tcell.ModShift
			shiftUsed = true
		case "meta", "win", "windows", "cmd", "super":
			mods |= tcell.ModMeta
		case "":
		default:
			return 0, 0, 0, fmt.Errorf("unknown modifier %q", p)
		}
	}

	b := strings.ToUpper(base)
	if key, ok := namedKeys[b]; ok {
		switch {
		case b == "SPACE":
			return tcell.KeyRune, ' ', mods, nil
		case key == tcell.KeyTab && shiftUsed:
			return tcell.KeyBacktab, 0, mods &^ tcell.ModShift, nil
		}
		return key, 0, mods, nil
	}

	if strings.HasPrefix(b, "F") {
		if n, err := strconv.Atoi(strings.TrimPrefix(b, "F")); err == nil && n >= 1 && n <= 12 {
			return tcell.KeyF1 + tcell.Key(n-1), 0, mods, nil
		}
	}

	if runes := []rune(base); len(runes) == 1 {
		r := unicode.ToLower(runes[0])
		if shiftUsed {
			// Terminals do not report Shift reliably for printable keys.
			mods &^= tcell.ModShift
		}
		return tcell.KeyRune, r, mods, nil
	}

	return 0, 0, 0, fmt.Errorf("unknown key %q", base)
}

// Validate returns an error if the key specification is not recognized.
func Validate(spec string) error {
	_, _, _, err := Parse(spec)
	return err
}

// CanonicalID returns a unique identifier for a parsed key combination.
func CanonicalID(key tcell.Key, r rune, mod tcell.ModMask) string {
	if key == tcell.KeyRune {
		r = unicode.ToLower(r)
	}
	return fmt.Sprintf("%d:%d:%d", key, r, mod)
}

// IsReserved reports whether the given key combination is reserved for
// navigation and should not be reassigned. Only unmodified keys are checked.
func IsReserved(key tcell.Key, r rune, mod tcell.ModMask) bool {
	if mod == 0 {
		switch key {
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight,
			tcell.KeyEsc, tcell.KeyEnter, tcell.KeyBackspace, tcell.KeyBackspace2,
			tcell.KeyTab:
			return true
		case tcell.KeyRune:
			switch unicode.ToLower(r) {
			case 'h', 'j', 'k', 'l', 'q':
				return true
			}
		}
	}

	// System-reserved combinations like Ctrl+C should not be reused.
	if mod == tcell.ModCtrl && key == tcell.KeyRune {
		switch unicode.ToLower(r) {
		case 'c', 'd', 'z':
			return true
		}
	}
	return false
}

// NormalizeEvent converts an EventKey into a canonical (key,rune,mod) triple.
// Ctrl+A style events are normalized to KeyRune with the corresponding rune.
func NormalizeEvent(ev *tcell.EventKey) (tcell.Key, rune, tcell.ModMask) {
	key := ev.Key()
	r := ev.Rune()
	mod := ev.Modifiers()

	switch {
	case key == tcell.KeyTab && mod&tcell.ModShift != 0, key == tcell.KeyBacktab:
		return tcell.KeyBacktab, 0, mod &^ tcell.ModShift
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ && mod&tcell.ModCtrl != 0:
		return tcell.KeyRune, 'a' + rune(key-tcell.KeyCtrlA), mod
	case key == tcell.KeyCtrlJ:
		return tcell.KeyEnter, 0, mod
	case key == tcell.KeyRune:
		return key, unicode.ToLower(r), mod
	}
	return key, r, mod
}

// Binding is a parsed key specification.
type Binding struct {
	spec string
	key  tcell.Key
	r    rune
	mod  tcell.ModMask
}

// Compile parses spec into a Binding.
func Compile(spec string) (Binding, error) {
	key, r, mod, err := Parse(spec)
	if err != nil {
		return Binding{}, err
	}
	return Binding{spec: spec, key: key, r: r, mod: mod}, nil
}

// String returns the specification the binding was compiled from.
func (b Binding) String() string {
	return b.spec
}

// Matches reports whether ev triggers the binding. Shift is ignored for
// printable keys because the rune already reflects it.
func (b Binding) Matches(ev *tcell.EventKey) bool {
	if b.spec == "" || ev == nil {
		return false
	}

	key, r, mod := NormalizeEvent(ev)
	if key != b.key {
		return false
	}
	if key == tcell.KeyRune {
		return r == b.r && mod&^tcell.ModShift == b.mod&^tcell.ModShift
	}
	return mod == b.mod
}
