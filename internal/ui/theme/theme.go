// Package theme provides the semantic color palette of the insightview UI.
//
// Colors map to standard ANSI colors so the terminal emulator's scheme
// decides the final look. Components refer to roles (Primary, Accent, Error)
// rather than concrete colors, and dynamic-color text uses semantic tags such
// as [accent] that ReplaceSemanticTags rewrites into tview color tags.
package theme

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Colors is the semantic palette.
var Colors = struct {
	Primary   tcell.Color
	Secondary tcell.Color
	Accent    tcell.Color

	Success tcell.Color
	Warning tcell.Color
	Error   tcell.Color
	Info    tcell.Color

	Background tcell.Color
	Border     tcell.Color
	Selection  tcell.Color
	Header     tcell.Color
	HeaderText tcell.Color
	Footer     tcell.Color
	FooterText tcell.Color
	Title      tcell.Color
	Inverse    tcell.Color

	// Affordance glyph colors of scroll indicators.
	AffordanceOn  tcell.Color
	AffordanceOff tcell.Color
}{
	Primary:   tcell.ColorWhite,
	Secondary: tcell.ColorGray,
	Accent:    tcell.ColorAqua,

	Success: tcell.ColorGreen,
	Warning: tcell.ColorYellow,
	Error:   tcell.ColorRed,
	Info:    tcell.ColorBlue,

	Background: tcell.ColorDefault,
	Border:     tcell.ColorGray,
	Selection:  tcell.ColorBlue,
	Header:     tcell.ColorDefault,
	HeaderText: tcell.ColorYellow,
	Footer:     tcell.ColorDefault,
	FooterText: tcell.ColorWhite,
	Title:      tcell.ColorWhite,
	Inverse:    tcell.ColorBlack,

	AffordanceOn:  tcell.ColorAqua,
	AffordanceOff: tcell.ColorDarkGray,
}

var semanticTagMap = map[string]func() tcell.Color{
	"primary":   func() tcell.Color { return Colors.Primary },
	"secondary": func() tcell.Color { return Colors.Secondary },
	"accent":    func() tcell.Color { return Colors.Accent },
	"success":   func() tcell.Color { return Colors.Success },
	"warning":   func() tcell.Color { return Colors.Warning },
	"error":     func() tcell.Color { return Colors.Error },
	"info":      func() tcell.Color { return Colors.Info },
	"header":    func() tcell.Color { return Colors.HeaderText },
	"footer":    func() tcell.Color { return Colors.FooterText },
}

// ReplaceSemanticTags replaces semantic tags like [accent] with the current
// theme color tag.
func ReplaceSemanticTags(s string) string {
	for tag, colorFunc := range semanticTagMap {
		s = strings.ReplaceAll(s, "["+tag+"]", "["+ColorToTag(colorFunc())+"]")
	}
	return s
}

// ColorToTag returns a tview color tag name for c.
func ColorToTag(c tcell.Color) string {
	switch c {
	case tcell.ColorDefault:
		return "default"
	case tcell.ColorBlack:
		return "black"
	case tcell.ColorMaroon:
		return "maroon"
	case tcell.ColorGreen:
		return "green"
	case tcell.ColorOlive:
		return "olive"
	case tcell.ColorNavy:
		return "navy"
	case tcell.ColorPurple:
		return "purple"
	case tcell.ColorTeal:
		return "teal"
	case tcell.ColorSilver:
		return "silver"
	case tcell.ColorGray:
		return "gray"
	case tcell.ColorRed:
		return "red"
	case tcell.ColorLime:
		return "lime"
	case tcell.ColorYellow:
		return "yellow"
	case tcell.ColorBlue:
		return "blue"
	case tcell.ColorFuchsia:
		return "fuchsia"
	case tcell.ColorAqua:
		return "aqua"
	case tcell.ColorWhite:
		return "white"
	default:
		return fmt.Sprintf("#%06x", c.Hex())
	}
}

// ApplyToTview sets the global tview.Styles to match the palette.
func ApplyToTview() {
	tview.Styles = tview.Theme{
		PrimitiveBackgroundColor:    Colors.Background,
		ContrastBackgroundColor:     Colors.Selection,
		MoreContrastBackgroundColor: Colors.Selection,
		BorderColor:                 Colors.Border,
		TitleColor:                  Colors.Title,
		GraphicsColor:               Colors.Info,
		PrimaryTextColor:            Colors.Primary,
		SecondaryTextColor:          Colors.Secondary,
		TertiaryTextColor:           Colors.Accent,
		InverseTextColor:            Colors.Inverse,
		ContrastSecondaryTextColor:  Colors.Selection,
	}
}
