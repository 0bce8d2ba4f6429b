package ui

import (
	"fmt"
	"sort"
	"strings"
)

// Theme is the palette and glyph set the helpers render with.
// A colour left empty renders uncoloured.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending string

	// issue state markers
	BoxUnchecked, BoxChecked string

	Border Border
}

// Border holds the glyphs Panel draws its frame with.
type Border struct {
	TL, TR, BL, BR, H, V string
}

var (
	lightBorder   = Border{TL: "┌", TR: "┐", BL: "└", BR: "┘", H: "─", V: "│"}
	roundedBorder = Border{TL: "╭", TR: "╮", BL: "╰", BR: "╯", H: "─", V: "│"}
	asciiBorder   = Border{TL: "+", TR: "+", BL: "+", BR: "+", H: "-", V: "|"}
)

const DefaultTheme = "classic"

var themes = map[string]Theme{
	"classic": {
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		BoxUnchecked: "☐", BoxChecked: "☑",
		Border: lightBorder,
	},
	"neon": {
		Title: "\033[95m", Muted: fgGray, Accent: "\033[96m",
		Success: fgGreen, Error: fgRed, Pending: "\033[93m",
		BoxUnchecked: "◻", BoxChecked: "◼",
		Border: roundedBorder,
	},
	// plain text, for logs and terminals without unicode
	"mono": {
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		Border: asciiBorder,
	},
}

var current = themes[DefaultTheme]

// Themes lists the accepted theme names, sorted.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTheme switches the active theme. An empty name selects the default.
func SetTheme(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (valid themes: %s)", name, strings.Join(Themes(), ", "))
	}
	current = t
	return nil
}

// Current is the active theme.
func Current() Theme { return current }
