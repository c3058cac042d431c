package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// Theme holds the colours the case console draws with.
type Theme struct {
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color

	// Colour tags for tview markup in the status bar and detail pane.
	TagMuted   string
	TagAccent  string
	TagSuccess string
	TagWarning string
	TagError   string

	// Status overrides the stored status colours where they would be hard to
	// read on this theme's surface. Statuses missing here keep their stored
	// colour.
	Status map[store.Status]string
}

// StatusTag returns the marker colour for a case status. stored is the
// colour configured for the status in the database.
func (t Theme) StatusTag(status store.Status, stored string) string {
	if c, ok := t.Status[status]; ok {
		return c
	}
	if stored == "" {
		return t.TagMuted
	}
	return stored
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

var themes = map[string]func() Theme{
	"dark": func() Theme {
		return Theme{
			Surface:     hex("#12161e"),
			Border:      hex("#2b3240"),
			FocusBorder: hex("#4aa8ff"),
			SelectionBg: hex("#2b3240"),
			SelectionFg: hex("#cfd8e3"),
			TextPrimary: hex("#e6edf3"),
			TextMuted:   hex("#8a939f"),

			TagMuted:   "#8a939f",
			TagAccent:  "#2dd4bf",
			TagSuccess: "#22c55e",
			TagWarning: "#f59e0b",
			TagError:   "#ef4444",
		}
	},
	"light": func() Theme {
		return Theme{
			Surface:     hex("#ffffff"),
			Border:      hex("#d0d7de"),
			FocusBorder: hex("#1f6feb"),
			SelectionBg: hex("#e2e8f0"),
			SelectionFg: hex("#111827"),
			TextPrimary: hex("#111827"),
			TextMuted:   hex("#6b7280"),

			TagMuted:   "#6b7280",
			TagAccent:  "#2563eb",
			TagSuccess: "#15803d",
			TagWarning: "#b45309",
			TagError:   "#b91c1c",

			// The stored pastel greys and ambers wash out on white.
			Status: map[store.Status]string{
				store.StatusInProgress: "#b45309",
				store.StatusResolved:   "#15803d",
				store.StatusClosed:     "#4b5563",
			},
		}
	},
	"high-contrast": func() Theme {
		return Theme{
			Surface:     hex("#000000"),
			Border:      hex("#ffffff"),
			FocusBorder: hex("#ffff00"),
			SelectionBg: hex("#ffffff"),
			SelectionFg: hex("#000000"),
			TextPrimary: hex("#ffffff"),
			TextMuted:   hex("#cccccc"),

			TagMuted:   "#cccccc",
			TagAccent:  "#00ffff",
			TagSuccess: "#00ff00",
			TagWarning: "#ffff00",
			TagError:   "#ff0000",

			Status: map[store.Status]string{
				store.StatusNew:        "#00ffff",
				store.StatusInProgress: "#ffff00",
				store.StatusResolved:   "#00ff00",
				store.StatusClosed:     "#ffffff",
			},
		}
	},
}

// themeOrder is the cycle order of the `t` key.
var themeOrder = []string{"dark", "light", "high-contrast"}

// themeByName falls back to the dark theme for unknown names.
func themeByName(name string) Theme {
	if build, ok := themes[name]; ok {
		return build()
	}
	return themes["dark"]()
}

func nextTheme(name string) string {
	for i, n := range themeOrder {
		if n == name {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}
