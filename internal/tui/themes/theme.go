// Package themes holds the color schemes for the dashboard.
package themes

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	RoundedBox    lipgloss.Style
	TableHeader   lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	StatusSuccess lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Error         lipgloss.Color
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	primary    lipgloss.Color
	foreground lipgloss.Color
	subtle     lipgloss.Color
	surface    lipgloss.Color
	border     lipgloss.Color
	muted      lipgloss.Color
	onPrimary  lipgloss.Color
	success    lipgloss.Color
	errorColor lipgloss.Color
	info       lipgloss.Color
}

func newTheme(p palette) Theme {
	return Theme{
		Primary:    p.primary,
		Muted:      p.muted,
		Border:     p.border,
		Foreground: p.foreground,
		Error:      p.errorColor,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle),
		Normal: lipgloss.NewStyle().
			Foreground(p.foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.onPrimary).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(p.surface).
			Foreground(p.foreground),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		TableHeader: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			BorderBottom(true).
			Bold(true).
			Foreground(p.primary),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.errorColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = newTheme(palette{
	primary:    lipgloss.Color("#7c3aed"),
	foreground: lipgloss.Color("#fafafa"),
	subtle:     lipgloss.Color("#a3a3a3"),
	surface:    lipgloss.Color("#404040"),
	border:     lipgloss.Color("#404040"),
	muted:      lipgloss.Color("#737373"),
	onPrimary:  lipgloss.Color("#fafafa"),
	success:    lipgloss.Color("#10b981"),
	errorColor: lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	primary:    lipgloss.Color("#cba6f7"),
	foreground: lipgloss.Color("#cdd6f4"),
	subtle:     lipgloss.Color("#a6adc8"),
	surface:    lipgloss.Color("#45475a"),
	border:     lipgloss.Color("#45475a"),
	muted:      lipgloss.Color("#6c7086"),
	onPrimary:  lipgloss.Color("#1e1e2e"),
	success:    lipgloss.Color("#a6e3a1"),
	errorColor: lipgloss.Color("#f38ba8"),
	info:       lipgloss.Color("#89dceb"),
})

var registry = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
}

// GetTheme returns a theme by name. Unknown names fall back to Default.
func GetTheme(name string) Theme {
	if t, ok := registry[name]; ok {
		return t
	}
	return Default
}

// Names lists the available theme names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
