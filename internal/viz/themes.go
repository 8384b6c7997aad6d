package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/binrain/internal/rain"
)

// Theme defines the chrome colors drawn around the rain.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:       rain.ThemeDark.Name,
		Primary:    lipgloss.Color(rain.ThemeDark.Glyph.Hex()),
		Accent:     lipgloss.Color("#38bdf8"), // sky-400
		Background: lipgloss.Color(rain.ThemeDark.Background().Hex()),
		Text:       lipgloss.Color("#f1f5f9"),
		Muted:      lipgloss.Color("#64748b"),
		Warning:    lipgloss.Color("#f59e0b"),
		Error:      lipgloss.Color("#ef4444"),
	}

	ThemeLight = Theme{
		Name:       rain.ThemeLight.Name,
		Primary:    lipgloss.Color(rain.ThemeLight.Glyph.Hex()),
		Accent:     lipgloss.Color("#0369a1"), // sky-700
		Background: lipgloss.Color(rain.ThemeLight.Background().Hex()),
		Text:       lipgloss.Color("#0f172a"),
		Muted:      lipgloss.Color("#94a3b8"),
		Warning:    lipgloss.Color("#d97706"),
		Error:      lipgloss.Color("#dc2626"),
	}
)

// ThemeFor returns the chrome matching the rain theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}
