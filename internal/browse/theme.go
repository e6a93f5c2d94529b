package browse

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/panectl/internal/inventory"
)

// Theme defines all colors used by the browser and the inventory tree.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary        lipgloss.Color // title, current selection
	Secondary      lipgloss.Color // cursor row text
	Error          lipgloss.Color // failed calls
	Warning        lipgloss.Color // synchronized windows, busy indicator
	Success        lipgloss.Color // completed calls
	Text           lipgloss.Color // primary text
	TextMuted      lipgloss.Color // hints, enumerators
	BackgroundElem lipgloss.Color // cursor row background
	Border         lipgloss.Color // separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#fab283"),
		Secondary:      lipgloss.Color("#5c9cf5"),
		Error:          lipgloss.Color("#e06c75"),
		Warning:        lipgloss.Color("#f5a742"),
		Success:        lipgloss.Color("#7fd88f"),
		Text:           lipgloss.Color("#eeeeee"),
		TextMuted:      lipgloss.Color("#808080"),
		BackgroundElem: lipgloss.Color("#1e1e1e"),
		Border:         lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#b35c00"),
		Secondary:      lipgloss.Color("#0550ae"),
		Error:          lipgloss.Color("#cf222e"),
		Warning:        lipgloss.Color("#bf8700"),
		Success:        lipgloss.Color("#116329"),
		Text:           lipgloss.Color("#1f2328"),
		TextMuted:      lipgloss.Color("#656d76"),
		BackgroundElem: lipgloss.Color("#f6f8fa"),
		Border:         lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// TreeStyles derives the inventory tree styles from t.
func (t Theme) TreeStyles() inventory.TreeStyles {
	return inventory.TreeStyles{
		Root:       lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Session:    lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Window:     lipgloss.NewStyle().Foreground(t.Text),
		Pane:       lipgloss.NewStyle().Foreground(t.TextMuted),
		Current:    lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Enumerator: lipgloss.NewStyle().Foreground(t.Border),
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	current  lipgloss.Style
	synced   lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	dim      lipgloss.Style
	text     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		header:   lipgloss.NewStyle().Foreground(t.Border),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.BackgroundElem),
		current:  lipgloss.NewStyle().Foreground(t.Primary),
		synced:   lipgloss.NewStyle().Foreground(t.Warning),
		ok:       lipgloss.NewStyle().Foreground(t.Success),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		text:     lipgloss.NewStyle().Foreground(t.Text),
	}
}
