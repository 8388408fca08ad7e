package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/stepviz/internal/scene"
)

// Theme defines the color scheme shared by the SVG and terminal renderers.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Primary:    lipgloss.Color("#ff00ff"),
		Secondary:  lipgloss.Color("#00ffff"),
		Accent:     lipgloss.Color("#ffff00"),
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#666666"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ff8800"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
	}

	ThemeClassroom = Theme{
		Name:       "classroom",
		Primary:    lipgloss.Color("#1f6feb"),
		Secondary:  lipgloss.Color("#8957e5"),
		Accent:     lipgloss.Color("#d29922"),
		Background: lipgloss.Color("#ffffff"),
		Text:       lipgloss.Color("#1f2328"),
		Muted:      lipgloss.Color("#8c959f"),
		Success:    lipgloss.Color("#1a7f37"),
		Warning:    lipgloss.Color("#bc4c00"),
		Error:      lipgloss.Color("#cf222e"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#00a8cc"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffcc00"),
		Error:      lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Primary:    lipgloss.Color("#ff6b6b"),
		Secondary:  lipgloss.Color("#feca57"),
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#8b6b8c"),
		Success:    lipgloss.Color("#5fd068"),
		Warning:    lipgloss.Color("#ffc048"),
		Error:      lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeClassroom,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func HasTheme(name string) bool {
	for _, t := range Themes {
		if t.Name == name {
			return true
		}
	}
	return false
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// markerPriority decides which marker colors an element carrying several.
var markerPriority = []scene.Marker{
	scene.MarkFound,
	scene.MarkPathNode,
	scene.MarkPathLink,
	scene.MarkUpdated,
	scene.MarkComparing,
	scene.MarkMin,
	scene.MarkExploring,
	scene.MarkVisiting,
	scene.MarkHighlight,
	scene.MarkReferenced,
	scene.MarkSorted,
	scene.MarkVisited,
	scene.MarkFaded,
}

// Dominant returns the marker that decides an element's color, or "".
func Dominant(markers map[scene.Marker]bool) scene.Marker {
	for _, m := range markerPriority {
		if markers[m] {
			return m
		}
	}
	return ""
}

// MarkerColor returns the hex color for m. The empty marker maps to Text.
func (t Theme) MarkerColor(m scene.Marker) string {
	switch m {
	case scene.MarkFound:
		return string(t.Success)
	case scene.MarkPathNode, scene.MarkPathLink:
		return string(t.Error)
	case scene.MarkUpdated, scene.MarkComparing:
		return string(t.Warning)
	case scene.MarkMin, scene.MarkReferenced:
		return string(t.Secondary)
	case scene.MarkExploring, scene.MarkHighlight:
		return string(t.Accent)
	case scene.MarkVisiting:
		return string(t.Primary)
	case scene.MarkSorted:
		return t.blend(t.Success, 0.45)
	case scene.MarkVisited:
		return t.blend(t.Primary, 0.55)
	case scene.MarkFaded:
		return t.blend(t.Text, 0.7)
	}
	return string(t.Text)
}

// blend mixes c toward the background by amount (0 keeps c).
func (t Theme) blend(c lipgloss.Color, amount float64) string {
	fg, err := colorful.Hex(string(c))
	if err != nil {
		return string(c)
	}
	bg, err := colorful.Hex(string(t.Background))
	if err != nil {
		return string(c)
	}
	return fg.BlendLab(bg, amount).Clamped().Hex()
}
