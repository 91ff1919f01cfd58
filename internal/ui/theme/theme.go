package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/aquaassist/internal/water"
)

// Color palette, pond blues with traffic-light status colors
var (
	Primary   = lipgloss.Color("#0EA5E9") // Sky
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Chart bar colors per feature.
var featureColors = map[water.Feature]color.Color{
	water.FeaturePH:              lipgloss.Color("#4CAF50"),
	water.FeatureSalinity:        lipgloss.Color("#2196F3"),
	water.FeatureDissolvedOxygen: lipgloss.Color("#FFC107"),
	water.FeatureAmmonia:         lipgloss.Color("#F44336"),
}

// FeatureColor returns the chart color for f.
func FeatureColor(f water.Feature) color.Color {
	if c, ok := featureColors[f]; ok {
		return c
	}
	return Secondary
}

// SeverityColor maps advisory severity to a status color.
func SeverityColor(severity int) color.Color {
	switch {
	case severity <= 0:
		return Success
	case severity == 1:
		return Warning
	default:
		return Error
	}
}

// SeverityIcon is the status glyph shown next to a label.
func SeverityIcon(severity int) string {
	switch {
	case severity <= 0:
		return "✅"
	case severity == 1:
		return "⚠️"
	default:
		return "🚫"
	}
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Components
var (
	BarEmpty = lipgloss.NewStyle().
			Foreground(Border)
)
