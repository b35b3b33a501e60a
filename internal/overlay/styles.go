package overlay

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Overlay color palette - Catppuccin Mocha
const (
	ColorBase    = lipgloss.Color("#1E1E2E") // Panel background
	ColorSurface = lipgloss.Color("#313244") // Raised surface
	ColorBorder  = lipgloss.Color("#45475A") // Panel border

	// Semantic colors for metrics
	ColorHealthy  = lipgloss.Color("#A6E3A1") // Green
	ColorWarning  = lipgloss.Color("#F9E2AF") // Yellow
	ColorCritical = lipgloss.Color("#F38BA8") // Red

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#CDD6F4") // Text
	ColorTextSecondary = lipgloss.Color("#A6ADC8") // Subtext
	ColorTextMuted     = lipgloss.Color("#6C7086") // Overlay gray

	// Accent colors
	ColorAccent    = lipgloss.Color("#89B4FA") // Blue
	ColorAccentAlt = lipgloss.Color("#CBA6F7") // Mauve

	// Graph color
	ColorGraph = lipgloss.Color("#94E2D5") // Teal
)

// Sparkline severity breakpoints for graph coloring.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// OpacityDimBelow is the opacity under which the overlay renders with
// faint/muted styles. Terminal cells have no alpha channel; dimming is
// the closest approximation.
const OpacityDimBelow = 0.6

// Base styles for the overlay
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PanelPinnedStyle = PanelStyle.
				BorderForeground(ColorAccent)

	PanelPeekStyle = PanelStyle.
			BorderForeground(ColorAccentAlt)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ArrowStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ArrowPulseStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	DragStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccentAlt).
			Foreground(ColorTextSecondary).
			Padding(0, 1)

	UnavailableStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true)
)

// Collapsed-mode glyphs.
const (
	ArrowGlyph = "◀"
	PinGlyph   = "⚲"
	PeekGlyph  = "◉"
)

// hasDarkBackground caches terminal background detection.
var hasDarkBackground = termenv.HasDarkBackground()

// CollapsedTextColor picks a readable foreground for the collapsed
// widget against the detected terminal background.
func CollapsedTextColor() lipgloss.Color {
	if hasDarkBackground {
		return ColorTextPrimary
	}
	return lipgloss.Color("#4C4F69") // Latte text for light terminals
}

// MetricColor returns the severity color for a percentage-based metric.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the severity color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// ThinProgressBar renders a line-based progress bar: ━ filled, ─ empty.
func ThinProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "━"
		} else {
			bar += "─"
		}
	}

	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar)
}

// ApplyOpacity dims a rendered widget when the configured opacity is
// below the dim threshold.
func ApplyOpacity(rendered string, opacity float64) string {
	if opacity >= OpacityDimBelow {
		return rendered
	}
	return lipgloss.NewStyle().Faint(true).Render(rendered)
}
