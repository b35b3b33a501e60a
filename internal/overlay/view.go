package overlay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sirbread/tarrow/internal/alert"
	"github.com/sirbread/tarrow/internal/settings"
	"github.com/sirbread/tarrow/internal/stats"
)

// panelInnerWidth is the content width of the detail panel.
const panelInnerWidth = 34

// graphWidth is the sparkline width inside the panel.
const graphWidth = panelInnerWidth - 10

// Frame carries everything the renderer consumes. Rendering is a pure
// mapping from a Frame to a string; no decision logic lives here.
type Frame struct {
	State         State
	Mode          settings.ViewMode
	Snapshot      stats.Snapshot
	HasSnapshot   bool
	Alerts        alert.State
	Settings      settings.Settings
	History       *History
	PulseOn       bool
	PeekAvailable bool

	// Screen bounds, zero until the first size message arrives.
	ScreenWidth  int
	ScreenHeight int
}

// RenderWidget renders the overlay widget for the given frame.
func RenderWidget(f Frame) string {
	var rendered string
	switch {
	case f.State == StateDragging:
		rendered = renderDragPreview(f)
	case f.State == StateHovered || f.State == StatePinned || f.State == StatePeeking:
		rendered = renderPanel(f)
	default:
		rendered = renderCollapsed(f)
	}
	return ApplyOpacity(rendered, f.Settings.Opacity)
}

// PlaceAt positions rendered content at cell (x, y) by padding.
func PlaceAt(content string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	pad := strings.Repeat(" ", x)
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Repeat("\n", y) + strings.Join(lines, "\n")
}

// WidgetSize measures the rendered widget for hit-testing.
func WidgetSize(f Frame) (width, height int) {
	rendered := RenderWidget(f)
	return lipgloss.Width(rendered), lipgloss.Height(rendered)
}

// renderCollapsed draws the minimal widget: the edge arrow or the
// compact HUD line. The pulse flag overlays the alert color without
// involving the state machine.
func renderCollapsed(f Frame) string {
	if f.Mode == settings.ModeArrow {
		style := ArrowStyle
		if f.Alerts.Any() && f.PulseOn {
			style = ArrowPulseStyle
		}
		return style.Render(ArrowGlyph)
	}
	return renderHudLine(f)
}

// renderHudLine draws the always-visible compact HUD panel.
func renderHudLine(f Frame) string {
	if !f.HasSnapshot {
		return PanelStyle.Render(MutedStyle.Render("…"))
	}

	parts := make([]string, 0, 2)
	if f.Settings.ShowsStat(stats.StatCPU) {
		parts = append(parts, LabelStyle.Render("CPU ")+metricValue(f.Snapshot, stats.StatCPU, f.Snapshot.CPUPercent))
	}
	if f.Settings.ShowsStat(stats.StatMemory) {
		parts = append(parts, LabelStyle.Render("MEM ")+metricValue(f.Snapshot, stats.StatMemory, f.Snapshot.MemPercent))
	}
	if len(parts) == 0 {
		parts = append(parts, MutedStyle.Render("tarrow"))
	}

	style := PanelStyle
	if f.Alerts.Any() && f.PulseOn && f.Settings.HUDPulse {
		style = style.BorderForeground(ColorCritical)
	}
	return style.Render(strings.Join(parts, MutedStyle.Render(" · ")))
}

// renderDragPreview draws the lightweight widget that follows the
// pointer mid-drag. In arrow mode it points at the edge the arrow
// will dock to on release.
func renderDragPreview(f Frame) string {
	pos := f.Settings.Position
	glyph := "⤧"
	if f.Mode == settings.ModeArrow && f.ScreenWidth > 0 && f.ScreenHeight > 0 {
		target := snapToEdge(pos, f.ScreenWidth, f.ScreenHeight)
		switch {
		case target.X == 0:
			glyph = "◀"
		case target.X == f.ScreenWidth-1:
			glyph = "▶"
		case target.Y == 0:
			glyph = "▲"
		default:
			glyph = "▼"
		}
	}
	return DragStyle.Render(fmt.Sprintf("%s %d,%d", glyph, pos.X, pos.Y))
}

// renderPanel draws the full detail overlay.
func renderPanel(f Frame) string {
	var lines []string

	lines = append(lines, renderTitle(f))

	if !f.HasSnapshot {
		lines = append(lines, MutedStyle.Render("waiting for first sample…"))
		return panelStyleFor(f).Render(strings.Join(lines, "\n"))
	}

	snap := f.Snapshot

	if f.Settings.ShowsStat(stats.StatCPU) {
		lines = append(lines, renderMetricRow("CPU", snap, stats.StatCPU, snap.CPUPercent))
		if f.History != nil && f.History.Len() > 1 {
			lines = append(lines, "    "+Sparkline(f.History.CPU(graphWidth), graphWidth))
		}
	}

	if f.Settings.ShowsStat(stats.StatMemory) {
		lines = append(lines, renderMetricRow("MEM", snap, stats.StatMemory, snap.MemPercent))
		if f.History != nil && f.History.Len() > 1 {
			lines = append(lines, "    "+Sparkline(f.History.Mem(graphWidth), graphWidth))
		}
		if snap.MemTotalBytes > 0 {
			lines = append(lines, "    "+MutedStyle.Render(fmt.Sprintf("%s / %s",
				humanBytes(snap.MemUsedBytes), humanBytes(snap.MemTotalBytes))))
		}
	}

	if f.Settings.ShowsStat(stats.StatDisk) {
		lines = append(lines, renderMetricRow("DSK", snap, stats.StatDisk, snap.DiskPercent))
		if !snap.IsUnavailable(stats.StatDisk) && snap.DiskTotalBytes > 0 {
			lines = append(lines, "    "+MutedStyle.Render(fmt.Sprintf("%s / %s",
				humanBytes(snap.DiskUsedBytes), humanBytes(snap.DiskTotalBytes))))
		}
	}

	if f.Settings.ShowsStat(stats.StatNetwork) {
		lines = append(lines, renderNetwork(snap))
	}

	if f.Settings.ShowsStat(stats.StatTemps) {
		lines = append(lines, renderTemps(snap)...)
	}

	if f.Settings.ShowsStat(stats.StatProcesses) {
		lines = append(lines, renderProcesses(snap)...)
	}

	return panelStyleFor(f).Render(strings.Join(lines, "\n"))
}

func panelStyleFor(f Frame) lipgloss.Style {
	switch f.State {
	case StatePinned:
		return PanelPinnedStyle
	case StatePeeking:
		return PanelPeekStyle
	}
	return PanelStyle
}

func renderTitle(f Frame) string {
	title := TitleStyle.Render("tarrow")
	switch f.State {
	case StatePinned:
		title += " " + ArrowStyle.Render(PinGlyph)
	case StatePeeking:
		title += " " + lipgloss.NewStyle().Foreground(ColorAccentAlt).Render(PeekGlyph)
	}
	if f.Alerts.Any() && f.PulseOn {
		title += " " + ArrowPulseStyle.Render("!")
	}
	return title
}

func renderMetricRow(label string, snap stats.Snapshot, kind stats.StatKind, percent float64) string {
	if snap.IsUnavailable(kind) {
		return LabelStyle.Render(label+" ") + UnavailableStyle.Render("unavailable")
	}
	bar := ThinProgressBar(panelInnerWidth-12, percent)
	return LabelStyle.Render(label+" ") + bar + " " + MetricStyle(percent).Render(fmt.Sprintf("%5.1f%%", percent))
}

func metricValue(snap stats.Snapshot, kind stats.StatKind, percent float64) string {
	if snap.IsUnavailable(kind) {
		return UnavailableStyle.Render("--")
	}
	return MetricStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))
}

// renderNetwork shows cumulative transfer totals since boot.
func renderNetwork(snap stats.Snapshot) string {
	if snap.IsUnavailable(stats.StatNetwork) {
		return LabelStyle.Render("NET ") + UnavailableStyle.Render("unavailable")
	}
	return LabelStyle.Render("NET ") + ValueStyle.Render(fmt.Sprintf("↑ %s  ↓ %s",
		humanBytes(snap.NetSentBytes), humanBytes(snap.NetRecvBytes)))
}

// renderTemps lists up to three sensors, hottest first.
func renderTemps(snap stats.Snapshot) []string {
	if snap.IsUnavailable(stats.StatTemps) {
		return []string{LabelStyle.Render("TMP ") + UnavailableStyle.Render("unavailable")}
	}
	if len(snap.Temps) == 0 {
		return nil
	}

	type sensorTemp struct {
		name string
		temp float64
	}
	sensorTemps := make([]sensorTemp, 0, len(snap.Temps))
	for name, temp := range snap.Temps {
		sensorTemps = append(sensorTemps, sensorTemp{name, temp})
	}
	sort.Slice(sensorTemps, func(i, j int) bool {
		if sensorTemps[i].temp != sensorTemps[j].temp {
			return sensorTemps[i].temp > sensorTemps[j].temp
		}
		return sensorTemps[i].name < sensorTemps[j].name
	})
	if len(sensorTemps) > 3 {
		sensorTemps = sensorTemps[:3]
	}

	lines := make([]string, 0, len(sensorTemps)+1)
	lines = append(lines, MutedStyle.Render("── sensors"))
	for _, st := range sensorTemps {
		name := st.name
		if len(name) > panelInnerWidth-10 {
			name = name[:panelInnerWidth-10]
		}
		lines = append(lines, fmt.Sprintf("%s %s",
			LabelStyle.Render(padRight(name, panelInnerWidth-10)),
			ValueStyle.Render(fmt.Sprintf("%5.1f°C", st.temp))))
	}
	return lines
}

// renderProcesses lists the top CPU and memory consumers.
func renderProcesses(snap stats.Snapshot) []string {
	if snap.IsUnavailable(stats.StatProcesses) {
		return []string{LabelStyle.Render("PRC ") + UnavailableStyle.Render("unavailable")}
	}

	var lines []string
	if len(snap.TopCPU) > 0 {
		lines = append(lines, MutedStyle.Render("── top cpu"))
		for _, p := range snap.TopCPU {
			lines = append(lines, processLine(p.Name, p.CPUPercent))
		}
	}
	if len(snap.TopMemory) > 0 {
		lines = append(lines, MutedStyle.Render("── top mem"))
		for _, p := range snap.TopMemory {
			lines = append(lines, processLine(p.Name, p.MemPercent))
		}
	}
	return lines
}

func processLine(name string, percent float64) string {
	return fmt.Sprintf("%s %s",
		LabelStyle.Render(padRight(name, panelInnerWidth-8)),
		MetricStyle(percent).Render(fmt.Sprintf("%5.1f%%", percent)))
}

func padRight(s string, width int) string {
	if lipgloss.Width(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

// humanBytes formats a byte count with a binary unit suffix.
func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
