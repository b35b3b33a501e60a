package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are block characters for 8-level vertical resolution
// (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a percentage series as a block-character graph of
// at most width cells, using a fixed 0-100 scale so consecutive frames
// are comparable. Color follows the most recent value's severity.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 4)

	numLevels := len(sparklineBlocks)
	for _, v := range data {
		normalized := v / 100.0
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
		level := int(normalized * float64(numLevels-1))
		sb.WriteRune(sparklineBlocks[level])
	}

	last := data[len(data)-1]
	style := lipgloss.NewStyle().Foreground(MetricColor(last))
	return style.Render(sb.String())
}
