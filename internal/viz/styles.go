package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00cccc"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	stableStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	unstableStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaa00"))

	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
)

// SliderBar renders pos within [-limit, limit] as a bar of the given width
// with the 0 dB position marked.
func SliderBar(pos, limit float64, width int) string {
	if width < 3 || limit <= 0 {
		return ""
	}
	ratio := (pos + limit) / (2 * limit)
	ratio = max(0, min(1, ratio))
	knob := int(ratio * float64(width-1))
	zero := (width - 1) / 2

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == knob:
			b.WriteRune('●')
		case i == zero:
			b.WriteRune('┼')
		case i < knob:
			b.WriteRune('━')
		default:
			b.WriteRune('─')
		}
	}
	return b.String()
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(keyStyle.Render(pairs[i]) + helpStyle.Render(" "+pairs[i+1]))
	}
	return b.String()
}
