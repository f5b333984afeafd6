package quizcli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/pcbvalues/internal/domain/model"
)

const barWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	tierStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("7"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// labelStyle colors an axis label with its side color, light text on dark
// colors when the axis asks for it.
func labelStyle(color string, white bool) lipgloss.Style {
	s := lipgloss.NewStyle().Background(lipgloss.Color(color)).Padding(0, 1)
	if white {
		return s.Foreground(lipgloss.Color("#ffffff"))
	}
	return s.Foreground(lipgloss.Color("#000000"))
}

// renderAxis draws one axis: both labels, both percentages, a split bar and
// the tier the score falls in.
func renderAxis(v model.Value, score float64) string {
	left := int(math.Round(score / 100 * barWidth))
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(v.ColorLeft)).Render(strings.Repeat("█", left)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color(v.ColorRight)).Render(strings.Repeat("█", barWidth-left))

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Name) + "  " + tierStyle.Render(v.FindTier(score)) + "\n")
	b.WriteString(fmt.Sprintf("%s %5.1f%% %s %5.1f%% %s",
		labelStyle(v.ColorLeft, v.WhiteLeftLabel()).Render(v.Left),
		score,
		bar,
		100-score,
		labelStyle(v.ColorRight, v.WhiteRightLabel()).Render(v.Right),
	))
	return b.String()
}
