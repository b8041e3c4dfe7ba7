package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/progress"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

const titleFull = `┌─┐┌┬┐┬ ┬┌┬┐┬ ┬┌┐ ┬ ┬┌┬┐┌┬┐┬ ┬
└─┐ │ │ │ ││└┬┘├┴┐│ │ ││ ││└┬┘
└─┘ ┴ └─┘─┴┘ ┴ └─┘└─┘─┴┘─┴┘ ┴ `

const titleCompact = "S · T · U · D · Y · B · U · D · D · Y"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	return min(max(frameWidth-6, 20), 60)
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// accuracy returns overall correct/total across topics.
func accuracy(p progress.Data) (float64, int) {
	var correct, total int
	for _, s := range p.ScoresByTopic {
		correct += s.Correct
		total += s.Total
	}
	if total == 0 {
		return 0, 0
	}
	return float64(correct) / float64(total), total
}

// renderStatsBar renders streak, accuracy and badges in a bordered box.
func renderStatsBar(p progress.Data, cw int, compact bool) string {
	streakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	accStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	badgeStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	acc, answered := accuracy(p)
	accText := dimStyle.Render("✓ no quizzes yet")
	if answered > 0 {
		accText = accStyle.Render(fmt.Sprintf("✓ %.0f%%", acc*100))
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			streakStyle.Render(fmt.Sprintf("🔥%d", p.Streaks.Current)),
			accText,
			badgeStyle.Render(fmt.Sprintf("◆%d", len(p.Badges))),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			streakStyle.Render(fmt.Sprintf("🔥 %d DAY STREAK", p.Streaks.Current)),
			accText,
			badgeStyle.Render(fmt.Sprintf("◆ %d BADGES", len(p.Badges))),
		)
	}

	if weak := p.WeakTopics(progress.WeakThreshold); len(weak) > 0 && !compact {
		stats += "\n" + dimStyle.Render("Review: "+strings.Join(weak, ", "))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderMaterialBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ No study material yet. Add some under Study materials.")
}

func renderActiveMaterial(title string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("Studying: " + lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(title))
}

func renderMenu(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Align(lipgloss.Left).Render(m.View()))
}

// renderFrame wraps content in a double-border frame, centered in the
// given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
