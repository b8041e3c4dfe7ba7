// Package shared holds what every screen needs: the service bundle and
// the common loading, error and confirm views.
package shared

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/studytools"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

// QuizDefaults are the configured quiz generation defaults.
type QuizDefaults struct {
	Count        int
	Types        []quiz.QuestionType
	TestDuration time.Duration
}

// Deps bundles the services screens call into.
type Deps struct {
	Workspace *workspace.Workspace
	Quiz      *quiz.Generator
	Roadmap   *roadmap.Service
	Flowchart *flowchart.Service
	Tools     *studytools.Service
	Guard     *inflight.Guard
	Log       *zap.Logger
	Defaults  QuizDefaults
}

// Logger returns d.Log or a no-op logger.
func (d *Deps) Logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Describe renders a generation error for the learner.
func Describe(err error) string {
	return llm.Describe(err)
}

// TickMsg is sent every second by Tick.
type TickMsg time.Time

// Tick schedules a TickMsg one second from now.
func Tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center)
}

// RenderLoading renders a centered progress line.
func RenderLoading(width int, text string) string {
	return centered(width).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}

// RenderError renders an error message.
func RenderError(width int, errMsg string) string {
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

// RenderEmpty renders a placeholder for an empty list.
func RenderEmpty(width int, text string) string {
	return centered(width).
		Foreground(theme.TextDim).
		Italic(true).
		Render("\n\n  " + text)
}

// RenderConfirm renders a yes/no question.
func RenderConfirm(width int, question, detail string) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).
		Foreground(theme.Text).
		Bold(true).
		Render(question))
	b.WriteString("\n")
	if detail != "" {
		b.WriteString(centered(width).
			Foreground(theme.TextDim).
			Render(detail))
	}
	b.WriteString("\n\n")
	b.WriteString(centered(width).
		Foreground(theme.Success).
		Render("[Y] Yes"))
	b.WriteString("\n")
	b.WriteString(centered(width).
		Foreground(theme.Primary).
		Render("[N] No"))
	return b.String()
}

// Rule renders a horizontal divider.
func Rule(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("─", max(width-4, 0)))
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	d = max(d, 0)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
