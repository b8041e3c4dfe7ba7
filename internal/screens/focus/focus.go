// Package focus is the Pomodoro focus timer screen.
package focus

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/focus"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// tickMsg carries the run it belongs to; ticks from a paused or reset run
// are dropped so only one countdown is ever live.
type tickMsg struct{ run int }

// FocusScreen runs a work/break timer. Study time is credited by the app
// session as a whole, so the timer records nothing itself.
type FocusScreen struct {
	deps   *shared.Deps
	timer  focus.Timer
	run    int
	notice string
}

var _ screen.Screen = (*FocusScreen)(nil)
var _ screen.KeyHintProvider = (*FocusScreen)(nil)

func New(deps *shared.Deps) *FocusScreen {
	return &FocusScreen{deps: deps, timer: focus.New()}
}

func (s *FocusScreen) Init() tea.Cmd { return nil }

func (s *FocusScreen) Title() string { return "Focus Timer" }

func (s *FocusScreen) KeyHints() []layout.KeyHint {
	action := "Start"
	if s.timer.Running {
		action = "Pause"
	}
	return []layout.KeyHint{
		{Key: "Space", Description: action},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FocusScreen) tick() tea.Cmd {
	run := s.run
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{run: run} })
}

func (s *FocusScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.run != s.run || !s.timer.Running {
			return s, nil
		}
		if s.timer.Tick(time.Second) {
			s.notice = fmt.Sprintf("Time for a %s!", s.timer.Phase)
			return s, nil
		}
		return s, s.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "space", "enter":
			s.timer.Toggle()
			s.notice = ""
			s.run++
			if s.timer.Running {
				return s, s.tick()
			}
		case "r":
			s.timer.Reset()
			s.notice = ""
			s.run++
		}
	}
	return s, nil
}

func (s *FocusScreen) View(width, height int) string {
	color := theme.Primary
	if s.timer.Phase == focus.Break {
		color = theme.Success
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	mins := int(s.timer.Remaining / time.Minute)
	secs := int(s.timer.Remaining % time.Minute / time.Second)

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", max(height/4, 1)))
	b.WriteString(center.Foreground(color).Bold(true).Render(strings.ToUpper(s.timer.Phase.String())))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Text).Bold(true).Render(fmt.Sprintf("%02d:%02d", mins, secs)))
	b.WriteString("\n\n")
	bar := components.NewProgressBar("", s.timer.Progress(), false, min(width-8, 60))
	b.WriteString(center.Render(bar.View()))
	b.WriteString("\n\n")

	state := "paused"
	if s.timer.Running {
		state = "running"
	}
	b.WriteString(center.Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s · %d focus block(s) done", state, s.timer.Completed)))
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(center.Foreground(theme.Accent).Bold(true).Render(s.notice))
	}
	return b.String()
}
