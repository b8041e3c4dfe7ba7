package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// MultiChoice is a lettered option selector. Hidden options are shown
// struck out and cannot be chosen.
type MultiChoice struct {
	Options  []string
	Selected int
	Chosen   int
	hidden   map[int]bool
	correct  int
	revealed bool
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options: options,
		Chosen:  -1,
		correct: -1,
	}
}

// Hide removes the given options from play.
func (m *MultiChoice) Hide(options []string) {
	if m.hidden == nil {
		m.hidden = make(map[int]bool)
	}
	for _, h := range options {
		for i, opt := range m.Options {
			if opt == h {
				m.hidden[i] = true
			}
		}
	}
	if m.hidden[m.Selected] {
		m.move(1)
	}
}

// Reveal marks the correct option so the view can color the outcome.
func (m *MultiChoice) Reveal(correct string) {
	m.revealed = true
	for i, opt := range m.Options {
		if opt == correct {
			m.correct = i
		}
	}
}

// Value returns the chosen option text.
func (m MultiChoice) Value() (string, bool) {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return "", false
	}
	return m.Options[m.Chosen], true
}

func (m *MultiChoice) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Options); i += dir {
		if !m.hidden[i] {
			m.Selected = i
			return
		}
	}
}

// Update handles keyboard navigation and selection. Letter keys choose
// directly.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.revealed {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		m.Chosen = m.Selected
	default:
		if len(key) == 1 && key[0] >= 'a' && int(key[0]-'a') < len(m.Options) {
			i := int(key[0] - 'a')
			if !m.hidden[i] {
				m.Selected = i
				m.Chosen = i
			}
		}
	}

	return m, nil
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+i, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.hidden[i]:
			style = lipgloss.NewStyle().Foreground(theme.TextDim).Strikethrough(true)
		case m.revealed && i == m.correct:
			style = theme.Correct
		case m.revealed && i == m.Chosen:
			style = theme.Incorrect
		case m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
