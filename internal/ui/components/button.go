package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// ButtonRow is a horizontal row of buttons navigated with left/right.
// Digit keys pick a button by position.
type ButtonRow struct {
	Labels   []string
	Selected int
	Pressed  int
}

// NewButtonRow creates a row with nothing pressed.
func NewButtonRow(labels ...string) ButtonRow {
	return ButtonRow{
		Labels:  labels,
		Pressed: -1,
	}
}

// Update handles key events.
func (b ButtonRow) Update(msg tea.Msg) (ButtonRow, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	key := kmsg.String()
	switch key {
	case "left", "h":
		if b.Selected > 0 {
			b.Selected--
		}
	case "right", "l":
		if b.Selected < len(b.Labels)-1 {
			b.Selected++
		}
	case "enter":
		b.Pressed = b.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(b.Labels) {
			b.Selected = int(key[0] - '1')
			b.Pressed = b.Selected
		}
	}
	return b, nil
}

// View renders the buttons.
func (b ButtonRow) View() string {
	parts := make([]string, len(b.Labels))
	for i, label := range b.Labels {
		if i == b.Selected {
			parts[i] = theme.ButtonActive.Render("▸ " + label)
		} else {
			parts[i] = theme.ButtonInactive.Render(label)
		}
	}
	return strings.Join(parts, " ")
}
