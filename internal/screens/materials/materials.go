// Package materials is the study-material library screen: pick the
// active material, add new ones and delete old ones.
package materials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

type mode int

const (
	browsing mode = iota
	confirming
	addingTitle
	addingContent
)

// MaterialsScreen lists the user's study materials newest first.
type MaterialsScreen struct {
	deps     *shared.Deps
	items    []workspace.Material
	selected int
	mode     mode
	title    textinput.Model
	body     textarea.Model
	notice   string
}

var _ screen.Screen = (*MaterialsScreen)(nil)
var _ screen.KeyHintProvider = (*MaterialsScreen)(nil)
var _ screen.EscapeHandler = (*MaterialsScreen)(nil)

func New(deps *shared.Deps) *MaterialsScreen {
	s := &MaterialsScreen{deps: deps}
	s.reload()
	return s
}

func (s *MaterialsScreen) Init() tea.Cmd { return nil }

func (s *MaterialsScreen) Title() string { return "Study Materials" }

// HandlesEscape keeps esc for cancelling the form and the delete prompt.
func (s *MaterialsScreen) HandlesEscape() bool {
	return s.mode != browsing
}

func (s *MaterialsScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case confirming:
		return []layout.KeyHint{{Key: "Y", Description: "Delete"}, {Key: "N", Description: "Cancel"}}
	case addingTitle:
		return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Esc", Description: "Cancel"}}
	case addingContent:
		return []layout.KeyHint{{Key: "Ctrl+S", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study this"},
		{Key: "A", Description: "Add"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *MaterialsScreen) reload() {
	s.items = s.deps.Workspace.Materials()
	s.selected = min(s.selected, max(len(s.items)-1, 0))
}

func (s *MaterialsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch s.mode {
	case addingTitle:
		return s, s.updateTitle(msg)
	case addingContent:
		return s, s.updateBody(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()

	if s.mode == confirming {
		switch key {
		case "y", "Y":
			s.mode = browsing
			s.deleteSelected()
		case "n", "N", "esc":
			s.mode = browsing
		}
		return s, nil
	}

	s.notice = ""
	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.items)-1 {
			s.selected++
		}
	case "enter":
		if len(s.items) > 0 {
			s.activate(s.items[s.selected])
		}
	case "d":
		if len(s.items) > 0 {
			s.mode = confirming
		}
	case "a":
		return s, s.startAdd()
	}
	return s, nil
}

func (s *MaterialsScreen) activate(m workspace.Material) {
	if err := s.deps.Workspace.SelectMaterial(context.Background(), m.ID); err != nil {
		s.deps.Logger().Warn("select material", zap.Error(err))
		s.notice = "Could not select: " + err.Error()
		return
	}
	s.notice = fmt.Sprintf("Now studying %q.", m.Title)
}

func (s *MaterialsScreen) deleteSelected() {
	m := s.items[s.selected]
	if err := s.deps.Workspace.DeleteMaterial(context.Background(), m.ID); err != nil {
		s.deps.Logger().Warn("delete material", zap.Error(err))
		s.notice = "Delete failed: " + err.Error()
		return
	}
	s.notice = fmt.Sprintf("Deleted %q.", m.Title)
	s.reload()
}

func (s *MaterialsScreen) startAdd() tea.Cmd {
	s.title = textinput.New()
	s.title.Placeholder = "Title, e.g. Biology chapter 3"
	s.title.CharLimit = 120
	s.body = textarea.New()
	s.body.Placeholder = "Paste or type your notes..."
	s.body.ShowLineNumbers = false
	s.body.MaxHeight = 0
	s.mode = addingTitle
	return s.title.Focus()
}

func (s *MaterialsScreen) updateTitle(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			s.mode = browsing
			return nil
		case "enter":
			if strings.TrimSpace(s.title.Value()) == "" {
				s.notice = "A title is required."
				return nil
			}
			s.notice = ""
			s.title.Blur()
			s.mode = addingContent
			return s.body.Focus()
		}
	}
	var cmd tea.Cmd
	s.title, cmd = s.title.Update(msg)
	return cmd
}

func (s *MaterialsScreen) updateBody(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			s.mode = browsing
			return nil
		case "ctrl+s":
			s.save()
			return nil
		}
	}
	var cmd tea.Cmd
	s.body, cmd = s.body.Update(msg)
	return cmd
}

func (s *MaterialsScreen) save() {
	content := strings.TrimSpace(s.body.Value())
	if content == "" {
		s.notice = "The material is empty."
		return
	}
	m, err := s.deps.Workspace.AddMaterial(context.Background(), s.title.Value(), content)
	if err != nil {
		s.deps.Logger().Warn("add material", zap.Error(err))
		s.notice = "Could not save: " + err.Error()
		return
	}
	s.mode = browsing
	s.selected = 0
	s.reload()
	s.notice = fmt.Sprintf("Added %q and made it active.", m.Title)
}

func (s *MaterialsScreen) View(width, height int) string {
	switch s.mode {
	case confirming:
		return shared.RenderConfirm(width,
			fmt.Sprintf("Delete %q?", s.items[s.selected].Title),
			"Saved history is kept.")
	case addingTitle, addingContent:
		return s.viewForm(width, height)
	}

	if len(s.items) == 0 {
		out := "\n" + shared.RenderEmpty(width, "No study materials yet. Press A to add one.")
		return out + s.viewNotice()
	}

	active, _ := s.deps.Workspace.ActiveMaterial()
	var b strings.Builder
	b.WriteString("\n")

	visible := max((height-4)/2, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.items))
	for i := start; i < end; i++ {
		b.WriteString(s.renderRow(s.items[i], i == s.selected, s.items[i].ID == active.ID, width))
		b.WriteString("\n")
	}
	b.WriteString(s.viewNotice())
	return b.String()
}

func (s *MaterialsScreen) renderRow(m workspace.Material, selected, active bool, width int) string {
	cursor := "  "
	titleStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		cursor = "▸ "
		titleStyle = titleStyle.Foreground(theme.Primary).Bold(true)
	}
	mark := "  "
	if active {
		mark = lipgloss.NewStyle().Foreground(theme.Success).Render("● ")
	}
	meta := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("  added %s · %d chars", m.CreatedAt.Format(time.DateOnly), len(m.Content)))

	preview := strings.Join(strings.Fields(m.Content), " ")
	if room := width - 8; room > 3 && len([]rune(preview)) > room {
		preview = string([]rune(preview)[:room-1]) + "…"
	}
	return "  " + cursor + mark + titleStyle.Render(m.Title) + meta + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(8).Render(preview)
}

func (s *MaterialsScreen) viewForm(width, height int) string {
	label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	s.title.SetWidth(max(width-8, 10))
	s.body.SetWidth(max(width-6, 10))
	s.body.SetHeight(max(height-9, 3))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(label.PaddingLeft(2).Render("Title"))
	b.WriteString("\n  ")
	b.WriteString(s.title.View())
	b.WriteString("\n\n")
	b.WriteString(label.PaddingLeft(2).Render("Material"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(s.body.View()))
	b.WriteString(s.viewNotice())
	return b.String()
}

func (s *MaterialsScreen) viewNotice() string {
	if s.notice == "" {
		return ""
	}
	return "\n" + lipgloss.NewStyle().Foreground(theme.Accent).PaddingLeft(2).Render(s.notice)
}
