package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	hist "github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/document"
	"github.com/studybuddy/studybuddy/internal/screens/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// HistoryScreen lists saved items newest first, filtered by kind.
type HistoryScreen struct {
	deps       *shared.Deps
	items      []hist.Item
	filter     int // 0 is all kinds, otherwise hist.Kinds[filter-1]
	selected   int
	marked     map[string]bool
	confirming bool
	notice     string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeHandler = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps *shared.Deps) *HistoryScreen {
	s := &HistoryScreen{
		deps:   deps,
		marked: make(map[string]bool),
	}
	s.reload()
	return s
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) HandlesEscape() bool {
	return s.confirming
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirming {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Tab", Description: "Filter"},
		{Key: "Space", Description: "Mark"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) kind() (hist.Kind, bool) {
	if s.filter == 0 {
		return "", false
	}
	return hist.Kinds[s.filter-1], true
}

// reload re-reads the workspace so edits made in opened items show up.
func (s *HistoryScreen) reload() {
	if k, ok := s.kind(); ok {
		s.items = s.deps.Workspace.ItemsOfKind(k)
	} else {
		s.items = s.deps.Workspace.Items()
	}
	slices.Reverse(s.items)
	s.selected = min(s.selected, max(len(s.items)-1, 0))
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()

	if s.confirming {
		switch key {
		case "y", "Y":
			s.confirming = false
			s.deleteMarked()
		case "n", "N", "esc":
			s.confirming = false
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
	case "tab":
		s.filter = (s.filter + 1) % (len(hist.Kinds) + 1)
		s.selected = 0
		s.reload()
	case "shift+tab":
		s.filter = (s.filter + len(hist.Kinds)) % (len(hist.Kinds) + 1)
		s.selected = 0
		s.reload()
	case "space":
		if len(s.items) > 0 {
			id := s.items[s.selected].ID
			if s.marked[id] {
				delete(s.marked, id)
			} else {
				s.marked[id] = true
			}
		}
	case "d":
		if len(s.items) > 0 {
			s.confirming = true
		}
	case "enter":
		if len(s.items) > 0 {
			return s, s.open(s.items[s.selected])
		}
	}
	return s, nil
}

// targets returns the marked ids, or the selected item when none are
// marked.
func (s *HistoryScreen) targets() []string {
	if len(s.marked) > 0 {
		ids := make([]string, 0, len(s.marked))
		for _, it := range s.deps.Workspace.Items() {
			if s.marked[it.ID] {
				ids = append(ids, it.ID)
			}
		}
		return ids
	}
	if len(s.items) == 0 {
		return nil
	}
	return []string{s.items[s.selected].ID}
}

func (s *HistoryScreen) deleteMarked() {
	ids := s.targets()
	n, err := s.deps.Workspace.DeleteItems(context.Background(), ids...)
	if err != nil {
		s.deps.Logger().Warn("delete history items", zap.Error(err))
		s.notice = "Delete failed: " + err.Error()
		return
	}
	s.marked = make(map[string]bool)
	s.notice = fmt.Sprintf("Deleted %d item(s).", n)
	s.reload()
}

func (s *HistoryScreen) open(it hist.Item) tea.Cmd {
	var next screen.Screen
	if it.Kind() == hist.KindRoadmap {
		next = roadmap.New(s.deps, it)
	} else {
		next = document.New(s.deps, it)
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *HistoryScreen) View(width, height int) string {
	if s.confirming {
		n := len(s.targets())
		return shared.RenderConfirm(width,
			fmt.Sprintf("Delete %d item(s)?", n),
			"This cannot be undone.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderFilter(width))
	b.WriteString("\n\n")

	// Re-read in case an opened item was edited.
	s.reload()
	if len(s.items) == 0 {
		b.WriteString(shared.RenderEmpty(width, "Nothing saved yet. Generate something from the home screen!"))
		return b.String()
	}

	visible := max(height-6, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.items))

	for i := start; i < end; i++ {
		b.WriteString(s.renderRow(i, width))
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).PaddingLeft(2).Render(s.notice))
	} else if len(s.marked) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(2).
			Render(fmt.Sprintf("%d marked", len(s.marked))))
	}
	return b.String()
}

func (s *HistoryScreen) renderFilter(width int) string {
	label := "All"
	if k, ok := s.kind(); ok {
		label = k.Label()
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("◀ %s ▶", label))
}

func (s *HistoryScreen) renderRow(i, width int) string {
	it := s.items[i]

	mark := "  "
	if s.marked[it.ID] {
		mark = "■ "
	}
	date := it.Timestamp
	kind := fmt.Sprintf("%-16s", it.Kind().Label())
	title := it.Title()
	if room := width - len(date) - 26; room > 3 && len([]rune(title)) > room {
		title = string([]rune(title)[:room-1]) + "…"
	}
	line := fmt.Sprintf("%s%s  %s  %s", mark, date, kind, title)

	if i == s.selected {
		return theme.Selected.Render("▸ " + line)
	}
	return theme.Unselected.Render("  " + line)
}
