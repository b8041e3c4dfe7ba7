package roadmap

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/inflight"
	rm "github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

const scope = "roadmap"

type roadmapReadyMsg struct {
	token *inflight.Token
	Nodes []rm.Node
	Err   error
}

// row is one visible line of the tree.
type row struct {
	node  rm.Node
	depth int
}

// RoadmapScreen shows a roadmap as a collapsible tree. Leaf statuses can
// be cycled and annotated; every change is saved immediately.
type RoadmapScreen struct {
	deps     *shared.Deps
	source   string
	item     history.Item
	tree     []rm.Node
	rows     []row
	selected int
	loaded   bool
	spinner  spinner.Model
	editing  bool
	note     components.TextInput
	errMsg   string
	notice   string
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)
var _ screen.Leaver = (*RoadmapScreen)(nil)
var _ screen.EscapeHandler = (*RoadmapScreen)(nil)

// New opens a saved roadmap item.
func New(deps *shared.Deps, item history.Item) *RoadmapScreen {
	s := newScreen(deps)
	s.setItem(item)
	return s
}

// NewGenerate builds a roadmap from the workspace study material.
func NewGenerate(deps *shared.Deps) *RoadmapScreen {
	return newScreen(deps)
}

func newScreen(deps *shared.Deps) *RoadmapScreen {
	return &RoadmapScreen{
		deps: deps,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *RoadmapScreen) setItem(item history.Item) {
	s.item = item
	s.tree = item.Payload.(history.Roadmap).Nodes
	s.loaded = true
	s.refresh()
}

func (s *RoadmapScreen) Init() tea.Cmd {
	if s.loaded {
		return nil
	}
	tok := s.deps.Guard.Begin(context.Background(), scope)
	s.source = s.deps.Workspace.Content()
	svc, content := s.deps.Roadmap, s.source
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		nodes, err := svc.Generate(tok.Context(), content)
		return roadmapReadyMsg{token: tok, Nodes: nodes, Err: err}
	})
}

func (s *RoadmapScreen) Title() string {
	return "Roadmap"
}

func (s *RoadmapScreen) Leave() {
	s.deps.Guard.Cancel(scope)
}

func (s *RoadmapScreen) HandlesEscape() bool {
	return s.editing
}

func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save note"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Expand / Status"},
		{Key: "N", Description: "Note"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case roadmapReadyMsg:
		msg.token.Commit(func() { s.handleReady(msg) })
		return s, nil

	case spinner.TickMsg:
		if s.loaded {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.note, cmd = s.note.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RoadmapScreen) handleReady(msg roadmapReadyMsg) {
	if msg.Err != nil {
		s.deps.Logger().Warn("roadmap generation failed", zap.Error(msg.Err))
		s.errMsg = shared.Describe(msg.Err)
		return
	}
	item := history.New(history.Roadmap{Nodes: msg.Nodes, SourceContent: s.source}, s.deps.Workspace.Now())
	if err := s.deps.Workspace.SaveItem(context.Background(), item); err != nil {
		s.notice = "Roadmap could not be saved: " + err.Error()
	}
	s.setItem(item)
}

func (s *RoadmapScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if s.errMsg != "" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.loaded {
		return nil
	}

	if s.editing {
		switch key {
		case "esc":
			s.editing = false
		case "enter":
			note := s.note.Value()
			s.editing = false
			s.patch(rm.Patch{Notes: &note})
		default:
			var cmd tea.Cmd
			s.note, cmd = s.note.Update(msg)
			return cmd
		}
		return nil
	}

	if len(s.rows) == 0 {
		return nil
	}
	cur := s.rows[s.selected].node

	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.rows)-1 {
			s.selected++
		}
	case "right", "l":
		if !cur.IsLeaf() && !cur.IsExpanded {
			s.setExpanded(true)
		}
	case "left", "h":
		if !cur.IsLeaf() && cur.IsExpanded {
			s.setExpanded(false)
		}
	case "enter", "space":
		if cur.IsLeaf() {
			next := cur.Status.Next()
			s.patch(rm.Patch{Status: &next})
		} else {
			s.setExpanded(!cur.IsExpanded)
		}
	case "n":
		s.note = components.NewTextInput("Add a note...", 500)
		s.note.Model.SetValue(cur.Notes)
		s.editing = true
		return s.note.Init()
	}
	return nil
}

func (s *RoadmapScreen) setExpanded(v bool) {
	s.patch(rm.Patch{IsExpanded: &v})
}

// patch applies p to the selected node and saves the roadmap.
func (s *RoadmapScreen) patch(p rm.Patch) {
	id := s.rows[s.selected].node.ID
	tree, err := rm.Apply(s.tree, id, p)
	if err != nil {
		s.notice = err.Error()
		return
	}
	s.tree = tree
	payload := s.item.Payload.(history.Roadmap)
	payload.Nodes = tree
	s.item.Payload = payload
	if err := s.deps.Workspace.SaveItem(context.Background(), s.item); err != nil {
		s.notice = "Change not saved: " + err.Error()
	} else {
		s.notice = ""
	}
	s.refresh()
	for i, r := range s.rows {
		if r.node.ID == id {
			s.selected = i
		}
	}
}

// refresh rebuilds the visible rows from the tree.
func (s *RoadmapScreen) refresh() {
	s.rows = s.rows[:0]
	rm.Walk(s.tree, func(n rm.Node, depth int) bool {
		s.rows = append(s.rows, row{node: n, depth: depth})
		return n.IsExpanded
	})
	s.selected = min(s.selected, max(len(s.rows)-1, 0))
}

func (s *RoadmapScreen) View(width, height int) string {
	if s.errMsg != "" {
		return shared.RenderError(width, s.errMsg)
	}
	if !s.loaded {
		return shared.RenderLoading(width, s.spinner.View()+"Planning your roadmap...")
	}
	if len(s.rows) == 0 {
		return shared.RenderEmpty(width, "This roadmap is empty.")
	}

	var b strings.Builder
	p := rm.ProgressOf(s.tree)
	b.WriteString("\n  ")
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("%d/%d done", p.Completed, p.Total), p.Percent()/100, true, min(width-4, 70)).View())
	b.WriteString("\n")
	b.WriteString(shared.Rule(width))
	b.WriteString("\n")

	// Keep the selection in view.
	visible := max(height-6, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.rows))

	for i := start; i < end; i++ {
		b.WriteString(s.renderRow(i, width))
		b.WriteString("\n")
	}

	if n := s.rows[s.selected].node; n.Description != "" || n.Notes != "" || len(n.Resources) > 0 {
		b.WriteString(shared.Rule(width))
		b.WriteString("\n")
		b.WriteString(renderDetail(n, width))
	}
	if s.editing {
		b.WriteString("\n  Note: " + s.note.View())
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.notice))
	}
	return b.String()
}

func (s *RoadmapScreen) renderRow(i, width int) string {
	r := s.rows[i]
	n := r.node

	fold := "  "
	if !n.IsLeaf() {
		fold = "▸ "
		if n.IsExpanded {
			fold = "▾ "
		}
	}
	line := strings.Repeat("  ", r.depth) + fold + statusIcon(n.Status) + " " + n.Title
	if n.Notes != "" {
		line += " ✎"
	}

	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "> "
		style = theme.Selected
	}
	return style.MaxWidth(width).Render(prefix + line)
}

func renderDetail(n rm.Node, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(width - 4).PaddingLeft(2)
	var parts []string
	if n.Description != "" {
		parts = append(parts, dim.Render(n.Description))
	}
	for _, r := range n.Resources {
		parts = append(parts, dim.Render("• "+r))
	}
	if n.Notes != "" {
		parts = append(parts, dim.Italic(true).Render("Note: "+n.Notes))
	}
	return strings.Join(parts, "\n")
}

func statusIcon(st rm.Status) string {
	switch st {
	case rm.Completed:
		return lipgloss.NewStyle().Foreground(theme.Success).Render("●")
	case rm.InProgress:
		return lipgloss.NewStyle().Foreground(theme.Accent).Render("◐")
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("○")
	}
}
