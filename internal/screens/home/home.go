package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/studybuddy/studybuddy/internal/history"
	qz "github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/document"
	focusscreen "github.com/studybuddy/studybuddy/internal/screens/focus"
	historyscreen "github.com/studybuddy/studybuddy/internal/screens/history"
	"github.com/studybuddy/studybuddy/internal/screens/materials"
	quizscreen "github.com/studybuddy/studybuddy/internal/screens/quiz"
	roadmapscreen "github.com/studybuddy/studybuddy/internal/screens/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/screens/tutor"
	"github.com/studybuddy/studybuddy/internal/ui/components"
)

// HomeScreen is the main menu. Tools that need study material are
// disabled while no material is active.
type HomeScreen struct {
	deps        *shared.Deps
	menu        components.Menu
	hasMaterial bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps *shared.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.hasMaterial = h.materialActive()
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) materialActive() bool {
	return strings.TrimSpace(h.deps.Workspace.Content()) != ""
}

// sync rebuilds the menu when the active material appeared or went away
// while another screen was open, keeping the selection where possible.
func (h *HomeScreen) sync() {
	has := h.materialActive()
	if has == h.hasMaterial {
		return
	}
	h.hasMaterial = has
	label := h.menu.Items[h.menu.Selected].Label
	h.menu = components.NewMenu(h.items())
	for i, it := range h.menu.Items {
		if it.Label == label && !it.Disabled {
			h.menu.Selected = i
		}
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) items() []components.MenuItem {
	deps := h.deps
	empty := !h.hasMaterial

	tool := func(label, hint string, produce document.Producer) components.MenuItem {
		return components.MenuItem{
			Label:    label,
			Hint:     hint,
			Disabled: empty,
			Action: func() tea.Cmd {
				return push(document.NewGenerate(deps, label, produce))
			},
		}
	}
	content := func() string { return deps.Workspace.Content() }

	return []components.MenuItem{
		{Label: "Study materials", Hint: "add, pick, delete", Action: func() tea.Cmd {
			return push(materials.New(deps))
		}},
		{Label: "Practice quiz", Hint: "instant feedback", Disabled: empty, Action: func() tea.Cmd {
			return push(quizscreen.New(deps, qz.Practice, content()))
		}},
		{Label: "Test quiz", Hint: "timed, graded at the end", Disabled: empty, Action: func() tea.Cmd {
			return push(quizscreen.New(deps, qz.Test, content()))
		}},
		{Label: "Roadmap", Hint: "study plan", Disabled: empty, Action: func() tea.Cmd {
			if it, ok := latest(deps, history.KindRoadmap); ok {
				return push(roadmapscreen.New(deps, it))
			}
			return push(roadmapscreen.NewGenerate(deps))
		}},
		tool("Summary", "exam notes", func(ctx context.Context) (history.Item, error) {
			return deps.Tools.Summarize(ctx, content())
		}),
		tool("Explain code", "step by step", func(ctx context.Context) (history.Item, error) {
			return deps.Tools.ExplainCode(ctx, content())
		}),
		tool("Lab report", "from experiment code", func(ctx context.Context) (history.Item, error) {
			return deps.Tools.LabReport(ctx, content(), "")
		}),
		tool("Diagram", "mermaid concept map", func(ctx context.Context) (history.Item, error) {
			return deps.Tools.Diagram(ctx, content())
		}),
		tool("Audio summary", "narration script", func(ctx context.Context) (history.Item, error) {
			return deps.Tools.AudioSummary(ctx, content())
		}),
		tool("Code flowchart", "control flow", func(ctx context.Context) (history.Item, error) {
			src := content()
			nodes, err := deps.Flowchart.FromCode(ctx, src)
			if err != nil {
				return history.Item{}, err
			}
			return history.New(history.CodeFlowchart{FlowchartData: nodes, SourceCode: src}, deps.Workspace.Now()), nil
		}),
		{Label: "Tutor", Hint: "ask about your material", Disabled: empty, Action: func() tea.Cmd {
			return push(tutor.New(deps))
		}},
		{Label: "Focus timer", Hint: "25 min work, 5 min break", Action: func() tea.Cmd {
			return push(focusscreen.New(deps))
		}},
		{Label: "History", Action: func() tea.Cmd {
			return push(historyscreen.New(deps))
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

// latest returns the most recently saved item of kind k.
func latest(deps *shared.Deps, k history.Kind) (history.Item, bool) {
	items := deps.Workspace.ItemsOfKind(k)
	if len(items) == 0 {
		return history.Item{}, false
	}
	return items[len(items)-1], true
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	h.sync()
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	h.sync()
	compact := height < 24 || width < 80
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderStatsBar(h.deps.Workspace.Progress(), cw, compact))
	if m, ok := h.deps.Workspace.ActiveMaterial(); ok {
		sections = append(sections, renderActiveMaterial(m.Title, cw))
	} else {
		sections = append(sections, renderMaterialBanner(cw))
	}
	sections = append(sections, renderMenu(h.menu, cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
