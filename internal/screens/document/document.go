package document

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// Producer generates a history item.
type Producer func(ctx context.Context) (history.Item, error)

type producedMsg struct {
	token *inflight.Token
	Item  history.Item
	Err   error
}

// DocumentScreen shows one history item as scrollable text. Given a
// Producer it first generates the item and saves it.
type DocumentScreen struct {
	deps     *shared.Deps
	title    string
	produce  Producer
	item     history.Item
	loaded   bool
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	errMsg   string
	notice   string
}

var _ screen.Screen = (*DocumentScreen)(nil)
var _ screen.KeyHintProvider = (*DocumentScreen)(nil)
var _ screen.Leaver = (*DocumentScreen)(nil)

// New shows an existing item.
func New(deps *shared.Deps, item history.Item) *DocumentScreen {
	s := newScreen(deps, item.Kind().Label())
	s.item = item
	s.loaded = true
	return s
}

// NewGenerate runs produce, saves the result and shows it.
func NewGenerate(deps *shared.Deps, title string, produce Producer) *DocumentScreen {
	s := newScreen(deps, title)
	s.produce = produce
	return s
}

func newScreen(deps *shared.Deps, title string) *DocumentScreen {
	return &DocumentScreen{
		deps:  deps,
		title: title,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
		viewport: viewport.New(),
	}
}

// scope keys in-flight work by screen title so two tools do not cancel
// each other.
func (s *DocumentScreen) scope() string {
	return "document:" + s.title
}

func (s *DocumentScreen) Init() tea.Cmd {
	if s.loaded {
		return nil
	}
	tok := s.deps.Guard.Begin(context.Background(), s.scope())
	produce := s.produce
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		item, err := produce(tok.Context())
		return producedMsg{token: tok, Item: item, Err: err}
	})
}

func (s *DocumentScreen) Title() string {
	return s.title
}

func (s *DocumentScreen) Leave() {
	if !s.loaded {
		s.deps.Guard.Cancel(s.scope())
	}
}

func (s *DocumentScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DocumentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case producedMsg:
		msg.token.Commit(func() { s.handleProduced(msg) })
		return s, nil

	case spinner.TickMsg:
		if s.loaded {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.errMsg != "" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *DocumentScreen) handleProduced(msg producedMsg) {
	if msg.Err != nil {
		s.deps.Logger().Warn("generation failed", zap.String("tool", s.title), zap.Error(msg.Err))
		s.errMsg = shared.Describe(msg.Err)
		return
	}
	if err := s.deps.Workspace.SaveItem(context.Background(), msg.Item); err != nil {
		s.notice = "Result could not be saved: " + err.Error()
	}
	s.item = msg.Item
	s.loaded = true
	s.width = 0
}

// Item returns the shown item once loaded.
func (s *DocumentScreen) Item() (history.Item, bool) {
	return s.item, s.loaded
}

func (s *DocumentScreen) View(width, height int) string {
	if s.errMsg != "" {
		return shared.RenderError(width, s.errMsg)
	}
	if !s.loaded {
		return shared.RenderLoading(width, s.spinner.View()+"Working on it...")
	}

	var head strings.Builder
	head.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render("  " + s.item.Timestamp))
	if s.notice != "" {
		head.WriteString("  ")
		head.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice))
	}
	head.WriteString("\n")
	head.WriteString(shared.Rule(width))

	s.viewport.SetWidth(width)
	s.viewport.SetHeight(max(height-2, 1))
	if s.width != width {
		s.viewport.SetContent(Body(s.item, width-4))
		s.width = width
	}
	return head.String() + "\n" + s.viewport.View()
}
