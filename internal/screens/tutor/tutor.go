package tutor

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/document"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

const (
	scope     = "tutor"
	modeTitle = "Tutor"
)

type replyMsg struct {
	token    *inflight.Token
	Messages []history.ChatMessage
	Err      error
}

// TutorScreen is a chat with a tutor that answers from the study
// material only. The conversation is saved after every reply.
type TutorScreen struct {
	deps     *shared.Deps
	material string
	item     history.Item
	msgs     []history.ChatMessage
	input    components.TextInput
	spinner  spinner.Model
	viewport viewport.Model
	waiting  bool
	dirty    bool
	width    int
	notice   string
}

var _ screen.Screen = (*TutorScreen)(nil)
var _ screen.KeyHintProvider = (*TutorScreen)(nil)
var _ screen.Leaver = (*TutorScreen)(nil)

// New starts a conversation about the workspace study material.
func New(deps *shared.Deps) *TutorScreen {
	return &TutorScreen{
		deps:     deps,
		material: deps.Workspace.Content(),
		input:    components.NewTextInput("Ask about your material...", 1000),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
		viewport: viewport.New(),
	}
}

func (s *TutorScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *TutorScreen) Title() string {
	return "Tutor"
}

func (s *TutorScreen) Leave() {
	s.deps.Guard.Cancel(scope)
}

func (s *TutorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TutorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		msg.token.Commit(func() { s.handleReply(msg) })
		return s, nil

	case spinner.TickMsg:
		if !s.waiting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *TutorScreen) send() tea.Cmd {
	text := s.input.Value()
	if s.waiting || text == "" {
		return nil
	}
	s.waiting = true
	s.notice = ""
	s.msgs = append(s.msgs, history.ChatMessage{Role: history.RoleUser, Content: text})
	s.input.Model.Reset()
	s.dirty = true

	prior := s.msgs[:len(s.msgs)-1]
	tok := s.deps.Guard.Begin(context.Background(), scope)
	tools, material := s.deps.Tools, s.material
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		msgs, err := tools.Chat(tok.Context(), material, prior, text)
		return replyMsg{token: tok, Messages: msgs, Err: err}
	})
}

func (s *TutorScreen) handleReply(msg replyMsg) {
	s.waiting = false
	s.dirty = true
	if msg.Err != nil {
		s.deps.Logger().Warn("tutor reply failed", zap.Error(msg.Err))
		// Drop the unanswered question so the learner can retry.
		s.input.Model.SetValue(s.msgs[len(s.msgs)-1].Content)
		s.msgs = s.msgs[:len(s.msgs)-1]
		s.notice = shared.Describe(msg.Err)
		return
	}
	s.msgs = msg.Messages
	s.save()
}

func (s *TutorScreen) save() {
	if s.item.ID == "" {
		s.item = s.deps.Tools.ChatItem(s.msgs, modeTitle)
	} else {
		s.item.Payload = history.Chat{Messages: s.msgs, ModeTitle: modeTitle}
	}
	if err := s.deps.Workspace.SaveItem(context.Background(), s.item); err != nil {
		s.notice = "Conversation not saved: " + err.Error()
	}
}

func (s *TutorScreen) View(width, height int) string {
	transcript := document.Body(history.Item{Payload: history.Chat{Messages: s.msgs}}, width-4)
	if len(s.msgs) == 0 {
		transcript = shared.RenderEmpty(width, "Ask anything about your study material.")
	}

	s.viewport.SetWidth(width)
	s.viewport.SetHeight(max(height-4, 1))
	if s.dirty || s.width != width {
		s.viewport.SetContent(transcript)
		s.viewport.GotoBottom()
		s.dirty = false
		s.width = width
	}

	status := ""
	switch {
	case s.waiting:
		status = "  " + s.spinner.View() + lipgloss.NewStyle().Foreground(theme.TextDim).Render("Tutor is thinking...")
	case s.notice != "":
		status = lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.notice)
	}
	return s.viewport.View() + "\n" + status + "\n" + shared.Rule(width) + "\n  " + s.input.View()
}
