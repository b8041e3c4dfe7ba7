package quiz

import (
	"context"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/progress"
	qz "github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/result"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// scope is the in-flight scope for generation and grading. Only one quiz
// runs at a time, so a new quiz supersedes a stale one.
const scope = "quiz"

const defaultTestDuration = 5 * time.Minute

type phase int

const (
	phaseGenerating phase = iota
	phaseAnswering
	phaseConfidence
	phaseFeedback
	phaseGrading
)

// QuizScreen runs one quiz attempt from generation to grading.
type QuizScreen struct {
	deps    *shared.Deps
	mode    qz.Mode
	content string
	phase   phase
	session *qz.Session
	spinner spinner.Model

	choice     components.MultiChoice
	truth      components.ButtonRow
	input      components.TextInput
	confidence components.ButtonRow
	pending    qz.Answer
	feedback   *qz.Feedback
	hint       string
	notice     string

	now         func() time.Time
	started     time.Time
	remaining   time.Duration
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Leaver = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a quiz over content in the given mode.
func New(deps *shared.Deps, mode qz.Mode, content string) *QuizScreen {
	return &QuizScreen{
		deps:    deps,
		mode:    mode,
		content: content,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
		now: time.Now,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.generate())
}

func (s *QuizScreen) Title() string {
	return string(s.mode) + " Quiz"
}

// Leave drops any generation or grading still in flight.
func (s *QuizScreen) Leave() {
	s.deps.Guard.Cancel(scope)
}

// HandlesEscape keeps esc away from the router while grading so the
// finished quiz is always recorded.
func (s *QuizScreen) HandlesEscape() bool {
	if s.errMsg != "" {
		return false
	}
	return s.phase != phaseGenerating
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseAnswering:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Answer"}, {Key: "Tab", Description: "Hint"}}
		if s.session.Current().Type == qz.MultipleChoice {
			hints = append(hints, layout.KeyHint{Key: "F", Description: "50/50"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
	case phaseConfidence:
		return []layout.KeyHint{
			{Key: "1-3", Description: "Confidence"},
			{Key: "Esc", Description: "Change answer"},
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
}

// options builds generation options from settings and weak topics.
func (s *QuizScreen) options() qz.Options {
	ws := s.deps.Workspace
	opts := qz.Options{
		Count: s.deps.Defaults.Count,
		Types: s.deps.Defaults.Types,
	}
	if ws != nil {
		opts.Difficulty = ws.Settings().DefaultDifficulty
		opts.WeakTopics = ws.Progress().WeakTopics(progress.WeakThreshold)
	}
	return opts
}

func (s *QuizScreen) generate() tea.Cmd {
	tok := s.deps.Guard.Begin(context.Background(), scope)
	gen, content, opts := s.deps.Quiz, s.content, s.options()
	return func() tea.Msg {
		qs, err := gen.Generate(tok.Context(), content, opts)
		return questionsReadyMsg{token: tok, Questions: qs, Err: err}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsReadyMsg:
		var cmd tea.Cmd
		msg.token.Commit(func() { cmd = s.handleQuestions(msg) })
		return s, cmd

	case gradedMsg:
		var cmd tea.Cmd
		msg.token.Commit(func() { cmd = s.handleGraded(msg.Result) })
		return s, cmd

	case shared.TickMsg:
		return s, s.handleTick()

	case spinner.TickMsg:
		if s.phase != phaseGenerating && s.phase != phaseGrading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.phase == phaseAnswering && !s.session.Current().Type.Objective() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleQuestions(msg questionsReadyMsg) tea.Cmd {
	if msg.Err != nil {
		s.deps.Logger().Warn("quiz generation failed", zap.Error(msg.Err))
		s.errMsg = shared.Describe(msg.Err)
		return nil
	}
	sess, err := qz.NewSession(s.mode, msg.Questions)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.session = sess
	s.started = s.now()
	s.phase = phaseAnswering

	cmd := s.prepare()
	if s.mode == qz.Test {
		s.remaining = s.testDuration()
		cmd = tea.Batch(cmd, shared.Tick())
	}
	return cmd
}

func (s *QuizScreen) testDuration() time.Duration {
	if d := s.deps.Defaults.TestDuration; d > 0 {
		return d
	}
	return defaultTestDuration
}

// prepare resets the answer widgets for the current question.
func (s *QuizScreen) prepare() tea.Cmd {
	s.hint, s.notice, s.feedback = "", "", nil
	s.pending = qz.Unset()
	switch s.session.Current().Type {
	case qz.MultipleChoice:
		s.choice = components.NewMultiChoice(s.session.Options())
	case qz.TrueFalse:
		s.truth = components.NewButtonRow("True", "False")
	default:
		s.input = components.NewTextInput("Type your answer...", 0)
		return s.input.Init()
	}
	return nil
}

func (s *QuizScreen) handleTick() tea.Cmd {
	if s.session == nil || s.mode != qz.Test || s.phase == phaseGrading {
		return nil
	}
	s.remaining = s.testDuration() - s.now().Sub(s.started)
	if s.remaining > 0 {
		return shared.Tick()
	}
	s.remaining = 0
	s.confirmQuit = false
	if err := s.session.Expire(); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	return s.grade()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if s.errMsg != "" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			return func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return nil
	}

	switch s.phase {
	case phaseAnswering:
		return s.handleAnswerKey(msg)
	case phaseConfidence:
		if key == "esc" {
			s.phase = phaseAnswering
			return s.prepare()
		}
		s.confidence, _ = s.confidence.Update(msg)
		if s.confidence.Pressed >= 0 {
			return s.submit(s.pending, qz.Confidence(s.confidence.Pressed+1))
		}
	case phaseFeedback:
		if err := s.session.Advance(); err != nil {
			s.errMsg = err.Error()
			return nil
		}
		return s.afterAnswer()
	}
	return nil
}

func (s *QuizScreen) handleAnswerKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	q := s.session.Current()

	switch key {
	case "esc":
		s.confirmQuit = true
		return nil
	case "tab":
		if h, err := s.session.Hint(); err == nil {
			s.hint = h
		}
		return nil
	}

	switch q.Type {
	case qz.MultipleChoice:
		if key == "f" {
			s.fiftyFifty()
			return nil
		}
		s.choice, _ = s.choice.Update(msg)
		if v, ok := s.choice.Value(); ok {
			return s.answer(qz.Text(v))
		}
	case qz.TrueFalse:
		switch key {
		case "t":
			return s.answer(qz.Bool(true))
		case "f":
			return s.answer(qz.Bool(false))
		}
		s.truth, _ = s.truth.Update(msg)
		if s.truth.Pressed >= 0 {
			return s.answer(qz.Bool(s.truth.Pressed == 0))
		}
	default:
		if key == "enter" {
			if v := s.input.Value(); v != "" {
				return s.answer(qz.Text(v))
			}
			return nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *QuizScreen) fiftyFifty() {
	shown, err := s.session.FiftyFifty()
	if err != nil {
		s.notice = err.Error()
		return
	}
	keep := make(map[string]bool, len(shown))
	for _, o := range shown {
		keep[o] = true
	}
	var hide []string
	for _, o := range s.choice.Options {
		if !keep[o] {
			hide = append(hide, o)
		}
	}
	s.choice.Hide(hide)
}

// answer captures a, asking for confidence first when the answer will be
// graded on the spot.
func (s *QuizScreen) answer(a qz.Answer) tea.Cmd {
	if s.mode == qz.Practice && s.session.Current().Type.Objective() {
		s.pending = a
		s.confidence = components.NewButtonRow("Low", "Medium", "High")
		s.phase = phaseConfidence
		return nil
	}
	return s.submit(a, qz.ConfidenceUnset)
}

func (s *QuizScreen) submit(a qz.Answer, c qz.Confidence) tea.Cmd {
	fb, err := s.session.Submit(a, c)
	if err != nil {
		s.notice = err.Error()
		s.phase = phaseAnswering
		return nil
	}
	if fb != nil {
		s.feedback = fb
		s.phase = phaseFeedback
		q := s.session.Current()
		switch q.Type {
		case qz.MultipleChoice:
			correct, _ := q.Answer.AsText()
			s.choice.Reveal(correct)
		case qz.FillInTheBlank:
			s.input.Grade(fb.IsCorrect)
		}
		return nil
	}
	return s.afterAnswer()
}

func (s *QuizScreen) afterAnswer() tea.Cmd {
	if s.session.State() == qz.StateFinished {
		return s.grade()
	}
	s.phase = phaseAnswering
	return s.prepare()
}

func (s *QuizScreen) grade() tea.Cmd {
	b, err := s.session.Bundle()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.phase = phaseGrading

	var grader qz.OpenEndedGrader
	if s.deps.Quiz != nil {
		grader = s.deps.Quiz
	}
	log := s.deps.Logger()
	tok := s.deps.Guard.Begin(context.Background(), scope)
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return gradedMsg{token: tok, Result: qz.Grade(tok.Context(), b, grader, log)}
	})
}

func (s *QuizScreen) handleGraded(r qz.Result) tea.Cmd {
	ws := s.deps.Workspace
	var (
		item   history.Item
		badges []string
	)
	if ws != nil {
		var err error
		item, badges, err = ws.RecordQuiz(context.Background(), r, s.content)
		if err != nil {
			s.deps.Logger().Error("saving quiz result failed", zap.Error(err))
		}
	}
	next := result.New(s.deps, r, item.ID, badges)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}
