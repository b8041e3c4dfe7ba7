package result

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/progress"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/components"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// ResultScreen shows a graded quiz with a per-question review.
type ResultScreen struct {
	deps     *shared.Deps
	result   quiz.Result
	itemID   string
	badges   []string
	viewport viewport.Model
	width    int
	height   int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a result screen. itemID is the saved history entry, empty
// when the result was not persisted.
func New(deps *shared.Deps, r quiz.Result, itemID string, badges []string) *ResultScreen {
	return &ResultScreen{
		deps:     deps,
		result:   r,
		itemID:   itemID,
		badges:   badges,
		viewport: viewport.New(),
	}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Results"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Done"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *ResultScreen) View(width, height int) string {
	head := s.renderHeader(width)
	review := s.renderReview(width - 4)

	s.viewport.SetWidth(width)
	s.viewport.SetHeight(max(height-lipgloss.Height(head)-1, 1))
	if width != s.width || height != s.height {
		s.viewport.SetContent(review)
		s.width, s.height = width, height
	}
	return head + "\n" + s.viewport.View()
}

func (s *ResultScreen) renderHeader(width int) string {
	r := s.result
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(
		fmt.Sprintf("%d / %d correct", r.Score, r.Total)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.NewProgressBar(string(r.Mode), r.Percent()/100, true, min(width-8, 60)).View()))
	b.WriteString("\n")

	for _, id := range s.badges {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render(fmt.Sprintf("◆ New badge: %s · %s", progress.BadgeTitle(id), progress.BadgeDescription(id)))))
	}
	if s.itemID == "" && s.deps != nil && s.deps.Workspace != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render("This result could not be saved.")))
	}
	b.WriteString("\n")
	b.WriteString(shared.Rule(width))
	return b.String()
}

func (s *ResultScreen) renderReview(width int) string {
	return Review(s.result, width)
}

// Review renders every question with the learner's answer and feedback.
func Review(r quiz.Result, width int) string {
	var b strings.Builder
	text := lipgloss.NewStyle().Foreground(theme.Text).Width(width).PaddingLeft(2)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).PaddingLeft(4)

	for i, q := range r.Questions {
		fb := r.Feedback[i]
		mark := theme.Correct.Render("✓")
		if fb == nil || !fb.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(text.Render(fmt.Sprintf("%s %d. %s", mark, i+1, q.Question)))
		b.WriteString("\n")

		answer := "(no answer)"
		if i < len(r.UserAnswers) && r.UserAnswers[i].IsSet() {
			answer = r.UserAnswers[i].String()
		}
		line := "Your answer: " + answer
		if i < len(r.ConfidenceLevels) && r.ConfidenceLevels[i].IsSet() {
			line += "  (confidence: " + r.ConfidenceLevels[i].String() + ")"
		}
		b.WriteString(dim.Render(line))
		b.WriteString("\n")

		if q.Type == quiz.OpenEnded {
			if q.IdealAnswer != "" {
				b.WriteString(dim.Render("Ideal answer: " + q.IdealAnswer))
				b.WriteString("\n")
			}
		} else if fb == nil || !fb.IsCorrect {
			b.WriteString(dim.Render("Correct answer: " + q.Answer.String()))
			b.WriteString("\n")
		}
		if fb != nil && fb.FeedbackText != "" {
			b.WriteString(dim.Render(fb.FeedbackText))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
