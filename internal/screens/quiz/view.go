package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/progress"
	qz "github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return shared.RenderError(width, s.errMsg)
	}
	if s.confirmQuit {
		return shared.RenderConfirm(width, "Leave this quiz?", "Your answers will be discarded.")
	}
	switch s.phase {
	case phaseGenerating:
		return shared.RenderLoading(width, s.spinner.View()+"Writing your questions...")
	case phaseGrading:
		return shared.RenderLoading(width, s.spinner.View()+"Grading your answers...")
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	q := s.session.Current()
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", q.Type.Label(), topicOf(q)))

	info := fmt.Sprintf("Q %d/%d", s.session.Index()+1, s.session.Len())
	if s.mode == qz.Test {
		info += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render("T") +
			" " + shared.FormatDuration(s.remaining)
	}
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).Render(info)

	line := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(shared.Rule(width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width-4).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Question))
	b.WriteString("\n\n")

	switch q.Type {
	case qz.MultipleChoice:
		b.WriteString(s.choice.View())
	case qz.TrueFalse:
		b.WriteString("  " + s.truth.View() + "\n")
	default:
		b.WriteString("  Answer: " + s.input.View() + "\n")
	}

	if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  Hint: " + s.hint))
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("  " + s.notice))
		b.WriteString("\n")
	}

	switch s.phase {
	case phaseConfidence:
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render("  How sure are you?"))
		b.WriteString("\n\n  ")
		b.WriteString(s.confidence.View())
		b.WriteString("\n")
	case phaseFeedback:
		b.WriteString("\n")
		b.WriteString(renderFeedback(q, s.feedback))
	}
	return b.String()
}

func renderFeedback(q qz.Question, fb *qz.Feedback) string {
	var b strings.Builder
	if fb.IsCorrect {
		b.WriteString(theme.Correct.Render("  Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("  Not quite"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  Answer: " + q.Answer.String()))
	}
	if fb.FeedbackText != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render("  " + fb.FeedbackText))
	}
	b.WriteString("\n")
	return b.String()
}

func topicOf(q qz.Question) string {
	if q.Topic == "" {
		return progress.DefaultTopic
	}
	return q.Topic
}
