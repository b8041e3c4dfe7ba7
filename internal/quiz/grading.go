package quiz

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studybuddy/studybuddy/internal/progress"
)

const (
	// NoAnswerText is the feedback for questions left unanswered.
	NoAnswerText = "No answer provided."

	// GradingFailedText is the feedback when an open-ended answer could not
	// be graded. The answer counts as incorrect.
	GradingFailedText = "This answer could not be graded and was counted as incorrect."
)

// maxConcurrentGrades bounds in-flight open-ended grading calls.
const maxConcurrentGrades = 8

// OpenEndedGrader judges free-text answers.
type OpenEndedGrader interface {
	GradeOpenEnded(ctx context.Context, q Question, answer string) (Feedback, error)
}

// Result is a graded quiz as stored in history.
type Result struct {
	Score            int          `json:"score"`
	Total            int          `json:"total"`
	Mode             Mode         `json:"mode"`
	Questions        []Question   `json:"questions"`
	UserAnswers      []Answer     `json:"userAnswers"`
	ConfidenceLevels []Confidence `json:"confidenceLevels"`
	Feedback         []*Feedback  `json:"feedback"`
}

// Percent returns the score as a percentage of the total.
func (r Result) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// Outcomes returns one per-topic outcome per question for progress tracking.
func (r Result) Outcomes() []progress.Outcome {
	out := make([]progress.Outcome, len(r.Questions))
	for i, q := range r.Questions {
		correct := i < len(r.Feedback) && r.Feedback[i] != nil && r.Feedback[i].IsCorrect
		out[i] = progress.Outcome{Topic: q.Topic, Correct: correct}
	}
	return out
}

// Grade produces the final result for a finished session. Existing feedback
// is reused verbatim; objective answers are compared locally; open-ended
// answers go to grader concurrently. A failed grading call degrades that
// question to incorrect without affecting the others. Results are written
// by question index, so completion order does not matter.
func Grade(ctx context.Context, b Bundle, grader OpenEndedGrader, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	n := len(b.Questions)
	feedback := make([]*Feedback, n)

	var g errgroup.Group
	g.SetLimit(maxConcurrentGrades)

	for i, q := range b.Questions {
		if i < len(b.Feedback) && b.Feedback[i] != nil {
			fb := *b.Feedback[i]
			feedback[i] = &fb
			continue
		}

		var answer Answer
		if i < len(b.UserAnswers) {
			answer = b.UserAnswers[i]
		}
		if !answer.IsSet() {
			feedback[i] = &Feedback{IsCorrect: false, FeedbackText: NoAnswerText}
			continue
		}

		if q.Type.Objective() {
			fb := gradeObjective(q, answer)
			feedback[i] = &fb
			continue
		}

		if grader == nil {
			feedback[i] = &Feedback{IsCorrect: false, FeedbackText: GradingFailedText}
			continue
		}
		g.Go(func() error {
			fb, err := grader.GradeOpenEnded(ctx, q, answer.String())
			if err != nil {
				log.Warn("open-ended grading failed",
					zap.Int("question", i),
					zap.Error(err),
				)
				fb = Feedback{IsCorrect: false, FeedbackText: GradingFailedText}
			}
			feedback[i] = &fb
			return nil
		})
	}
	_ = g.Wait()

	score := 0
	for _, fb := range feedback {
		if fb.IsCorrect {
			score++
		}
	}

	answers := make([]Answer, n)
	copy(answers, b.UserAnswers)
	confidence := make([]Confidence, n)
	copy(confidence, b.ConfidenceLevels)

	return Result{
		Score:            score,
		Total:            n,
		Mode:             b.Mode,
		Questions:        b.Questions,
		UserAnswers:      answers,
		ConfidenceLevels: confidence,
		Feedback:         feedback,
	}
}
