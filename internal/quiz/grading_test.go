package quiz

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubGrader struct {
	calls atomic.Int32
	grade func(q Question, answer string) (Feedback, error)
}

func (g *stubGrader) GradeOpenEnded(_ context.Context, q Question, answer string) (Feedback, error) {
	g.calls.Add(1)
	return g.grade(q, answer)
}

func TestGradeReusesExistingFeedback(t *testing.T) {
	pre := &Feedback{IsCorrect: true, FeedbackText: "from practice"}
	b := Bundle{
		Mode:             Practice,
		Questions:        []Question{mcq("A", "A", "B")},
		UserAnswers:      []Answer{Text("B")},
		ConfidenceLevels: []Confidence{ConfidenceHigh},
		Feedback:         []*Feedback{pre},
	}
	r := Grade(context.Background(), b, nil, nil)
	if r.Score != 1 || r.Feedback[0].FeedbackText != "from practice" {
		t.Fatalf("existing feedback must be reused verbatim, got %+v", r.Feedback[0])
	}
}

func TestGradeObjectiveLocally(t *testing.T) {
	b := Bundle{
		Mode: Test,
		Questions: []Question{
			mcq("A", "A", "B"),
			{Type: FillInTheBlank, Answer: Text("Nucleus")},
			{Type: TrueFalse, Answer: Bool(true)},
			{Type: FillInTheBlank, Answer: Text("cell")},
		},
		UserAnswers: []Answer{Text("A"), Text("  nucleus "), Bool(true), Text("cells")},
		Feedback:    make([]*Feedback, 4),
	}
	grader := &stubGrader{grade: func(Question, string) (Feedback, error) {
		t.Fatal("objective questions must not reach the grader")
		return Feedback{}, nil
	}}

	r := Grade(context.Background(), b, grader, nil)
	if r.Score != 3 || r.Total != 4 {
		t.Fatalf("score = %d/%d, want 3/4", r.Score, r.Total)
	}
	if r.Feedback[3].IsCorrect {
		t.Fatal("fill-in should not accept a different word")
	}
}

func TestGradeUnansweredIsIncorrect(t *testing.T) {
	qs := []Question{mcq("A", "A", "B"), mcq("A", "A", "B"), {Type: OpenEnded, IdealAnswer: "x"}}
	b := Bundle{
		Mode:        Test,
		Questions:   qs,
		UserAnswers: []Answer{Text("A"), Text("A"), Unset()},
		Feedback:    make([]*Feedback, 3),
	}
	grader := &stubGrader{grade: func(Question, string) (Feedback, error) {
		return Feedback{IsCorrect: true}, nil
	}}

	r := Grade(context.Background(), b, grader, nil)
	if r.Feedback[2].IsCorrect || r.Feedback[2].FeedbackText != NoAnswerText {
		t.Fatalf("unanswered feedback = %+v", r.Feedback[2])
	}
	if grader.calls.Load() != 0 {
		t.Fatal("unanswered open-ended question must not call the grader")
	}
	if r.Score != 2 {
		t.Fatalf("score = %d, want 2", r.Score)
	}
}

func TestGradeOpenEndedFailuresAreIsolated(t *testing.T) {
	qs := make([]Question, 5)
	answers := make([]Answer, 5)
	for i := range qs {
		qs[i] = Question{Type: OpenEnded, Question: string(rune('a' + i)), IdealAnswer: "ideal"}
		answers[i] = Text("answer")
	}
	grader := &stubGrader{grade: func(q Question, _ string) (Feedback, error) {
		// Finish out of order so index placement is exercised.
		switch q.Question {
		case "a":
			time.Sleep(20 * time.Millisecond)
			return Feedback{IsCorrect: true, FeedbackText: "a ok"}, nil
		case "c":
			return Feedback{}, errors.New("generator down")
		default:
			return Feedback{IsCorrect: true, FeedbackText: q.Question + " ok"}, nil
		}
	}}

	r := Grade(context.Background(), Bundle{Mode: Test, Questions: qs, UserAnswers: answers}, grader, nil)

	if r.Score != 4 {
		t.Fatalf("score = %d, want 4", r.Score)
	}
	if r.Feedback[0].FeedbackText != "a ok" || r.Feedback[4].FeedbackText != "e ok" {
		t.Fatalf("feedback out of order: %q %q", r.Feedback[0].FeedbackText, r.Feedback[4].FeedbackText)
	}
	if r.Feedback[2].IsCorrect || r.Feedback[2].FeedbackText != GradingFailedText {
		t.Fatalf("failed grade should degrade to incorrect, got %+v", r.Feedback[2])
	}
	if len(r.UserAnswers) != 5 || len(r.ConfidenceLevels) != 5 {
		t.Fatal("result slices must match question count")
	}
}

func TestResultOutcomes(t *testing.T) {
	r := Result{
		Questions: []Question{{Topic: "Cells"}, {Topic: ""}},
		Feedback:  []*Feedback{{IsCorrect: true}, {IsCorrect: false}},
	}
	out := r.Outcomes()
	if len(out) != 2 || out[0].Topic != "Cells" || !out[0].Correct || out[1].Correct {
		t.Fatalf("unexpected outcomes: %+v", out)
	}
}
