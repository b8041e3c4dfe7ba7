package quiz

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func mcq(answer string, options ...string) Question {
	return Question{
		Type:     MultipleChoice,
		Question: "Pick one",
		Options:  options,
		Answer:   Text(answer),
		Topic:    "Cells",
	}
}

func sampleQuestions() []Question {
	return []Question{
		mcq("Mitochondria", "Nucleus", "Mitochondria", "Ribosome", "Golgi"),
		{Type: TrueFalse, Question: "Cells have walls", Answer: Bool(false), Explanation: "Only plant cells do.", Topic: "Cells"},
		{Type: FillInTheBlank, Question: "DNA lives in the ____", Answer: Text("nucleus"), Hint: "Control centre"},
		{Type: OpenEnded, Question: "Explain osmosis", IdealAnswer: "Water moving across a membrane"},
	}
}

func newTestSession(t *testing.T, mode Mode, qs []Question, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s, err := NewSession(mode, qs, opts...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionRejectsEmpty(t *testing.T) {
	if _, err := NewSession(Practice, nil); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestPracticeObjectiveGradedImmediately(t *testing.T) {
	s := newTestSession(t, Practice, sampleQuestions())

	fb, err := s.Submit(Text("Mitochondria"), ConfidenceHigh)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb == nil || !fb.IsCorrect || fb.FeedbackText != "Correct!" {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("state = %v, want submitted", s.State())
	}

	// Cannot answer again until advancing.
	if _, err := s.Submit(Text("Nucleus"), ConfidenceLow); !errors.Is(err, ErrNotAnswering) {
		t.Fatalf("expected ErrNotAnswering, got %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Index() != 1 || s.State() != StateAnswering {
		t.Fatalf("index=%d state=%v after advance", s.Index(), s.State())
	}

	fb, err = s.Submit(Bool(true), ConfidenceLow)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.IsCorrect || fb.FeedbackText != "Only plant cells do." {
		t.Fatalf("explanation should be used as feedback, got %+v", fb)
	}
}

func TestPracticeWrongAnswerWithoutExplanation(t *testing.T) {
	s := newTestSession(t, Practice, []Question{mcq("B", "A", "B", "C", "D")})
	fb, err := s.Submit(Text("A"), ConfidenceMedium)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.IsCorrect || fb.FeedbackText != "The correct answer is B." {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
}

func TestSubmitValidation(t *testing.T) {
	s := newTestSession(t, Practice, sampleQuestions())

	if _, err := s.Submit(Unset(), ConfidenceHigh); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer, got %v", err)
	}
	if _, err := s.Submit(Text("Nucleus"), ConfidenceUnset); !errors.Is(err, ErrConfidenceRequired) {
		t.Fatalf("expected ErrConfidenceRequired, got %v", err)
	}
	if _, err := s.Submit(Bool(true), ConfidenceHigh); !errors.Is(err, ErrWrongAnswerKind) {
		t.Fatalf("expected ErrWrongAnswerKind, got %v", err)
	}
	if err := s.Advance(); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("expected ErrNotSubmitted, got %v", err)
	}
	if s.Index() != 0 || s.State() != StateAnswering {
		t.Fatal("rejected submissions must not change state")
	}
}

func TestPracticeOpenEndedSkipsFeedbackAndConfidence(t *testing.T) {
	qs := []Question{
		{Type: OpenEnded, Question: "Why?", IdealAnswer: "Because"},
		mcq("A", "A", "B"),
	}
	s := newTestSession(t, Practice, qs)

	fb, err := s.Submit(Text("because"), ConfidenceUnset)
	if err != nil {
		t.Fatalf("open-ended submit without confidence: %v", err)
	}
	if fb != nil {
		t.Fatal("open-ended questions get no immediate feedback")
	}
	if s.Index() != 1 || s.State() != StateAnswering {
		t.Fatalf("expected to move straight to question 1, got index=%d state=%v", s.Index(), s.State())
	}
}

func TestTestModeDefersEverything(t *testing.T) {
	var finished []Bundle
	s := newTestSession(t, Test, sampleQuestions()[:2], WithFinisher(func(b Bundle) {
		finished = append(finished, b)
	}))

	if fb, err := s.Submit(Text("Nucleus"), ConfidenceUnset); err != nil || fb != nil {
		t.Fatalf("test mode submit: fb=%v err=%v", fb, err)
	}
	if fb, err := s.Submit(Bool(false), ConfidenceHigh); err != nil || fb != nil {
		t.Fatalf("test mode submit: fb=%v err=%v", fb, err)
	}
	if s.State() != StateFinished {
		t.Fatalf("state = %v, want finished", s.State())
	}
	if len(finished) != 1 {
		t.Fatalf("finisher called %d times, want 1", len(finished))
	}
	b := finished[0]
	for i, fb := range b.Feedback {
		if fb != nil {
			t.Errorf("feedback[%d] should be deferred, got %+v", i, fb)
		}
	}
	for i, c := range b.ConfidenceLevels {
		if c != ConfidenceUnset {
			t.Errorf("confidence[%d] = %v, test mode records none", i, c)
		}
	}
}

func TestExpireKeepsUnsetSentinel(t *testing.T) {
	qs := []Question{mcq("A", "A", "B"), mcq("B", "A", "B"), mcq("A", "A", "B")}
	s := newTestSession(t, Test, qs)

	if _, err := s.Submit(Text("A"), ConfidenceUnset); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(Text("A"), ConfidenceUnset); err != nil {
		t.Fatal(err)
	}
	if err := s.Expire(); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	b, err := s.Bundle()
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if len(b.UserAnswers) != 3 || len(b.ConfidenceLevels) != 3 || len(b.Feedback) != 3 {
		t.Fatalf("parallel slices must match question count: %d/%d/%d",
			len(b.UserAnswers), len(b.ConfidenceLevels), len(b.Feedback))
	}
	if b.UserAnswers[2].IsSet() {
		t.Fatalf("answer[2] should be unset, got %v", b.UserAnswers[2])
	}

	// Expiring twice is harmless.
	if err := s.Expire(); err != nil {
		t.Fatalf("second Expire: %v", err)
	}
}

func TestExpireRequiresTestMode(t *testing.T) {
	s := newTestSession(t, Practice, sampleQuestions())
	if err := s.Expire(); !errors.Is(err, ErrNotTestMode) {
		t.Fatalf("expected ErrNotTestMode, got %v", err)
	}
}

func TestBundleBeforeFinish(t *testing.T) {
	s := newTestSession(t, Test, sampleQuestions())
	if _, err := s.Bundle(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished, got %v", err)
	}
}

func TestHintIsIdempotent(t *testing.T) {
	s := newTestSession(t, Test, sampleQuestions())

	h1, err := s.Hint()
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := s.Hint()
	if h1 != NoHintText || h2 != h1 {
		t.Fatalf("hints = %q, %q", h1, h2)
	}
	if !s.HintUsed(0) {
		t.Fatal("hint usage not tracked")
	}

	s.Submit(Text("Nucleus"), ConfidenceUnset)
	s.Submit(Bool(true), ConfidenceUnset)
	if h, _ := s.Hint(); h != "Control centre" {
		t.Fatalf("hint = %q", h)
	}
}

func TestFiftyFifty(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		s, err := NewSession(Practice, sampleQuestions(), WithRand(rand.New(rand.NewPCG(seed, seed))))
		if err != nil {
			t.Fatal(err)
		}

		shown, err := s.FiftyFifty()
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(shown) != 2 {
			t.Fatalf("seed %d: %d options shown, want 2", seed, len(shown))
		}
		if !slices.Contains(shown, "Mitochondria") {
			t.Fatalf("seed %d: correct answer missing from %v", seed, shown)
		}
		if shown[0] == shown[1] {
			t.Fatalf("seed %d: duplicate options %v", seed, shown)
		}
		if !slices.Equal(s.Options(), shown) {
			t.Fatalf("seed %d: Options() = %v, want %v", seed, s.Options(), shown)
		}
		if _, err := s.FiftyFifty(); !errors.Is(err, ErrLifelineUsed) {
			t.Fatalf("seed %d: expected ErrLifelineUsed, got %v", seed, err)
		}
	}
}

func TestFiftyFiftyOrderIsNotFixed(t *testing.T) {
	first := map[bool]bool{}
	for seed := uint64(0); seed < 64; seed++ {
		s, _ := NewSession(Practice, sampleQuestions(), WithRand(rand.New(rand.NewPCG(seed, 7))))
		shown, _ := s.FiftyFifty()
		first[shown[0] == "Mitochondria"] = true
	}
	if len(first) != 2 {
		t.Fatal("correct option should appear both first and second across seeds")
	}
}

func TestFiftyFiftyOnlyForMultipleChoice(t *testing.T) {
	s := newTestSession(t, Test, sampleQuestions())
	s.Submit(Text("Nucleus"), ConfidenceUnset)
	if _, err := s.FiftyFifty(); !errors.Is(err, ErrNotMultipleChoice) {
		t.Fatalf("expected ErrNotMultipleChoice, got %v", err)
	}
}
