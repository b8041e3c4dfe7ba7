package quiz

import (
	"fmt"
	"strings"
)

// QuestionType is the closed set of question shapes.
type QuestionType string

const (
	MultipleChoice QuestionType = "MultipleChoice"
	TrueFalse      QuestionType = "TrueFalse"
	FillInTheBlank QuestionType = "FillInTheBlank"
	OpenEnded      QuestionType = "OpenEnded"
)

// QuestionTypes lists every question type in display order.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, FillInTheBlank, OpenEnded}

// Objective reports whether answers can be graded locally by comparing
// against the stored answer.
func (t QuestionType) Objective() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillInTheBlank:
		return true
	case OpenEnded:
		return false
	default:
		panic(fmt.Sprintf("quiz: unhandled question type %q", t))
	}
}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillInTheBlank, OpenEnded:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (t QuestionType) Label() string {
	switch t {
	case MultipleChoice:
		return "Multiple choice"
	case TrueFalse:
		return "True / False"
	case FillInTheBlank:
		return "Fill in the blank"
	case OpenEnded:
		return "Open ended"
	default:
		panic(fmt.Sprintf("quiz: unhandled question type %q", t))
	}
}

// ParseQuestionType accepts the canonical names case-insensitively, plus a
// few short aliases used on the command line.
func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiplechoice", "mcq", "mc":
		return MultipleChoice, nil
	case "truefalse", "tf":
		return TrueFalse, nil
	case "fillintheblank", "fill", "blank":
		return FillInTheBlank, nil
	case "openended", "open":
		return OpenEnded, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Question is a single quiz question. Answer holds text for multiple choice
// and fill-in questions and a bool for true/false; open-ended questions
// carry IdealAnswer instead.
type Question struct {
	Type        QuestionType `json:"type"`
	Question    string       `json:"question"`
	Options     []string     `json:"options,omitempty"`
	Answer      Answer       `json:"answer"`
	IdealAnswer string       `json:"idealAnswer,omitempty"`
	Explanation string       `json:"explanation"`
	Hint        string       `json:"hint,omitempty"`
	Topic       string       `json:"topic,omitempty"`
}

// Mode selects when feedback is shown.
type Mode string

const (
	Practice Mode = "Practice"
	Test     Mode = "Test"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "practice":
		return Practice, nil
	case "test":
		return Test, nil
	}
	return "", fmt.Errorf("unknown quiz mode %q (want practice or test)", s)
}

// Feedback is the grading verdict for one answer.
type Feedback struct {
	IsCorrect    bool   `json:"isCorrect"`
	FeedbackText string `json:"feedbackText"`
}

// IsCorrect compares an answer against an objective question's stored
// answer: exact match for multiple choice, case-insensitive trimmed match
// for fill-in, boolean equality for true/false. Open-ended questions and
// unset answers are never correct here.
func IsCorrect(q Question, a Answer) bool {
	if !a.IsSet() {
		return false
	}
	switch q.Type {
	case MultipleChoice:
		want, _ := q.Answer.AsText()
		got, ok := a.AsText()
		return ok && got == want
	case FillInTheBlank:
		want, _ := q.Answer.AsText()
		got, ok := a.AsText()
		return ok && strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
	case TrueFalse:
		want, _ := q.Answer.AsBool()
		got, ok := a.AsBool()
		return ok && got == want
	case OpenEnded:
		return false
	default:
		panic(fmt.Sprintf("quiz: unhandled question type %q", q.Type))
	}
}

// gradeObjective grades locally and builds the feedback shown to the user.
func gradeObjective(q Question, a Answer) Feedback {
	correct := IsCorrect(q, a)
	text := q.Explanation
	if text == "" {
		if correct {
			text = "Correct!"
		} else {
			text = fmt.Sprintf("The correct answer is %s.", q.Answer.String())
		}
	}
	return Feedback{IsCorrect: correct, FeedbackText: text}
}
