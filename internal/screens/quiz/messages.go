package quiz

import (
	"github.com/studybuddy/studybuddy/internal/inflight"
	qz "github.com/studybuddy/studybuddy/internal/quiz"
)

// questionsReadyMsg carries generated questions back to the screen.
type questionsReadyMsg struct {
	token     *inflight.Token
	Questions []qz.Question
	Err       error
}

// gradedMsg carries the graded result of a finished session.
type gradedMsg struct {
	token  *inflight.Token
	Result qz.Result
}
