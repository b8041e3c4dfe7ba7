package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var (
	ErrNoQuestions        = errors.New("quiz has no questions")
	ErrNoAnswer           = errors.New("no answer given")
	ErrWrongAnswerKind    = errors.New("answer does not fit the question type")
	ErrConfidenceRequired = errors.New("confidence level required")
	ErrNotAnswering       = errors.New("not waiting for an answer")
	ErrNotSubmitted       = errors.New("current answer not submitted yet")
	ErrNotMultipleChoice  = errors.New("50/50 is only available for multiple choice questions")
	ErrLifelineUsed       = errors.New("lifeline already used on this question")
	ErrNotTestMode        = errors.New("only test sessions can expire")
	ErrNotFinished        = errors.New("quiz not finished")
)

// NoHintText is shown when a question carries no hint.
const NoHintText = "Sorry, no hint is available for this question."

// State is the session's position in its answering cycle.
type State int

const (
	StateAnswering State = iota
	StateSubmitted
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateAnswering:
		return "answering"
	case StateSubmitted:
		return "submitted"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Bundle is everything a finished session hands to grading. The answer,
// confidence and feedback slices always have one entry per question.
type Bundle struct {
	Mode             Mode
	Questions        []Question
	UserAnswers      []Answer
	ConfidenceLevels []Confidence
	Feedback         []*Feedback
}

// Session drives a single quiz attempt. It is not safe for concurrent use;
// the TUI owns it from its event loop.
type Session struct {
	mode       Mode
	questions  []Question
	answers    []Answer
	confidence []Confidence
	feedback   []*Feedback

	index int
	state State

	hintUsed  []bool
	fiftyUsed []bool
	displayed [][]string

	rng      *rand.Rand
	finisher func(Bundle)
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used by the 50/50 lifeline.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithFinisher registers a callback invoked once when the session finishes.
func WithFinisher(fn func(Bundle)) Option {
	return func(s *Session) { s.finisher = fn }
}

// NewSession starts a session on the first question.
func NewSession(mode Mode, questions []Question, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if mode != Practice && mode != Test {
		return nil, fmt.Errorf("unknown quiz mode %q", mode)
	}
	for i, q := range questions {
		if !q.Type.Valid() {
			return nil, fmt.Errorf("question %d: unknown type %q", i, q.Type)
		}
	}

	n := len(questions)
	s := &Session{
		mode:       mode,
		questions:  slices.Clone(questions),
		answers:    make([]Answer, n),
		confidence: make([]Confidence, n),
		feedback:   make([]*Feedback, n),
		hintUsed:   make([]bool, n),
		fiftyUsed:  make([]bool, n),
		displayed:  make([][]string, n),
		state:      StateAnswering,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s, nil
}

func (s *Session) Mode() Mode   { return s.mode }
func (s *Session) State() State { return s.state }
func (s *Session) Index() int   { return s.index }
func (s *Session) Len() int     { return len(s.questions) }

// Current returns the question at the current index.
func (s *Session) Current() Question { return s.questions[s.index] }

// CurrentFeedback returns the immediate feedback for the current question,
// or nil if it has none.
func (s *Session) CurrentFeedback() *Feedback { return s.feedback[s.index] }

// HintUsed reports whether the hint was revealed on question i.
func (s *Session) HintUsed(i int) bool { return s.hintUsed[i] }

// FiftyFiftyUsed reports whether 50/50 was used on question i.
func (s *Session) FiftyFiftyUsed(i int) bool { return s.fiftyUsed[i] }

// Submit records an answer for the current question. In Practice mode an
// objective question is graded immediately and the session waits in
// Submitted for Advance; everything else moves straight on and returns nil
// feedback.
func (s *Session) Submit(answer Answer, confidence Confidence) (*Feedback, error) {
	if s.state != StateAnswering {
		return nil, ErrNotAnswering
	}
	if !answer.IsSet() {
		return nil, ErrNoAnswer
	}
	q := s.questions[s.index]
	if (q.Type == TrueFalse) != (answer.Kind() == AnswerBool) {
		return nil, ErrWrongAnswerKind
	}
	immediate := s.mode == Practice && q.Type.Objective()
	if immediate && !confidence.IsSet() {
		return nil, ErrConfidenceRequired
	}

	s.answers[s.index] = answer
	if s.mode == Practice {
		s.confidence[s.index] = confidence
	}

	if immediate {
		fb := gradeObjective(q, answer)
		s.feedback[s.index] = &fb
		s.state = StateSubmitted
		return &fb, nil
	}
	s.next()
	return nil, nil
}

// Advance moves past a submitted question to the next one, or finishes the
// session after the last.
func (s *Session) Advance() error {
	if s.state != StateSubmitted {
		return ErrNotSubmitted
	}
	s.next()
	return nil
}

func (s *Session) next() {
	if s.index == len(s.questions)-1 {
		s.finish()
		return
	}
	s.index++
	s.state = StateAnswering
}

func (s *Session) finish() {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	if s.finisher != nil {
		s.finisher(s.bundle())
	}
}

// Hint reveals the current question's hint. Repeated calls return the
// same text.
func (s *Session) Hint() (string, error) {
	if s.state == StateFinished {
		return "", ErrNotAnswering
	}
	s.hintUsed[s.index] = true
	if h := s.questions[s.index].Hint; h != "" {
		return h, nil
	}
	return NoHintText, nil
}

// FiftyFifty reduces the current multiple choice question to the correct
// option and one random incorrect option, in random order.
func (s *Session) FiftyFifty() ([]string, error) {
	if s.state != StateAnswering {
		return nil, ErrNotAnswering
	}
	q := s.questions[s.index]
	if q.Type != MultipleChoice {
		return nil, ErrNotMultipleChoice
	}
	if s.fiftyUsed[s.index] {
		return nil, ErrLifelineUsed
	}

	correct, _ := q.Answer.AsText()
	var wrong []string
	for _, opt := range q.Options {
		if opt != correct {
			wrong = append(wrong, opt)
		}
	}
	shown := []string{correct}
	if len(wrong) > 0 {
		shown = append(shown, wrong[s.rng.IntN(len(wrong))])
		if s.rng.IntN(2) == 0 {
			shown[0], shown[1] = shown[1], shown[0]
		}
	}

	s.fiftyUsed[s.index] = true
	s.displayed[s.index] = shown
	return slices.Clone(shown), nil
}

// Options returns the options currently displayed for the current question.
func (s *Session) Options() []string {
	if d := s.displayed[s.index]; d != nil {
		return slices.Clone(d)
	}
	return slices.Clone(s.questions[s.index].Options)
}

// Expire finishes a Test session immediately, keeping whatever answers
// were captured. Unanswered questions stay unset.
func (s *Session) Expire() error {
	if s.mode != Test {
		return ErrNotTestMode
	}
	s.finish()
	return nil
}

// Bundle returns the finished session's data for grading.
func (s *Session) Bundle() (Bundle, error) {
	if s.state != StateFinished {
		return Bundle{}, ErrNotFinished
	}
	return s.bundle(), nil
}

func (s *Session) bundle() Bundle {
	fb := make([]*Feedback, len(s.feedback))
	for i, f := range s.feedback {
		if f != nil {
			c := *f
			fb[i] = &c
		}
	}
	return Bundle{
		Mode:             s.mode,
		Questions:        slices.Clone(s.questions),
		UserAnswers:      slices.Clone(s.answers),
		ConfidenceLevels: slices.Clone(s.confidence),
		Feedback:         fb,
	}
}
