package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/studybuddy/studybuddy/internal/llm"
)

// Difficulty levels accepted by Options.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Options controls quiz generation.
type Options struct {
	Count      int
	Types      []QuestionType
	Difficulty string
	WeakTopics []string
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = 10
	}
	if len(o.Types) == 0 {
		o.Types = []QuestionType{MultipleChoice}
	}
	if o.Difficulty == "" {
		o.Difficulty = DifficultyMedium
	}
	return o
}

// Generator creates questions and grades open-ended answers through the
// Generator provider.
type Generator struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewGenerator creates a quiz generator.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider, maxTokens: 8192, temperature: 0.7}
}

type questionsOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	IdealAnswer string   `json:"idealAnswer"`
	Explanation string   `json:"explanation"`
	Hint        string   `json:"hint"`
	Topic       string   `json:"topic"`
}

// Generate asks the model for questions about content. Questions that do
// not fit their declared type are dropped; an empty result is an
// ErrInvalidResponse.
func (g *Generator) Generate(ctx context.Context, content string, opts Options) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)
	opts = opts.withDefaults()

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      generateSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGenerateUserMessage(content, opts)}},
		Schema:      QuestionsSchema,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	var out questionsOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	var questions []Question
	for _, raw := range out.Questions {
		q, err := raw.toQuestion()
		if err != nil {
			continue
		}
		if !slices.Contains(opts.Types, q.Type) {
			continue
		}
		questions = append(questions, q)
		if len(questions) == opts.Count {
			break
		}
	}
	if len(questions) == 0 {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     errors.New("no usable questions in response"),
		}
	}
	return questions, nil
}

func (o questionOutput) toQuestion() (Question, error) {
	qt := QuestionType(o.Type)
	if !qt.Valid() {
		return Question{}, fmt.Errorf("unknown question type %q", o.Type)
	}
	if strings.TrimSpace(o.Question) == "" {
		return Question{}, errors.New("empty question text")
	}
	q := Question{
		Type:        qt,
		Question:    o.Question,
		Explanation: o.Explanation,
		Hint:        o.Hint,
		Topic:       strings.TrimSpace(o.Topic),
	}

	switch qt {
	case MultipleChoice:
		if len(o.Options) < 2 || !slices.Contains(o.Options, o.Answer) {
			return Question{}, errors.New("answer is not one of the options")
		}
		q.Options = o.Options
		q.Answer = Text(o.Answer)
	case TrueFalse:
		b, err := strconv.ParseBool(strings.TrimSpace(o.Answer))
		if err != nil {
			return Question{}, fmt.Errorf("true/false answer %q: %w", o.Answer, err)
		}
		q.Answer = Bool(b)
	case FillInTheBlank:
		if strings.TrimSpace(o.Answer) == "" {
			return Question{}, errors.New("empty fill-in answer")
		}
		q.Answer = Text(o.Answer)
	case OpenEnded:
		if strings.TrimSpace(o.IdealAnswer) == "" {
			return Question{}, errors.New("empty ideal answer")
		}
		q.IdealAnswer = o.IdealAnswer
	default:
		panic(fmt.Sprintf("quiz: unhandled question type %q", qt))
	}
	return q, nil
}

type gradeOutput struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// GradeOpenEnded asks the model to judge a free-text answer. When the
// model's reply cannot be parsed it falls back to a case-insensitive
// comparison with the ideal answer; every other error is returned.
func (g *Generator) GradeOpenEnded(ctx context.Context, q Question, answer string) (Feedback, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrade)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      gradeSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGradeUserMessage(q, answer)}},
		Schema:      GradeSchema,
		MaxTokens:   512,
		Temperature: 0,
	})
	if err == nil {
		var out gradeOutput
		if err = resp.Decode(&out); err == nil {
			return Feedback{IsCorrect: out.IsCorrect, FeedbackText: out.Feedback}, nil
		}
	}

	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.IdealAnswer))
		text := "Incorrect."
		if correct {
			text = "Correct."
		}
		return Feedback{IsCorrect: correct, FeedbackText: text}, nil
	}
	return Feedback{}, fmt.Errorf("grade answer: %w", err)
}
