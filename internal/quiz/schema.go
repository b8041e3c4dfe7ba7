package quiz

import "github.com/studybuddy/studybuddy/internal/llm"

// QuestionsSchema defines the JSON schema for quiz generation.
var QuestionsSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of quiz questions about the study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []any{"MultipleChoice", "TrueFalse", "FillInTheBlank", "OpenEnded"},
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question text. Fill-in questions mark the blank with ____",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options for MultipleChoice, empty otherwise",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct option text (MultipleChoice), the missing word (FillInTheBlank), \"true\" or \"false\" (TrueFalse), empty for OpenEnded",
						},
						"idealAnswer": map[string]any{
							"type":        "string",
							"description": "A model answer for OpenEnded questions, empty otherwise",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the correct answer",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "A nudge that does not give the answer away",
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "A short topic label (1-4 words) from the source text",
						},
					},
					"required":             []any{"type", "question", "options", "answer", "idealAnswer", "explanation", "hint", "topic"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// GradeSchema defines the JSON schema for open-ended answer grading.
var GradeSchema = &llm.Schema{
	Name:        "answer-grade",
	Description: "Verdict on a student's free-text answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "Whether the answer is semantically correct",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "A one-sentence explanation of the verdict",
			},
		},
		"required":             []any{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}
