package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purpose labels recorded with every Generator call.
const (
	PurposeSummary      = "summary"
	PurposeQuiz         = "quiz-generate"
	PurposeGrade        = "quiz-grade"
	PurposeRoadmap      = "roadmap"
	PurposeFlowchart    = "flowchart"
	PurposeDiagram      = "diagram"
	PurposeLabReport    = "lab-report"
	PurposeExplainCode  = "explain-code"
	PurposeAudioSummary = "audio-summary"
	PurposeTutor        = "tutor"
	PurposePing         = "ping"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
