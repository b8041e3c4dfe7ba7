// Package studytools wraps the single-shot study tools: summaries, code
// explanations, lab reports, diagrams, audio scripts and the tutor chat.
// Every tool returns the history item it produces; saving is up to the
// caller.
package studytools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/llm"
)

// ErrEmptyInput is returned before calling the Generator with nothing to
// work on.
var ErrEmptyInput = errors.New("input is empty")

// FallbackDiagram is used when the reply contains no mermaid block.
const FallbackDiagram = "graph TD;\nA[Could not generate diagram];"

// Service runs study tools through the Generator.
type Service struct {
	provider llm.Provider
	now      func() time.Time
}

func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider, now: time.Now}
}

func (s *Service) text(ctx context.Context, purpose, system, user string, maxTokens int) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", purpose, err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty reply")}
	}
	return out, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Summarize writes exam-focused notes for text.
func (s *Service) Summarize(ctx context.Context, text string) (history.Item, error) {
	if blank(text) {
		return history.Item{}, ErrEmptyInput
	}
	out, err := s.text(ctx, llm.PurposeSummary, summarySystemPrompt, buildSummaryUserMessage(text), 4096)
	if err != nil {
		return history.Item{}, err
	}
	return history.New(history.Summary{Content: out, SourceContent: text}, s.now()), nil
}

// ExplainCode explains source code step by step.
func (s *Service) ExplainCode(ctx context.Context, code string) (history.Item, error) {
	if blank(code) {
		return history.Item{}, ErrEmptyInput
	}
	out, err := s.text(ctx, llm.PurposeExplainCode, explainSystemPrompt, buildExplainUserMessage(code), 4096)
	if err != nil {
		return history.Item{}, err
	}
	return history.New(history.CodeExplanation{Content: out, SourceCode: code}, s.now()), nil
}

// LabReport writes a report from experiment code, recorded results, or
// both.
func (s *Service) LabReport(ctx context.Context, code, results string) (history.Item, error) {
	if blank(code) && blank(results) {
		return history.Item{}, ErrEmptyInput
	}
	out, err := s.text(ctx, llm.PurposeLabReport, labReportSystemPrompt, buildLabReportUserMessage(code, results), 4096)
	if err != nil {
		return history.Item{}, err
	}
	return history.New(history.LabReport{Content: out, SourceCode: code, SourceResults: results}, s.now()), nil
}

var mermaidBlock = regexp.MustCompile("(?s)```mermaid(.*?)```")

// ExtractMermaid returns the first mermaid code block in reply, or
// FallbackDiagram.
func ExtractMermaid(reply string) string {
	m := mermaidBlock.FindStringSubmatch(reply)
	if m == nil {
		return FallbackDiagram
	}
	if src := strings.TrimSpace(m[1]); src != "" {
		return src
	}
	return FallbackDiagram
}

// Diagram generates a Mermaid diagram of the key concepts in text.
func (s *Service) Diagram(ctx context.Context, text string) (history.Item, error) {
	if blank(text) {
		return history.Item{}, ErrEmptyInput
	}
	out, err := s.text(ctx, llm.PurposeDiagram, diagramSystemPrompt, buildDiagramUserMessage(text), 2048)
	if err != nil {
		return history.Item{}, err
	}
	return history.New(history.Diagram{Prompt: text, Mermaid: ExtractMermaid(out)}, s.now()), nil
}

// AudioSummary writes a narration script to be read aloud.
func (s *Service) AudioSummary(ctx context.Context, text string) (history.Item, error) {
	if blank(text) {
		return history.Item{}, ErrEmptyInput
	}
	out, err := s.text(ctx, llm.PurposeAudioSummary, audioSystemPrompt, buildAudioUserMessage(text), 2048)
	if err != nil {
		return history.Item{}, err
	}
	return history.New(history.AudioSummary{Content: out, SourceContent: text}, s.now()), nil
}

// Chat sends message to the tutor with the conversation so far and returns
// the conversation extended by the message and the reply. The tutor only
// answers from material. On error msgs is returned unchanged.
func (s *Service) Chat(ctx context.Context, material string, msgs []history.ChatMessage, message string) ([]history.ChatMessage, error) {
	if blank(message) {
		return msgs, ErrEmptyInput
	}
	next := append(append([]history.ChatMessage(nil), msgs...), history.ChatMessage{Role: history.RoleUser, Content: message})

	conv := make([]llm.Message, len(next))
	for i, m := range next {
		role := llm.RoleUser
		if m.Role == history.RoleModel {
			role = llm.RoleAssistant
		}
		conv[i] = llm.Message{Role: role, Content: m.Content}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeTutor)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      buildTutorSystemPrompt(material),
		Messages:    conv,
		MaxTokens:   2048,
		Temperature: 0.6,
	})
	if err != nil {
		return msgs, fmt.Errorf("tutor: %w", err)
	}
	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		reply = NotFoundReply
	}
	return append(next, history.ChatMessage{Role: history.RoleModel, Content: reply}), nil
}

// ChatItem wraps a conversation for history.
func (s *Service) ChatItem(msgs []history.ChatMessage, title string) history.Item {
	return history.New(history.Chat{Messages: msgs, ModeTitle: title}, s.now())
}
