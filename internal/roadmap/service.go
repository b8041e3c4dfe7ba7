package roadmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/studybuddy/studybuddy/internal/llm"
)

// maxDepth bounds how deep the generated tree may nest.
const maxDepth = 3

// Schema is the JSON schema for roadmap generation. Nesting is unrolled to
// maxDepth levels because not every provider accepts recursive schemas.
var Schema = &llm.Schema{
	Name:        "study-roadmap",
	Description: "A hierarchical study plan broken into topics and subtopics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"roadmap": map[string]any{
				"type":  "array",
				"items": nodeSchema(maxDepth),
			},
		},
		"required":             []any{"roadmap"},
		"additionalProperties": false,
	},
}

func nodeSchema(depth int) map[string]any {
	props := map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "Short topic title (2-6 words)",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "One or two sentences on what to learn",
		},
		"resources": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Suggested resources or search terms",
		},
	}
	required := []any{"title", "description", "resources"}
	if depth > 1 {
		props["subNodes"] = map[string]any{
			"type":  "array",
			"items": nodeSchema(depth - 1),
		}
		required = append(required, "subNodes")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

const systemPrompt = `You are a study planner. Break study material into a learning roadmap of topics and subtopics in a sensible learning order. Use plain text, no markdown.`

func buildUserMessage(content string) string {
	return "Create a study roadmap with 3-7 top-level topics for the following material. " +
		"Give leaf topics an empty subNodes array.\n\n---\n" + content + "\n---"
}

// Service generates roadmaps through the Generator.
type Service struct {
	provider llm.Provider
}

// NewService creates a roadmap generation service.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

type generateOutput struct {
	Roadmap []GeneratedNode `json:"roadmap"`
}

// Generate asks the model for a roadmap and hydrates it.
func (s *Service) Generate(ctx context.Context, content string) ([]Node, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeRoadmap)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(content)}},
		Schema:      Schema,
		MaxTokens:   8192,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("roadmap generation: %w", err)
	}

	var out generateOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse roadmap response: %w", err)
	}
	if len(out.Roadmap) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty roadmap")}
	}
	return Hydrate(out.Roadmap), nil
}
