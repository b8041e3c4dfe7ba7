package flowchart

import (
	"context"
	"errors"
	"fmt"

	"github.com/studybuddy/studybuddy/internal/llm"
)

// Schema is the JSON schema for flowchart generation.
var Schema = &llm.Schema{
	Name:        "code-flowchart",
	Description: "The control flow of a piece of code as flowchart nodes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flowchart": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Unique node id, e.g. n1",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"start", "end", "process", "decision", "io"},
						},
						"content": map[string]any{
							"type":        "string",
							"description": "Short label shown in the node",
						},
						"connections": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"targetId": map[string]any{"type": "string"},
									"label": map[string]any{
										"type":        "string",
										"description": "Branch label such as Yes or No; empty for plain edges",
									},
								},
								"required":             []any{"targetId", "label"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []any{"id", "type", "content", "connections"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"flowchart"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You are a programming teacher. Turn source code into a flowchart of its control flow.
Use exactly one start node. Decision nodes have two connections labelled with the outcome. End nodes have no connections. Loops point back to an earlier node id.`

func buildUserMessage(source string) string {
	return "Create a flowchart for this code:\n\n```\n" + source + "\n```"
}

// Service generates flowcharts through the Generator.
type Service struct {
	provider llm.Provider
}

// NewService creates a flowchart generation service.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

type generateOutput struct {
	Flowchart []Node `json:"flowchart"`
}

// FromCode asks the model for the flowchart of source. The result is
// guaranteed to be walkable.
func (s *Service) FromCode(ctx context.Context, source string) ([]Node, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeFlowchart)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(source)}},
		Schema:      Schema,
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("flowchart generation: %w", err)
	}

	var out generateOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse flowchart response: %w", err)
	}
	if len(out.Flowchart) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty flowchart")}
	}
	for i := range out.Flowchart {
		if out.Flowchart[i].Connections == nil {
			out.Flowchart[i].Connections = []Connection{}
		}
	}
	if _, err := Walk(out.Flowchart); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return out.Flowchart, nil
}
