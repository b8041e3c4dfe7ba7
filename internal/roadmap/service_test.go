package roadmap

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/studybuddy/studybuddy/internal/llm"
)

func TestServiceGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"roadmap": [
		{"title": "Cells", "description": "Basics", "resources": ["Ch. 1"], "subNodes": [
			{"title": "Organelles", "description": "Parts", "resources": [], "subNodes": []}
		]},
		{"title": "Genetics", "description": "DNA", "resources": [], "subNodes": []}
	]}`)})

	tree, err := NewService(mock).Generate(context.Background(), "biology notes")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tree) != 2 || len(tree[0].SubNodes) != 1 {
		t.Fatalf("unexpected tree shape: %+v", tree)
	}
	if tree[0].ID == "" || tree[0].ID == tree[0].SubNodes[0].ID {
		t.Fatal("nodes need distinct ids")
	}

	call, _ := mock.LastCall()
	if call.Schema != Schema {
		t.Fatal("roadmap schema not sent")
	}
}

func TestServiceGenerateEmpty(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"roadmap": []}`)})
	_, err := NewService(mock).Generate(context.Background(), "x")
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestSchemaDepthIsBounded(t *testing.T) {
	depth := 0
	node := Schema.Definition["properties"].(map[string]any)["roadmap"].(map[string]any)["items"].(map[string]any)
	for node != nil {
		depth++
		sub, ok := node["properties"].(map[string]any)["subNodes"].(map[string]any)
		if !ok {
			break
		}
		node = sub["items"].(map[string]any)
	}
	if depth != maxDepth {
		t.Fatalf("schema depth = %d, want %d", depth, maxDepth)
	}
}
