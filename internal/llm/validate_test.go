package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A single quiz question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
				},
				"type": map[string]any{"type": "string", "enum": []any{"MultipleChoice", "TrueFalse"}},
			},
			"required": []any{"question", "type"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"Is water wet?","type":"TrueFalse"}`, false},
		{"valid with options", `{"question":"Pick","type":"MultipleChoice","options":["a","b"]}`, false},
		{"missing required", `{"question":"Pick"}`, true},
		{"wrong type", `{"question":42,"type":"TrueFalse"}`, true},
		{"invalid enum", `{"question":"Pick","type":"Essay"}`, true},
		{"too few options", `{"question":"Pick","type":"MultipleChoice","options":["a"]}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
				if !IsPermanent(err) {
					t.Fatal("schema failures must be permanent")
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```\n", `[1,2]`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFinishContent_TextIsWrapped(t *testing.T) {
	content, err := finishContent(Request{}, `say "hi"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := &Response{Content: content}
	if resp.Text() != `say "hi"` {
		t.Fatalf("Text() = %q", resp.Text())
	}
	if !json.Valid(content) {
		t.Fatalf("content is not valid JSON: %s", content)
	}
}
