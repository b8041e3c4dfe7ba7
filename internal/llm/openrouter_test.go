package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// openRouterServer answers every chat completion with content and finish,
// and records the decoded request body.
func openRouterServer(t *testing.T, content, finish string, got *map[string]any) *OpenRouterProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-or-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "gen-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "google/gemini-2.0-flash-exp",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": finish,
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 8,
				"total_tokens":      20,
			},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.0-flash-exp",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	return p
}

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "meta-llama/llama-3-8b"})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})
}

func TestOpenRouterProvider_TextResponse(t *testing.T) {
	var body map[string]any
	p := openRouterServer(t, "Osmosis moves water across a membrane.", "stop", &body)

	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a study assistant.",
		Messages: []Message{{Role: RoleUser, Content: "Explain osmosis."}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Text(); got != "Osmosis moves water across a membrane." {
		t.Errorf("Text() = %q", got)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q, want end", resp.StopReason)
	}
	if resp.Usage.TotalTokens != 20 {
		t.Errorf("total tokens = %d, want 20", resp.Usage.TotalTokens)
	}
	if body["model"] != "google/gemini-2.0-flash-exp" {
		t.Errorf("request model = %v", body["model"])
	}
	if _, ok := body["response_format"]; ok {
		t.Error("text requests must not ask for a JSON schema")
	}
}

func TestOpenRouterProvider_StructuredResponse(t *testing.T) {
	var body map[string]any
	p := openRouterServer(t, "```json\n{\"question\":\"Is water wet?\",\"type\":\"TrueFalse\"}\n```", "stop", &body)

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "One question."}},
		Schema:   questionSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var q struct{ Question, Type string }
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	if q.Type != "TrueFalse" {
		t.Errorf("type = %q", q.Type)
	}
	if _, ok := body["response_format"]; !ok {
		t.Error("structured requests should send response_format")
	}
}

func TestOpenRouterProvider_ContentFiltered(t *testing.T) {
	p := openRouterServer(t, "", "content_filter", nil)

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Explain osmosis."}},
	})
	var filtered *ErrContentFiltered
	if !errors.As(err, &filtered) {
		t.Fatalf("expected ErrContentFiltered, got %T: %v", err, err)
	}
	if !IsPermanent(err) {
		t.Error("filtered content should not be retried")
	}
}

func TestOpenRouterProvider_InvalidStructuredResponse(t *testing.T) {
	p := openRouterServer(t, `{"question":"Pick"}`, "stop", nil)

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "One question."}},
		Schema:   questionSchema(),
	})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}
