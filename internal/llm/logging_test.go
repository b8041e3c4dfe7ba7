package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/studybuddy/studybuddy/internal/store"
)

type recordingEventRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingEventRepo) QueryLLMRequests(context.Context, store.QueryOpts) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func (r *recordingEventRepo) GetLLMRequest(context.Context, int64) (*store.LLMRequestEvent, error) {
	return nil, store.ErrNotFound
}

func TestLogging_RecordsSuccess(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(MockResponse{
		Text:  "hello",
		Usage: Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithPurpose(context.Background(), PurposeSummary)
	req := Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "summarize this"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if !ev.Success || ev.Purpose != PurposeSummary || ev.Provider != "mock" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 3 {
		t.Fatalf("unexpected token counts: %d/%d", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nbe brief") || !strings.Contains(ev.RequestBody, "[user]\nsummarize this") {
		t.Fatalf("request body missing prompt: %q", ev.RequestBody)
	}
	if ev.ResponseBody != `"hello"` {
		t.Fatalf("unexpected response body: %q", ev.ResponseBody)
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrContentFiltered{Reason: "SAFETY"}})
	p := WithLogging(mock, "mock", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var filtered *ErrContentFiltered
	if !errors.As(err, &filtered) {
		t.Fatalf("expected ErrContentFiltered, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success {
		t.Fatalf("expected one failed event, got %+v", repo.events)
	}
	if !strings.Contains(repo.events[0].ErrorMessage, "SAFETY") {
		t.Fatalf("error message not recorded: %q", repo.events[0].ErrorMessage)
	}
}

func TestLogging_EventWriteFailureDoesNotFailCall(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithLogging(mock, "mock", repo, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok"})
	p := WithLogging(mock, "mock", nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSerializeRequestIncludesSchema(t *testing.T) {
	got := serializeRequest(Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema:   titleSchema(),
	})
	if !strings.Contains(got, "[schema: test-title]") {
		t.Fatalf("schema not serialized: %q", got)
	}
}
