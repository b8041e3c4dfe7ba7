package studytools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/llm"
)

func TestSummarize(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "  Key points: cells.  "})
	svc := NewService(mock)

	item, err := svc.Summarize(context.Background(), "Cells are the unit of life.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	s, ok := item.Payload.(history.Summary)
	if !ok {
		t.Fatalf("payload = %T", item.Payload)
	}
	if s.Content != "Key points: cells." || s.SourceContent != "Cells are the unit of life." {
		t.Fatalf("summary = %+v", s)
	}
	if item.ID == "" || item.Timestamp == "" {
		t.Fatalf("item missing id or timestamp: %+v", item)
	}

	req, _ := mock.LastCall()
	if !strings.Contains(req.Messages[0].Content, "preparing for an exam") {
		t.Errorf("unexpected prompt: %q", req.Messages[0].Content)
	}
}

func TestEmptyInputSkipsGenerator(t *testing.T) {
	mock := llm.NewMockProvider()
	svc := NewService(mock)
	ctx := context.Background()

	calls := []func() error{
		func() error { _, err := svc.Summarize(ctx, " "); return err },
		func() error { _, err := svc.ExplainCode(ctx, ""); return err },
		func() error { _, err := svc.LabReport(ctx, "", "\n"); return err },
		func() error { _, err := svc.Diagram(ctx, ""); return err },
		func() error { _, err := svc.AudioSummary(ctx, ""); return err },
		func() error { _, err := svc.Chat(ctx, "m", nil, ""); return err },
	}
	for i, call := range calls {
		if err := call(); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("call %d: err = %v, want ErrEmptyInput", i, err)
		}
	}
	if mock.CallCount() != 0 {
		t.Fatalf("generator called %d times", mock.CallCount())
	}
}

func TestLabReportWithResultsOnly(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Aim: ..."})
	item, err := NewService(mock).LabReport(context.Background(), "", "t=2.1s")
	if err != nil {
		t.Fatal(err)
	}
	lr := item.Payload.(history.LabReport)
	if lr.SourceResults != "t=2.1s" || lr.Content != "Aim: ..." {
		t.Fatalf("report = %+v", lr)
	}
	req, _ := mock.LastCall()
	if strings.Contains(req.Messages[0].Content, "Experiment code") {
		t.Error("prompt mentions code that was not given")
	}
}

func TestExtractMermaid(t *testing.T) {
	tests := []struct {
		name, reply, want string
	}{
		{"block", "Here:\n```mermaid\ngraph TD;\nA-->B;\n```\nDone", "graph TD;\nA-->B;"},
		{"no block", "graph TD; A-->B", FallbackDiagram},
		{"empty block", "```mermaid\n```", FallbackDiagram},
		{"first of two", "```mermaid\nmindmap\n```\n```mermaid\ngraph LR;\n```", "mindmap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMermaid(tt.reply); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagramFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "I cannot draw that."})
	item, err := NewService(mock).Diagram(context.Background(), "photosynthesis")
	if err != nil {
		t.Fatal(err)
	}
	if d := item.Payload.(history.Diagram); d.Mermaid != FallbackDiagram || d.Prompt != "photosynthesis" {
		t.Fatalf("diagram = %+v", d)
	}
}

func TestChatCarriesConversation(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Mitochondria make ATP."},
		llm.MockResponse{Text: "Yes, in the inner membrane."},
	)
	svc := NewService(mock)
	ctx := context.Background()

	msgs, err := svc.Chat(ctx, "notes about cells", nil, "What do mitochondria do?")
	if err != nil {
		t.Fatal(err)
	}
	msgs, err = svc.Chat(ctx, "notes about cells", msgs, "Is that where respiration happens?")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 || msgs[3].Role != history.RoleModel {
		t.Fatalf("messages = %+v", msgs)
	}

	req, _ := mock.LastCall()
	if len(req.Messages) != 3 || req.Messages[1].Role != llm.RoleAssistant {
		t.Fatalf("request messages = %+v", req.Messages)
	}
	if !strings.Contains(req.System, "notes about cells") || !strings.Contains(req.System, NotFoundReply) {
		t.Errorf("system prompt missing material or refusal: %q", req.System)
	}

	item := svc.ChatItem(msgs, "Tutor")
	if item.Kind() != history.KindChat || item.Title() != "Tutor" {
		t.Fatalf("item = %+v", item)
	}
}

func TestChatErrorKeepsConversation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrContentFiltered{}})
	prev := []history.ChatMessage{{Role: history.RoleUser, Content: "hi"}, {Role: history.RoleModel, Content: "hello"}}

	got, err := NewService(mock).Chat(context.Background(), "m", prev, "next")
	var filtered *llm.ErrContentFiltered
	if !errors.As(err, &filtered) {
		t.Fatalf("err = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("conversation changed on error: %+v", got)
	}
}
