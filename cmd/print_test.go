package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/store"
)

func init() {
	color.NoColor = true
}

func render(it history.Item) string {
	var buf bytes.Buffer
	printItem(&buf, it)
	return buf.String()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

var now = time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)

func TestPrintItem_Roadmap(t *testing.T) {
	nodes := []roadmap.Node{{
		ID:     "root",
		Title:  "Biology",
		Status: roadmap.InProgress,
		SubNodes: []roadmap.Node{
			{ID: "cells", Title: "Cells", Status: roadmap.Completed, Notes: "reviewed twice"},
			{ID: "dna", Title: "DNA", Status: roadmap.NotStarted},
		},
	}}
	out := render(history.New(history.Roadmap{Nodes: nodes}, now))

	assertContains(t, out, "Roadmap", "◐ Biology", "  ● Cells", "note: reviewed twice", "○ DNA", "33% complete")
}

func TestPrintItem_Flowchart(t *testing.T) {
	nodes := []flowchart.Node{
		{ID: "s", Type: flowchart.Start, Content: "begin", Connections: []flowchart.Connection{{TargetID: "e"}}},
		{ID: "e", Type: flowchart.End, Content: "done"},
	}
	out := render(history.New(history.CodeFlowchart{FlowchartData: nodes}, now))
	assertContains(t, out, "begin", "done")
}

func TestPrintItem_BrokenFlowchartListsIssues(t *testing.T) {
	nodes := []flowchart.Node{
		{ID: "p", Type: flowchart.Process, Content: "orphan", Connections: []flowchart.Connection{{TargetID: "gone"}}},
	}
	out := render(history.New(history.CodeFlowchart{FlowchartData: nodes}, now))
	assertContains(t, out, "Flowchart is broken", "  - ")
}

func TestPrintItem_Quiz(t *testing.T) {
	r := quiz.Result{
		Score: 1,
		Total: 2,
		Mode:  quiz.Test,
		Questions: []quiz.Question{
			{Type: quiz.TrueFalse, Question: "Water boils at 100C at sea level.", Answer: quiz.Bool(true)},
			{Type: quiz.FillInTheBlank, Question: "The powerhouse of the cell is the ____.", Answer: quiz.Text("mitochondria")},
		},
		UserAnswers: []quiz.Answer{quiz.Bool(true), quiz.Unset()},
		Feedback: []*quiz.Feedback{
			{IsCorrect: true},
			{IsCorrect: false, FeedbackText: quiz.NoAnswerText},
		},
	}
	out := render(history.New(history.Quiz{Result: r}, now))

	assertContains(t, out,
		"Test quiz: 1 / 2 correct (50%)",
		"✓ 1. Water boils",
		"✗ 2. The powerhouse",
		"Your answer: (no answer)",
		quiz.NoAnswerText,
	)
}

func TestPrintItem_Chat(t *testing.T) {
	out := render(history.New(history.Chat{Messages: []history.ChatMessage{
		{Role: history.RoleUser, Content: "What is osmosis?"},
		{Role: history.RoleModel, Content: "Diffusion of water across a membrane."},
	}}, now))
	assertContains(t, out, "you> What is osmosis?", "tutor> Diffusion of water")
}

func TestAggregateGroupsAndSorts(t *testing.T) {
	events := []store.LLMRequestEvent{
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "tutor", InputTokens: 10, OutputTokens: 5, LatencyMs: 100}},
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "summary", InputTokens: 20, OutputTokens: 8, LatencyMs: 300}},
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "tutor", InputTokens: 30, OutputTokens: 7, LatencyMs: 200}},
	}
	rows := aggregate(events, func(ev store.LLMRequestEvent) string { return ev.Purpose })

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].key != "summary" || rows[1].key != "tutor" {
		t.Fatalf("rows not sorted: %v", rows)
	}
	tutor := rows[1]
	if tutor.calls != 2 || tutor.inputTokens != 40 || tutor.outputTokens != 12 || tutor.latencyMs != 300 {
		t.Errorf("unexpected tutor totals: %+v", tutor)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("élève studieux", 6); got != "élève…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	for in, want := range map[string]string{"hard": "Hard", " EASY ": "Easy", "": ""} {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0f8e7d6c-1111-2222-3333-444455556666"); got != "0f8e7d6c" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}
