package roadmap

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/llm"
	rm "github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

const roadmapJSON = `{"roadmap": [
	{"title": "Cells", "description": "Basics", "resources": ["Ch. 1"], "subNodes": [
		{"title": "Organelles", "description": "Parts", "resources": [], "subNodes": []}
	]},
	{"title": "Genetics", "description": "DNA", "resources": [], "subNodes": []}
]}`

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T, responses ...llm.MockResponse) *shared.Deps {
	t.Helper()
	ws, err := workspace.Open(context.Background(), store.NewMemoryKV(), "local")
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	return &shared.Deps{
		Workspace: ws,
		Roadmap:   rm.NewService(llm.NewMockProvider(responses...)),
		Guard:     &inflight.Guard{},
	}
}

// generated returns a screen whose roadmap has been generated and saved.
func generated(t *testing.T) (*RoadmapScreen, *shared.Deps) {
	t.Helper()
	deps := testDeps(t, llm.MockResponse{Content: json.RawMessage(roadmapJSON)})
	s := NewGenerate(deps)
	batch := s.Init()().(tea.BatchMsg)
	for _, cmd := range batch {
		if msg, ok := cmd().(roadmapReadyMsg); ok {
			s.Update(msg)
		}
	}
	if !s.loaded {
		t.Fatalf("roadmap not loaded: %s", s.errMsg)
	}
	return s, deps
}

func savedTree(t *testing.T, deps *shared.Deps) []rm.Node {
	t.Helper()
	items := deps.Workspace.ItemsOfKind(history.KindRoadmap)
	if len(items) != 1 {
		t.Fatalf("expected one saved roadmap, got %d", len(items))
	}
	return items[0].Payload.(history.Roadmap).Nodes
}

func TestRoadmapScreen_GenerateSaves(t *testing.T) {
	s, deps := generated(t)
	if len(s.rows) != 2 {
		t.Fatalf("collapsed tree should show 2 rows, got %d", len(s.rows))
	}
	if len(savedTree(t, deps)) != 2 {
		t.Error("saved roadmap has wrong shape")
	}
	if !strings.Contains(s.View(100, 30), "0/3 done") {
		t.Errorf("expected progress line, got:\n%s", s.View(100, 30))
	}
}

func TestRoadmapScreen_ExpandAndCycleLeaf(t *testing.T) {
	s, deps := generated(t)

	s.Update(specialKey(tea.KeyEnter))
	if len(s.rows) != 3 {
		t.Fatalf("expanded tree should show 3 rows, got %d", len(s.rows))
	}

	s.Update(specialKey(tea.KeyDown))
	if s.rows[s.selected].node.Title != "Organelles" {
		t.Fatalf("expected Organelles selected, got %q", s.rows[s.selected].node.Title)
	}
	s.Update(specialKey(tea.KeyEnter))

	tree := savedTree(t, deps)
	if tree[0].SubNodes[0].Status != rm.InProgress {
		t.Errorf("leaf status = %s, want in-progress", tree[0].SubNodes[0].Status)
	}
	if tree[0].Status != rm.InProgress {
		t.Errorf("parent status = %s, want derived in-progress", tree[0].Status)
	}
	if !tree[0].IsExpanded {
		t.Error("expansion should be saved")
	}

	s.Update(specialKey(tea.KeyEnter))
	if got := savedTree(t, deps)[0].Status; got != rm.Completed {
		t.Errorf("parent status = %s, want completed", got)
	}
}

func TestRoadmapScreen_InternalNodeStatusIsDerived(t *testing.T) {
	s, deps := generated(t)
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyLeft))
	if len(s.rows) != 2 {
		t.Fatalf("expected collapsed tree, got %d rows", len(s.rows))
	}
	if got := savedTree(t, deps)[0].Status; got != rm.NotStarted {
		t.Errorf("expanding must not change status, got %s", got)
	}
}

func TestRoadmapScreen_EditNote(t *testing.T) {
	s, deps := generated(t)
	s.Update(specialKey(tea.KeyDown))

	s.Update(keyPress('n'))
	if !s.editing || !s.HandlesEscape() {
		t.Fatal("expected note editor to open and own esc")
	}
	s.note.Model.SetValue("read chapter 2")
	s.Update(specialKey(tea.KeyEnter))

	if s.editing {
		t.Fatal("editor should close on enter")
	}
	if got := savedTree(t, deps)[1].Notes; got != "read chapter 2" {
		t.Errorf("note = %q", got)
	}
}

func TestRoadmapScreen_OpenSaved(t *testing.T) {
	deps := testDeps(t)
	tree := rm.Hydrate([]rm.GeneratedNode{{Title: "Only"}})
	item := history.New(history.Roadmap{Nodes: tree}, deps.Workspace.Now())

	s := New(deps, item)
	if s.Init() != nil {
		t.Error("saved roadmap needs no loading")
	}
	s.Update(keyPress(' '))
	if s.rows[0].node.Status != rm.InProgress {
		t.Errorf("status = %s", s.rows[0].node.Status)
	}
	if _, ok := deps.Workspace.Item(item.ID); !ok {
		t.Error("change should save the item")
	}
}

func TestRoadmapScreen_LeaveDropsResult(t *testing.T) {
	deps := testDeps(t, llm.MockResponse{Content: json.RawMessage(roadmapJSON)})
	s := NewGenerate(deps)
	batch := s.Init()().(tea.BatchMsg)
	s.Leave()
	for _, cmd := range batch {
		if msg, ok := cmd().(roadmapReadyMsg); ok {
			s.Update(msg)
		}
	}
	if s.loaded {
		t.Error("result arriving after leave must be dropped")
	}
	if len(deps.Workspace.ItemsOfKind(history.KindRoadmap)) != 0 {
		t.Error("nothing should be saved")
	}
}
