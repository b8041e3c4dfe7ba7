package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/document"
	focusscreen "github.com/studybuddy/studybuddy/internal/screens/focus"
	historyscreen "github.com/studybuddy/studybuddy/internal/screens/history"
	"github.com/studybuddy/studybuddy/internal/screens/materials"
	roadmapscreen "github.com/studybuddy/studybuddy/internal/screens/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

func testDeps(t *testing.T, content string) *shared.Deps {
	t.Helper()
	ctx := context.Background()
	ws, err := workspace.Open(ctx, store.NewMemoryKV(), "local")
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	if content != "" {
		if err := ws.SetContent(ctx, content); err != nil {
			t.Fatalf("set content: %v", err)
		}
	}
	return &shared.Deps{Workspace: ws, Guard: &inflight.Guard{}}
}

func activate(t *testing.T, h *HomeScreen, label string) tea.Msg {
	t.Helper()
	for i, it := range h.menu.Items {
		if it.Label == label {
			h.menu.Selected = i
			_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
			if cmd == nil {
				return nil
			}
			return cmd()
		}
	}
	t.Fatalf("no menu item %q", label)
	return nil
}

func pushedScreen(t *testing.T, msg tea.Msg) screen.Screen {
	t.Helper()
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	return push.Screen
}

func TestHomeScreen_ToolsDisabledWithoutMaterial(t *testing.T) {
	h := New(testDeps(t, ""))

	always := map[string]bool{"Study materials": true, "Focus timer": true, "History": true, "Quit": true}
	for _, it := range h.menu.Items {
		want := !always[it.Label]
		if it.Disabled != want {
			t.Errorf("%s: disabled = %v, want %v", it.Label, it.Disabled, want)
		}
	}
	if h.menu.Items[h.menu.Selected].Label != "Study materials" {
		t.Errorf("selection should start on the first enabled item")
	}
	if !strings.Contains(h.View(100, 40), "No study material yet") {
		t.Error("expected material banner")
	}
}

func TestHomeScreen_ToolOpensGenerator(t *testing.T) {
	h := New(testDeps(t, "Photosynthesis converts light."))

	if _, ok := pushedScreen(t, activate(t, h, "Summary")).(*document.DocumentScreen); !ok {
		t.Error("summary should open a document screen")
	}
	if _, ok := pushedScreen(t, activate(t, h, "History")).(*historyscreen.HistoryScreen); !ok {
		t.Error("history should open the history browser")
	}
}

func TestHomeScreen_RoadmapReopensLatest(t *testing.T) {
	deps := testDeps(t, "Biology")
	item := history.New(history.Roadmap{Nodes: []roadmap.Node{
		{ID: "n1", Title: "Cells", Status: roadmap.Completed},
	}}, deps.Workspace.Now())
	if err := deps.Workspace.SaveItem(context.Background(), item); err != nil {
		t.Fatalf("save: %v", err)
	}
	h := New(deps)

	s, ok := pushedScreen(t, activate(t, h, "Roadmap")).(*roadmapscreen.RoadmapScreen)
	if !ok {
		t.Fatal("expected roadmap screen")
	}
	if s.Init() != nil {
		t.Error("a saved roadmap should not be regenerated")
	}
}

func TestHomeScreen_EnablesToolsOnceMaterialAdded(t *testing.T) {
	deps := testDeps(t, "")
	h := New(deps)

	if _, ok := pushedScreen(t, activate(t, h, "Study materials")).(*materials.MaterialsScreen); !ok {
		t.Fatal("expected the materials screen")
	}
	if _, err := deps.Workspace.AddMaterial(context.Background(), "Biology", "Cells."); err != nil {
		t.Fatalf("add material: %v", err)
	}

	view := h.View(100, 40)
	if !strings.Contains(view, "Studying: Biology") {
		t.Errorf("expected active material line:\n%s", view)
	}
	for _, it := range h.menu.Items {
		if it.Label == "Summary" && it.Disabled {
			t.Error("tools should enable once a material is active")
		}
	}
	if h.menu.Items[h.menu.Selected].Label != "Study materials" {
		t.Errorf("selection moved to %q", h.menu.Items[h.menu.Selected].Label)
	}
}

func TestHomeScreen_FocusTimer(t *testing.T) {
	h := New(testDeps(t, ""))
	if _, ok := pushedScreen(t, activate(t, h, "Focus timer")).(*focusscreen.FocusScreen); !ok {
		t.Error("expected the focus timer")
	}
}

func TestHomeScreen_Quit(t *testing.T) {
	h := New(testDeps(t, ""))
	if _, ok := activate(t, h, "Quit").(tea.QuitMsg); !ok {
		t.Error("quit should end the program")
	}
}

func TestHomeScreen_StatsShowProgress(t *testing.T) {
	h := New(testDeps(t, "x"))
	view := h.View(100, 40)
	if !strings.Contains(view, "0 DAY STREAK") || !strings.Contains(view, "no quizzes yet") {
		t.Errorf("unexpected stats:\n%s", view)
	}
}
