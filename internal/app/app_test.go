package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

// promptScreen owns esc while asking.
type promptScreen struct {
	asking bool
	escs   int
}

func (p *promptScreen) Init() tea.Cmd { return nil }
func (p *promptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		p.escs++
		p.asking = false
	}
	return p, nil
}
func (p *promptScreen) View(int, int) string { return "prompt" }
func (p *promptScreen) Title() string        { return "Prompt" }
func (p *promptScreen) HandlesEscape() bool  { return p.asking }

func testModel(t *testing.T, start screen.Screen) AppModel {
	t.Helper()
	ws, err := workspace.Open(context.Background(), store.NewMemoryKV(), "ada")
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	m := newAppModel(Options{
		Deps:    &shared.Deps{Workspace: ws, Guard: &inflight.Guard{}},
		Offline: true,
		Start:   start,
	})
	m.Init()
	return m
}

func esc() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEscape}
}

func TestEscPopsUnlessScreenHandlesIt(t *testing.T) {
	p := &promptScreen{asking: true}
	m := testModel(t, p)
	if m.router.Depth() != 2 {
		t.Fatalf("expected start screen above home, depth %d", m.router.Depth())
	}

	_, cmd := m.Update(esc())
	if p.escs != 1 {
		t.Fatal("screen should receive esc while it handles it")
	}
	if cmd != nil {
		if _, ok := cmd().(router.PopScreenMsg); ok {
			t.Fatal("esc must not pop while the screen handles it")
		}
	}

	_, cmd = m.Update(esc())
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("esc should pop once the prompt is gone")
	}
	if p.escs != 1 {
		t.Error("screen should not see esc that pops it")
	}
}

func TestEscOnHomeDoesNothing(t *testing.T) {
	m := testModel(t, nil)
	if _, cmd := m.Update(esc()); cmd != nil {
		t.Error("esc on the root screen should be ignored")
	}
}

func TestViewShowsHeaderStatus(t *testing.T) {
	m := testModel(t, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := next.(AppModel).render()

	for _, want := range []string{"StudyBuddy", "ada", "offline", "Home"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := testModel(t, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(next.(AppModel).render(), "Terminal too small") {
		t.Error("expected min size message")
	}
}

func TestRecordSessionCreditsQuizTimeOnce(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ws, err := workspace.Open(context.Background(), store.NewMemoryKV(), "ada",
		workspace.WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	deps := &shared.Deps{Workspace: ws, Guard: &inflight.Guard{}}
	started := ws.Now()

	// A quiz finished ten minutes into the session records its result
	// but no time of its own.
	clock = clock.Add(10 * time.Minute)
	r := quiz.Result{Score: 1, Total: 1, Mode: quiz.Practice}
	if _, _, err := ws.RecordQuiz(context.Background(), r, "cells"); err != nil {
		t.Fatalf("record quiz: %v", err)
	}
	if got := ws.Progress().TotalStudyTime(); got != 0 {
		t.Fatalf("quiz credited %v on its own", got)
	}

	clock = clock.Add(5 * time.Minute)
	recordSession(deps, started)
	if got := ws.Progress().TotalStudyTime(); got != 15*time.Minute {
		t.Errorf("study time = %v, want 15m", got)
	}
}

func TestViewShowsDueReminder(t *testing.T) {
	clock := time.Date(2026, 3, 1, 16, 0, 0, 0, time.Local)
	ws, err := workspace.Open(context.Background(), store.NewMemoryKV(), "ada",
		workspace.WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	s := workspace.DefaultSettings()
	s.Reminder = workspace.Reminder{Enabled: true, Time: "17:00"}
	if err := ws.UpdateSettings(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	m := newAppModel(Options{Deps: &shared.Deps{Workspace: ws, Guard: &inflight.Guard{}}})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(AppModel)

	if strings.Contains(m.render(), "Time to study") {
		t.Fatal("reminder shown before its time")
	}

	clock = clock.Add(90 * time.Minute)
	next, cmd := m.Update(reminderMsg(clock))
	if cmd == nil {
		t.Error("reminder tick should reschedule itself")
	}
	if !strings.Contains(next.(AppModel).render(), "Time to study!") {
		t.Error("expected the reminder banner once 17:00 has passed")
	}
}
