package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

type pickedMsg string

func TestMenuSkipsDisabledItems(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "Quiz"},
		{Label: "Locked", Disabled: true},
		{Label: "History"},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(key("down"))
	if m.Selected != 3 {
		t.Errorf("expected down to skip disabled item, got %d", m.Selected)
	}
	m, _ = m.Update(key("up"))
	if m.Selected != 1 {
		t.Errorf("expected up to skip disabled item, got %d", m.Selected)
	}
}

func TestMenuDigitActivates(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Quiz", Action: func() tea.Cmd { return func() tea.Msg { return pickedMsg("quiz") } }},
		{Label: "History", Action: func() tea.Cmd { return func() tea.Msg { return pickedMsg("history") } }},
	})
	m, cmd := m.Update(key("2"))
	if m.Selected != 1 {
		t.Fatalf("expected digit to select item 2, got %d", m.Selected)
	}
	if cmd == nil || cmd() != pickedMsg("history") {
		t.Fatal("expected digit to activate the item")
	}
}

func TestMultiChoiceHiddenOptionsAreSkipped(t *testing.T) {
	mc := NewMultiChoice([]string{"a", "b", "c", "d"})
	mc.Hide([]string{"a", "c"})
	if mc.Selected != 1 {
		t.Fatalf("expected selection to move off hidden option, got %d", mc.Selected)
	}
	mc, _ = mc.Update(key("down"))
	if mc.Selected != 3 {
		t.Errorf("expected down to skip hidden option, got %d", mc.Selected)
	}
	mc, _ = mc.Update(key("c"))
	if _, ok := mc.Value(); ok {
		t.Error("hidden option must not be choosable by letter")
	}
	mc, _ = mc.Update(key("b"))
	if v, ok := mc.Value(); !ok || v != "b" {
		t.Errorf("Value() = %q, %v", v, ok)
	}
}

func TestMultiChoiceFrozenAfterReveal(t *testing.T) {
	mc := NewMultiChoice([]string{"x", "y"})
	mc, _ = mc.Update(key("enter"))
	mc.Reveal("y")
	mc, _ = mc.Update(key("b"))
	if v, _ := mc.Value(); v != "x" {
		t.Errorf("expected choice to stay x after reveal, got %q", v)
	}
	if !strings.Contains(mc.View(), "B)  y") {
		t.Error("expected view to list option B")
	}
}

func TestButtonRowDigitPress(t *testing.T) {
	b := NewButtonRow("Low", "Medium", "High")
	if b.Pressed != -1 {
		t.Fatal("nothing should be pressed initially")
	}
	b, _ = b.Update(key("right"))
	b, _ = b.Update(key("enter"))
	if b.Pressed != 1 {
		t.Errorf("expected Medium pressed, got %d", b.Pressed)
	}
	b, _ = b.Update(key("3"))
	if b.Pressed != 2 {
		t.Errorf("expected High pressed, got %d", b.Pressed)
	}
}

func TestProgressBarClamps(t *testing.T) {
	out := NewProgressBar("", 1.7, true, 20).View()
	if !strings.Contains(out, "100%") {
		t.Errorf("expected clamp to 100%%, got %q", out)
	}
}

func TestTextInputTrimsAndFreezes(t *testing.T) {
	ti := NewTextInput("answer", 0)
	ti.Model.SetValue("  paris ")
	if ti.Value() != "paris" {
		t.Errorf("Value() = %q", ti.Value())
	}
	ti.Grade(true)
	ti, _ = ti.Update(key("x"))
	if ti.Value() != "paris" {
		t.Errorf("input changed after submit: %q", ti.Value())
	}
	if !strings.Contains(ti.View(), "✓") {
		t.Error("expected graded mark in view")
	}
}
