package shared

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{5 * time.Minute, "5:00"},
		{-time.Second, "0:00"},
		{61*time.Second + 400*time.Millisecond, "1:01"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderError(t *testing.T) {
	out := RenderError(80, "boom")
	if !strings.Contains(out, "Error: boom") {
		t.Errorf("expected error text, got %q", out)
	}
}

func TestNilLogger(t *testing.T) {
	var d Deps
	if d.Logger() == nil {
		t.Fatal("expected no-op logger")
	}
}
