package widgets

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

func TestRenderCanvasSize(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	out := RenderCanvas(12, 4, func(x, y int) colorful.Color {
		if x < 6 {
			return red
		}
		return blue
	})

	if got := lipgloss.Height(out); got != 4 {
		t.Errorf("height = %d, want 4", got)
	}
	if got := lipgloss.Width(out); got != 12 {
		t.Errorf("width = %d, want 12", got)
	}
}

func TestRenderCanvasEmpty(t *testing.T) {
	called := false
	out := RenderCanvas(0, 10, func(x, y int) colorful.Color {
		called = true
		return colorful.Color{}
	})
	if out != "" || called {
		t.Errorf("RenderCanvas(0, 10) = %q, called=%v", out, called)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	got := RenderKeyHelp([]KeySection{
		{Title: "piano", Keys: []KeyBinding{{Key: "qwerty", Desc: "keys"}}},
		{Keys: []KeyBinding{{Key: "esc", Desc: "quit"}}},
	})
	if want := "piano qwerty:keys  esc:quit"; got != want {
		t.Errorf("RenderKeyHelp() = %q, want %q", got, want)
	}
}
