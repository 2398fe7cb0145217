package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"kitchen-party/theme"
)

// RenderCanvas draws a w x h block of cells whose background is colorAt(x, y).
// Runs of the same color on a row share one style.
func RenderCanvas(w, h int, colorAt func(x, y int) colorful.Color) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var line strings.Builder
		runStart := 0
		runColor := colorAt(0, y)
		for x := 1; x <= w; x++ {
			var c colorful.Color
			if x < w {
				c = colorAt(x, y)
			}
			if x == w || c.Hex() != runColor.Hex() {
				style := lipgloss.NewStyle().Background(theme.Lipgloss(runColor))
				line.WriteString(style.Render(strings.Repeat(" ", x-runStart)))
				runStart, runColor = x, c
			}
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings on one line per section
func RenderKeyHelp(sections []KeySection) string {
	var parts []string
	for _, sec := range sections {
		var keys []string
		for _, k := range sec.Keys {
			keys = append(keys, fmt.Sprintf("%s:%s", k.Key, k.Desc))
		}
		part := strings.Join(keys, " ")
		if sec.Title != "" {
			part = sec.Title + " " + part
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}
