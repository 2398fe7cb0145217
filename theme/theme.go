package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"kitchen-party/trigger"
)

// Opacity of every region color
const Opacity = 0.7

// Group opacity, applied on top of Opacity
const (
	KeysGroupOpacity  = 0.8
	HornsGroupOpacity = 0.6
)

var (
	Background = colorful.Color{R: 0, G: 0, B: 0}
	Strobe     = colorful.Color{R: 169.0 / 255, G: 169.0 / 255, B: 169.0 / 255} // dark gray
)

// Theme holds the region colors
type Theme struct {
	Keys  []colorful.Color // blue ramp, one per piano key
	Horns []colorful.Color // red ramp, one per horn
}

// New returns the installation's colors. Keys are blue and horns red, each
// with green rising 0.12 per region.
func New() *Theme {
	t := &Theme{
		Keys:  make([]colorful.Color, len(trigger.Keys)),
		Horns: make([]colorful.Color, len(trigger.Horns)),
	}
	for i := range t.Keys {
		t.Keys[i] = colorful.Color{R: 0, G: 0.12 * float64(i+1), B: 1}
	}
	for i := range t.Horns {
		t.Horns[i] = colorful.Color{R: 1, G: 0.12 * float64(i+1), B: 0}
	}
	return t
}

// FromPalette takes key colors from the first palette entries and horn
// colors from the ones after
func FromPalette(p *Palette) *Theme {
	t := New()
	for i := range t.Keys {
		t.Keys[i] = p.Index(i)
	}
	for i := range t.Horns {
		t.Horns[i] = p.Index(len(t.Keys) + i)
	}
	return t
}

// Alpha is the effective opacity of a group's regions
func Alpha(g trigger.Group) float64 {
	switch g {
	case trigger.GroupKeys:
		return Opacity * KeysGroupOpacity
	case trigger.GroupHorns:
		return Opacity * HornsGroupOpacity
	}
	return 0
}

// Region returns the straight color of a region
func (t *Theme) Region(g trigger.Group, i int) colorful.Color {
	switch g {
	case trigger.GroupKeys:
		if i >= 0 && i < len(t.Keys) {
			return t.Keys[i]
		}
	case trigger.GroupHorns:
		if i >= 0 && i < len(t.Horns) {
			return t.Horns[i]
		}
	}
	return Background
}

// RegionRGBA returns the region color with its alpha, premultiplied, for
// compositing on a GPU surface
func (t *Theme) RegionRGBA(g trigger.Group, i int) color.RGBA {
	return premultiply(t.Region(g, i), Alpha(g))
}

// Over blends a region color onto what's underneath at the group alpha.
// Terminals have no alpha, so the TUI composites with this.
func (t *Theme) Over(g trigger.Group, i int, under colorful.Color) colorful.Color {
	return under.BlendRgb(t.Region(g, i), Alpha(g)).Clamped()
}

// FillColor returns the full-screen fill
func FillColor(f trigger.Fill) colorful.Color {
	if f == trigger.FillStrobe {
		return Strobe
	}
	return Background
}

// FillRGBA returns the fill as an opaque color
func FillRGBA(f trigger.Fill) color.RGBA {
	return premultiply(FillColor(f), 1)
}

// Lipgloss converts a color for terminal rendering
func Lipgloss(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

func premultiply(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{
		R: uint8(float64(r)*alpha + 0.5),
		G: uint8(float64(g)*alpha + 0.5),
		B: uint8(float64(b)*alpha + 0.5),
		A: uint8(255*alpha + 0.5),
	}
}
