package display

import (
	"image"

	"kitchen-party/trigger"
)

// Screen is the state of the projected canvas: the background fill and which
// region overlays are showing. It implements trigger.Surface; front-ends draw
// from it every frame.
type Screen struct {
	fill  trigger.Fill
	keys  []bool
	horns []bool
}

// NewScreen returns a blank screen with every region hidden
func NewScreen() *Screen {
	return &Screen{
		keys:  make([]bool, len(trigger.Keys)),
		horns: make([]bool, len(trigger.Horns)),
	}
}

func (s *Screen) regions(g trigger.Group) []bool {
	switch g {
	case trigger.GroupKeys:
		return s.keys
	case trigger.GroupHorns:
		return s.horns
	}
	return nil
}

// SetRegionVisible shows or hides one overlay. Out of range indexes are ignored.
func (s *Screen) SetRegionVisible(g trigger.Group, index int, visible bool) {
	r := s.regions(g)
	if index < 0 || index >= len(r) {
		return
	}
	r[index] = visible
}

// SetFill sets the background
func (s *Screen) SetFill(f trigger.Fill) {
	s.fill = f
}

// Fill returns the background
func (s *Screen) Fill() trigger.Fill {
	return s.fill
}

// Visible reports whether an overlay is showing
func (s *Screen) Visible(g trigger.Group, index int) bool {
	r := s.regions(g)
	if index < 0 || index >= len(r) {
		return false
	}
	return r[index]
}

// Region is one overlay's placement on a canvas
type Region struct {
	Group trigger.Group
	Index int
	Rect  image.Rectangle
}

// Layout places every region on a w x h canvas in draw order: piano columns
// across the full height first, then horn bands across the full width on top.
// Units are whatever the caller uses (pixels or terminal cells); any
// remainder from the split goes to the last column or band.
func Layout(w, h int) []Region {
	nk, nh := len(trigger.Keys), len(trigger.Horns)
	out := make([]Region, 0, nk+nh)

	colW := w / nk
	for i := 0; i < nk; i++ {
		x0, x1 := i*colW, (i+1)*colW
		if i == nk-1 {
			x1 = w
		}
		out = append(out, Region{Group: trigger.GroupKeys, Index: i, Rect: image.Rect(x0, 0, x1, h)})
	}

	bandH := h / nh
	for i := 0; i < nh; i++ {
		y0, y1 := i*bandH, (i+1)*bandH
		if i == nh-1 {
			y1 = h
		}
		out = append(out, Region{Group: trigger.GroupHorns, Index: i, Rect: image.Rect(0, y0, w, y1)})
	}
	return out
}

// VisibleRegions returns the laid-out regions that are currently showing
func (s *Screen) VisibleRegions(w, h int) []Region {
	var out []Region
	for _, r := range Layout(w, h) {
		if s.Visible(r.Group, r.Index) {
			out = append(out, r)
		}
	}
	return out
}
