package display

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// BlurRadius matches a 5x5 box blur
const BlurRadius = 2.0

// Bleed is how far a region blurred by radius spreads past its rectangle
func Bleed(radius float64) int {
	if radius <= 0 {
		return 0
	}
	return int(math.Ceil(radius))
}

// SoftRect renders a w x h block of c box-blurred by radius. The block sits
// on a canvas padded by Bleed(radius) on every side so the blur spreads
// outward; draw the result at the region origin minus the bleed. c is
// premultiplied and the box filter keeps it that way.
func SoftRect(w, h int, c color.RGBA, radius float64) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	pad := Bleed(radius)
	canvas := image.NewRGBA(image.Rect(0, 0, w+2*pad, h+2*pad))
	draw.Draw(canvas, image.Rect(pad, pad, pad+w, pad+h), image.NewUniform(c), image.Point{}, draw.Src)
	if pad == 0 {
		return canvas
	}
	return blur.Box(canvas, radius)
}
