package window

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"kitchen-party/debug"
	"kitchen-party/display"
	"kitchen-party/theme"
	"kitchen-party/trigger"
)

type regionID struct {
	group trigger.Group
	index int
}

// Game is the full-screen projector front-end
type Game struct {
	mapper *trigger.Mapper
	screen *display.Screen
	theme  *theme.Theme

	// blurred region images for the current canvas size, each padded by bleed
	width, height int
	layout        []display.Region
	images        map[regionID]*ebiten.Image
	bleed         int

	keys []ebiten.Key
}

func NewGame(mapper *trigger.Mapper, screen *display.Screen, th *theme.Theme) *Game {
	return &Game{
		mapper: mapper,
		screen: screen,
		theme:  th,
		images: make(map[regionID]*ebiten.Image),
	}
}

// Run opens the window full-screen and blocks until it is closed
func Run(g *Game) error {
	ebiten.SetWindowTitle("kitchen-party")
	ebiten.SetFullscreen(true)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
	ebiten.SetWindowClosingHandled(true)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.mapper.Shutdown()
		return ebiten.Termination
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if k == ebiten.KeyEscape {
			// same as a projector app leaving full-screen; closing quits
			ebiten.SetFullscreen(!ebiten.IsFullscreen())
			continue
		}
		if tk, ok := KeyFromEbiten(k); ok {
			g.mapper.KeyDown(tk)
		}
	}

	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if tk, ok := KeyFromEbiten(k); ok {
			g.mapper.KeyUp(tk)
		}
	}
	return nil
}

func (g *Game) Draw(dst *ebiten.Image) {
	dst.Fill(theme.FillRGBA(g.screen.Fill()))

	for _, r := range g.layout {
		if !g.screen.Visible(r.Group, r.Index) {
			continue
		}
		img := g.images[regionID{r.Group, r.Index}]
		if img == nil {
			continue
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(r.Rect.Min.X-g.bleed), float64(r.Rect.Min.Y-g.bleed))
		dst.DrawImage(img, op)
	}
}

func (g *Game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW != g.width || outsideH != g.height {
		g.rebuild(outsideW, outsideH)
	}
	return outsideW, outsideH
}

// rebuild renders the region images for a new canvas size
func (g *Game) rebuild(w, h int) {
	defer debug.Since("ui", "region images", time.Now())

	for id, img := range g.images {
		img.Deallocate()
		delete(g.images, id)
	}
	g.width, g.height = w, h
	g.layout = display.Layout(w, h)
	g.bleed = display.Bleed(display.BlurRadius)
	for _, r := range g.layout {
		if r.Rect.Empty() {
			continue
		}
		soft := display.SoftRect(r.Rect.Dx(), r.Rect.Dy(), g.theme.RegionRGBA(r.Group, r.Index), display.BlurRadius)
		g.images[regionID{r.Group, r.Index}] = ebiten.NewImageFromImage(soft)
	}
	debug.Log("ui", "layout %dx%d, %d regions", w, h, len(g.images))
}

var ebitenKeys = map[ebiten.Key]trigger.Key{
	ebiten.KeyQ:           trigger.KeyQ,
	ebiten.KeyW:           trigger.KeyW,
	ebiten.KeyE:           trigger.KeyE,
	ebiten.KeyR:           trigger.KeyR,
	ebiten.KeyT:           trigger.KeyT,
	ebiten.KeyY:           trigger.KeyY,
	ebiten.KeyU:           trigger.KeyU,
	ebiten.KeyI:           trigger.KeyI,
	ebiten.KeyO:           trigger.KeyO,
	ebiten.KeyP:           trigger.KeyP,
	ebiten.KeyBracketLeft: trigger.KeyOpenBracket,
	ebiten.KeyArrowUp:     trigger.KeyUp,
	ebiten.KeyArrowDown:   trigger.KeyDown,
	ebiten.KeyArrowLeft:   trigger.KeyLeft,
	ebiten.KeyArrowRight:  trigger.KeyRight,
}

// KeyFromEbiten maps a physical key to an installation key
func KeyFromEbiten(k ebiten.Key) (trigger.Key, bool) {
	tk, ok := ebitenKeys[k]
	return tk, ok
}
