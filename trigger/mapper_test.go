package trigger

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

// call is one recorded side effect, in emission order across all fakes
type call struct {
	target string
	op     string
	a, b   int
}

type recorder struct {
	calls []call
}

func (r *recorder) add(c call) { r.calls = append(r.calls, c) }

type fakeSink struct {
	name string
	rec  *recorder
}

func (s *fakeSink) NoteOn(note, velocity int)  { s.rec.add(call{s.name, "on", note, velocity}) }
func (s *fakeSink) NoteOff(note, velocity int) { s.rec.add(call{s.name, "off", note, velocity}) }

type fakeSurface struct {
	rec   *recorder
	fill  Fill
	shown map[string]bool
}

func (s *fakeSurface) SetRegionVisible(g Group, index int, visible bool) {
	v := 0
	if visible {
		v = 1
	}
	s.shown[fmt.Sprintf("%s/%d", g, index)] = visible
	s.rec.add(call{"surface", "region:" + g.String(), index, v})
}

func (s *fakeSurface) SetFill(f Fill) {
	s.fill = f
	s.rec.add(call{"surface", "fill", int(f), 0})
}

type harness struct {
	m       *Mapper
	rec     *recorder
	surface *fakeSurface
	pauses  []time.Duration
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:     rec,
		surface: &fakeSurface{rec: rec, shown: make(map[string]bool)},
	}
	out := Outputs{
		Lighting: &fakeSink{"lighting", rec},
		QLab:     &fakeSink{"qlab", rec},
		Drums:    &fakeSink{"drums", rec},
		Keys:     &fakeSink{"keys", rec},
		Horn:     &fakeSink{"horn", rec},
	}
	h.m = NewMapper(out, h.surface, opts)
	h.m.pause = func(d time.Duration) {
		h.pauses = append(h.pauses, d)
		rec.add(call{"pause", "", int(d / time.Millisecond), 0})
	}
	return h
}

func (h *harness) take() []call {
	c := h.rec.calls
	h.rec.calls = nil
	return c
}

func assertCalls(t *testing.T, got, want []call) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("calls:\n got  %v\n want %v", got, want)
	}
}

func idleReady() []call {
	return []call{
		{"lighting", "on", LightingIdle, Velocity},
		{"pause", "", 100, 0},
		{"lighting", "on", LightingReady, Velocity},
	}
}

func TestStartAndShutdown(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.Start()
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 98, 100},
		{"qlab", "on", 2, 1},
	})

	h.m.Shutdown()
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 98, 100},
		{"qlab", "on", 2, 2},
	})
}

func TestPressReleaseFirstPianoKey(t *testing.T) {
	h := newHarness(t, Options{})

	if !h.m.KeyDown(KeyQ) {
		t.Fatal("KeyDown(Q) = false, want true")
	}
	if got := h.m.Active(); !reflect.DeepEqual(got, []Key{KeyQ}) {
		t.Errorf("Active() = %v, want [Q]", got)
	}
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 22, 100},
		{"surface", "region:keys", 0, 1},
		{"keys", "on", 87, 100},
	})

	if !h.m.KeyUp(KeyQ) {
		t.Fatal("KeyUp(Q) = false, want true")
	}
	if got := h.m.Active(); len(got) != 0 {
		t.Errorf("Active() = %v, want empty", got)
	}
	want := []call{
		{"lighting", "off", 22, 100},
		{"surface", "region:keys", 0, 0},
		{"keys", "off", 87, 100},
	}
	assertCalls(t, h.take(), append(want, idleReady()...))
}

func TestDrumIsCompoundHitWithStrobe(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.KeyDown(KeyU)
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 15, 100},
		{"surface", "fill", int(FillStrobe), 0},
		{"drums", "on", Beats[0], 100},
		{"drums", "on", Beats[5], 100},
	})
	if h.surface.fill != FillStrobe {
		t.Errorf("fill = %v, want strobe", h.surface.fill)
	}

	h.m.KeyUp(KeyU)
	want := []call{
		{"lighting", "off", 15, 100},
		{"surface", "fill", int(FillBackground), 0},
		{"drums", "off", Beats[0], 100},
		{"drums", "off", Beats[5], 100},
	}
	assertCalls(t, h.take(), append(want, idleReady()...))
}

func TestDrumSecondLayer(t *testing.T) {
	h := newHarness(t, Options{})

	// P is drum 3: beats 48 and 90
	h.m.KeyDown(KeyP)
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 18, 100},
		{"surface", "fill", int(FillStrobe), 0},
		{"drums", "on", 48, 100},
		{"drums", "on", 90, 100},
	})
}

func TestHornReleaseKeepsLightingNoteOn(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.KeyDown(KeyLeft)
	assertCalls(t, h.take(), []call{
		{"horn", "on", 61, 100},
		{"lighting", "on", 12, 100},
		{"surface", "region:horns", 2, 1},
	})

	h.m.KeyUp(KeyLeft)
	want := []call{
		{"horn", "off", 61, 100},
		{"lighting", "on", 12, 100},
		{"surface", "region:horns", 2, 0},
	}
	assertCalls(t, h.take(), append(want, idleReady()...))
}

func TestHornReleaseNoteOffOption(t *testing.T) {
	h := newHarness(t, Options{HornReleaseNoteOff: true})

	h.m.KeyDown(KeyUp)
	h.take()

	h.m.KeyUp(KeyUp)
	want := []call{
		{"horn", "off", 51, 100},
		{"lighting", "off", 10, 100},
		{"surface", "region:horns", 0, 0},
	}
	assertCalls(t, h.take(), append(want, idleReady()...))
}

func TestUnboundKeysAreNoOps(t *testing.T) {
	h := newHarness(t, Options{})

	for _, k := range []Key{"A", "Z", "Space", "]", "", "q"} {
		t.Run(string(k), func(t *testing.T) {
			if h.m.KeyDown(k) {
				t.Errorf("KeyDown(%q) = true", k)
			}
			if h.m.KeyUp(k) {
				t.Errorf("KeyUp(%q) = true", k)
			}
			assertCalls(t, h.take(), nil)
			if len(h.m.Active()) != 0 {
				t.Errorf("Active() = %v, want empty", h.m.Active())
			}
		})
	}
}

func TestRepeatWhileHeldIsNoOp(t *testing.T) {
	tests := []struct {
		key        Key
		downEvents int
		upEvents   int
	}{
		{KeyW, 3, 3},
		{KeyI, 4, 4},
		{KeyRight, 3, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			h := newHarness(t, Options{})

			h.m.KeyDown(tt.key)
			if got := len(h.take()); got != tt.downEvents {
				t.Fatalf("first press emitted %d effects, want %d", got, tt.downEvents)
			}

			for i := 0; i < 10; i++ {
				if h.m.KeyDown(tt.key) {
					t.Fatalf("repeat %d fired", i)
				}
			}
			assertCalls(t, h.take(), nil)

			h.m.KeyUp(tt.key)
			if got := len(h.take()); got != tt.upEvents+len(idleReady()) {
				t.Errorf("release emitted %d effects, want %d", got, tt.upEvents+len(idleReady()))
			}

			// second release of the same key does nothing
			if h.m.KeyUp(tt.key) {
				t.Error("second KeyUp returned true")
			}
			assertCalls(t, h.take(), nil)
		})
	}
}

func TestNoIdlePulseWhileOtherKeysHeld(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.KeyDown(KeyQ)
	h.m.KeyDown(KeyW)
	h.take()

	h.m.KeyUp(KeyQ)
	if got := h.m.Active(); !reflect.DeepEqual(got, []Key{KeyW}) {
		t.Errorf("Active() = %v, want [W]", got)
	}
	assertCalls(t, h.take(), []call{
		{"lighting", "off", 22, 100},
		{"surface", "region:keys", 0, 0},
		{"keys", "off", 87, 100},
	})
	if len(h.pauses) != 0 {
		t.Errorf("paused %v, want no pause", h.pauses)
	}

	h.m.KeyUp(KeyW)
	if len(h.pauses) != 1 {
		t.Errorf("paused %d times, want 1", len(h.pauses))
	}
}

func TestMixedGroupsHeldTogether(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.KeyDown(KeyE)
	h.m.KeyDown(KeyO)
	h.m.KeyDown(KeyDown)

	if got := h.m.Active(); !reflect.DeepEqual(got, []Key{KeyDown, KeyE, KeyO}) {
		t.Errorf("Active() = %v", got)
	}
	if !h.surface.shown["keys/2"] || !h.surface.shown["horns/1"] {
		t.Errorf("regions shown = %v, want keys/2 and horns/1", h.surface.shown)
	}
	if h.surface.fill != FillStrobe {
		t.Error("fill not strobe while drum held")
	}

	h.m.KeyUp(KeyO)
	h.m.KeyUp(KeyE)
	if len(h.pauses) != 0 {
		t.Fatal("idle pulse before last release")
	}
	h.m.KeyUp(KeyDown)
	if len(h.pauses) != 1 {
		t.Errorf("paused %d times, want 1", len(h.pauses))
	}
	if h.surface.fill != FillBackground {
		t.Error("fill not restored")
	}
	for region, shown := range h.surface.shown {
		if shown {
			t.Errorf("region %s still shown", region)
		}
	}
}

func TestIdleDelayOption(t *testing.T) {
	h := newHarness(t, Options{IdleDelay: 250 * time.Millisecond})

	h.m.KeyDown(KeyT)
	h.m.KeyUp(KeyT)
	if !reflect.DeepEqual(h.pauses, []time.Duration{250 * time.Millisecond}) {
		t.Errorf("pauses = %v, want [250ms]", h.pauses)
	}
}

func TestEveryBindingFiresItsLightingCue(t *testing.T) {
	h := newHarness(t, Options{})

	for k, b := range Bindings() {
		t.Run(string(k), func(t *testing.T) {
			h.m.KeyDown(k)
			calls := h.take()
			found := false
			for _, c := range calls {
				if c.target == "lighting" && c.op == "on" && c.a == b.LightingNote() {
					found = true
				}
			}
			if !found {
				t.Errorf("no lighting cue %d in %v", b.LightingNote(), calls)
			}
			h.m.KeyUp(k)
			h.take()
		})
	}
}

func TestReleaseAllSkipsIdlePulse(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.KeyDown(KeyW)
	h.m.KeyDown(KeyU)
	h.take()

	h.m.ReleaseAll()
	if len(h.m.Active()) != 0 {
		t.Errorf("Active() = %v, want empty", h.m.Active())
	}
	if len(h.pauses) != 0 {
		t.Errorf("paused %v, want no pause", h.pauses)
	}
	// sorted: U before W
	assertCalls(t, h.take(), []call{
		{"lighting", "off", 15, 100},
		{"surface", "fill", int(FillBackground), 0},
		{"drums", "off", Beats[0], 100},
		{"drums", "off", Beats[5], 100},
		{"lighting", "off", 23, 100},
		{"surface", "region:keys", 1, 0},
		{"keys", "off", 90, 100},
	})

	h.m.Shutdown()
	assertCalls(t, h.take(), []call{
		{"lighting", "on", 98, 100},
		{"qlab", "on", 2, 2},
	})
}
