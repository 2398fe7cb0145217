package trigger

import (
	"reflect"
	"testing"
)

func TestTablesAreParallel(t *testing.T) {
	if len(Keys) != len(KeyNotes) {
		t.Errorf("len(Keys)=%d len(KeyNotes)=%d", len(Keys), len(KeyNotes))
	}
	if len(Horns) != len(HornNotes) {
		t.Errorf("len(Horns)=%d len(HornNotes)=%d", len(Horns), len(HornNotes))
	}
	if len(Beats) != len(Drums)+DrumLayer {
		t.Errorf("len(Beats)=%d, want %d", len(Beats), len(Drums)+DrumLayer)
	}
}

func TestLightingNotes(t *testing.T) {
	tests := []struct {
		key  Key
		want int
	}{
		{KeyQ, 22},
		{KeyY, 27},
		{KeyU, 15},
		{KeyOpenBracket, 19},
		{KeyUp, 10},
		{KeyRight, 13},
	}

	bindings := Bindings()
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			b, ok := bindings[tt.key]
			if !ok {
				t.Fatalf("%s not bound", tt.key)
			}
			if got := b.LightingNote(); got != tt.want {
				t.Errorf("LightingNote() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBindingNotes(t *testing.T) {
	tests := []struct {
		key  Key
		want []int
	}{
		{KeyQ, []int{87}},
		{KeyY, []int{99}},
		{KeyU, []int{53, -1}},
		{KeyI, []int{40, 33}},
		{KeyOpenBracket, []int{34, -1}},
		{KeyDown, []int{56}},
	}

	bindings := Bindings()
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := bindings[tt.key].Notes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Notes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindingsCoverEveryTable(t *testing.T) {
	bindings := Bindings()
	if got, want := len(bindings), len(Keys)+len(Drums)+len(Horns); got != want {
		t.Fatalf("len(Bindings()) = %d, want %d", got, want)
	}

	groups := map[Group][]Key{GroupKeys: Keys, GroupDrums: Drums, GroupHorns: Horns}
	for g, keys := range groups {
		for i, k := range keys {
			want := Binding{Key: k, Group: g, Index: i}
			if got := bindings[k]; got != want {
				t.Errorf("Bindings()[%s] = %+v, want %+v", k, got, want)
			}
		}
	}
}

func TestBindingsFirstGroupWins(t *testing.T) {
	saved := Drums
	defer func() { Drums = saved }()

	// Q is already a piano key; the drum claim must lose
	Drums = []Key{KeyQ, KeyI, KeyO, KeyP, KeyOpenBracket}
	b := Bindings()[KeyQ]
	if b.Group != GroupKeys || b.Index != 0 {
		t.Errorf("Bindings()[Q] = %+v, want keys[0]", b)
	}
}
