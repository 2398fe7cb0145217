package trigger

// Key identifies a physical input. The touch sensors are wired as a keyboard,
// so each sensor shows up as one of these codes.
type Key string

const (
	KeyQ           Key = "Q"
	KeyW           Key = "W"
	KeyE           Key = "E"
	KeyR           Key = "R"
	KeyT           Key = "T"
	KeyY           Key = "Y"
	KeyU           Key = "U"
	KeyI           Key = "I"
	KeyO           Key = "O"
	KeyP           Key = "P"
	KeyOpenBracket Key = "["
	KeyUp          Key = "Up"
	KeyDown        Key = "Down"
	KeyLeft        Key = "Left"
	KeyRight       Key = "Right"
)

// Group is an instrument group
type Group int

const (
	GroupKeys  Group = iota // spoon piano
	GroupDrums              // pot drum kit
	GroupHorns              // spatula horn
)

func (g Group) String() string {
	switch g {
	case GroupKeys:
		return "keys"
	case GroupDrums:
		return "drums"
	case GroupHorns:
		return "horns"
	}
	return "unknown"
}

// Velocity used for every note the installation sends
const Velocity = 100

// Lighting cue numbers. These match the QLC+ cue sheet and are not derivable.
const (
	LightingReady = 98
	LightingIdle  = 101

	keysLightingBase  = 22
	drumsLightingBase = 21 - 6
	hornsLightingBase = 21 - 11
)

// QLab session control: note 2, velocity selects start/stop
const (
	QLabSessionNote = 2
	QLabStart       = 1
	QLabStop        = 2
)

// Piano
var (
	Keys     = []Key{KeyQ, KeyW, KeyE, KeyR, KeyT, KeyY}
	KeyNotes = []int{87, 90, 92, 94, 97, 99}
)

// Horn
var (
	Horns     = []Key{KeyUp, KeyDown, KeyLeft, KeyRight}
	HornNotes = []int{51, 56, 61, 63}
)

// Drums. Entry i plays Beats[i] and Beats[i+DrumLayer] together; -1 marks an
// empty layer slot.
var (
	Drums = []Key{KeyU, KeyI, KeyO, KeyP, KeyOpenBracket}
	Beats = []int{53, 40, 50, 48, 34, -1, 33, 94, 90, -1}
)

// DrumLayer is the offset of the second note of a compound drum hit
const DrumLayer = 5

// Binding is the resolved trigger for one key
type Binding struct {
	Key   Key
	Group Group
	Index int
}

// LightingNote returns the lighting cue for this binding
func (b Binding) LightingNote() int {
	return LightingBase(b.Group) + b.Index
}

// Notes returns the instrument notes fired by this binding
func (b Binding) Notes() []int {
	switch b.Group {
	case GroupKeys:
		return []int{KeyNotes[b.Index]}
	case GroupDrums:
		return []int{Beats[b.Index], Beats[b.Index+DrumLayer]}
	case GroupHorns:
		return []int{HornNotes[b.Index]}
	}
	return nil
}

// LightingBase returns the lighting cue offset for a group
func LightingBase(g Group) int {
	switch g {
	case GroupKeys:
		return keysLightingBase
	case GroupDrums:
		return drumsLightingBase
	case GroupHorns:
		return hornsLightingBase
	}
	return 0
}

// Bindings builds the key lookup. Groups are walked keys, drums, horns and the
// first group to claim a key keeps it.
func Bindings() map[Key]Binding {
	table := make(map[Key]Binding, len(Keys)+len(Drums)+len(Horns))
	add := func(g Group, keys []Key) {
		for i, k := range keys {
			if _, taken := table[k]; taken {
				continue
			}
			table[k] = Binding{Key: k, Group: g, Index: i}
		}
	}
	add(GroupKeys, Keys)
	add(GroupDrums, Drums)
	add(GroupHorns, Horns)
	return table
}
