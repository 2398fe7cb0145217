package trigger

import (
	"sort"
	"time"

	"kitchen-party/debug"
)

// Sink is one logical MIDI output. Sends are fire-and-forget.
type Sink interface {
	NoteOn(note, velocity int)
	NoteOff(note, velocity int)
}

// Fill is the full-screen background state
type Fill int

const (
	FillBackground Fill = iota
	FillStrobe
)

// Surface is the visual feedback target
type Surface interface {
	SetRegionVisible(g Group, index int, visible bool)
	SetFill(f Fill)
}

// Outputs are the MIDI channels the installation talks to
type Outputs struct {
	Lighting Sink
	QLab     Sink
	Drums    Sink
	Keys     Sink
	Horn     Sink
}

// DefaultIdleDelay separates the idle and ready lighting pulses
const DefaultIdleDelay = 100 * time.Millisecond

// Options tune the mapper
type Options struct {
	// IdleDelay is how long the idle cue holds before ready is restored.
	IdleDelay time.Duration

	// HornReleaseNoteOff sends a lighting note-off when a horn is released.
	// The installation has always sent a note-on there and the cue sheet
	// is built around it, so this stays off unless the sheet changes.
	HornReleaseNoteOff bool
}

// Mapper turns key presses into MIDI triggers and screen feedback.
// It is driven from a single event loop and is not safe for concurrent use.
type Mapper struct {
	out      Outputs
	surface  Surface
	opts     Options
	bindings map[Key]Binding
	active   map[Key]struct{}

	// pause blocks the calling goroutine between idle and ready
	pause func(time.Duration)
}

// NewMapper creates a mapper with the installation's fixed tables
func NewMapper(out Outputs, surface Surface, opts Options) *Mapper {
	if opts.IdleDelay <= 0 {
		opts.IdleDelay = DefaultIdleDelay
	}
	return &Mapper{
		out:      out,
		surface:  surface,
		opts:     opts,
		bindings: Bindings(),
		active:   make(map[Key]struct{}),
		pause:    time.Sleep,
	}
}

// Start puts lighting in the ready state and opens the QLab session.
// Call before feeding any input.
func (m *Mapper) Start() {
	debug.Log("trigger", "start: lighting ready, qlab session start")
	m.out.Lighting.NoteOn(LightingReady, Velocity)
	m.out.QLab.NoteOn(QLabSessionNote, QLabStart)
}

// Shutdown resets lighting and closes the QLab session
func (m *Mapper) Shutdown() {
	debug.Log("trigger", "shutdown: lighting ready, qlab session stop (active=%d)", len(m.active))
	m.out.Lighting.NoteOn(LightingReady, Velocity)
	m.out.QLab.NoteOn(QLabSessionNote, QLabStop)
}

// IsActive reports whether a key is currently held
func (m *Mapper) IsActive(k Key) bool {
	_, ok := m.active[k]
	return ok
}

// Active returns the held keys in sorted order
func (m *Mapper) Active() []Key {
	keys := make([]Key, 0, len(m.active))
	for k := range m.active {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// KeyDown fires the trigger bound to k. Repeats of a held key and unbound
// keys do nothing. Returns true if a trigger fired.
func (m *Mapper) KeyDown(k Key) bool {
	if m.IsActive(k) {
		return false
	}
	b, ok := m.bindings[k]
	if !ok {
		return false
	}

	m.active[k] = struct{}{}
	debug.Log("trigger", "down %s -> %s[%d] light=%d", k, b.Group, b.Index, b.LightingNote())

	switch b.Group {
	case GroupKeys:
		m.out.Lighting.NoteOn(b.LightingNote(), Velocity)
		m.surface.SetRegionVisible(GroupKeys, b.Index, true)
		m.out.Keys.NoteOn(KeyNotes[b.Index], Velocity)

	case GroupDrums:
		m.out.Lighting.NoteOn(b.LightingNote(), Velocity)
		m.surface.SetFill(FillStrobe)
		for _, n := range b.Notes() {
			m.out.Drums.NoteOn(n, Velocity)
		}

	case GroupHorns:
		m.out.Horn.NoteOn(HornNotes[b.Index], Velocity)
		m.out.Lighting.NoteOn(b.LightingNote(), Velocity)
		m.surface.SetRegionVisible(GroupHorns, b.Index, true)
	}
	return true
}

// KeyUp reverses the trigger for a held key. When the last held key is
// released the lighting pulses idle, waits, then returns to ready; that wait
// blocks the caller. Returns true if k was held.
func (m *Mapper) KeyUp(k Key) bool {
	if !m.release(k) {
		return false
	}
	if len(m.active) == 0 {
		m.rest()
	}
	return true
}

// ReleaseAll reverses every held key in sorted order without the idle
// pulse. Used on quit, where Shutdown sets the final lighting state.
func (m *Mapper) ReleaseAll() {
	for _, k := range m.Active() {
		m.release(k)
	}
}

// release removes k from the active set and sends its inverse effects
func (m *Mapper) release(k Key) bool {
	if !m.IsActive(k) {
		return false
	}
	b, ok := m.bindings[k]
	if !ok {
		// active keys always come from the bindings
		delete(m.active, k)
		return false
	}

	delete(m.active, k)
	debug.Log("trigger", "up %s -> %s[%d] remaining=%d", k, b.Group, b.Index, len(m.active))

	switch b.Group {
	case GroupKeys:
		m.out.Lighting.NoteOff(b.LightingNote(), Velocity)
		m.surface.SetRegionVisible(GroupKeys, b.Index, false)
		m.out.Keys.NoteOff(KeyNotes[b.Index], Velocity)

	case GroupDrums:
		m.out.Lighting.NoteOff(b.LightingNote(), Velocity)
		m.surface.SetFill(FillBackground)
		for _, n := range b.Notes() {
			m.out.Drums.NoteOff(n, Velocity)
		}

	case GroupHorns:
		m.out.Horn.NoteOff(HornNotes[b.Index], Velocity)
		if m.opts.HornReleaseNoteOff {
			m.out.Lighting.NoteOff(b.LightingNote(), Velocity)
		} else {
			m.out.Lighting.NoteOn(b.LightingNote(), Velocity)
		}
		m.surface.SetRegionVisible(GroupHorns, b.Index, false)
	}
	return true
}

// rest pulses the idle cue and restores ready
func (m *Mapper) rest() {
	debug.Log("trigger", "all released: idle pulse, ready in %s", m.opts.IdleDelay)
	m.out.Lighting.NoteOn(LightingIdle, Velocity)
	m.pause(m.opts.IdleDelay)
	m.out.Lighting.NoteOn(LightingReady, Velocity)
}
