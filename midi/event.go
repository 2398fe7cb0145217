package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// ErrOutOfRange is returned for notes, velocities or channels MIDI can't carry
var ErrOutOfRange = errors.New("midi: value out of range")

// Event is a single note message bound for a logical output
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// NewNote validates a note event. The trigger tables carry plain ints (and a
// -1 placeholder), so range checking happens here rather than upstream.
func NewNote(typ, channel uint8, note, velocity int) (Event, error) {
	if channel > 15 {
		return Event{}, fmt.Errorf("%w: channel %d", ErrOutOfRange, channel)
	}
	if note < 0 || note > 127 {
		return Event{}, fmt.Errorf("%w: note %d", ErrOutOfRange, note)
	}
	if velocity < 0 || velocity > 127 {
		return Event{}, fmt.Errorf("%w: velocity %d", ErrOutOfRange, velocity)
	}
	return Event{Type: typ, Channel: channel, Note: uint8(note), Velocity: uint8(velocity)}, nil
}

// Message converts the event to a wire message
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOff {
		return gomidi.NoteOffVelocity(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
}

func (e Event) String() string {
	kind := "on"
	if e.Type == NoteOff {
		kind = "off"
	}
	return fmt.Sprintf("%s ch=%d note=%d vel=%d", kind, e.Channel, e.Note, e.Velocity)
}
