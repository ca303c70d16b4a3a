package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// MIDI status bytes (channel in the low nibble)
const (
	NoteOff       uint8 = 0x80
	NoteOn        uint8 = 0x90
	ControlChange uint8 = 0xB0
)

// Controller numbers handled by the engine
const (
	CtlSustain      uint8 = 64
	CtlAllSoundsOff uint8 = 120
	CtlAllNotesOff  uint8 = 123
)

// Event is a MIDI message scheduled at a frame offset inside a block
type Event struct {
	Frame    int
	Channel  uint8 // 0..15
	Status   uint8 // high nibble, e.g. NoteOn
	Note     uint8
	Velocity uint8
	Size     uint8 // number of valid bytes (1..3)
}

// Bytes returns the raw message bytes
func (e Event) Bytes() []byte {
	b := []byte{e.Status&0xF0 | e.Channel&0x0F, e.Note & 0x7F, e.Velocity & 0x7F}
	if e.Size > 0 && int(e.Size) < len(b) {
		b = b[:e.Size]
	}
	return b
}

// Message returns the event as a gomidi message
func (e Event) Message() gomidi.Message {
	return gomidi.Message(e.Bytes())
}

// IsNoteOn reports whether the event starts a note
func (e Event) IsNoteOn() bool {
	return e.Status == NoteOn && e.Velocity > 0
}

// IsNoteOff reports whether the event ends a note
func (e Event) IsNoteOff() bool {
	return e.Status == NoteOff || (e.Status == NoteOn && e.Velocity == 0)
}
