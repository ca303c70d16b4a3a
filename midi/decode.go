package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// InputKind classifies incoming MIDI
type InputKind int

const (
	InputOther InputKind = iota
	InputNoteOn
	InputNoteOff
	InputController
)

// Input is a decoded channel message
type Input struct {
	Kind     InputKind
	Channel  uint8
	Note     uint8 // note number or controller number
	Velocity uint8 // velocity or controller value
}

// Decode classifies raw MIDI bytes. A NoteOn with velocity 0 is a NoteOff.
func Decode(raw []byte) Input {
	var in Input
	if len(raw) < 2 {
		return Input{Kind: InputOther}
	}
	msg := gomidi.Message(raw)

	switch {
	case msg.GetNoteStart(&in.Channel, &in.Note, &in.Velocity):
		in.Kind = InputNoteOn
	case msg.GetNoteEnd(&in.Channel, &in.Note):
		in.Kind = InputNoteOff
	case msg.GetControlChange(&in.Channel, &in.Note, &in.Velocity):
		in.Kind = InputController
	default:
		in = Input{Kind: InputOther}
		if len(raw) > 0 && raw[0] >= 0x80 && raw[0] < 0xF0 {
			in.Channel = raw[0] & 0x0F
		}
	}
	return in
}
