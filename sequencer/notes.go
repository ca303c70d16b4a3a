package sequencer

import (
	"math"

	"go-bstep/midi"
	"go-bstep/scale"
)

// startNote resolves the pad of a row and sends its NOTE_ON. runStep is
// the key step at which the run began. A failed gate or an unplayable
// note still marks the row as playing.
func (e *Engine) startNote(k *Key, row, frame int, runStep float64) {
	o := &k.Outputs[row]
	if o.Playing {
		return
	}
	p := &o.Pad
	ch := p.Out() - 1
	if ch < 0 || ch >= NrChannels {
		return
	}

	// always draw in the same order so silent pads keep the sequence
	silent := e.rng.Float64() < p.RandGate
	durFactor := 1 - p.RandDuration*e.rng.Float64()
	noteJitter := e.jitter(p.RandNote)
	octJitter := e.jitter(p.RandOctave)
	velJitter := p.RandVelocity * (2*e.rng.Float64() - 1)

	note, ok := e.resolveNote(k, row, ch, int(p.PitchNote)+noteJitter, int(p.PitchOctave)+octJitter)
	vel := float64(k.Velocity) * (p.Velocity + velJitter) * e.ctrl[ChannelCtrl(ch, ChVelocity)]
	vel = math.Round(math.Min(math.Max(vel, 0), 127))

	o.Playing = true
	o.Note = uint8(note)
	o.Velocity = uint8(vel)
	o.MIDIChannel = uint8(e.ctrl[ChannelCtrl(ch, ChMidiChannel)]) - 1
	o.Duration = p.Duration * durFactor
	o.OffStep = runStep + o.Duration
	o.Gate = !silent && ok && o.Velocity > 0
	if o.Gate {
		o.Gate = e.stack.Append(frame, o.MIDIChannel, midi.NoteOn, o.Note, o.Velocity)
	}
}

// stopNote ends the note of a row. Only gated notes send NOTE_OFF.
func (e *Engine) stopNote(k *Key, row, frame int) {
	o := &k.Outputs[row]
	if !o.Playing {
		return
	}
	if o.Gate {
		e.stack.Append(frame, o.MIDIChannel, midi.NoteOff, o.Note, 0)
	}
	o.Playing = false
	o.Gate = false
}

func (e *Engine) stopKey(k *Key, frame int) {
	for row := range k.Outputs {
		e.stopNote(k, row, frame)
	}
}

// stopChannel stops every note played from output channel c (0-based)
func (e *Engine) stopChannel(c, frame int) {
	for i := 0; i < e.keys.Len(); i++ {
		k := e.keys.At(i)
		for row := range k.Outputs {
			if k.Outputs[row].Pad.Out()-1 == c {
				e.stopNote(k, row, frame)
			}
		}
	}
}

func (e *Engine) stopAll(frame int) {
	for i := 0; i < e.keys.Len(); i++ {
		e.stopKey(e.keys.At(i), frame)
	}
}

// jitter returns a uniform integer in [-r, r]
func (e *Engine) jitter(r float64) int {
	ri := int(r)
	return int(e.rng.Float64()*float64(2*ri+1)) - ri
}

// resolveNote maps the scale element of a row to a MIDI note. Absolute
// elements ignore the key. Relative elements follow the key's scale degree
// when the channel's PITCH switch is on; a key outside the scale shifts by
// semitones.
func (e *Engine) resolveNote(k *Key, row, ch, degrees, octaves int) (int, bool) {
	el := e.maps[e.mapIndex()].Elements[row]
	var note int

	if scale.IsAbsolute(el) {
		note = el&scale.NoteMask + degrees + 12*octaves
	} else {
		shift, semis := 0, 0
		if e.hostMode() && k.Sounding() && e.ctrl[ChannelCtrl(ch, ChPitch)] != 0 {
			if el, ok := e.scale.Element(int(k.Note)); ok {
				shift = el
			} else {
				semis = int(k.Note) - e.scale.Root()
			}
		}
		n, ok := e.scale.MIDINote(el + degrees + shift)
		if !ok {
			return 0, false
		}
		note = n + semis + 12*octaves
	}

	note += int(e.ctrl[ChannelCtrl(ch, ChNoteOffset)])
	if note < 0 || note > 127 {
		return 0, false
	}
	return note, true
}
