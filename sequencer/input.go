package sequencer

import "go-bstep/midi"

// handleMIDI consumes one incoming MIDI message at frame
func (e *Engine) handleMIDI(raw []byte, frame int) {
	in := midi.Decode(raw)
	if filter := int(e.ctrl[MidiInChannel]); filter != 0 && int(in.Channel) != filter-1 {
		e.passThrough(raw, frame)
		return
	}

	switch in.Kind {
	case midi.InputNoteOn:
		// autoplay ignores the keyboard
		if e.hostMode() && e.playing() {
			e.noteOn(in.Note, in.Velocity, frame)
		}
	case midi.InputNoteOff:
		if e.hostMode() {
			e.noteOff(in.Note, frame)
		}
	case midi.InputController:
		switch in.Note {
		case midi.CtlSustain:
			e.setSustain(in.Velocity >= 64, frame)
		case midi.CtlAllSoundsOff, midi.CtlAllNotesOff:
			e.stopAll(frame)
			e.resetKeys()
			e.passThrough(raw, frame)
		default:
			e.passThrough(raw, frame)
		}
	default:
		e.passThrough(raw, frame)
	}
}

// noteOn applies the ON_KEY_PRESSED policy
func (e *Engine) noteOn(note, velocity uint8, frame int) {
	start := e.pos
	switch int(e.ctrl[OnKeyPressed]) {
	case KeyContinue:
		if k := e.keys.Last(); k != nil {
			k.Note = note
			k.Velocity = velocity
			k.Sustained = false
			return
		}
	case KeySync:
		if prev := e.keys.Last(); prev != nil {
			// step 0 of the new key falls on the next step of the previous one
			start = prev.StartPos + float64(prev.StepNr+1)/e.stepsPerBeat()
		}
	}

	if i := e.keys.Find(note); i >= 0 {
		e.stopKey(e.keys.At(i), frame)
		e.keys.Remove(i)
	}
	e.keys.Add(note, velocity, start)
}

func (e *Engine) noteOff(note uint8, frame int) {
	i := e.keys.Find(note)
	if i < 0 {
		return
	}
	if e.sustain {
		e.keys.At(i).Sustained = true
		return
	}
	e.releaseKey(i, frame)
}

// releaseKey removes key i. In CONTINUE mode the last key stays and keeps
// its position but falls silent.
func (e *Engine) releaseKey(i, frame int) {
	k := e.keys.At(i)
	e.stopKey(k, frame)
	if int(e.ctrl[OnKeyPressed]) == KeyContinue && i == e.keys.Len()-1 {
		k.Note = SilentNote
		k.Sustained = false
		return
	}
	e.keys.Remove(i)
}

func (e *Engine) setSustain(on bool, frame int) {
	e.sustain = on
	if on {
		return
	}
	for i := e.keys.Len() - 1; i >= 0; i-- {
		if e.keys.At(i).Sustained {
			e.releaseKey(i, frame)
		}
	}
}

// passThrough forwards a channel or single byte system message
func (e *Engine) passThrough(raw []byte, frame int) {
	if len(raw) == 0 || len(raw) > 3 {
		return
	}
	ev := midi.Event{
		Frame:   frame,
		Channel: raw[0] & 0x0F,
		Status:  raw[0] & 0xF0,
		Size:    uint8(len(raw)),
	}
	if len(raw) > 1 {
		ev.Note = raw[1]
	}
	if len(raw) > 2 {
		ev.Velocity = raw[2]
	}
	e.stack.AppendEvent(ev)
}
