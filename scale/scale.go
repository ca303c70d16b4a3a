package scale

import "strconv"

// NoNote marks an unused slot in an interval table
const NoNote = -1

// Signature selects how accidentals are spelled
type Signature int

const (
	Flat Signature = iota
	Natural
	Sharp
)

var (
	flatNames    = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
	naturalNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	sharpNames   = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
)

// Engine maps scale elements (signed degrees relative to the root) to MIDI
// notes and back. The zero value is an empty scale; call SetScale first.
type Engine struct {
	intervals [12]int
	size      int
	root      int
	signature Signature
}

// NewEngine creates an engine for the given interval table and root note
func NewEngine(intervals [12]int, root int) *Engine {
	e := &Engine{signature: Natural}
	e.SetScale(intervals)
	e.SetRoot(root)
	return e
}

// SetScale replaces the semitone table. The active part is the ascending run
// of entries in 0..11 from the start; the first NoNote (or any entry that is
// out of range or not ascending) ends it.
func (e *Engine) SetScale(intervals [12]int) {
	e.size = 0
	last := -1
	for i, v := range intervals {
		if v < 0 || v > 11 || v <= last {
			break
		}
		e.intervals[i] = v
		last = v
		e.size++
	}
	for i := e.size; i < len(e.intervals); i++ {
		e.intervals[i] = NoNote
	}
}

// SetRoot sets the MIDI note that element 0 maps to
func (e *Engine) SetRoot(root int) {
	e.root = root
}

// SetSignature sets the accidental spelling used by Symbol
func (e *Engine) SetSignature(s Signature) {
	if s < Flat || s > Sharp {
		s = Natural
	}
	e.signature = s
}

// Load applies the interval table of a scale map
func (e *Engine) Load(m *Map) {
	e.SetScale(m.Intervals)
}

// Root returns the root MIDI note
func (e *Engine) Root() int { return e.root }

// Signature returns the accidental spelling
func (e *Engine) Signature() Signature { return e.signature }

// Size returns the number of active scale entries (at most 12)
func (e *Engine) Size() int { return e.size }

// Intervals returns the semitone table including NoNote slots
func (e *Engine) Intervals() [12]int { return e.intervals }

// MIDINote returns the MIDI note for a scale element. ok is false when the
// scale is empty or the note falls outside 0..127.
func (e *Engine) MIDINote(element int) (note int, ok bool) {
	if e.size == 0 {
		return 0, false
	}
	octave := floorDiv(element, e.size)
	note = octave*12 + e.root + e.intervals[element-octave*e.size]
	if note < 0 || note > 127 {
		return 0, false
	}
	return note, true
}

// Element returns the scale element for a MIDI note. ok is false when the
// note is not part of the scale.
func (e *Engine) Element(note int) (element int, ok bool) {
	if e.size == 0 || note < 0 || note > 127 {
		return 0, false
	}
	rel := note - e.root
	octave := floorDiv(rel, 12)
	semi := rel - octave*12
	for i := 0; i < e.size; i++ {
		if e.intervals[i] == semi {
			return octave*e.size + i, true
		}
	}
	return 0, false
}

// Symbol returns a display name for an element, e.g. "Eb" or "C+1" when the
// element lies one scale octave above the root.
func (e *Engine) Symbol(element int) string {
	if e.size == 0 {
		return ""
	}
	octave := floorDiv(element, e.size)
	semi := (e.root + e.intervals[element-octave*e.size]) % 12
	if semi < 0 {
		semi += 12
	}

	var name string
	switch e.signature {
	case Flat:
		name = flatNames[semi]
	case Sharp:
		name = sharpNames[semi]
	default:
		name = naturalNames[semi]
	}

	switch {
	case octave > 0:
		return name + "+" + strconv.Itoa(octave)
	case octave < 0:
		return name + strconv.Itoa(octave)
	}
	return name
}

// NoteName spells a MIDI note with its octave (C4 = 60)
func NoteName(note int, sig Signature) string {
	if note < 0 || note > 127 {
		return "--"
	}
	var names *[12]string
	switch sig {
	case Flat:
		names = &flatNames
	case Sharp:
		names = &sharpNames
	default:
		names = &naturalNames
	}
	return names[note%12] + strconv.Itoa(note/12-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
