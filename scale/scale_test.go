package scale

import "testing"

var major = [12]int{0, 2, 4, 5, 7, 9, 11, NoNote, NoNote, NoNote, NoNote, NoNote}

func TestMIDINoteMajor(t *testing.T) {
	e := NewEngine(major, 60)

	tests := []struct {
		element int
		want    int
	}{
		{0, 60},
		{1, 62},
		{6, 71},
		{7, 72},
		{8, 74},
		{-1, 59},
		{-7, 48},
		{-8, 47},
	}
	for _, tt := range tests {
		got, ok := e.MIDINote(tt.element)
		if !ok || got != tt.want {
			t.Errorf("MIDINote(%d) = %d, %v; want %d", tt.element, got, ok, tt.want)
		}
	}
}

func TestMIDINoteOutOfRange(t *testing.T) {
	e := NewEngine(major, 60)
	if _, ok := e.MIDINote(100); ok {
		t.Error("MIDINote(100) should fail above 127")
	}
	if _, ok := e.MIDINote(-100); ok {
		t.Error("MIDINote(-100) should fail below 0")
	}
}

func TestElementRejectsNotesOutsideScale(t *testing.T) {
	e := NewEngine(major, 60)
	if _, ok := e.Element(61); ok {
		t.Error("C# is not in C major")
	}
	el, ok := e.Element(47)
	if !ok || el != -8 {
		t.Errorf("Element(47) = %d, %v; want -8", el, ok)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, m := range Maps() {
		e := NewEngine(m.Intervals, 62)
		for el := -40; el <= 40; el++ {
			note, ok := e.MIDINote(el)
			if !ok {
				continue
			}
			back, ok := e.Element(note)
			if !ok {
				t.Fatalf("%s: Element(%d) failed for element %d", m.NameString(), note, el)
			}
			again, ok := e.MIDINote(back)
			if !ok || again != note {
				t.Fatalf("%s: round trip %d -> %d -> %d -> %d", m.NameString(), el, note, back, again)
			}
		}
	}
}

func TestSetScaleStopsAtSentinel(t *testing.T) {
	e := NewEngine([12]int{0, 3, 7, NoNote, 9, 10, 11}, 60)
	if e.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", e.Size())
	}
	if got := e.Intervals()[4]; got != NoNote {
		t.Errorf("slot 4 = %d, want NoNote", got)
	}

	e.SetScale([12]int{0, 5, 3})
	if e.Size() != 2 {
		t.Errorf("non-ascending table: Size() = %d, want 2", e.Size())
	}
}

func TestEmptyScale(t *testing.T) {
	var e Engine
	if _, ok := e.MIDINote(0); ok {
		t.Error("empty scale should not map elements")
	}
	if _, ok := e.Element(60); ok {
		t.Error("empty scale should not map notes")
	}
	if s := e.Symbol(0); s != "" {
		t.Errorf("Symbol = %q, want empty", s)
	}
}

func TestSymbol(t *testing.T) {
	e := NewEngine(major, 61) // Db major
	e.SetSignature(Flat)
	if s := e.Symbol(0); s != "Db" {
		t.Errorf("flat Symbol(0) = %q, want Db", s)
	}
	e.SetSignature(Sharp)
	if s := e.Symbol(0); s != "C#" {
		t.Errorf("sharp Symbol(0) = %q, want C#", s)
	}
	if s := e.Symbol(7); s != "C#+1" {
		t.Errorf("Symbol(7) = %q, want C#+1", s)
	}
	if s := e.Symbol(-1); s != "C-1" {
		t.Errorf("Symbol(-1) = %q, want C-1", s)
	}
}

func TestNoteName(t *testing.T) {
	if got := NoteName(60, Natural); got != "C4" {
		t.Errorf("NoteName(60) = %q", got)
	}
	if got := NoteName(70, Flat); got != "Bb4" {
		t.Errorf("NoteName(70) = %q", got)
	}
	if got := NoteName(200, Flat); got != "--" {
		t.Errorf("NoteName(200) = %q", got)
	}
}
