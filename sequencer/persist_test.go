package sequencer

import (
	"errors"
	"strings"
	"testing"

	"go-bstep/scale"
)

func TestRestoreSinglePad(t *testing.T) {
	e := newTestEngine(t)
	err := e.Restore(State{Pads: "Matrix data:\nid:0; ch:1; st:0; oc:0; ve:1.00; du:1.00;\n"})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := e.Pad(0, 0); got != playPad(1) {
		t.Errorf("pad 0 = %+v", got)
	}
	if got := e.Pad(1, 0); got != DefaultPad() {
		t.Errorf("pad 1 = %+v", got)
	}
}

func TestPadBlobRoundTrip(t *testing.T) {
	g := NewGrid()
	g[3][7] = Pad{
		Channel:      MakeChannel(CtrlMark, 3),
		PitchNote:    -3,
		PitchOctave:  1,
		Velocity:     0.5,
		Duration:     2.5,
		RandGate:     0.25,
		RandNote:     3,
		RandOctave:   1,
		RandVelocity: 0.1,
		RandDuration: 0.75,
	}
	g[15][31] = controlPad(CtrlStop)

	blob := MarshalPads(&g)
	if !strings.Contains(blob, "id:115; ch:67;") {
		t.Errorf("blob missing cell 115:\n%s", blob)
	}

	got := NewGrid()
	if err := ParsePads(blob, &got); err != nil {
		t.Fatalf("ParsePads: %v", err)
	}
	if got != g {
		t.Errorf("round trip changed the grid:\n%s", blob)
	}
}

func TestRestoreTruncatedBlob(t *testing.T) {
	e := newTestEngine(t)
	blob := "Matrix data:\nid:0; ch:1; st:0; oc:0; ve:1.00; du:1.00;\nid:1; ch:2; st:"
	err := e.Restore(State{Pads: blob})

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if pe.Blob != "pads" || pe.Line != 3 || !errors.Is(err, errSyntax) {
		t.Errorf("error = %+v", pe)
	}
	if e.Pad(0, 0).Out() != 1 {
		t.Error("cell before the error was dropped")
	}
	if e.Pad(1, 0) != DefaultPad() {
		t.Error("incomplete cell was applied")
	}
}

func TestRestoreBadValues(t *testing.T) {
	tests := []struct {
		name string
		line string
		err  error
	}{
		{"unknown field", "id:0; xx:1;", errUnknown},
		{"id out of range", "id:512; ch:1;", errValue},
		{"no id", "ch:1; id:0;", errNoID},
		{"not a number", "id:0; ve:loud;", errValue},
		{"channel byte", "id:0; ch:300;", errValue},
		{"missing separator", "id:0 ch:1;", errValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid()
			err := ParsePads("Matrix data:\n"+tt.line, &g)
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestRestoreMissingHeaderKeepsGrid(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(2, 2, playPad(2))

	err := e.Restore(State{Pads: "id:0; ch:1;\n"})
	if !errors.Is(err, errHeader) {
		t.Fatalf("error = %v, want missing header", err)
	}
	if e.Pad(2, 2) != playPad(2) {
		t.Error("grid changed by a blob without header")
	}
}

func TestRestoreClampsValues(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Restore(State{Pads: "Matrix data:\nid:16; ch:9; ve:3.5; du:0.504;\n"}); err != nil {
		t.Fatal(err)
	}
	p := e.Pad(0, 1)
	if p.Out() != NrChannels || p.Velocity != 2 || p.Duration != 0.5 {
		t.Errorf("pad = %+v", p)
	}
}

func TestRestoreStopsNotes(t *testing.T) {
	e := newTestEngine(t)
	long := playPad(1)
	long.Duration = 8
	e.SetPad(0, 0, long)
	step(e)

	if err := e.Restore(State{Pads: "Matrix data:\n"}); err != nil {
		t.Fatal(err)
	}
	res := step(e)
	if len(res.MIDI) != 1 || !res.MIDI[0].IsNoteOff() || res.MIDI[0].Frame != 0 {
		t.Errorf("events = %+v, want note off at frame 0", res.MIDI)
	}
	if e.Pad(0, 0) != DefaultPad() {
		t.Error("pads not replaced")
	}
}

func TestScaleBlobRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	maps := e.ScaleMaps()
	em := maps[scale.FirstUserMap+1]
	em.Name = `My "odd"; scale`
	em.Elements[3] = scale.Absolute | 40
	em.Elements[4] = -2
	em.AltSymbols[0] = "Do"
	em.AltSymbols[5] = "a,b"
	em.Intervals = [12]int{0, 3, 7, scale.NoNote, scale.NoNote, scale.NoNote,
		scale.NoNote, scale.NoNote, scale.NoNote, scale.NoNote, scale.NoNote, scale.NoNote}
	step(e, Event{Kind: EventScaleMap, Scale: &em})

	st := e.State()
	if !strings.HasPrefix(st.Scales, "Scale data:\n") {
		t.Fatalf("blob = %q", st.Scales)
	}

	e2 := newTestEngine(t)
	if err := e2.Restore(State{Scales: st.Scales}); err != nil {
		t.Fatalf("Restore: %v\n%s", err, st.Scales)
	}
	got := e2.ScaleMaps()[scale.FirstUserMap+1]
	if got != em {
		t.Errorf("restored map = %+v, want %+v", got, em)
	}
	if e2.ScaleMaps()[0] != e.ScaleMaps()[0] {
		t.Error("built-in map changed")
	}
}

func TestScaleEditOutsideUserRange(t *testing.T) {
	blob := "Scale data:\nid:99; nm:\"x\";\n"
	maps := scale.Maps()
	err := ParseScales(blob, maps[scale.FirstUserMap:])
	if !errors.Is(err, errValue) {
		t.Errorf("error = %v, want invalid value", err)
	}
}

func TestBuiltinScalesAreReadOnly(t *testing.T) {
	e := newTestEngine(t)
	major := e.ScaleMaps()[1]

	err := e.Restore(State{Scales: "Scale data:\nid:1; nm:\"x\";\n"})
	if !errors.Is(err, errValue) {
		t.Errorf("Restore error = %v, want invalid value", err)
	}
	em := major
	em.Name = "x"
	step(e, Event{Kind: EventScaleMap, Scale: &em})

	if got := e.ScaleMaps()[1]; got != major {
		t.Errorf("built-in map changed to %+v", got)
	}
}
