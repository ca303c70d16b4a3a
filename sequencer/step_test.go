package sequencer

import "testing"

func TestGridRuns(t *testing.T) {
	g := NewGrid()
	long := playPad(1)
	long.Duration = 2
	g[0][2] = long
	g[0][3] = long
	g[0][4] = playPad(1)
	// different channel breaks the run
	g[0][6] = long
	g[0][7] = playPad(2)

	const n = 16
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"PadStart inside run", g.PadStart(0, 4, n), 2},
		{"PadEnd from start", g.PadEnd(0, 2, n), 4},
		{"PadSize", g.PadSize(0, 2, n), 3},
		{"PadSize single", g.PadSize(0, 6, n), 1},
		{"NextPadStart forward", g.NextPadStart(0, 3, 1, n), 5},
		{"NextPadStart backward", g.NextPadStart(0, 3, -1, n), 1},
		{"NextPadStart wraps", g.NextPadStart(0, 15, 1, n), 0},
		{"NextStep inside run", g.NextStep(0, 2, -1, n), 3},
		{"step modulo n", g.PadStart(0, 20, n), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if g.HasAntecessor(0, 2, n) {
		t.Error("run start has an antecessor")
	}
	if !g.HasAntecessor(0, 3, n) {
		t.Error("step 3 should continue the run")
	}
	if g.HasSuccessor(0, 6, n) {
		t.Error("pads on different channels merged")
	}
}

func TestGridRunEndsAtLastStep(t *testing.T) {
	g := NewGrid()
	long := playPad(1)
	long.Duration = 4
	for s := 0; s < MaxSteps; s++ {
		g[0][s] = long
	}
	if g.HasSuccessor(0, 7, 8) {
		t.Error("run continued past the last active step")
	}
	if got := g.PadStart(0, 0, 8); got != 0 {
		t.Errorf("PadStart(0) = %d, want 0", got)
	}
	if got := g.PadSize(0, 0, 8); got != 8 {
		t.Errorf("PadSize = %d, want 8", got)
	}
}

func TestStepOffsetZero(t *testing.T) {
	e := newTestEngine(t)
	k := e.keys.At(0)
	if got := e.stepOffset(k, 0, 0); got != 0 {
		t.Errorf("stepOffset(0) = %d", got)
	}
}

// trace returns the cursor of row after each of n steps
func trace(e *Engine, row, n int) []int {
	out := make([]int, n)
	for i := range out {
		step(e)
		out[i] = e.Snapshot().Cursor[row]
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStopHaltsRow(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 5, controlPad(CtrlStop))

	want := []int{0, 1, 2, 3, 4, -1, -1, -1}
	if got := trace(e, 0, 8); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
	if got := e.Snapshot().Cursor[1]; got != 7 {
		t.Errorf("row 1 cursor = %d, want 7", got)
	}

	// a halted row stays halted after the pattern wraps
	for _, c := range trace(e, 0, 20) {
		if c != -1 {
			t.Fatalf("halted row resumed at %d", c)
		}
	}
	if e.Keys() != 1 {
		t.Errorf("Keys() = %d, want 1", e.Keys())
	}
}

func TestStopSilencesRow(t *testing.T) {
	e := newTestEngine(t)
	long := playPad(1)
	long.Duration = 8
	e.SetPad(0, 0, long)
	e.SetPad(0, 1, controlPad(CtrlStop))

	step(e)
	res := step(e)
	if len(res.MIDI) != 1 || !res.MIDI[0].IsNoteOff() || res.MIDI[0].Note != 60 {
		t.Fatalf("events = %+v, want note off 60", res.MIDI)
	}
}

func TestJumpTakenOncePerPass(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 2, controlPad(CtrlJumpFwd))
	e.SetPad(0, 10, controlPad(CtrlMark))

	want := []int{0, 1, 2, 10, 11, 12, 13, 14, 15, 0, 1, 2, 3, 4}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestJumpBackToMark(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 1, controlPad(CtrlMark))
	e.SetPad(0, 3, controlPad(CtrlJumpBack))

	want := []int{0, 1, 2, 3, 1, 2, 3, 4, 5}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestNestedJumpNeedsOwnMark(t *testing.T) {
	g := NewGrid()
	g[0][1] = controlPad(CtrlJumpFwd)
	g[0][3] = controlPad(CtrlJumpFwd)
	g[0][5] = controlPad(CtrlMark)
	g[0][7] = controlPad(CtrlMark)

	if got, ok := g.jumpTarget(0, 1, CtrlJumpFwd, 16); !ok || got != 7 {
		t.Errorf("outer jump = %d %v, want 7", got, ok)
	}
	if got, ok := g.jumpTarget(0, 3, CtrlJumpFwd, 16); !ok || got != 5 {
		t.Errorf("inner jump = %d %v, want 5", got, ok)
	}

	g[0][7] = controlPad(CtrlAllMark)
	g[0][5] = DefaultPad()
	if got, ok := g.jumpTarget(0, 1, CtrlJumpFwd, 16); !ok || got != 7 {
		t.Errorf("ALL_MARK jump = %d %v, want 7", got, ok)
	}

	h := NewGrid()
	h[0][4] = controlPad(CtrlJumpFwd)
	if _, ok := h.jumpTarget(0, 4, CtrlJumpFwd, 16); ok {
		t.Error("jump without mark found a target")
	}
}

func TestSkipPassesOverRun(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 2, controlPad(CtrlSkip))
	e.SetPad(0, 3, controlPad(CtrlSkip))

	want := []int{0, 1, 4, 5, 6}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestAllSkipRowHalts(t *testing.T) {
	e := newTestEngine(t)
	fillRow(e, 0, controlPad(CtrlSkip))

	step(e)
	st := e.Snapshot()
	if st.Cursor[0] != -1 {
		t.Errorf("skip row cursor = %d, want -1", st.Cursor[0])
	}
	if st.Cursor[1] != 0 {
		t.Errorf("row 1 cursor = %d, want 0", st.Cursor[1])
	}
}

func TestFullyHaltedKeyIsRemoved(t *testing.T) {
	e := newTestEngine(t)
	for row := 0; row < Rows; row++ {
		e.SetPad(row, 3, controlPad(CtrlStop))
	}
	trace(e, 0, 3)
	if e.Keys() != 1 {
		t.Fatalf("key removed early")
	}
	step(e)
	if e.Keys() != 0 {
		t.Errorf("Keys() = %d, want 0", e.Keys())
	}
}

func TestPlayRewReverses(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 4, controlPad(CtrlPlayRew))

	want := []int{0, 1, 2, 3, 4, 3, 2, 1, 0, 15, 14}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestPlayFwdRestoresDirection(t *testing.T) {
	e := newTestEngine(t)
	e.SetPad(0, 1, controlPad(CtrlPlayFwd))
	e.SetPad(0, 3, controlPad(CtrlPlayRew))

	want := []int{0, 1, 2, 3, 2, 1, 2, 3, 2}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestRunPlaysOneNote(t *testing.T) {
	e := newTestEngine(t)
	long := playPad(1)
	long.Duration = 2
	for s := 0; s < 4; s++ {
		e.SetPad(0, s, long)
	}

	count := 0
	for i := 0; i < 4; i++ {
		count += len(noteOns(step(e)))
	}
	if count != 1 {
		t.Errorf("run played %d notes, want 1", count)
	}
}

func TestReversedRunIsOneStep(t *testing.T) {
	e := newTestEngine(t)
	long := playPad(1)
	long.Duration = 2
	e.SetPad(0, 2, long)
	e.SetPad(0, 3, long)
	e.SetPad(0, 4, long)
	e.SetPad(0, 5, playPad(1))
	e.SetPad(0, 6, controlPad(CtrlPlayRew))

	// forward the run 2..5 takes four steps, backwards it restarts at its
	// first step and plays through again
	want := []int{0, 1, 2, 3, 4, 5, 6, 2, 3, 4, 5, 1}
	if got := trace(e, 0, len(want)); !equalInts(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
}

func TestRandGateKeepsTiming(t *testing.T) {
	pad := playPad(1)
	silent := newTestEngine(t)
	loud := newTestEngine(t)
	fillRow(loud, 0, pad)
	pad.RandGate = 1
	fillRow(silent, 0, pad)

	loudOns := 0
	for i := 0; i < 1000; i++ {
		if on := noteOns(step(silent)); len(on) != 0 {
			t.Fatalf("step %d: gated pad sent %+v", i, on)
		}
		loudOns += len(noteOns(step(loud)))
		if a, b := silent.Snapshot().Cursor, loud.Snapshot().Cursor; a != b {
			t.Fatalf("step %d: cursors differ %v %v", i, a, b)
		}
	}
	if loudOns != 1000 {
		t.Errorf("open gate played %d notes, want 1000", loudOns)
	}
}

func TestSeedMakesRandomnessRepeatable(t *testing.T) {
	pad := playPad(1)
	pad.RandNote = 3
	pad.RandVelocity = 0.5

	run := func() []uint8 {
		e := newTestEngine(t)
		fillRow(e, 0, pad)
		var notes []uint8
		for i := 0; i < 64; i++ {
			for _, ev := range noteOns(step(e)) {
				notes = append(notes, ev.Note, ev.Velocity)
			}
		}
		return notes
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("value %d differs: %d %d", i, a[i], b[i])
		}
	}
}

func TestLimitValidate(t *testing.T) {
	tests := []struct {
		l    Limit
		in   float64
		want float64
	}{
		{Limit{0, 2, 0.01}, 1.234, 1.23},
		{Limit{0, 2, 0.01}, -1, 0},
		{Limit{0, 2, 0.01}, 7, 2},
		{Limit{1, 16, 1}, 3.6, 4},
		{Limit{-12, 12, 1}, -2.4, -2},
		{Limit{0, 32, 0.01}, 2.5, 2.5},
		{Limit{0, 1, 0.25}, 0.3, 0.25},
	}
	for _, tt := range tests {
		if got := tt.l.Validate(tt.in); got != tt.want {
			t.Errorf("%+v.Validate(%v) = %v, want %v", tt.l, tt.in, got, tt.want)
		}
	}
}

func TestValidatePad(t *testing.T) {
	p := Pad{Channel: MakeChannel(CtrlNone, 9), Velocity: 1, Duration: 40}
	v, corrected := ValidatePad(p)
	if !corrected {
		t.Fatal("pad not corrected")
	}
	if v.Out() != NrChannels || v.Duration != MaxSteps {
		t.Errorf("validated %+v", v)
	}
	if _, corrected := ValidatePad(DefaultPad()); corrected {
		t.Error("default pad corrected")
	}
}
