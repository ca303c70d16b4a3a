package sequencer

import "math"

// span maps key steps inside one block range onto frames
type span struct {
	s0, s1 float64
	f0, f1 int
}

func (sp *span) frame(step float64) int {
	if step <= sp.s0 || sp.s1 <= sp.s0 {
		return sp.f0
	}
	f := sp.f0 + int((step-sp.s0)/(sp.s1-sp.s0)*float64(sp.f1-sp.f0))
	return min(f, sp.f1-1)
}

// runSequencer advances every key from beat p0 (frame f0) to p1 (frame f1)
func (e *Engine) runSequencer(p0, p1 float64, f0, f1 int) {
	spb := e.stepsPerBeat()
	for i := 0; i < e.keys.Len(); {
		k := e.keys.At(i)
		sp := span{
			s0: (p0 - k.StartPos) * spb,
			s1: (p1 - k.StartPos) * spb,
			f0: f0,
			f1: f1,
		}
		e.runKey(k, &sp)
		if k.Halted() {
			e.keys.Remove(i)
			continue
		}
		i++
	}
}

// runKey processes every step boundary of k inside the span. Note ends that
// fall before a boundary are released first so that a note restarting on
// the boundary is not cut.
func (e *Engine) runKey(k *Key, sp *span) {
	for {
		t := k.StepNr + 1
		if float64(t) >= sp.s1 {
			break
		}
		if float64(t) < sp.s0 {
			// boundaries lost before this range are resolved in one go
			t = int(math.Floor(sp.s0))
		}
		frame := sp.frame(float64(t))
		e.releaseNotes(k, float64(t), sp, true)
		e.stepKey(k, t, frame)
		if k.Halted() {
			return
		}
	}
	e.releaseNotes(k, sp.s1, sp, false)
}

// releaseNotes stops the notes of k that end before step (or at step when
// inclusive)
func (e *Engine) releaseNotes(k *Key, step float64, sp *span, inclusive bool) {
	for row := range k.Outputs {
		o := &k.Outputs[row]
		if !o.Playing {
			continue
		}
		if o.OffStep < step || (inclusive && o.OffStep == step) {
			e.stopNote(k, row, sp.frame(o.OffStep))
		}
	}
}

// stepKey moves k to key step t and starts the runs entered by each row
func (e *Engine) stepKey(k *Key, t, frame int) {
	n := e.nrSteps()
	rel := t - k.StepNr
	for row := range k.Outputs {
		o := &k.Outputs[row]
		if o.Halted() {
			continue
		}

		d := e.stepOffset(k, row, rel)
		if d == HaltStep {
			e.stopNote(k, row, frame)
			o.StepOffset = HaltStep
			continue
		}
		o.StepOffset = mod(o.StepOffset+d, n)

		step := mod(t+o.StepOffset, n)
		rs := e.grid.PadStart(row, step, n)
		if step != rs && rs == o.RunStart {
			continue
		}

		e.stopNote(k, row, frame)
		o.RunStart = rs
		o.Pad = e.grid[row][rs]
		if k.Sounding() && o.Pad.Out() != 0 {
			e.startNote(k, row, frame, float64(t-(step-rs)))
		}
	}
	k.StepNr = t
}
