package sequencer

// stepOffset resolves relStep key steps for one row and returns how far the
// row moved beyond them (row step delta minus relStep), or HaltStep.
//
// Control pads are interpreted when a run is left; SKIP and STOP act when a
// run is entered. Positions below zero belong to the key's pre-roll and are
// passed without interpretation.
func (e *Engine) stepOffset(k *Key, row, relStep int) int {
	if relStep <= 0 {
		return 0
	}
	o := &k.Outputs[row]
	if o.Halted() {
		return HaltStep
	}

	n := e.nrSteps()
	start := k.StepNr + o.StepOffset
	pos := start
	for i := 0; i < relStep; i++ {
		if pos < 0 {
			pos++
			if pos < 0 {
				continue
			}
		} else {
			pos = e.leaveStep(o, row, pos, n)
		}

		pos = e.enterStep(o, row, pos, n)
		if pos == HaltStep {
			return HaltStep
		}
	}
	return pos - start - relStep
}

// leaveStep returns the step following pos, applying the control of the
// run being left at its last step
func (e *Engine) leaveStep(o *Output, row, pos, n int) int {
	g := &e.grid
	cur := mod(pos, n)
	if g.HasSuccessor(row, cur, n) {
		return cur + 1
	}

	rs := g.PadStart(row, cur, n)
	switch ctrl := g[row][rs].Control(); ctrl {
	case CtrlJumpFwd, CtrlJumpBack:
		bit := uint32(1) << uint(rs)
		if o.JumpOff&bit != 0 {
			o.JumpOff &^= bit
			break
		}
		if target, ok := g.jumpTarget(row, rs, ctrl, n); ok {
			o.JumpOff |= bit
			return target
		}
	case CtrlPlayFwd:
		o.Direction = 1
	case CtrlPlayRew:
		o.Direction = -1
	}
	return g.NextStep(row, cur, o.Direction, n)
}

// enterStep passes over SKIP runs and halts on STOP. A row made of SKIP
// runs only halts after n attempts.
func (e *Engine) enterStep(o *Output, row, pos, n int) int {
	g := &e.grid
	for i := 0; ; i++ {
		rs := g.PadStart(row, pos, n)
		switch g[row][rs].Control() {
		case CtrlStop:
			return HaltStep
		case CtrlSkip:
			if i >= n {
				return HaltStep
			}
			pos = g.NextPadStart(row, rs, o.Direction, n)
		default:
			return pos
		}
	}
}
