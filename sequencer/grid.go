package sequencer

// Grid is the row x step pad matrix. All adjacency methods take the active
// step count n (1..MaxSteps); steps are taken modulo n.
//
// A pad merges with its right neighbour when both use the same output
// channel and the pad's duration exceeds one step. A maximal chain of merged
// pads is a run; it sounds as one note and is interpreted as one step.
type Grid [Rows][MaxSteps]Pad

// NewGrid returns a grid of default pads
func NewGrid() Grid {
	var g Grid
	g.Reset()
	return g
}

// Reset sets every pad to DefaultPad
func (g *Grid) Reset() {
	d := DefaultPad()
	for r := range g {
		for s := range g[r] {
			g[r][s] = d
		}
	}
}

// HasSuccessor reports whether the pad at step continues into step+1
func (g *Grid) HasSuccessor(row, step, n int) bool {
	step = mod(step, n)
	if step >= n-1 {
		return false
	}
	p := &g[row][step]
	out := p.Out()
	return out != 0 && out == g[row][step+1].Out() && p.Duration > 1.0
}

// HasAntecessor reports whether step continues a run from step-1
func (g *Grid) HasAntecessor(row, step, n int) bool {
	step = mod(step, n)
	return step > 0 && g.HasSuccessor(row, step-1, n)
}

// PadStart returns the first step of the run containing step
func (g *Grid) PadStart(row, step, n int) int {
	step = mod(step, n)
	for g.HasAntecessor(row, step, n) {
		step--
	}
	return step
}

// PadEnd returns the last step of the run containing step
func (g *Grid) PadEnd(row, step, n int) int {
	step = mod(step, n)
	for g.HasSuccessor(row, step, n) {
		step++
	}
	return step
}

// PadSize returns the number of steps of the run starting at step
func (g *Grid) PadSize(row, step, n int) int {
	step = mod(step, n)
	size := 1
	for g.HasSuccessor(row, step, n) {
		step++
		size++
	}
	return size
}

// NextPadStart returns the start of the run that follows the run
// containing step in direction dir (+1 or -1), wrapping at n.
func (g *Grid) NextPadStart(row, step, dir, n int) int {
	if dir < 0 {
		prev := mod(g.PadStart(row, step, n)-1, n)
		return g.PadStart(row, prev, n)
	}
	return mod(g.PadEnd(row, step, n)+1, n)
}

// NextStep returns the step played after step: the next step of the same
// run, or the start of the next run in direction dir.
func (g *Grid) NextStep(row, step, dir, n int) int {
	if g.HasSuccessor(row, step, n) {
		return mod(step, n) + 1
	}
	return g.NextPadStart(row, step, dir, n)
}

// jumpTarget finds the run a JUMP_FWD/JUMP_BACK run at from lands on.
// Nested jumps of the same direction need their own MARK; ALL_MARK matches
// any depth.
func (g *Grid) jumpTarget(row, from int, ctrl Control, n int) (int, bool) {
	dir := 1
	if ctrl == CtrlJumpBack {
		dir = -1
	}

	count := 1
	s := from
	for i := 0; i < n; i++ {
		s = g.NextPadStart(row, s, dir, n)
		if s == from {
			break
		}
		switch g[row][s].Control() {
		case ctrl:
			count++
		case CtrlMark:
			count--
			if count <= 0 {
				return s, true
			}
		case CtrlAllMark:
			return s, true
		}
	}
	return 0, false
}

func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
