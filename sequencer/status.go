package sequencer

// Status is the compact display snapshot
type Status struct {
	Position float64 // beats
	Keys     int
	Cursor   [Rows]int // step of each row of the newest key, -1 if none
	Rows     uint16    // rows with a sounding note
	Channels uint8     // output channels with a sounding note, bit c-1
}

// Sounding reports whether row has a sounding note
func (s *Status) Sounding(row int) bool {
	return s.Rows&(1<<uint(row)) != 0
}

// updateStatus fills the UI part of the result. Nothing is produced while
// the UI is off.
func (e *Engine) updateStatus(frames int) {
	if !e.ui {
		return
	}

	if e.scaleDump {
		for i := range e.maps {
			e.out.Scales = append(e.out.Scales, e.maps[i].Edit())
		}
		e.scaleDump = false
	}

	e.statusWait -= frames
	if e.statusWait > 0 {
		return
	}
	e.statusWait += int(e.sampleRate / e.statusRate)
	if e.statusWait < 0 {
		e.statusWait = 0
	}

	e.diffPads()
	e.fillStatus(&e.out.Status)
	e.out.HasStatus = true
}

// diffPads reports every cell that differs from what the UI was last sent
func (e *Engine) diffPads() {
	for r := range e.grid {
		for s := range e.grid[r] {
			p := e.grid[r][s]
			if !e.uiFullDump && p == e.uiShadow[r][s] {
				continue
			}
			e.out.Pads = append(e.out.Pads, PadMessage{Row: r, Step: s, Pad: p})
			e.uiShadow[r][s] = p
		}
	}
	e.uiFullDump = false
}

func (e *Engine) fillStatus(st *Status) {
	*st = Status{Position: e.pos, Keys: e.keys.Len()}
	for r := range st.Cursor {
		st.Cursor[r] = -1
	}

	n := e.nrSteps()
	for i := 0; i < e.keys.Len(); i++ {
		k := e.keys.At(i)
		for row := range k.Outputs {
			o := &k.Outputs[row]
			if o.Playing && o.Gate {
				st.Rows |= 1 << uint(row)
				st.Channels |= 1 << uint(o.Pad.Out()-1)
			}
		}
	}
	if k := e.keys.Last(); k != nil {
		for row := range st.Cursor {
			st.Cursor[row] = k.RowStep(row, n)
		}
	}
}

// Snapshot returns the current status regardless of the UI state
func (e *Engine) Snapshot() Status {
	var st Status
	e.fillStatus(&st)
	return st
}
