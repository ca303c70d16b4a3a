package host

import (
	"context"

	"go-bstep/debug"
	"go-bstep/midi"
	"go-bstep/sequencer"
	"go-bstep/theme"
)

// PadDevice is a grid controller. *midi.Launchpad implements it.
type PadDevice interface {
	PadEvents() <-chan midi.PadEvent
	SetLEDs(updates []midi.LEDUpdate) error
}

// Top row buttons
const (
	btnUp    = 0
	btnDown  = 1
	btnLeft  = 2
	btnRight = 3
	btnPlay  = 7
)

type ledFrame [midi.TopRow + 1][midi.SideCol + 1]midi.LEDUpdate

// Surface edits the pad grid from an 8x8 controller. The device shows a
// window of the grid that the arrow buttons move by a page. The side
// buttons pick the brush channel.
type Surface struct {
	player *Player
	dev    PadDevice
	theme  *theme.Theme

	grid    sequencer.Grid
	status  sequencer.Status
	rowOff  int
	stepOff int

	shown ledFrame
	fresh bool // nothing sent yet
}

func NewSurface(p *Player, dev PadDevice, th *theme.Theme) *Surface {
	s := &Surface{player: p, dev: dev, theme: th, grid: sequencer.NewGrid(), fresh: true}
	for r := range s.status.Cursor {
		s.status.Cursor[r] = -1
	}
	return s
}

// Run mirrors updates onto the device and applies pad presses until ctx
// is done or the device goes away (blocking - run in goroutine)
func (s *Surface) Run(ctx context.Context, updates <-chan Update) {
	s.refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			s.apply(u)
			s.refresh()
		case ev, ok := <-s.dev.PadEvents():
			if !ok {
				debug.Log("surface", "pad device closed")
				return
			}
			s.press(ev.Row, ev.Col)
			s.refresh()
		}
	}
}

func (s *Surface) apply(u Update) {
	s.status = u.Status
	for _, pm := range u.Pads {
		s.grid[pm.Row][pm.Step] = pm.Pad
	}
}

func (s *Surface) press(row, col int) {
	switch {
	case row == midi.TopRow:
		s.button(col)
	case col == midi.SideCol:
		if row < sequencer.NrChannels {
			s.player.SetController(sequencer.SelectionCh, float64(row+1))
		}
	default:
		r, step := s.rowOff+row, s.stepOff+col
		p := s.grid[r][step]
		if p.Out() != 0 || p.Control() != sequencer.CtrlNone {
			p = sequencer.DefaultPad()
			s.player.EditPads([]sequencer.PadMessage{{Row: r, Step: step, Pad: p}})
		} else if painted, ok := s.player.PaintPad(r, step); ok {
			p = painted
		}
		s.grid[r][step] = p
	}
}

func (s *Surface) button(col int) {
	switch col {
	case btnUp:
		s.rowOff = min(s.rowOff+midi.PadRows, sequencer.Rows-midi.PadRows)
	case btnDown:
		s.rowOff = max(s.rowOff-midi.PadRows, 0)
	case btnRight:
		s.stepOff = min(s.stepOff+midi.PadCols, sequencer.MaxSteps-midi.PadCols)
	case btnLeft:
		s.stepOff = max(s.stepOff-midi.PadCols, 0)
	case btnPlay:
		play := 1.0
		if s.player.Controller(sequencer.Play) != 0 {
			play = 0
		}
		s.player.SetController(sequencer.Play, play)
	}
}

// frame computes what every LED should show
func (s *Surface) frame() ledFrame {
	var f ledFrame
	for row := range f {
		for col := range f[row] {
			f[row][col] = midi.LEDUpdate{Row: row, Col: col}
		}
	}
	steps := int(s.player.Controller(sequencer.NrOfSteps))
	white := theme.RGB{255, 255, 255}
	dim := s.theme.Palette.Lookup(theme.RoleMuted)

	for row := 0; row < midi.PadRows; row++ {
		for col := 0; col < midi.PadCols; col++ {
			r, step := s.rowOff+row, s.stepOff+col
			p := s.grid[r][step]
			var c theme.RGB
			switch {
			case step >= steps:
			case s.status.Cursor[r] == step:
				c = white
			case p.Control() != sequencer.CtrlNone:
				c = s.theme.Palette.Lookup(theme.RoleWarning)
			case p.Out() != 0:
				c = s.theme.ChannelRGB(p.Out(), sequencer.NrChannels)
			}
			f[row][col] = midi.LEDUpdate{Row: row, Col: col, Color: c}
		}
	}

	brush := int(s.player.Controller(sequencer.SelectionCh))
	for ch := 1; ch <= sequencer.NrChannels; ch++ {
		u := midi.LEDUpdate{Row: ch - 1, Col: midi.SideCol, Color: s.theme.ChannelRGB(ch, sequencer.NrChannels)}
		if ch == brush {
			u.Mode = midi.LEDPulse
		}
		f[ch-1][midi.SideCol] = u
	}

	top := func(col int, on bool, c theme.RGB) {
		u := midi.LEDUpdate{Row: midi.TopRow, Col: col}
		if on {
			u.Color = c
		}
		f[midi.TopRow][col] = u
	}
	top(btnUp, s.rowOff+midi.PadRows < sequencer.Rows, dim)
	top(btnDown, s.rowOff > 0, dim)
	top(btnLeft, s.stepOff > 0, dim)
	top(btnRight, s.stepOff+midi.PadCols < min(steps, sequencer.MaxSteps), dim)
	if s.player.Controller(sequencer.Play) != 0 {
		top(btnPlay, true, s.theme.Palette.Lookup(theme.RoleSuccess))
	} else {
		top(btnPlay, true, dim)
	}
	return f
}

// refresh sends the LEDs that changed
func (s *Surface) refresh() {
	next := s.frame()
	var changed []midi.LEDUpdate
	for row := range next {
		for col := range next[row] {
			if row == midi.TopRow && col == midi.SideCol {
				continue
			}
			if s.fresh || next[row][col] != s.shown[row][col] {
				changed = append(changed, next[row][col])
			}
		}
	}
	if len(changed) == 0 {
		return
	}
	if err := s.dev.SetLEDs(changed); err != nil {
		debug.LogEvery(100, "surface", "set LEDs: %v", err)
		return
	}
	s.shown = next
	s.fresh = false
}
