package midi

import (
	"fmt"
	"strings"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-bstep/debug"
)

// Launchpad X layout
// 8x8 grid:  row 0 (bottom) = notes 11-18, row 7 = notes 81-88
// Side col:  col 8 = notes 19, 29 ... 89
// Top row:   row 8 = CC 91-98
const (
	PadRows = 8
	PadCols = 8
	TopRow  = 8
	SideCol = 8
)

// PadEvent is sent when a pad or button is pressed
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate sets one pad color
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Mode     uint8 // LEDStatic, LEDFlash or LEDPulse
}

// LED modes, sent as the MIDI channel of the color message
const (
	LEDStatic uint8 = 0
	LEDFlash  uint8 = 1
	LEDPulse  uint8 = 2
)

// IsLaunchpad reports whether a port name belongs to a Launchpad's MIDI
// interface (not its DAW port)
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// Launchpad drives a Novation Launchpad X in programmer mode
type Launchpad struct {
	name     string
	send     Sender
	stopFunc func()
	pads     chan PadEvent
	sent     atomic.Uint64
}

// OpenLaunchpad switches the device to programmer mode and starts reading
// its pads
func OpenLaunchpad(in drivers.In, out drivers.Out) (*Launchpad, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open launchpad output: %w", err)
	}
	lp := newLaunchpad(in.String(), send)

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		lp.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open launchpad input: %w", err)
	}
	lp.stopFunc = stop
	return lp, nil
}

func newLaunchpad(name string, send Sender) *Launchpad {
	lp := &Launchpad{
		name: name,
		send: send,
		pads: make(chan PadEvent, 32),
	}
	// programmer mode, full brightness, external LED feedback
	lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
	lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))
	return lp
}

func (lp *Launchpad) handle(msg gomidi.Message) {
	var channel, key, value uint8
	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &key, &value) && value > 0:
		row, col = noteToRowCol(key)
	case msg.GetControlChange(&channel, &key, &value) && value > 0:
		row, col = ccToRowCol(key)
	}
	if row < 0 {
		return
	}
	select {
	case lp.pads <- PadEvent{Row: row, Col: col, Velocity: value}:
	default:
		debug.LogEvery(50, "launchpad", "pad event dropped")
	}
}

func (lp *Launchpad) Name() string {
	return lp.name
}

// PadEvents returns pad presses. The channel is closed by Close.
func (lp *Launchpad) PadEvents() <-chan PadEvent {
	return lp.pads
}

// SetLEDs sends one message per update
func (lp *Launchpad) SetLEDs(updates []LEDUpdate) error {
	for _, u := range updates {
		msg := gomidi.NoteOn(u.Mode, rowColToNote(u.Row, u.Col), nearestColor(u.Color))
		if u.Row == TopRow {
			msg = gomidi.ControlChange(u.Mode, rowColToNote(u.Row, u.Col), nearestColor(u.Color))
		}
		if err := lp.send(msg); err != nil {
			return err
		}
	}
	if n := lp.sent.Add(uint64(len(updates))); n%1000 < uint64(len(updates)) {
		debug.Log("launchpad", "%d LED messages sent", n)
	}
	return nil
}

// Close clears every LED and stops reading
func (lp *Launchpad) Close() error {
	var off []LEDUpdate
	for row := 0; row <= TopRow; row++ {
		for col := 0; col <= SideCol; col++ {
			if row == TopRow && col == SideCol {
				continue // no LED at 8,8
			}
			off = append(off, LEDUpdate{Row: row, Col: col})
		}
	}
	err := lp.SetLEDs(off)
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.pads)
	return err
}

// launchpadPalette holds approximate RGB values of palette entries
// {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{1, 30, 30, 30},      // dim white
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// nearestColor finds the palette velocity closest to rgb
func nearestColor(rgb [3]uint8) uint8 {
	best, bestDist := uint8(0), 1<<30
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range launchpadPalette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		if dist := dr*dr + dg*dg + db*db; dist < bestDist {
			best, bestDist = p[0], dist
		}
	}
	return best
}

func rowColToNote(row, col int) uint8 {
	if row == TopRow {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return TopRow, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row >= PadRows || col < 0 || col > SideCol {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return TopRow, int(cc - 91)
	}
	return -1, -1
}
