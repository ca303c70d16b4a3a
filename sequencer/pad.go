package sequencer

import "math"

// Grid dimensions and capacities
const (
	Rows       = 16
	MaxSteps   = 32
	MaxKeys    = 16
	NrChannels = 4
)

// HaltStep is the step offset of a row that stopped advancing
const HaltStep = math.MinInt32

// Control is the flow-control code stored in the high nibble of a pad's
// channel byte
type Control uint8

const (
	CtrlNone Control = iota
	CtrlPlayFwd
	CtrlPlayRew
	CtrlAllMark
	CtrlMark
	CtrlJumpFwd
	CtrlJumpBack
	CtrlSkip
	CtrlStop
	NrControls
)

var controlNames = [NrControls]string{
	"", "PLAY_FWD", "PLAY_REW", "ALL_MARK", "MARK", "JUMP_FWD", "JUMP_BACK", "SKIP", "STOP",
}

func (c Control) String() string {
	if c < NrControls {
		return controlNames[c]
	}
	return "?"
}

// Pad is one grid cell. Channel packs the output channel (0 = none,
// 1..NrChannels) in the low nibble and a Control in the high nibble.
type Pad struct {
	Channel      uint8
	PitchNote    float64 // scale degrees
	PitchOctave  float64
	Velocity     float64 // factor applied to the key velocity
	Duration     float64 // in steps; > 1 continues into the next step
	RandGate     float64 // probability of staying silent
	RandNote     float64
	RandOctave   float64
	RandVelocity float64
	RandDuration float64
}

// DefaultPad returns an empty pad
func DefaultPad() Pad {
	return Pad{Velocity: 1, Duration: 1}
}

// MakeChannel packs a control code and output channel into a channel byte
func MakeChannel(ctrl Control, out int) uint8 {
	return uint8(ctrl)<<4 | uint8(out)&0x0F
}

// Out returns the output channel (0 = none)
func (p Pad) Out() int {
	return int(p.Channel & 0x0F)
}

// Control returns the flow-control code
func (p Pad) Control() Control {
	return Control(p.Channel >> 4)
}

// Empty reports whether the pad neither plays nor controls anything
func (p Pad) Empty() bool {
	return p.Channel == 0
}
