package sequencer

import (
	"fmt"

	"go-bstep/scale"
)

// Controller indices. The order is a stable contract with hosts and saved
// projects.
const (
	MidiInChannel = iota
	Play
	Mode
	OnKeyPressed
	AutoplayBPM
	AutoplayBPB
	StepsPer
	Base
	Root
	Signature
	Octave
	ScaleMap
	NrOfSteps
	ChannelBase // NrChannels blocks of channel parameters start here
)

// Selection controllers hold the editor's pad properties
const (
	SelectionCh = ChannelBase + NrChannels*chParams + iota
	SelectionCtrl
	SelectionNote
	SelectionOctave
	SelectionVelocity
	SelectionDuration
	SelectionRandGate
	NrControllers
)

// Per channel parameter offsets, see ChannelCtrl
const (
	ChPitch = iota
	ChVelocity
	ChMidiChannel
	ChNoteOffset
	chParams
)

// ChannelCtrl returns the controller index of a channel parameter (c is
// 0-based)
func ChannelCtrl(c, param int) int {
	return ChannelBase + c*chParams + param
}

// Mode values
const (
	ModeAutoplay = 1
	ModeHost     = 2
)

// OnKeyPressed values
const (
	KeyRestart  = 1
	KeySync     = 2
	KeyContinue = 3
)

// Base values: the unit STEPS_PER refers to
const (
	BaseSeconds = 0
	BaseBeats   = 1
	BaseBars    = 2
)

// ControllerInfo describes one controller
type ControllerInfo struct {
	Name    string
	Limit   Limit
	Default float64
}

var controllers = buildControllers()

func buildControllers() [NrControllers]ControllerInfo {
	var c [NrControllers]ControllerInfo
	c[MidiInChannel] = ControllerInfo{"MIDI_IN_CHANNEL", Limit{0, 16, 1}, 0}
	c[Play] = ControllerInfo{"PLAY", Limit{0, 1, 1}, 1}
	c[Mode] = ControllerInfo{"MODE", Limit{1, 2, 1}, ModeAutoplay}
	c[OnKeyPressed] = ControllerInfo{"ON_KEY_PRESSED", Limit{1, 3, 1}, KeyRestart}
	c[AutoplayBPM] = ControllerInfo{"AUTOPLAY_BPM", Limit{1, 300, 1}, 120}
	c[AutoplayBPB] = ControllerInfo{"AUTOPLAY_BPB", Limit{1, 16, 1}, 4}
	c[StepsPer] = ControllerInfo{"STEPS_PER", Limit{1, 8, 1}, 4}
	c[Base] = ControllerInfo{"BASE", Limit{0, 2, 1}, BaseBeats}
	c[Root] = ControllerInfo{"ROOT", Limit{0, 11, 1}, 0}
	c[Signature] = ControllerInfo{"SIGNATURE", Limit{0, 2, 1}, float64(scale.Natural)}
	c[Octave] = ControllerInfo{"OCTAVE", Limit{-1, 8, 1}, 4}
	c[ScaleMap] = ControllerInfo{"SCALE", Limit{0, float64(scale.NrMaps - 1), 1}, 1}
	c[NrOfSteps] = ControllerInfo{"NR_OF_STEPS", Limit{1, MaxSteps, 1}, 16}

	for ch := 0; ch < NrChannels; ch++ {
		prefix := fmt.Sprintf("CH%d_", ch+1)
		c[ChannelCtrl(ch, ChPitch)] = ControllerInfo{prefix + "PITCH", Limit{0, 1, 1}, 1}
		c[ChannelCtrl(ch, ChVelocity)] = ControllerInfo{prefix + "VELOCITY", Limit{0, 2, 0.01}, 1}
		c[ChannelCtrl(ch, ChMidiChannel)] = ControllerInfo{prefix + "MIDI_CHANNEL", Limit{1, 16, 1}, float64(ch + 1)}
		c[ChannelCtrl(ch, ChNoteOffset)] = ControllerInfo{prefix + "NOTE_OFFSET", Limit{-127, 127, 1}, 0}
	}

	c[SelectionCh] = ControllerInfo{"SELECTION_CH", LimitOut, 1}
	c[SelectionCtrl] = ControllerInfo{"SELECTION_CTRL", LimitControl, 0}
	c[SelectionNote] = ControllerInfo{"SELECTION_NOTE", LimitPitchNote, 0}
	c[SelectionOctave] = ControllerInfo{"SELECTION_OCTAVE", LimitPitchOctave, 0}
	c[SelectionVelocity] = ControllerInfo{"SELECTION_VELOCITY", LimitVelocity, 1}
	c[SelectionDuration] = ControllerInfo{"SELECTION_DURATION", LimitDuration, 1}
	c[SelectionRandGate] = ControllerInfo{"SELECTION_RAND_GATE", LimitRandGate, 0}
	return c
}

// Controllers returns the controller table
func Controllers() [NrControllers]ControllerInfo {
	return controllers
}

// DefaultControllers returns the default value of every controller
func DefaultControllers() [NrControllers]float64 {
	var v [NrControllers]float64
	for i, c := range controllers {
		v[i] = c.Default
	}
	return v
}

// ControllerIndex looks up a controller by name
func ControllerIndex(name string) (int, bool) {
	for i, c := range controllers {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Correction reports a controller value that was clamped or quantized
type Correction struct {
	Index int
	Value float64
}

// controller change effects
type ctrlEffect uint8

const (
	effStopAll ctrlEffect = 1 << iota
	effStopChannel
	effResetKeys
	effRebuildScale
)

func controllerEffect(i int) ctrlEffect {
	switch {
	case i == MidiInChannel, i == Play, i == Mode, i == OnKeyPressed, i == NrOfSteps:
		return effStopAll | effResetKeys
	case i == Root, i == Octave, i == ScaleMap:
		return effStopAll | effRebuildScale
	case i == Signature:
		return effRebuildScale
	case i >= ChannelBase && i < SelectionCh:
		switch (i - ChannelBase) % chParams {
		case ChPitch, ChMidiChannel, ChNoteOffset:
			return effStopChannel
		}
	}
	return 0
}
