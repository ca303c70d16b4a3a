package sequencer

import "math"

// Limit is the valid range and quantization of a numeric value
type Limit struct {
	Min, Max, Step float64
}

// Validate clamps v into the range and rounds it to the nearest step
func (l Limit) Validate(v float64) float64 {
	if math.IsNaN(v) {
		return l.Min
	}
	v = l.clamp(v)
	if l.Step > 0 {
		// steps of 1/k are rounded through k to keep decimal values exact
		if k := math.Round(1 / l.Step); math.Abs(k*l.Step-1) < 1e-9 {
			v = math.Round((v-l.Min)*k)/k + l.Min
		} else {
			v = l.Min + math.Round((v-l.Min)/l.Step)*l.Step
		}
	}
	return l.clamp(v)
}

func (l Limit) clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// Pad field limits
var (
	LimitOut          = Limit{0, NrChannels, 1}
	LimitControl      = Limit{0, float64(NrControls - 1), 1}
	LimitPitchNote    = Limit{-12, 12, 1}
	LimitPitchOctave  = Limit{-8, 8, 1}
	LimitVelocity     = Limit{0, 2, 0.01}
	LimitDuration     = Limit{0, MaxSteps, 0.01}
	LimitRandGate     = Limit{0, 1, 0.01}
	LimitRandNote     = Limit{0, 12, 1}
	LimitRandOctave   = Limit{0, 8, 1}
	LimitRandVelocity = Limit{0, 1, 0.01}
	LimitRandDuration = Limit{0, 1, 0.01}
)

// ValidatePad returns p with every field inside its limits and whether
// anything had to be corrected
func ValidatePad(p Pad) (Pad, bool) {
	v := Pad{
		Channel: MakeChannel(
			Control(LimitControl.Validate(float64(p.Channel>>4))),
			int(LimitOut.Validate(float64(p.Channel&0x0F))),
		),
		PitchNote:    LimitPitchNote.Validate(p.PitchNote),
		PitchOctave:  LimitPitchOctave.Validate(p.PitchOctave),
		Velocity:     LimitVelocity.Validate(p.Velocity),
		Duration:     LimitDuration.Validate(p.Duration),
		RandGate:     LimitRandGate.Validate(p.RandGate),
		RandNote:     LimitRandNote.Validate(p.RandNote),
		RandOctave:   LimitRandOctave.Validate(p.RandOctave),
		RandVelocity: LimitRandVelocity.Validate(p.RandVelocity),
		RandDuration: LimitRandDuration.Validate(p.RandDuration),
	}
	return v, v != p
}
