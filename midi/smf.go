package midi

import (
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerBeat is the SMF resolution used by WriteSMF
const TicksPerBeat = 960

// Render describes an offline recording. Events carry absolute frames
// counted from the start of the recording.
type Render struct {
	SampleRate  float64
	BPM         float64
	BeatsPerBar int
	Events      []Event
}

// WriteSMF writes the recording as a two track Standard MIDI File: a tempo
// track and one track holding the events.
func WriteSMF(w io.Writer, r Render) error {
	if r.SampleRate <= 0 || r.BPM <= 0 {
		return fmt.Errorf("write smf: invalid sample rate %.1f or tempo %.1f", r.SampleRate, r.BPM)
	}
	bpb := r.BeatsPerBar
	if bpb <= 0 {
		bpb = 4
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerBeat)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(uint8(bpb), 4))
	tempo.Add(0, smf.MetaTempo(r.BPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	ticksPerFrame := r.BPM / 60 / r.SampleRate * TicksPerBeat
	var track smf.Track
	var last int64
	for _, ev := range r.Events {
		tick := int64(math.Round(float64(ev.Frame) * ticksPerFrame))
		if tick < last {
			tick = last
		}
		track.Add(uint32(tick-last), ev.Message())
		last = tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("add event track: %w", err)
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}
