package midi

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"
)

func TestWriteSMF(t *testing.T) {
	// one beat at 120 bpm and 48 kHz is 24000 frames
	r := Render{
		SampleRate:  48000,
		BPM:         120,
		BeatsPerBar: 4,
		Events: []Event{
			{Frame: 0, Status: NoteOn, Note: 60, Velocity: 100, Size: 3},
			{Frame: 12000, Status: NoteOff, Note: 60, Size: 3},
			{Frame: 24000, Channel: 1, Status: NoteOn, Note: 64, Velocity: 80, Size: 3},
		},
	}

	var buf bytes.Buffer
	if err := WriteSMF(&buf, r); err != nil {
		t.Fatalf("WriteSMF: %v", err)
	}

	sm, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(sm.Tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(sm.Tracks))
	}

	type hit struct {
		tick int64
		key  uint8
	}
	var starts []hit
	var tick int64
	for _, ev := range sm.Tracks[1] {
		tick += int64(ev.Delta)
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			starts = append(starts, hit{tick, key})
		}
	}
	want := []hit{{0, 60}, {TicksPerBeat, 64}}
	if len(starts) != len(want) {
		t.Fatalf("note starts = %v, want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("start %d = %v, want %v", i, starts[i], want[i])
		}
	}
}

func TestWriteSMFRejectsBadTempo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSMF(&buf, Render{SampleRate: 48000}); err == nil {
		t.Error("expected error for zero tempo")
	}
}
