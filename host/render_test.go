package host

import (
	"testing"

	"go-bstep/sequencer"
)

func TestRenderIsBlockSizeIndependent(t *testing.T) {
	for _, bs := range []int{64, 512, 6000} {
		_, e := newTestPlayer(t, nil, bs)
		events := Render(e, 96000, bs, nil)

		var ons []int
		for _, ev := range events {
			if ev.IsNoteOn() {
				ons = append(ons, ev.Frame)
			}
		}
		if len(ons) != 16 {
			t.Fatalf("block size %d: %d note ons, want 16", bs, len(ons))
		}
		for i, f := range ons {
			if d := f - i*6000; d < -1 || d > 1 {
				t.Errorf("block size %d: note %d at frame %d, want %d", bs, i, f, i*6000)
			}
		}
	}
}

func TestRenderInputAtAbsoluteFrames(t *testing.T) {
	_, e := newTestPlayer(t, nil, 512)
	input := []sequencer.Event{
		{Frame: 1000, Kind: sequencer.EventMIDI, MIDI: []byte{0xE0, 0, 64}},
		{Frame: 700, Kind: sequencer.EventMIDI, MIDI: []byte{0xE0, 0, 32}},
	}
	var got []int
	for _, ev := range Render(e, 2048, 512, input) {
		if ev.Status == 0xE0 {
			got = append(got, ev.Frame)
		}
	}
	if len(got) != 2 || got[0] != 700 || got[1] != 1000 {
		t.Errorf("pitch bends at %v, want [700 1000]", got)
	}
}
