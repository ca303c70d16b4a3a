package midi

import (
	"math/rand"
	"testing"
)

func TestStackOrdersByFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		var s Stack
		n := 1 + rng.Intn(StackSize)
		for i := 0; i < n; i++ {
			if !s.Append(rng.Intn(64), 0, NoteOn, uint8(i%128), 100) {
				t.Fatalf("append %d of %d failed", i, n)
			}
		}
		if s.Len() != n {
			t.Fatalf("Len() = %d, want %d", s.Len(), n)
		}
		for i := 1; i < s.Len(); i++ {
			if s.At(i-1).Frame > s.At(i).Frame {
				t.Fatalf("round %d: frame %d before %d at index %d", round, s.At(i-1).Frame, s.At(i).Frame, i)
			}
		}
	}
}

func TestStackKeepsInsertionOrderForEqualFrames(t *testing.T) {
	var s Stack
	s.Append(10, 0, NoteOn, 1, 100)
	s.Append(5, 0, NoteOn, 2, 100)
	s.Append(10, 0, NoteOff, 3, 0)
	s.Append(5, 0, NoteOff, 4, 0)
	s.Append(0, 0, NoteOn, 5, 100)

	want := []uint8{5, 2, 4, 1, 3}
	for i, ev := range s.Events() {
		if ev.Note != want[i] {
			t.Errorf("event %d note = %d, want %d", i, ev.Note, want[i])
		}
	}
}

func TestStackDropsWhenFull(t *testing.T) {
	var s Stack
	for i := 0; i < StackSize; i++ {
		s.Append(100, 0, NoteOn, 60, 100)
	}
	if s.Append(0, 0, NoteOn, 61, 100) {
		t.Error("append to full stack succeeded")
	}
	if s.Len() != StackSize {
		t.Errorf("Len() = %d, want %d", s.Len(), StackSize)
	}
	if s.At(0).Note != 60 {
		t.Error("dropped event displaced an existing one")
	}

	s.Clear()
	if s.Len() != 0 || len(s.Events()) != 0 {
		t.Error("Clear left events behind")
	}
}

func TestEventBytes(t *testing.T) {
	ev := Event{Channel: 3, Status: NoteOn, Note: 60, Velocity: 90, Size: 3}
	b := ev.Bytes()
	if len(b) != 3 || b[0] != 0x93 || b[1] != 60 || b[2] != 90 {
		t.Errorf("Bytes() = % x", b)
	}

	var ch, key, vel uint8
	if !ev.Message().GetNoteStart(&ch, &key, &vel) || ch != 3 || key != 60 || vel != 90 {
		t.Errorf("Message() decoded as ch=%d key=%d vel=%d", ch, key, vel)
	}

	pc := Event{Channel: 1, Status: 0xC0, Note: 7, Size: 2}
	if got := pc.Bytes(); len(got) != 2 || got[0] != 0xC1 {
		t.Errorf("program change Bytes() = % x", got)
	}
}
