package host

import (
	"context"
	"testing"
	"time"

	"go-bstep/midi"
	"go-bstep/sequencer"
	"go-bstep/theme"
)

type fakePads struct {
	pads chan midi.PadEvent
	sent [][]midi.LEDUpdate
}

func newFakePads() *fakePads {
	return &fakePads{pads: make(chan midi.PadEvent, 8)}
}

func (f *fakePads) PadEvents() <-chan midi.PadEvent { return f.pads }

func (f *fakePads) SetLEDs(u []midi.LEDUpdate) error {
	f.sent = append(f.sent, append([]midi.LEDUpdate(nil), u...))
	return nil
}

func (f *fakePads) last() []midi.LEDUpdate {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func TestSurfaceSendsOnlyChanges(t *testing.T) {
	p, _ := newTestPlayer(t, nil, 6000)
	dev := newFakePads()
	s := NewSurface(p, dev, theme.New(theme.Plasma()))

	s.refresh()
	if n := len(dev.last()); n != 80 {
		t.Fatalf("first refresh sent %d LEDs, want 80", n)
	}
	s.refresh()
	if len(dev.sent) != 1 {
		t.Errorf("unchanged frame sent %d batches", len(dev.sent)-1)
	}

	var u Update
	for r := range u.Status.Cursor {
		u.Status.Cursor[r] = -1
	}
	u.Status.Cursor[3] = 5
	s.apply(u)
	s.refresh()
	got := dev.last()
	if len(got) != 1 || got[0].Row != 3 || got[0].Col != 5 || got[0].Color != [3]uint8{255, 255, 255} {
		t.Errorf("playhead LED = %+v", got)
	}
}

func TestSurfacePaintAndClear(t *testing.T) {
	p, e := newTestPlayer(t, nil, 6000)
	dev := newFakePads()
	th := theme.New(theme.Plasma())
	s := NewSurface(p, dev, th)
	s.refresh()

	s.press(1, 2)
	if e.Pad(1, 2).Out() != 1 || s.grid[1][2].Out() != 1 {
		t.Fatalf("paint: engine out %d, mirror out %d", e.Pad(1, 2).Out(), s.grid[1][2].Out())
	}
	s.refresh()
	got := dev.last()
	if len(got) != 1 || got[0].Color != [3]uint8(th.ChannelRGB(1, sequencer.NrChannels)) {
		t.Errorf("painted LED = %+v", got)
	}

	s.press(1, 2)
	if s.grid[1][2].Out() != 0 {
		t.Error("second press did not clear the mirror")
	}
	if len(p.pending) != 1 || p.pending[0].Kind != sequencer.EventPads {
		t.Errorf("pending = %+v, want one pad edit", p.pending)
	}
}

func TestSurfaceButtons(t *testing.T) {
	p, _ := newTestPlayer(t, nil, 6000)
	s := NewSurface(p, newFakePads(), theme.New(theme.Plasma()))

	s.press(midi.TopRow, btnUp)
	s.press(midi.TopRow, btnUp)
	if s.rowOff != 8 {
		t.Errorf("rowOff = %d, want 8", s.rowOff)
	}
	s.press(midi.TopRow, btnRight)
	s.press(midi.TopRow, btnLeft)
	s.press(midi.TopRow, btnLeft)
	if s.stepOff != 0 {
		t.Errorf("stepOff = %d, want 0", s.stepOff)
	}

	s.press(midi.TopRow, btnPlay)
	if p.Controller(sequencer.Play) != 0 {
		t.Error("play button did not stop")
	}
	s.press(2, midi.SideCol)
	if p.Controller(sequencer.SelectionCh) != 3 {
		t.Errorf("brush channel = %v, want 3", p.Controller(sequencer.SelectionCh))
	}
}

func TestSurfaceRunStopsWhenDeviceCloses(t *testing.T) {
	p, _ := newTestPlayer(t, nil, 6000)
	dev := newFakePads()
	s := NewSurface(p, dev, theme.New(theme.Plasma()))

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), make(chan Update))
		close(done)
	}()
	dev.pads <- midi.PadEvent{Row: midi.TopRow, Col: btnUp}
	close(dev.pads)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	if s.rowOff != 8 {
		t.Errorf("rowOff = %d, want 8", s.rowOff)
	}
}
