package host

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-bstep/debug"
	"go-bstep/midi"
	"go-bstep/project"
	"go-bstep/scale"
	"go-bstep/sequencer"
)

// Update is sent to the UI after a block that produced display data
type Update struct {
	Status sequencer.Status
	Pads   []sequencer.PadMessage
	Scales []scale.EditMap
}

type scheduled struct {
	at  time.Time
	msg gomidi.Message
}

// Player drives an engine from the wall clock and sends its MIDI output
// to a port. All engine access goes through the player's lock.
type Player struct {
	engine      *sequencer.Engine
	send        midi.Sender
	blockFrames int

	mu        sync.Mutex
	pending   []sequencer.Event
	ctrl      [sequencer.NrControllers]float64
	ctrlDirty bool
	block     sequencer.Block

	out     chan scheduled
	dropped int

	// Notify UI of updates
	UpdateChan chan Update
	subs       []chan Update
	resync     bool
}

// NewPlayer creates a player. send may be nil to run without output.
func NewPlayer(e *sequencer.Engine, send midi.Sender, blockFrames int) *Player {
	if blockFrames <= 0 {
		blockFrames = 512
	}
	return &Player{
		engine:      e,
		send:        send,
		blockFrames: blockFrames,
		ctrl:        e.ControllerValues(),
		pending:     make([]sequencer.Event, 0, 64),
		out:         make(chan scheduled, midi.StackSize*4),
		UpdateChan:  make(chan Update, 1),
	}
}

// Run processes blocks until ctx is done (blocking - run in goroutine)
func (p *Player) Run(ctx context.Context) {
	period := time.Duration(float64(p.blockFrames) / p.engine.SampleRate() * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	go p.outputLoop(ctx)
	debug.Log("host", "player started: %d frames per block, %v", p.blockFrames, period)

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			p.mu.Lock()
			dropped := p.dropped
			p.mu.Unlock()
			debug.Log("host", "player stopped, %d messages dropped", dropped)
			return
		case now := <-ticker.C:
			p.processBlock(now)
		}
	}
}

func (p *Player) processBlock(start time.Time) {
	p.mu.Lock()
	if p.resync && len(p.pending) < cap(p.pending) {
		// a reader missed pad changes, have the engine send everything again
		p.pending = append(p.pending, sequencer.Event{Kind: sequencer.EventUIOn})
		p.resync = false
	}
	p.block.Frames = p.blockFrames
	p.block.Events = p.pending
	p.block.Controllers = nil
	if p.ctrlDirty {
		p.block.Controllers = &p.ctrl
		p.ctrlDirty = false
	}
	res := p.engine.Process(&p.block)
	p.pending = p.pending[:0]

	for _, c := range res.Corrections {
		p.ctrl[c.Index] = c.Value
	}
	rate := p.engine.SampleRate()
	for _, ev := range res.MIDI {
		at := start.Add(time.Duration(float64(ev.Frame) / rate * float64(time.Second)))
		select {
		case p.out <- scheduled{at: at, msg: ev.Message()}:
		default:
			p.dropped++
			debug.LogEvery(100, "host", "output queue full")
		}
	}

	var upd *Update
	if res.HasStatus {
		upd = &Update{Status: res.Status}
		if len(res.Pads) > 0 {
			upd.Pads = append([]sequencer.PadMessage(nil), res.Pads...)
		}
		if len(res.Scales) > 0 {
			upd.Scales = append([]scale.EditMap(nil), res.Scales...)
		}
	}
	subs := p.subs
	p.mu.Unlock()

	if upd == nil {
		return
	}
	missed := !p.publish(p.UpdateChan, *upd)
	for _, ch := range subs {
		if !p.publish(ch, *upd) {
			missed = true
		}
	}
	if missed && (len(upd.Pads) > 0 || len(upd.Scales) > 0) {
		p.mu.Lock()
		p.resync = true
		p.mu.Unlock()
	}
}

func (p *Player) publish(ch chan Update, u Update) bool {
	select {
	case ch <- u:
		return true
	default:
		return false
	}
}

// Subscribe returns an extra update channel, e.g. for a pad surface. The
// engine resends the whole grid to all readers.
func (p *Player) Subscribe() <-chan Update {
	ch := make(chan Update, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	p.SetUI(true)
	return ch
}

// Unsubscribe drops a channel returned by Subscribe
func (p *Player) Unsubscribe(sub <-chan Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := make([]chan Update, 0, len(p.subs))
	for _, ch := range p.subs {
		if (<-chan Update)(ch) != sub {
			subs = append(subs, ch)
		}
	}
	p.subs = subs
}

// outputLoop sends scheduled messages at their time
func (p *Player) outputLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-p.out:
			if wait := time.Until(s.at); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if p.send == nil {
				continue
			}
			if err := p.send(s.msg); err != nil {
				debug.LogEvery(100, "host", "send failed: %v", err)
			}
		}
	}
}

// shutdown silences every output channel
func (p *Player) shutdown() {
	if p.send == nil {
		return
	}
	for ch := uint8(0); ch < 16; ch++ {
		p.send(gomidi.ControlChange(ch, midi.CtlAllNotesOff, 0))
	}
}

func (p *Player) enqueue(ev sequencer.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == cap(p.pending) {
		p.dropped++
		return
	}
	p.pending = append(p.pending, ev)
}

// Feed queues incoming MIDI for the next block
func (p *Player) Feed(raw []byte) {
	p.enqueue(sequencer.Event{Kind: sequencer.EventMIDI, MIDI: raw})
}

// Listen feeds every message of kb until ctx is done (blocking - run in
// goroutine)
func (p *Player) Listen(ctx context.Context, kb *midi.Keyboard) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-kb.Events():
			p.Feed(ev.Bytes)
		}
	}
}

// SetTransport queues a host transport change
func (p *Player) SetTransport(t sequencer.Transport) {
	p.enqueue(sequencer.Event{Kind: sequencer.EventTransport, Transport: t})
}

// SetUI switches the engine's display output on or off
func (p *Player) SetUI(on bool) {
	kind := sequencer.EventUIOff
	if on {
		kind = sequencer.EventUIOn
	}
	p.enqueue(sequencer.Event{Kind: kind})
}

// EditPads queues pad edits
func (p *Player) EditPads(pads []sequencer.PadMessage) {
	p.enqueue(sequencer.Event{Kind: sequencer.EventPads, Pads: pads})
}

// SetController changes one controller for the next block
func (p *Player) SetController(i int, v float64) {
	if i < 0 || i >= sequencer.NrControllers {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl[i] = v
	p.ctrlDirty = true
}

// SetControllers replaces all controller values for the next block
func (p *Player) SetControllers(values [sequencer.NrControllers]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl = values
	p.ctrlDirty = true
}

// Controller returns the value last set or corrected for controller i
func (p *Player) Controller(i int) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl[i]
}

// PaintPad stores the editor's selected pad at row, step
func (p *Player) PaintPad(row, step int) (sequencer.Pad, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.PaintPad(row, step)
}

// Snapshot returns the engine status
func (p *Player) Snapshot() sequencer.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Snapshot()
}

// Save stores the engine state as a new save of projectName
func (p *Player) Save(store *project.Store, projectName, name string) (string, error) {
	p.mu.Lock()
	f := project.Capture(p.engine)
	p.mu.Unlock()
	return store.Save(projectName, name, f)
}

// Load restores a save. A partially readable save is applied and its
// parse error returned.
func (p *Player) Load(store *project.Store, projectName, filename string) error {
	f, err := store.Load(projectName, filename)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	values, err := f.Apply(p.engine)
	var pe *sequencer.ParseError
	if err != nil && !errors.As(err, &pe) {
		return err
	}
	p.ctrl = values
	p.ctrlDirty = true
	return err
}
