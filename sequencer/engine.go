package sequencer

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go-bstep/midi"
	"go-bstep/scale"
)

// StatusRate is the default number of status snapshots per second
const StatusRate = 25

// EventKind identifies the payload of an Event
type EventKind int

const (
	EventMIDI EventKind = iota
	EventTransport
	EventUIOn
	EventUIOff
	EventPads
	EventScaleMap
)

// Transport is the host timeline
type Transport struct {
	BPM         float64
	BeatsPerBar float64
	Speed       float64 // 0 = stopped, 1 = playing
	HasPosition bool
	Beat        float64
}

// PadMessage carries one pad cell
type PadMessage struct {
	Row, Step int
	Pad       Pad
}

// Event is a time-stamped block input
type Event struct {
	Frame     int
	Kind      EventKind
	MIDI      []byte
	Transport Transport
	Pads      []PadMessage
	Scale     *scale.EditMap
}

// Block is one processing call. Events must be ordered by frame. A nil
// Controllers pointer keeps the current values.
type Block struct {
	Frames      int
	Controllers *[NrControllers]float64
	Events      []Event
}

// Result is the output of one block. It is owned by the engine and valid
// until the next call to Process.
type Result struct {
	MIDI        []midi.Event
	Pads        []PadMessage
	Status      Status
	HasStatus   bool
	Scales      []scale.EditMap
	Corrections []Correction
}

// Engine is one sequencer instance. It is not safe for concurrent use:
// Process and the editing methods must not run at the same time.
type Engine struct {
	sampleRate float64
	seed       int64
	rng        *rand.Rand

	ctrl  [NrControllers]float64
	grid  Grid
	maps  []scale.Map
	scale scale.Engine
	keys  KeyTracker
	stack midi.Stack

	pos       float64 // beats
	anchorPos float64 // pos at the last tempo change or relocation
	anchorLen int     // frames played since anchorPos
	anchorBPM float64
	anchorSpd float64
	hostBPM   float64
	hostBPB   float64
	hostSpeed float64
	sustain   bool

	ui          bool
	uiShadow    Grid
	uiFullDump  bool
	scaleDump   bool
	statusRate  float64
	statusWait  int
	pendingStop bool

	out Result
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed makes the random pad variations reproducible
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithControllers sets the initial controller values
func WithControllers(values [NrControllers]float64) Option {
	return func(e *Engine) {
		for i, v := range values {
			e.ctrl[i] = controllers[i].Limit.Validate(v)
		}
	}
}

// WithStatusRate sets how many status snapshots are produced per second
func WithStatusRate(hz float64) Option {
	return func(e *Engine) {
		if hz > 0 {
			e.statusRate = hz
		}
	}
}

// New creates an engine running at sampleRate frames per second
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sequencer: invalid sample rate %v", sampleRate)
	}

	e := &Engine{
		sampleRate: sampleRate,
		seed:       time.Now().UnixNano(),
		ctrl:       DefaultControllers(),
		grid:       NewGrid(),
		maps:       scale.Maps(),
		hostBPM:    120,
		hostBPB:    4,
		statusRate: StatusRate,
	}
	e.uiShadow = e.grid
	e.out.Pads = make([]PadMessage, 0, Rows*MaxSteps)
	e.out.Scales = make([]scale.EditMap, 0, scale.NrMaps)
	e.out.Corrections = make([]Correction, 0, NrControllers)

	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	e.rebuildScale()
	e.startAutoplay()
	return e, nil
}

// Process runs one block
func (e *Engine) Process(b *Block) *Result {
	e.stack.Clear()
	e.out.Pads = e.out.Pads[:0]
	e.out.Scales = e.out.Scales[:0]
	e.out.Corrections = e.out.Corrections[:0]
	e.out.HasStatus = false

	if e.pendingStop {
		e.stopAll(0)
		e.resetKeys()
		e.pendingStop = false
	}
	if b.Controllers != nil {
		e.syncControllers(b.Controllers)
	}

	last := b.Frames - 1
	if last < 0 {
		last = 0
	}
	frame := 0
	for i := range b.Events {
		ev := &b.Events[i]
		f := min(max(ev.Frame, frame), last)
		e.advance(frame, f)
		frame = f
		e.handleEvent(ev, f)
	}
	e.advance(frame, b.Frames)
	e.updateStatus(b.Frames)

	e.out.MIDI = e.stack.Events()
	return &e.out
}

func (e *Engine) handleEvent(ev *Event, frame int) {
	switch ev.Kind {
	case EventMIDI:
		e.handleMIDI(ev.MIDI, frame)
	case EventTransport:
		e.setTransport(ev.Transport, frame)
	case EventUIOn:
		e.ui = true
		e.uiFullDump = true
		e.scaleDump = true
		e.statusWait = 0
	case EventUIOff:
		e.ui = false
	case EventPads:
		for _, pm := range ev.Pads {
			e.editPad(pm)
		}
	case EventScaleMap:
		if ev.Scale != nil {
			e.editScale(ev.Scale, frame)
		}
	}
}

// syncControllers validates new controller values and applies them.
// Sounding notes affected by a change are stopped before the change.
func (e *Engine) syncControllers(in *[NrControllers]float64) {
	var next [NrControllers]float64
	var effects ctrlEffect
	var stopCh [NrChannels]bool
	spb := e.stepsPerBeat()

	for i := range in {
		v := controllers[i].Limit.Validate(in[i])
		if v != in[i] {
			e.out.Corrections = append(e.out.Corrections, Correction{Index: i, Value: v})
		}
		next[i] = v
		if v == e.ctrl[i] {
			continue
		}
		eff := controllerEffect(i)
		effects |= eff
		if eff&effStopChannel != 0 {
			stopCh[(i-ChannelBase)/chParams] = true
		}
	}

	if effects&effStopAll != 0 {
		e.stopAll(0)
	} else {
		for c, stop := range stopCh {
			if stop {
				e.stopChannel(c, 0)
			}
		}
	}

	e.ctrl = next
	if effects&effRebuildScale != 0 {
		e.rebuildScale()
	}
	e.keepSteps(spb)
	if effects&effResetKeys != 0 {
		e.resetKeys()
	}
}

func (e *Engine) rebuildScale() {
	m := &e.maps[e.mapIndex()]
	e.scale.Load(m)
	e.scale.SetRoot(e.rootNote())
	e.scale.SetSignature(scale.Signature(e.ctrl[Signature]))
}

func (e *Engine) resetKeys() {
	e.keys.Clear()
	e.sustain = false
	e.startAutoplay()
}

// startAutoplay creates the synthetic key of AUTOPLAY mode
func (e *Engine) startAutoplay() {
	if e.hostMode() || !e.playing() || e.keys.Len() > 0 {
		return
	}
	e.keys.Add(uint8(min(max(e.rootNote(), 0), 127)), 127, e.pos)
}

// advance moves the timeline from frame f0 to f1 and runs every key
func (e *Engine) advance(f0, f1 int) {
	if f1 <= f0 {
		return
	}
	bpm, speed := e.tempo()
	if bpm != e.anchorBPM || speed != e.anchorSpd {
		e.anchor(e.pos)
		e.anchorBPM, e.anchorSpd = bpm, speed
	}
	p0 := e.pos
	e.anchorLen += f1 - f0
	p1 := e.anchorPos + float64(e.anchorLen)*speed*bpm/60/e.sampleRate
	if p1 > p0 {
		e.runSequencer(p0, p1, f0, f1)
	}
	e.pos = p1
}

// anchor restarts the frame count of the timeline at pos
func (e *Engine) anchor(pos float64) {
	e.pos = pos
	e.anchorPos = pos
	e.anchorLen = 0
}

// keepSteps moves the start of every key so that its current step stays
// the same after steps per beat changed from old
func (e *Engine) keepSteps(old float64) {
	spb := e.stepsPerBeat()
	if spb == old || !(spb > 0) || !(old > 0) {
		return
	}
	for i := 0; i < e.keys.Len(); i++ {
		k := e.keys.At(i)
		cur := (e.pos - k.StartPos) * old
		k.StartPos = e.pos - cur/spb
	}
}

func (e *Engine) setTransport(t Transport, frame int) {
	spb := e.stepsPerBeat()
	if t.BPM > 0 {
		e.hostBPM = t.BPM
	}
	if t.BeatsPerBar > 0 {
		e.hostBPB = t.BeatsPerBar
	}
	speed := math.Max(t.Speed, 0)
	if e.hostMode() && speed == 0 && e.hostSpeed > 0 {
		e.stopAll(frame)
	}
	e.hostSpeed = speed
	e.keepSteps(spb)

	if t.HasPosition && e.hostMode() {
		// keys keep their step phase across relocations
		d := t.Beat - e.pos
		for i := 0; i < e.keys.Len(); i++ {
			e.keys.At(i).StartPos += d
		}
		e.anchor(t.Beat)
	}
}

func (e *Engine) editPad(pm PadMessage) {
	if pm.Row < 0 || pm.Row >= Rows || pm.Step < 0 || pm.Step >= MaxSteps {
		return
	}
	v, _ := ValidatePad(pm.Pad)
	// the next diff echoes the stored value to every UI
	e.grid[pm.Row][pm.Step] = v
}

func (e *Engine) editScale(em *scale.EditMap, frame int) {
	if em.ID < scale.FirstUserMap || em.ID >= len(e.maps) {
		return
	}
	e.maps[em.ID] = em.Realtime()
	e.maps[em.ID].ID = em.ID
	if em.ID == e.mapIndex() {
		e.stopAll(frame)
		e.rebuildScale()
	}
	e.scaleDump = true
}

func (e *Engine) hostMode() bool { return int(e.ctrl[Mode]) == ModeHost }

func (e *Engine) playing() bool { return e.ctrl[Play] != 0 }

func (e *Engine) nrSteps() int { return int(e.ctrl[NrOfSteps]) }

func (e *Engine) mapIndex() int {
	return min(max(int(e.ctrl[ScaleMap]), 0), len(e.maps)-1)
}

// rootNote is the MIDI note of scale element 0
func (e *Engine) rootNote() int {
	return (int(e.ctrl[Octave])+1)*12 + int(e.ctrl[Root])
}

func (e *Engine) tempo() (bpm, speed float64) {
	if !e.playing() {
		return e.bpm(), 0
	}
	if e.hostMode() {
		return e.hostBPM, e.hostSpeed
	}
	return e.ctrl[AutoplayBPM], 1
}

func (e *Engine) bpm() float64 {
	if e.hostMode() {
		return e.hostBPM
	}
	return e.ctrl[AutoplayBPM]
}

func (e *Engine) beatsPerBar() float64 {
	if e.hostMode() {
		return e.hostBPB
	}
	return e.ctrl[AutoplayBPB]
}

// stepsPerBeat converts STEPS_PER per BASE into key steps per beat
func (e *Engine) stepsPerBeat() float64 {
	sp := e.ctrl[StepsPer]
	switch int(e.ctrl[Base]) {
	case BaseSeconds:
		return sp * 60 / e.bpm()
	case BaseBars:
		return sp / e.beatsPerBar()
	}
	return sp
}

// SampleRate returns the frame rate the engine was created with
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Position returns the timeline position in beats
func (e *Engine) Position() float64 { return e.pos }

// Controller returns the current value of controller i
func (e *Engine) Controller(i int) float64 { return e.ctrl[i] }

// ControllerValues returns a copy of all controller values
func (e *Engine) ControllerValues() [NrControllers]float64 { return e.ctrl }

// Pad returns the pad at row, step
func (e *Engine) Pad(row, step int) Pad { return e.grid[row][step] }

// SetPad validates and stores a pad. It returns the stored pad and
// whether it had to be corrected.
func (e *Engine) SetPad(row, step int, p Pad) (Pad, bool) {
	if row < 0 || row >= Rows || step < 0 || step >= MaxSteps {
		return Pad{}, false
	}
	v, corrected := ValidatePad(p)
	e.grid[row][step] = v
	return v, corrected
}

// PaintPad stores a pad built from the SELECTION_* controllers
func (e *Engine) PaintPad(row, step int) (Pad, bool) {
	p := Pad{
		Channel:     MakeChannel(Control(e.ctrl[SelectionCtrl]), int(e.ctrl[SelectionCh])),
		PitchNote:   e.ctrl[SelectionNote],
		PitchOctave: e.ctrl[SelectionOctave],
		Velocity:    e.ctrl[SelectionVelocity],
		Duration:    e.ctrl[SelectionDuration],
		RandGate:    e.ctrl[SelectionRandGate],
	}
	if row < 0 || row >= Rows || step < 0 || step >= MaxSteps {
		return Pad{}, false
	}
	p, _ = e.SetPad(row, step, p)
	return p, true
}

// ScaleMaps returns the scale maps in editor form
func (e *Engine) ScaleMaps() []scale.EditMap {
	maps := make([]scale.EditMap, len(e.maps))
	for i := range e.maps {
		maps[i] = e.maps[i].Edit()
	}
	return maps
}

// Keys returns the number of active keys
func (e *Engine) Keys() int { return e.keys.Len() }
