package sequencer

// SilentNote marks a key that is still tracked but does not sound
const SilentNote uint8 = 0xff

// Output is the playback state of one row of one key
type Output struct {
	Playing     bool
	Gate        bool // a NOTE_ON was sent for the current note
	StepOffset  int  // row step minus key step (mod NR_OF_STEPS), or HaltStep
	Direction   int
	RunStart    int // start step of the current run, -1 before the first step
	Pad         Pad
	JumpOff     uint32 // per step: jump already taken
	Note        uint8
	Velocity    uint8
	MIDIChannel uint8
	Duration    float64
	OffStep     float64 // key step at which the current note ends
}

func (o *Output) reset() {
	*o = Output{Direction: 1, RunStart: -1}
}

// Halted reports whether the row stopped advancing
func (o *Output) Halted() bool {
	return o.StepOffset == HaltStep
}

// Key is one tracked input note with its own playback cursor
type Key struct {
	Note      uint8
	Velocity  uint8
	StartPos  float64 // beat position of key step 0
	StepNr    int     // last resolved key step, -1 before the first
	Sustained bool    // released while the sustain pedal was down
	Outputs   [Rows]Output
}

func (k *Key) reset(note, velocity uint8, startPos float64) {
	k.Note = note
	k.Velocity = velocity
	k.StartPos = startPos
	k.StepNr = -1
	k.Sustained = false
	for r := range k.Outputs {
		k.Outputs[r].reset()
	}
}

// Sounding reports whether the key produces notes
func (k *Key) Sounding() bool {
	return k.Note != SilentNote
}

// Halted reports whether every row of the key stopped
func (k *Key) Halted() bool {
	for r := range k.Outputs {
		if !k.Outputs[r].Halted() {
			return false
		}
	}
	return true
}

// RowStep returns the current step of a row, or -1 if the row has not
// started or is halted
func (k *Key) RowStep(row, n int) int {
	o := &k.Outputs[row]
	if k.StepNr < 0 || o.Halted() {
		return -1
	}
	return mod(k.StepNr+o.StepOffset, n)
}

// KeyTracker holds the active keys in insertion order
type KeyTracker struct {
	keys [MaxKeys]Key
	n    int
}

// Add appends a new key. It returns nil if the tracker is full.
func (t *KeyTracker) Add(note, velocity uint8, startPos float64) *Key {
	if t.n >= MaxKeys {
		return nil
	}
	k := &t.keys[t.n]
	k.reset(note, velocity, startPos)
	t.n++
	return k
}

// Remove deletes the key at index i
func (t *KeyTracker) Remove(i int) {
	if i < 0 || i >= t.n {
		return
	}
	copy(t.keys[i:t.n-1], t.keys[i+1:t.n])
	t.n--
}

// Find returns the index of the key playing note, or -1
func (t *KeyTracker) Find(note uint8) int {
	for i := 0; i < t.n; i++ {
		if t.keys[i].Note == note {
			return i
		}
	}
	return -1
}

// Last returns the most recently added key, or nil
func (t *KeyTracker) Last() *Key {
	if t.n == 0 {
		return nil
	}
	return &t.keys[t.n-1]
}

// Clear removes every key
func (t *KeyTracker) Clear() {
	t.n = 0
}

// Len returns the number of keys
func (t *KeyTracker) Len() int { return t.n }

// At returns the key at index i
func (t *KeyTracker) At(i int) *Key { return &t.keys[i] }
