package midi

// StackSize is the maximum number of events per block
const StackSize = 256

// Stack holds the MIDI events of one block ordered by frame. Events with
// equal frames keep their insertion order. Appending to a full stack drops
// the event.
type Stack struct {
	events [StackSize]Event
	n      int
}

// Clear empties the stack
func (s *Stack) Clear() {
	s.n = 0
}

// Append inserts a three byte message at its frame position
func (s *Stack) Append(frame int, channel, status, note, velocity uint8) bool {
	return s.AppendEvent(Event{
		Frame:    frame,
		Channel:  channel,
		Status:   status,
		Note:     note,
		Velocity: velocity,
		Size:     3,
	})
}

// AppendEvent inserts ev after every event with a frame <= ev.Frame. It
// returns false if the stack is full.
func (s *Stack) AppendEvent(ev Event) bool {
	if s.n >= StackSize {
		return false
	}
	if ev.Size == 0 {
		ev.Size = 3
	}

	i := s.n
	for i > 0 && s.events[i-1].Frame > ev.Frame {
		i--
	}
	copy(s.events[i+1:s.n+1], s.events[i:s.n])
	s.events[i] = ev
	s.n++
	return true
}

// Len returns the number of stored events
func (s *Stack) Len() int { return s.n }

// At returns the i-th event in frame order
func (s *Stack) At(i int) Event { return s.events[i] }

// Events returns a view of the stored events, valid until the next change
func (s *Stack) Events() []Event { return s.events[:s.n] }
