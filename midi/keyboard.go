package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// RawEvent is a message received from an input port
type RawEvent struct {
	Bytes []byte
	Time  int32 // driver timestamp in ms
}

// Keyboard forwards channel messages from a MIDI input port
type Keyboard struct {
	name     string
	stopFunc func()
	events   chan RawEvent
	dropped  atomic.Int64
}

// ListenKeyboard opens inPort and starts forwarding its messages
func ListenKeyboard(inPort drivers.In) (*Keyboard, error) {
	kb := &Keyboard{
		name:   inPort.String(),
		events: make(chan RawEvent, 256),
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		if len(msg) == 0 || msg[0] >= 0xF0 {
			return
		}
		b := make([]byte, len(msg))
		copy(b, msg)
		select {
		case kb.events <- RawEvent{Bytes: b, Time: timestampms}:
		default:
			kb.dropped.Add(1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input %q: %w", kb.name, err)
	}
	kb.stopFunc = stop
	return kb, nil
}

// Name returns the port name
func (kb *Keyboard) Name() string {
	return kb.name
}

// Events returns the incoming message channel
func (kb *Keyboard) Events() <-chan RawEvent {
	return kb.events
}

// Dropped returns how many messages were lost to a full channel
func (kb *Keyboard) Dropped() int64 {
	return kb.dropped.Load()
}

// Close stops listening. The events channel is left open so a reader
// blocked in select does not see spurious zero values.
func (kb *Keyboard) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
		kb.stopFunc = nil
	}
	return nil
}
