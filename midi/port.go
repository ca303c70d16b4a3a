package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrNoPort is returned when no port matches a requested name
var ErrNoPort = errors.New("midi: no matching port")

// ErrDriverTimeout is returned when the driver does not answer a port query
var ErrDriverTimeout = errors.New("midi: driver timed out listing ports")

// PortTimeout bounds every port query
const PortTimeout = 3 * time.Second

// Sender sends a message to an output port
type Sender func(gomidi.Message) error

// Ports is a snapshot of the available ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ListPorts queries the driver. CoreMIDI can hang, so the query gives up
// after timeout.
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrDriverTimeout
	}
}

// FindIn returns the first input port whose name contains name (case
// insensitive).
func (p Ports) FindIn(name string) (drivers.In, error) {
	for _, in := range p.In {
		if matchName(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input %q: %w", name, ErrNoPort)
}

// FindOut returns the first output port whose name contains name
func (p Ports) FindOut(name string) (drivers.Out, error) {
	for _, out := range p.Out {
		if matchName(out.String(), name) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("output %q: %w", name, ErrNoPort)
}

func matchName(port, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(port), strings.ToLower(want))
}

// OpenOut opens the named output port and returns a sender for it
func OpenOut(name string) (Sender, error) {
	ports, err := ListPorts(PortTimeout)
	if err != nil {
		return nil, err
	}
	out, err := ports.FindOut(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", out.String(), err)
	}
	return send, nil
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}

// PortEvent is emitted when a watched input port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
	In   drivers.In
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Watcher polls for input ports matching a name
type Watcher struct {
	match    string
	pollRate time.Duration
	events   chan PortEvent

	mu   sync.Mutex
	seen map[string]bool
}

// NewWatcher creates a watcher for input ports whose name contains match
func NewWatcher(match string) *Watcher {
	return &Watcher{
		match:    match,
		pollRate: time.Second,
		events:   make(chan PortEvent, 16),
		seen:     make(map[string]bool),
	}
}

// Events returns the connect/disconnect channel. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan PortEvent {
	return w.events
}

// Run polls until ctx is done (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	ports, err := ListPorts(PortTimeout)
	if err != nil {
		// skip this round, the driver may recover
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := make(map[string]bool)
	for _, in := range ports.In {
		if !matchName(in.String(), w.match) {
			continue
		}
		name := in.String()
		now[name] = true
		if !w.seen[name] {
			w.emit(ctx, PortEvent{Type: PortConnected, Name: name, In: in})
		}
	}
	for name := range w.seen {
		if !now[name] {
			w.emit(ctx, PortEvent{Type: PortDisconnected, Name: name})
		}
	}
	w.seen = now
}

func (w *Watcher) emit(ctx context.Context, ev PortEvent) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
