package host

import (
	"sort"

	"go-bstep/midi"
	"go-bstep/sequencer"
)

// Render runs e offline for frames frames in blocks of blockFrames and
// returns every MIDI event with its absolute frame. Input events carry
// absolute frames too.
func Render(e *sequencer.Engine, frames, blockFrames int, input []sequencer.Event) []midi.Event {
	if blockFrames <= 0 {
		blockFrames = 512
	}
	sort.SliceStable(input, func(i, j int) bool { return input[i].Frame < input[j].Frame })

	var out []midi.Event
	var block sequencer.Block
	next := 0
	for start := 0; start < frames; start += blockFrames {
		n := min(blockFrames, frames-start)

		block.Frames = n
		block.Events = block.Events[:0]
		for next < len(input) && input[next].Frame < start+n {
			ev := input[next]
			ev.Frame -= start
			block.Events = append(block.Events, ev)
			next++
		}

		res := e.Process(&block)
		for _, ev := range res.MIDI {
			ev.Frame += start
			out = append(out, ev)
		}
	}
	return out
}
