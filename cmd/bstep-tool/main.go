package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"go-bstep/host"
	"go-bstep/midi"
	"go-bstep/project"
	"go-bstep/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "render":
		err = render(os.Args[2:])
	case "dump":
		err = dump(os.Args[2:])
	default:
		usage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bstep-tool %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("go-bstep tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                      - List all MIDI ports")
	fmt.Println("  render -project P [-o F]  - Render a save to a Standard MIDI File")
	fmt.Println("  dump -project P           - Print the state blobs of a save")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		fmt.Println("Fix on macOS: sudo killall coreaudiod midiserver")
		return err
	}
	defer midi.CloseDriver()

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

// saveFlags are shared by the commands that read a save
type saveFlags struct {
	dir, project, save string
}

func (sf *saveFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.dir, "dir", "", "project store directory (default ~/.config/go-bstep/projects)")
	fs.StringVar(&sf.project, "project", "", "project name")
	fs.StringVar(&sf.save, "save", "", "save file name (default newest)")
}

func (sf *saveFlags) load() (*project.File, error) {
	if sf.project == "" {
		return nil, fmt.Errorf("-project is required")
	}
	store := project.NewStore(sf.dir)
	if sf.dir == "" {
		var err error
		if store, err = project.DefaultStore(); err != nil {
			return nil, err
		}
	}
	return store.Load(sf.project, sf.save)
}

func render(args []string) error {
	var sf saveFlags
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	sf.register(fs)
	out := fs.String("o", "out.mid", "output file")
	bars := fs.Int("bars", 4, "length in bars")
	rate := fs.Float64("rate", 48000, "sample rate of the frame clock")
	block := fs.Int("block", 512, "frames per block")
	seed := fs.Int64("seed", 1, "random seed")
	note := fs.Int("note", 60, "key held in HOST mode (-1 for none)")
	fs.Parse(args)

	f, err := sf.load()
	if err != nil {
		return err
	}
	values := f.Values()
	e, err := sequencer.New(*rate, sequencer.WithControllers(values), sequencer.WithSeed(*seed))
	if err != nil {
		return err
	}
	if _, err := f.Apply(e); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	bpm := values[sequencer.AutoplayBPM]
	bpb := values[sequencer.AutoplayBPB]
	frames := int(float64(*bars) * bpb * 60 / bpm * *rate)

	var input []sequencer.Event
	if int(values[sequencer.Mode]) == sequencer.ModeHost {
		input = append(input, sequencer.Event{
			Kind: sequencer.EventTransport,
			Transport: sequencer.Transport{
				BPM: bpm, BeatsPerBar: bpb, Speed: 1, HasPosition: true,
			},
		})
		if *note >= 0 && *note < 128 {
			ch := byte(0)
			if in := int(values[sequencer.MidiInChannel]); in > 0 {
				ch = byte(in - 1)
			}
			input = append(input, sequencer.Event{
				Kind: sequencer.EventMIDI,
				MIDI: []byte{0x90 | ch, byte(*note), 100},
			})
		}
	}

	events := host.Render(e, frames, *block, input)

	w, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer w.Close()
	err = midi.WriteSMF(w, midi.Render{
		SampleRate:  *rate,
		BPM:         bpm,
		BeatsPerBar: int(bpb),
		Events:      events,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d events, %d frames\n", *out, len(events), frames)
	return w.Close()
}

func dump(args []string) error {
	var sf saveFlags
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	sf.register(fs)
	fs.Parse(args)

	f, err := sf.load()
	if err != nil {
		return err
	}

	fmt.Println("=== Pads ===")
	fmt.Println(f.Pads)
	fmt.Println("=== Scales ===")
	fmt.Println(f.Scales)

	fmt.Println("=== Controllers (* = not default) ===")
	names := make([]string, 0, len(f.Controllers))
	for name := range f.Controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	defaults := sequencer.DefaultControllers()
	for _, name := range names {
		v := f.Controllers[name]
		mark := " "
		if i, ok := sequencer.ControllerIndex(name); !ok {
			mark = "?"
		} else if defaults[i] != v {
			mark = "*"
		}
		fmt.Printf(" %s %-22s %g\n", mark, name, v)
	}
	return nil
}
