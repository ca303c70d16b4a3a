package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"go-bstep/config"
	"go-bstep/debug"
	"go-bstep/host"
	"go-bstep/midi"
	"go-bstep/project"
	"go-bstep/sequencer"
	"go-bstep/theme"
	"go-bstep/tui"
)

var (
	paletteFlag = flag.String("palette", "", "GIMP palette file for the UI colors")
	projectFlag = flag.String("project", "", "project to load the latest save of")
	saveFlag    = flag.Bool("save", false, "save the state into the project on exit")
	debugFlag   = flag.Bool("debug", false, "log to ~/.config/go-bstep/debug.log")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "go-bstep: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *debugFlag {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	values, unknown := cfg.ControllerValues()
	for _, name := range unknown {
		debug.Log("config", "unknown controller %q ignored", name)
	}

	engine, err := sequencer.New(cfg.Audio.SampleRate, sequencer.WithControllers(values))
	if err != nil {
		return err
	}

	defer midi.CloseDriver()
	var send midi.Sender
	if cfg.Ports.Output != "" {
		send, err = midi.OpenOut(cfg.Ports.Output)
		if err != nil {
			return err
		}
	}
	player := host.NewPlayer(engine, send, cfg.Audio.BlockSize)

	store, err := project.DefaultStore()
	if err != nil {
		return err
	}
	projectName := *projectFlag
	if projectName == "" {
		projectName = cfg.UI.LastProject
	}
	if projectName != "" {
		if err := loadLatest(player, store, projectName); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan struct{})
	go func() {
		player.Run(ctx)
		close(stopped)
	}()

	var watcher *midi.Watcher
	if cfg.Ports.Input != "" {
		if cfg.Ports.AutoConnect {
			watcher = midi.NewWatcher(cfg.Ports.Input)
			go watcher.Run(ctx)
		} else if err := listenOnce(ctx, player, cfg.Ports.Input); err != nil {
			return err
		}
	}

	th := theme.New(theme.LoadOrDefault(*paletteFlag))
	if cfg.Ports.Surface != "" {
		surfaces := midi.NewWatcher(cfg.Ports.Surface)
		go surfaces.Run(ctx)
		go connectSurfaces(ctx, player, surfaces, th)
	}

	m := tui.NewModel(player, player.UpdateChan, th)
	if watcher != nil {
		m.Ports = connectInputs(ctx, player, watcher)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	// let the player silence the outputs before the driver closes
	cancel()
	<-stopped
	if err != nil {
		return err
	}

	if *saveFlag && projectName != "" {
		filename, err := player.Save(store, projectName, "")
		if err != nil {
			return err
		}
		debug.Log("project", "saved %s/%s", projectName, filename)
		cfg.UI.LastProject = projectName
		if err := cfg.Save(); err != nil {
			return err
		}
	}
	return nil
}

// loadLatest restores the newest save of a project. A project without saves
// starts empty.
func loadLatest(player *host.Player, store *project.Store, name string) error {
	saves, err := store.ListSaves(name)
	if err != nil {
		return err
	}
	if len(saves) == 0 {
		debug.Log("project", "no saves in %s", name)
		return nil
	}
	err = player.Load(store, name, saves[0].Filename)
	var pe *sequencer.ParseError
	if errors.As(err, &pe) {
		debug.Log("project", "%s: %v", saves[0].Filename, err)
		return nil
	}
	return err
}

// listenOnce connects a fixed input port
func listenOnce(ctx context.Context, player *host.Player, name string) error {
	ports, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		return err
	}
	in, err := ports.FindIn(name)
	if err != nil {
		return err
	}
	kb, err := midi.ListenKeyboard(in)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		kb.Close()
	}()
	go player.Listen(ctx, kb)
	return nil
}

// connectInputs opens every input the watcher finds and forwards the port
// events to the UI
func connectInputs(ctx context.Context, player *host.Player, w *midi.Watcher) <-chan midi.PortEvent {
	ui := make(chan midi.PortEvent, 16)
	go func() {
		defer close(ui)
		open := make(map[string]context.CancelFunc)
		defer func() {
			for _, stop := range open {
				stop()
			}
		}()

		for ev := range w.Events() {
			switch ev.Type {
			case midi.PortConnected:
				kb, err := midi.ListenKeyboard(ev.In)
				if err != nil {
					debug.Log("midi", "%v", err)
					continue
				}
				kctx, stop := context.WithCancel(ctx)
				open[ev.Name] = func() {
					stop()
					kb.Close()
				}
				go player.Listen(kctx, kb)
				debug.Log("midi", "input %s connected", ev.Name)
			case midi.PortDisconnected:
				if stop, ok := open[ev.Name]; ok {
					stop()
					delete(open, ev.Name)
				}
				debug.Log("midi", "input %s gone", ev.Name)
			}
			select {
			case ui <- ev:
			default:
			}
		}
	}()
	return ui
}

// connectSurfaces runs a pad editor on every Launchpad the watcher finds
func connectSurfaces(ctx context.Context, player *host.Player, w *midi.Watcher, th *theme.Theme) {
	open := make(map[string]*midi.Launchpad)
	defer func() {
		for _, lp := range open {
			lp.Close()
		}
	}()

	for ev := range w.Events() {
		if !midi.IsLaunchpad(ev.Name) {
			continue
		}
		switch ev.Type {
		case midi.PortConnected:
			ports, err := midi.ListPorts(midi.PortTimeout)
			if err != nil {
				debug.Log("surface", "%v", err)
				continue
			}
			out, err := ports.FindOut(ev.Name)
			if err != nil {
				out, err = ports.FindOut(strings.Replace(ev.Name, " In", " Out", 1))
			}
			if err != nil {
				debug.Log("surface", "%s has no output: %v", ev.Name, err)
				continue
			}
			lp, err := midi.OpenLaunchpad(ev.In, out)
			if err != nil {
				debug.Log("surface", "%v", err)
				continue
			}
			open[ev.Name] = lp
			go func() {
				sub := player.Subscribe()
				host.NewSurface(player, lp, th).Run(ctx, sub)
				player.Unsubscribe(sub)
			}()
			debug.Log("surface", "%s connected", ev.Name)
		case midi.PortDisconnected:
			if lp, ok := open[ev.Name]; ok {
				lp.Close()
				delete(open, ev.Name)
			}
		}
	}
}
