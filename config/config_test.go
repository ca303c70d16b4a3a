package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-bstep/sequencer"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.BlockSize != 512 || !cfg.Ports.AutoConnect {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Ports.Output = "IAC"
	if err := cfg.SetController("AUTOPLAY_BPM", 96); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetController("TEMPO", 1); err == nil {
		t.Error("unknown controller accepted")
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ports.Output != "IAC" {
		t.Errorf("output port = %q", got.Ports.Output)
	}
	values, unknown := got.ControllerValues()
	if values[sequencer.AutoplayBPM] != 96 || len(unknown) != 0 {
		t.Errorf("AUTOPLAY_BPM = %v, unknown %v", values[sequencer.AutoplayBPM], unknown)
	}
	if values[sequencer.NrOfSteps] != 16 {
		t.Errorf("NR_OF_STEPS = %v, want default", values[sequencer.NrOfSteps])
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"ports": {"input": "Keystation"}, "controllers": {"MODE": 2, "BOGUS": 3}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Ports.Input != "Keystation" {
		t.Errorf("config = %+v", cfg)
	}
	values, unknown := cfg.ControllerValues()
	if values[sequencer.Mode] != sequencer.ModeHost {
		t.Errorf("MODE = %v", values[sequencer.Mode])
	}
	if len(unknown) != 1 || unknown[0] != "BOGUS" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}
