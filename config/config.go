package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-bstep/sequencer"
)

// PortConfig names the MIDI ports of the standalone host. Names match
// case-insensitively on a substring.
type PortConfig struct {
	Output      string `json:"output,omitempty"`
	Input       string `json:"input,omitempty"`
	Surface     string `json:"surface,omitempty"` // Launchpad used as pad editor
	AutoConnect bool   `json:"autoConnect"`
}

// AudioConfig sets the frame clock the engine runs on
type AudioConfig struct {
	SampleRate float64 `json:"sampleRate"`
	BlockSize  int     `json:"blockSize"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastProject string `json:"lastProject,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Ports PortConfig  `json:"ports"`
	Audio AudioConfig `json:"audio"`
	// Controllers overrides controller defaults by name, e.g. "AUTOPLAY_BPM"
	Controllers map[string]float64 `json:"controllers,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`

	path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ports: PortConfig{Surface: "Launchpad", AutoConnect: true},
		Audio: AudioConfig{
			SampleRate: 48000,
			BlockSize:  512,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-bstep"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from ConfigPath, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 48000
	}
	if cfg.Audio.BlockSize <= 0 {
		cfg.Audio.BlockSize = 512
	}
	return cfg, nil
}

// Save writes the config back to the file it was loaded from, or to
// ConfigPath
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ControllerValues returns the controller defaults with the config's
// overrides applied. Unknown names are returned separately.
func (c *Config) ControllerValues() ([sequencer.NrControllers]float64, []string) {
	values := sequencer.DefaultControllers()
	var unknown []string
	for name, v := range c.Controllers {
		i, ok := sequencer.ControllerIndex(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		values[i] = v
	}
	return values, unknown
}

// SetController records a controller override
func (c *Config) SetController(name string, v float64) error {
	if _, ok := sequencer.ControllerIndex(name); !ok {
		return fmt.Errorf("unknown controller %q", name)
	}
	if c.Controllers == nil {
		c.Controllers = make(map[string]float64)
	}
	c.Controllers[name] = v
	return nil
}
