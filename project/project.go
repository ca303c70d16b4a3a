package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-bstep/sequencer"
)

const timeLayout = "2006-01-02_15-04-05"

// File is one saved snapshot of an engine
type File struct {
	Pads        string             `json:"pads"`
	Scales      string             `json:"scales"`
	Controllers map[string]float64 `json:"controllers"`
}

// Capture snapshots the engine state and controller values
func Capture(e *sequencer.Engine) *File {
	st := e.State()
	f := &File{
		Pads:        st.Pads,
		Scales:      st.Scales,
		Controllers: make(map[string]float64, sequencer.NrControllers),
	}
	infos := sequencer.Controllers()
	for i, v := range e.ControllerValues() {
		f.Controllers[infos[i].Name] = v
	}
	return f
}

// Values returns the saved controller values, defaults for names the file
// does not carry
func (f *File) Values() [sequencer.NrControllers]float64 {
	values := sequencer.DefaultControllers()
	for name, v := range f.Controllers {
		if i, ok := sequencer.ControllerIndex(name); ok {
			values[i] = v
		}
	}
	return values
}

// Apply restores the saved state into e and returns Values. The caller
// passes them with the next block.
func (f *File) Apply(e *sequencer.Engine) ([sequencer.NrControllers]float64, error) {
	err := e.Restore(sequencer.State{Pads: f.Pads, Scales: f.Scales})
	return f.Values(), err
}

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store keeps projects as folders of timestamped JSON saves
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// DefaultStore returns the store under ~/.config/go-bstep/projects
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(home, ".config", "go-bstep", "projects")), nil
}

// ProjectDir returns the path to a specific project
func (s *Store) ProjectDir(projectName string) string {
	return filepath.Join(s.Dir, projectName)
}

// ListProjects returns all project folder names
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (s *Store) ListSaves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.ProjectDir(projectName))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if info, ok := parseSaveName(entry.Name()); ok && !entry.IsDir() {
			saves = append(saves, info)
		}
	}
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// parseSaveName accepts 2024-01-15_14-30-00.json and
// 2024-01-15_14-30-00_name.json
func parseSaveName(filename string) (SaveInfo, bool) {
	base, ok := strings.CutSuffix(filename, ".json")
	if !ok || len(base) < len(timeLayout) {
		return SaveInfo{}, false
	}
	ts, err := time.Parse(timeLayout, base[:len(timeLayout)])
	if err != nil {
		return SaveInfo{}, false
	}

	info := SaveInfo{Filename: filename, Timestamp: ts}
	if rest := base[len(timeLayout):]; len(rest) > 1 && rest[0] == '_' {
		info.Name = rest[1:]
	}
	return info, true
}

// Save writes f as a new timestamped save and returns its file name
func (s *Store) Save(projectName, name string, f *File) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}
	dir := s.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", err
	}

	filename := s.now().Format(timeLayout)
	if name != "" {
		filename += "_" + sanitizeFilename(name)
	}
	filename += ".json"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("write save: %w", err)
	}
	return filename, nil
}

// Load reads a specific save, or the most recent one if filename is empty
func (s *Store) Load(projectName, filename string) (*File, error) {
	if filename == "" {
		saves, err := s.ListSaves(projectName)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.ProjectDir(projectName), filename))
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return &f, nil
}

// DeleteSave deletes a specific save file
func (s *Store) DeleteSave(projectName, filename string) error {
	return os.Remove(filepath.Join(s.ProjectDir(projectName), filename))
}

// RenameSave changes the name part of a save, keeping its timestamp
func (s *Store) RenameSave(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timeLayout)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += ".json"

	dir := s.ProjectDir(projectName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// DeleteProject deletes an entire project folder
func (s *Store) DeleteProject(name string) error {
	return os.RemoveAll(s.ProjectDir(name))
}

var filenameReplacer = strings.NewReplacer(
	" ", "-", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}
