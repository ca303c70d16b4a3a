package scale

import "unicode/utf8"

// Element encoding: values with Absolute set carry a fixed MIDI note in the
// low 7 bits and ignore the input key; other values are signed scale degrees.
const (
	Absolute = 0x100
	NoteMask = 0x7f
)

const (
	NrElements = 16
	NameSize   = 32
	SymbolSize = 12
	UserMaps   = 4
)

// Map is the realtime scale record: fixed size, no heap strings
type Map struct {
	ID         int
	Name       [NameSize]byte
	Elements   [NrElements]int
	AltSymbols [NrElements][SymbolSize]byte
	Intervals  [12]int
}

// EditMap is the editor-side scale record
type EditMap struct {
	ID         int
	Name       string
	Elements   [NrElements]int
	AltSymbols [NrElements]string
	Intervals  [12]int
}

// IsAbsolute reports whether an element value is a fixed MIDI note
func IsAbsolute(element int) bool {
	return element&Absolute != 0
}

// NameString returns the map name
func (m *Map) NameString() string {
	return cString(m.Name[:])
}

// Symbol returns the alternate display symbol for a row ("" if none)
func (m *Map) Symbol(row int) string {
	if row < 0 || row >= NrElements {
		return ""
	}
	return cString(m.AltSymbols[row][:])
}

// Edit converts the realtime record into the editor record
func (m *Map) Edit() EditMap {
	em := EditMap{
		ID:        m.ID,
		Name:      m.NameString(),
		Elements:  m.Elements,
		Intervals: m.Intervals,
	}
	for i := range em.AltSymbols {
		em.AltSymbols[i] = m.Symbol(i)
	}
	return em
}

// Realtime converts an editor record into the fixed-size record. Strings
// longer than the fixed fields are cut at a rune boundary.
func (em *EditMap) Realtime() Map {
	m := Map{
		ID:        em.ID,
		Elements:  em.Elements,
		Intervals: em.Intervals,
	}
	putString(m.Name[:], em.Name)
	for i, s := range em.AltSymbols {
		putString(m.AltSymbols[i][:], s)
	}
	return m
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func putString(dst []byte, s string) {
	n := len(s)
	if n > len(dst) {
		n = len(dst)
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
	}
	copy(dst, s[:n])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

type builtin struct {
	name      string
	intervals []int
	elements  []int // nil = ascending degrees 0..15
	symbols   []string
}

// Drum names follow the General MIDI slot order of the default kit
var gmDrumNotes = []int{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 64, 63}

var gmDrumNames = []string{
	"Kick", "Snare", "Closed HH", "Open HH", "Low Tom", "Mid Tom", "High Tom", "Crash",
	"Ride", "Clap", "Rimshot", "Cowbell", "Clave", "Maracas", "Low Conga", "High Conga",
}

var builtins = []builtin{
	{name: "Chromatic", intervals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
	{name: "Major", intervals: []int{0, 2, 4, 5, 7, 9, 11}},
	{name: "Minor", intervals: []int{0, 2, 3, 5, 7, 8, 10}},
	{name: "Pentatonic", intervals: []int{0, 2, 4, 7, 9}},
	{name: "Dorian", intervals: []int{0, 2, 3, 5, 7, 9, 10}},
	{name: "Phrygian", intervals: []int{0, 1, 3, 5, 7, 8, 10}},
	{name: "Lydian", intervals: []int{0, 2, 4, 6, 7, 9, 11}},
	{name: "Mixolydian", intervals: []int{0, 2, 4, 5, 7, 9, 10}},
	{name: "Locrian", intervals: []int{0, 1, 3, 5, 6, 8, 10}},
	{name: "Harm Min", intervals: []int{0, 2, 3, 5, 7, 8, 11}},
	{name: "Mel Min", intervals: []int{0, 2, 3, 5, 7, 9, 11}},
	{name: "Blues", intervals: []int{0, 3, 5, 6, 7, 10}},
	{name: "Whole Tone", intervals: []int{0, 2, 4, 6, 8, 10}},
	{name: "Hungarian", intervals: []int{0, 2, 3, 6, 7, 8, 11}},
	{name: "Hirajoshi", intervals: []int{0, 2, 3, 7, 8}},
	{name: "GM Drumkit", intervals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, elements: gmDrumNotes, symbols: gmDrumNames},
}

// NrMaps is the number of selectable maps: built-ins followed by user maps
var NrMaps = len(builtins) + UserMaps

// FirstUserMap is the ID of the first user-definable map
var FirstUserMap = len(builtins)

// Maps returns a fresh copy of the default map table
func Maps() []Map {
	maps := make([]Map, 0, NrMaps)
	for i, b := range builtins {
		maps = append(maps, b.build(i))
	}
	for i := 0; i < UserMaps; i++ {
		m := builtins[0].build(FirstUserMap + i)
		putString(m.Name[:], "User "+string(rune('1'+i)))
		maps = append(maps, m)
	}
	return maps
}

func (b builtin) build(id int) Map {
	m := Map{ID: id}
	putString(m.Name[:], b.name)
	for i := range m.Intervals {
		m.Intervals[i] = NoNote
	}
	copy(m.Intervals[:], b.intervals)
	for i := range m.Elements {
		if b.elements != nil {
			m.Elements[i] = Absolute | b.elements[i]
		} else {
			m.Elements[i] = i
		}
	}
	for i, s := range b.symbols {
		putString(m.AltSymbols[i][:], s)
	}
	return m
}
