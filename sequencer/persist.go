package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-bstep/debug"
	"go-bstep/scale"
)

const (
	padHeader   = "Matrix data:"
	scaleHeader = "Scale data:"
)

// State is the persisted engine state: the pad table and the user scale
// maps as two text blobs
type State struct {
	Pads   string
	Scales string
}

// ParseError reports where a state blob stopped parsing. Everything before
// Line was applied.
type ParseError struct {
	Blob  string // "pads" or "scales"
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s state line %d: %v", e.Blob, e.Line, e.Err)
	}
	return fmt.Sprintf("%s state line %d near %q: %v", e.Blob, e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errHeader  = errors.New("missing header")
	errSyntax  = errors.New("malformed field")
	errUnknown = errors.New("unknown field")
	errValue   = errors.New("invalid value")
	errNoID    = errors.New("field before id")
)

// State serializes the pads and the user scale maps
func (e *Engine) State() State {
	return State{
		Pads:   MarshalPads(&e.grid),
		Scales: MarshalScales(e.maps[scale.FirstUserMap:]),
	}
}

// Restore loads a saved state. Parsing is best effort: cells read before a
// malformed field are kept and the error describes the stop point.
// Sounding notes are stopped at the start of the next block.
func (e *Engine) Restore(s State) error {
	var errs []error

	if s.Pads != "" {
		g := NewGrid()
		err := ParsePads(s.Pads, &g)
		if err != nil {
			debug.Log("state", "restore pads: %v", err)
			errs = append(errs, err)
		}
		if !errors.Is(err, errHeader) {
			e.grid = g
		}
	}

	if s.Scales != "" {
		if err := ParseScales(s.Scales, e.maps[scale.FirstUserMap:]); err != nil {
			debug.Log("state", "restore scales: %v", err)
			errs = append(errs, err)
		}
		e.rebuildScale()
		e.scaleDump = true
	}

	e.uiFullDump = true
	e.pendingStop = true
	return errors.Join(errs...)
}

// MarshalPads writes every non-default cell of g
func MarshalPads(g *Grid) string {
	var b strings.Builder
	b.WriteString(padHeader)
	b.WriteByte('\n')

	def := DefaultPad()
	for s := 0; s < MaxSteps; s++ {
		for r := 0; r < Rows; r++ {
			p := g[r][s]
			if p == def {
				continue
			}
			fmt.Fprintf(&b, "id:%d; ch:%d; st:%d; oc:%d; ve:%.2f; du:%.2f;",
				s*Rows+r, p.Channel, int(p.PitchNote), int(p.PitchOctave), p.Velocity, p.Duration)
			if p.RandGate != 0 {
				fmt.Fprintf(&b, " rg:%.2f;", p.RandGate)
			}
			if p.RandNote != 0 {
				fmt.Fprintf(&b, " rn:%d;", int(p.RandNote))
			}
			if p.RandOctave != 0 {
				fmt.Fprintf(&b, " ro:%d;", int(p.RandOctave))
			}
			if p.RandVelocity != 0 {
				fmt.Fprintf(&b, " rv:%.2f;", p.RandVelocity)
			}
			if p.RandDuration != 0 {
				fmt.Fprintf(&b, " rd:%.2f;", p.RandDuration)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ParsePads reads a pad blob into g. Each line holds one cell starting with
// its id; a line is applied once it parsed completely.
func ParsePads(blob string, g *Grid) error {
	lines := strings.Split(blob, "\n")
	if strings.TrimSpace(lines[0]) != padHeader {
		return &ParseError{Blob: "pads", Line: 1, Err: errHeader}
	}

	for ln, line := range lines[1:] {
		fields, err := scanFields(line)
		if err == nil {
			err = applyPadFields(fields, g)
		}
		if err != nil {
			pe := &ParseError{Blob: "pads", Line: ln + 2, Err: err}
			if fe, ok := err.(*fieldError); ok {
				pe.Token, pe.Err = fe.token, fe.err
			}
			return pe
		}
	}
	return nil
}

func applyPadFields(fields []field, g *Grid) error {
	if len(fields) == 0 {
		return nil
	}
	if fields[0].key != "id" {
		return &fieldError{fields[0].key, errNoID}
	}
	id, err := fields[0].asInt()
	if err != nil || id < 0 || id >= Rows*MaxSteps {
		return &fieldError{fields[0].raw(), errValue}
	}

	p := DefaultPad()
	for _, f := range fields[1:] {
		var err error
		switch f.key {
		case "ch":
			var v int
			if v, err = f.asInt(); err == nil {
				if v < 0 || v > 0xFF {
					err = errValue
				}
				p.Channel = uint8(v)
			}
		case "st":
			p.PitchNote, err = f.asFloat()
		case "oc":
			p.PitchOctave, err = f.asFloat()
		case "ve":
			p.Velocity, err = f.asFloat()
		case "du":
			p.Duration, err = f.asFloat()
		case "rg":
			p.RandGate, err = f.asFloat()
		case "rn":
			p.RandNote, err = f.asFloat()
		case "ro":
			p.RandOctave, err = f.asFloat()
		case "rv":
			p.RandVelocity, err = f.asFloat()
		case "rd":
			p.RandDuration, err = f.asFloat()
		default:
			err = errUnknown
		}
		if err != nil {
			return &fieldError{f.raw(), err}
		}
	}

	p, _ = ValidatePad(p)
	g[id%Rows][id/Rows] = p
	return nil
}

// MarshalScales writes the given scale maps, one per line
func MarshalScales(maps []scale.Map) string {
	var b strings.Builder
	b.WriteString(scaleHeader)
	b.WriteByte('\n')

	for i := range maps {
		m := &maps[i]
		fmt.Fprintf(&b, "id:%d; nm:%s; el:", m.ID, strconv.Quote(m.NameString()))
		for j, v := range m.Elements {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteString("; as:")
		for j := range m.AltSymbols {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(m.Symbol(j)))
		}
		b.WriteString("; sc:")
		for j, v := range m.Intervals {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteString(";\n")
	}
	return b.String()
}

// ParseScales reads a scale blob into maps, matched by map id
func ParseScales(blob string, maps []scale.Map) error {
	lines := strings.Split(blob, "\n")
	if strings.TrimSpace(lines[0]) != scaleHeader {
		return &ParseError{Blob: "scales", Line: 1, Err: errHeader}
	}

	for ln, line := range lines[1:] {
		fields, err := scanFields(line)
		if err == nil {
			err = applyScaleFields(fields, maps)
		}
		if err != nil {
			pe := &ParseError{Blob: "scales", Line: ln + 2, Err: err}
			if fe, ok := err.(*fieldError); ok {
				pe.Token, pe.Err = fe.token, fe.err
			}
			return pe
		}
	}
	return nil
}

func applyScaleFields(fields []field, maps []scale.Map) error {
	if len(fields) == 0 {
		return nil
	}
	if fields[0].key != "id" {
		return &fieldError{fields[0].key, errNoID}
	}
	id, err := fields[0].asInt()
	idx := -1
	for i := range maps {
		if err == nil && maps[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return &fieldError{fields[0].raw(), errValue}
	}

	em := maps[idx].Edit()
	for _, f := range fields[1:] {
		var err error
		switch f.key {
		case "nm":
			if len(f.vals) != 1 || !f.quoted {
				err = errValue
			} else {
				em.Name = f.vals[0]
			}
		case "el":
			err = f.asInts(em.Elements[:])
		case "as":
			if len(f.vals) != len(em.AltSymbols) || !f.quoted {
				err = errValue
			} else {
				copy(em.AltSymbols[:], f.vals)
			}
		case "sc":
			err = f.asInts(em.Intervals[:])
		default:
			err = errUnknown
		}
		if err != nil {
			return &fieldError{f.raw(), err}
		}
	}

	maps[idx] = em.Realtime()
	return nil
}

// field is one "key:value;" entry. Values are a single token or a comma
// separated list; quoted values are unquoted.
type field struct {
	key    string
	vals   []string
	quoted bool
}

type fieldError struct {
	token string
	err   error
}

func (e *fieldError) Error() string { return e.token + ": " + e.err.Error() }

func (f field) raw() string {
	return f.key + ":" + strings.Join(f.vals, ",")
}

func (f field) asInt() (int, error) {
	if len(f.vals) != 1 || f.quoted {
		return 0, errValue
	}
	v, err := strconv.Atoi(f.vals[0])
	if err != nil {
		return 0, errValue
	}
	return v, nil
}

func (f field) asFloat() (float64, error) {
	if len(f.vals) != 1 || f.quoted {
		return 0, errValue
	}
	v, err := strconv.ParseFloat(f.vals[0], 64)
	if err != nil {
		return 0, errValue
	}
	return v, nil
}

func (f field) asInts(dst []int) error {
	if len(f.vals) != len(dst) || f.quoted {
		return errValue
	}
	for i, s := range f.vals {
		v, err := strconv.Atoi(s)
		if err != nil {
			return errValue
		}
		dst[i] = v
	}
	return nil
}

// scanFields splits one line into fields. Every field must end with ';'.
func scanFields(line string) ([]field, error) {
	var fields []field
	s := strings.TrimRight(line, "\r")
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return fields, nil
		}

		colon := strings.IndexAny(s, ":;")
		if colon <= 0 || s[colon] != ':' {
			return nil, &fieldError{s, errSyntax}
		}
		f := field{key: strings.TrimSpace(s[:colon])}
		rest := strings.TrimLeft(s[colon+1:], " \t")

		if strings.HasPrefix(rest, `"`) {
			f.quoted = true
			for {
				q, err := strconv.QuotedPrefix(rest)
				if err != nil {
					return nil, &fieldError{s, errSyntax}
				}
				v, _ := strconv.Unquote(q)
				f.vals = append(f.vals, v)
				rest = strings.TrimLeft(rest[len(q):], " \t")
				if !strings.HasPrefix(rest, ",") {
					break
				}
				rest = strings.TrimLeft(rest[1:], " \t")
			}
			if !strings.HasPrefix(rest, ";") {
				return nil, &fieldError{s, errSyntax}
			}
			s = rest[1:]
		} else {
			end := strings.IndexByte(rest, ';')
			if end < 0 {
				return nil, &fieldError{s, errSyntax}
			}
			v := strings.TrimSpace(rest[:end])
			if v == "" {
				return nil, &fieldError{s[:colon+1], errSyntax}
			}
			f.vals = strings.Split(v, ",")
			for i := range f.vals {
				f.vals[i] = strings.TrimSpace(f.vals[i])
			}
			s = rest[end+1:]
		}
		fields = append(fields, f)
	}
}
