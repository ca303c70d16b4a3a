package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-bstep/sequencer"
	"go-bstep/theme"
)

var controlGlyphs = [sequencer.NrControls]rune{
	sequencer.CtrlPlayFwd:  '»',
	sequencer.CtrlPlayRew:  '«',
	sequencer.CtrlAllMark:  '◆',
	sequencer.CtrlMark:     '◇',
	sequencer.CtrlJumpFwd:  '↷',
	sequencer.CtrlJumpBack: '↶',
	sequencer.CtrlSkip:     '⤳',
	sequencer.CtrlStop:     '✕',
}

// GridView is what the pad grid needs to draw one frame
type GridView struct {
	Pads   *sequencer.Grid
	Status sequencer.Status
	Steps  int // NR_OF_STEPS
	Labels [sequencer.Rows]string

	// edit cursor, CursorRow -1 hides it
	CursorRow, CursorStep int
}

// Glyph returns the symbol of one cell without styling
func (v *GridView) Glyph(row, step int, s *theme.Symbols) rune {
	if step >= v.Steps {
		return s.StepBeyond
	}
	p := v.Pads[row][step]
	edit := row == v.CursorRow && step == v.CursorStep

	if ctrl := p.Control(); ctrl != sequencer.CtrlNone && ctrl < sequencer.NrControls {
		return controlGlyphs[ctrl]
	}
	switch {
	case v.Pads.HasAntecessor(row, step, v.Steps):
		return s.StepRun
	case p.Out() != 0 && edit:
		return s.CursorNote
	case p.Out() != 0:
		return s.StepNote
	case edit:
		return s.CursorEmpty
	case v.Status.Cursor[row] == step:
		return s.StepPlayhead
	}
	return s.StepEmpty
}

// RenderGrid draws the pad grid, highest row on top
func RenderGrid(v *GridView, th *theme.Theme) string {
	labelStyle := lipgloss.NewStyle().Foreground(th.Muted()).Width(7)
	soundingStyle := labelStyle.Foreground(th.Active())
	beyondStyle := lipgloss.NewStyle().Foreground(th.Muted())
	playStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Cursor())
	editStyle := lipgloss.NewStyle().Reverse(true)

	var lines []string
	for row := sequencer.Rows - 1; row >= 0; row-- {
		var line strings.Builder

		label := v.Labels[row]
		if v.Status.Keys > 0 && v.Status.Cursor[row] < 0 {
			label = string(th.Symbols.Halted) + " " + label
		}
		if v.Status.Sounding(row) {
			line.WriteString(soundingStyle.Render(label))
		} else {
			line.WriteString(labelStyle.Render(label))
		}

		for step := 0; step < sequencer.MaxSteps; step++ {
			if step > 0 && step%4 == 0 {
				line.WriteString(" ")
			}
			glyph := string(v.Glyph(row, step, &th.Symbols))

			var style lipgloss.Style
			switch {
			case step >= v.Steps:
				style = beyondStyle
			case v.Status.Cursor[row] == step:
				style = playStyle
			default:
				style = lipgloss.NewStyle().Foreground(th.Channel(v.Pads[row][step].Out(), sequencer.NrChannels))
			}
			if row == v.CursorRow && step == v.CursorStep {
				style = style.Inherit(editStyle)
			}
			line.WriteString(style.Render(glyph))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderPadInfo describes one pad in a single line
func RenderPadInfo(p sequencer.Pad) string {
	s := fmt.Sprintf("ch:%d", p.Out())
	if c := p.Control(); c != sequencer.CtrlNone {
		s += " " + c.String()
	}
	s += fmt.Sprintf("  note:%+d oct:%+d vel:%.2f dur:%.2f", int(p.PitchNote), int(p.PitchOctave), p.Velocity, p.Duration)
	if p.RandGate > 0 {
		s += fmt.Sprintf(" gate:%d%%", int(p.RandGate*100+0.5))
	}
	return s
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
