package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Grid states (no cursor)
	StepEmpty    rune // · no output
	StepNote     rune // ● starts a note
	StepRun      rune // ━ continues the run on the left
	StepPlayhead rune // ▶ current step of an empty pad
	StepBeyond   rune // - past NR_OF_STEPS

	// Grid states (with edit cursor)
	CursorEmpty rune // ○ cursor on empty
	CursorNote  rune // ◉ cursor on a note

	Halted rune // ■ row stopped
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepNote:     '●',
			StepRun:      '━',
			StepPlayhead: '▶',
			StepBeyond:   '-',

			CursorEmpty: '○',
			CursorNote:  '◉',

			Halted: '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Channel returns the color of output channel ch (1-based) out of n
func (t *Theme) Channel(ch, n int) lipgloss.Color {
	return rgbToLipgloss(t.ChannelRGB(ch, n))
}

// ChannelRGB is Channel for devices that take raw colors
func (t *Theme) ChannelRGB(ch, n int) RGB {
	if ch <= 0 || n <= 0 {
		return t.Palette.Lookup(RoleMuted)
	}
	// spread channels over the readable upper part of the palette
	return t.Palette.Lookup(RoleFG + (1-RoleFG)*float64(ch-1)/float64(max(n-1, 1)))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
