package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-bstep/host"
	"go-bstep/midi"
	"go-bstep/scale"
	"go-bstep/sequencer"
	"go-bstep/theme"
	"go-bstep/widgets"
)

// Player is what the monitor drives. *host.Player implements it.
type Player interface {
	SetUI(on bool)
	SetController(i int, v float64)
	Controller(i int) float64
	PaintPad(row, step int) (sequencer.Pad, bool)
	EditPads(pads []sequencer.PadMessage)
}

type Model struct {
	Player  Player
	Updates <-chan host.Update
	Ports   <-chan midi.PortEvent // may be nil
	Theme   *theme.Theme

	grid      sequencer.Grid
	status    sequencer.Status
	scales    []scale.EditMap
	row, step int
	port      string
	message   string
	quitting  bool
}

type UpdateMsg host.Update

type PortEventMsg midi.PortEvent

func NewModel(p Player, updates <-chan host.Update, th *theme.Theme) Model {
	m := Model{
		Player:  p,
		Updates: updates,
		Theme:   th,
		grid:    sequencer.NewGrid(),
		scales:  make([]scale.EditMap, 0, scale.NrMaps),
	}
	for _, sm := range scale.Maps() {
		m.scales = append(m.scales, sm.Edit())
	}
	for r := range m.status.Cursor {
		m.status.Cursor[r] = -1
	}
	return m
}

func ListenForUpdates(updates <-chan host.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return UpdateMsg(u)
	}
}

func ListenForPorts(ports <-chan midi.PortEvent) tea.Cmd {
	if ports == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ports
		if !ok {
			return nil
		}
		return PortEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	p := m.Player
	return tea.Batch(
		func() tea.Msg {
			p.SetUI(true)
			return nil
		},
		ListenForUpdates(m.Updates),
		ListenForPorts(m.Ports),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		m.apply(host.Update(msg))
		return m, ListenForUpdates(m.Updates)

	case PortEventMsg:
		switch msg.Type {
		case midi.PortConnected:
			m.port = msg.Name
		case midi.PortDisconnected:
			if m.port == msg.Name {
				m.port = ""
			}
		}
		return m, ListenForPorts(m.Ports)
	}
	return m, nil
}

func (m *Model) apply(u host.Update) {
	m.status = u.Status
	for _, pm := range u.Pads {
		if pm.Row >= 0 && pm.Row < sequencer.Rows && pm.Step >= 0 && pm.Step < sequencer.MaxSteps {
			m.grid[pm.Row][pm.Step] = pm.Pad
		}
	}
	if len(u.Scales) > 0 {
		m.scales = append(m.scales[:0], u.Scales...)
	}
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.message = ""
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Player.SetUI(false)
		return m, tea.Quit

	case "h", "left":
		m.step = max(m.step-1, 0)
	case "l", "right":
		m.step = min(m.step+1, sequencer.MaxSteps-1)
	case "k", "up":
		m.row = min(m.row+1, sequencer.Rows-1)
	case "j", "down":
		m.row = max(m.row-1, 0)

	case " ", "enter":
		if p, ok := m.Player.PaintPad(m.row, m.step); ok {
			m.grid[m.row][m.step] = p
		} else {
			m.message = "pad rejected"
		}
	case "x", "backspace":
		p := sequencer.DefaultPad()
		m.grid[m.row][m.step] = p
		m.Player.EditPads([]sequencer.PadMessage{{Row: m.row, Step: m.step, Pad: p}})

	case "p":
		m.toggle(sequencer.Play, 0, 1)
	case "m":
		m.toggle(sequencer.Mode, sequencer.ModeAutoplay, sequencer.ModeHost)
	case "+", "=":
		m.nudge(sequencer.AutoplayBPM, 5)
	case "-", "_":
		m.nudge(sequencer.AutoplayBPM, -5)
	case "]":
		m.nudge(sequencer.NrOfSteps, 1)
	case "[":
		m.nudge(sequencer.NrOfSteps, -1)
	case "<", ",":
		m.nudge(sequencer.ScaleMap, -1)
	case ">", ".":
		m.nudge(sequencer.ScaleMap, 1)

	case "0", "1", "2", "3", "4":
		m.Player.SetController(sequencer.SelectionCh, float64(key[0]-'0'))
	case "c":
		next := int(m.Player.Controller(sequencer.SelectionCtrl)) + 1
		m.Player.SetController(sequencer.SelectionCtrl, float64(next%int(sequencer.NrControls)))
	}
	return m, nil
}

func (m *Model) toggle(i int, a, b float64) {
	if m.Player.Controller(i) == a {
		m.Player.SetController(i, b)
	} else {
		m.Player.SetController(i, a)
	}
}

// nudge changes a controller by delta within its limits
func (m *Model) nudge(i int, delta float64) {
	l := sequencer.Controllers()[i].Limit
	m.Player.SetController(i, l.Validate(m.Player.Controller(i)+delta))
}

// rowLabels names every row from the active scale map
func (m *Model) rowLabels() [sequencer.Rows]string {
	var labels [sequencer.Rows]string
	idx := int(m.Player.Controller(sequencer.ScaleMap))
	if idx < 0 || idx >= len(m.scales) {
		return labels
	}
	em := m.scales[idx]
	sig := scale.Signature(m.Player.Controller(sequencer.Signature))
	root := (int(m.Player.Controller(sequencer.Octave))+1)*12 + int(m.Player.Controller(sequencer.Root))

	eng := scale.NewEngine(em.Intervals, root)
	eng.SetSignature(sig)

	for row := range labels {
		el := em.Elements[row]
		switch {
		case em.AltSymbols[row] != "":
			labels[row] = em.AltSymbols[row]
		case scale.IsAbsolute(el):
			labels[row] = scale.NoteName(el&scale.NoteMask, sig)
		default:
			labels[row] = eng.Symbol(el)
		}
	}
	return labels
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if m.Player.Controller(sequencer.Play) != 0 {
		playState = "PLAY"
	}
	mode := "AUTO"
	if int(m.Player.Controller(sequencer.Mode)) == sequencer.ModeHost {
		mode = "HOST"
	}
	scaleName := ""
	if idx := int(m.Player.Controller(sequencer.ScaleMap)); idx >= 0 && idx < len(m.scales) {
		scaleName = m.scales[idx].Name
	}
	header := fmt.Sprintf("go-bstep  %s %s  %3.0fbpm  %s  keys:%d  pos:%6.2f",
		playState, mode, m.Player.Controller(sequencer.AutoplayBPM), scaleName, m.status.Keys, m.status.Position)
	if m.port != "" {
		header += "  in:" + m.port
	}

	steps := int(m.Player.Controller(sequencer.NrOfSteps))
	view := &widgets.GridView{
		Pads:       &m.grid,
		Status:     m.status,
		Steps:      steps,
		Labels:     m.rowLabels(),
		CursorRow:  m.row,
		CursorStep: m.step,
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")
	b.WriteString(widgets.RenderGrid(view, m.Theme))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %02d  %s", view.Labels[m.row], m.step+1, widgets.RenderPadInfo(m.grid[m.row][m.step])))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("brush ch:%.0f %s",
		m.Player.Controller(sequencer.SelectionCh), sequencer.Control(m.Player.Controller(sequencer.SelectionCtrl)))))
	if m.message != "" {
		b.WriteString("  " + warnStyle.Render(m.message))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
	b.WriteString("\n")
	return b.String()
}

var keyHelp = []widgets.KeySection{
	{Title: "Grid", Keys: []widgets.KeyBinding{
		{Key: "hjkl/arrows", Desc: "move"},
		{Key: "space", Desc: "paint brush"},
		{Key: "x", Desc: "clear pad"},
		{Key: "0-4 c", Desc: "brush channel, control"},
	}},
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p m", Desc: "play, mode"},
		{Key: "+/-", Desc: "tempo"},
		{Key: "[ ]", Desc: "steps"},
		{Key: "< >", Desc: "scale"},
		{Key: "q", Desc: "quit"},
	}},
}
