package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/eostab/internal/reactor"
	"github.com/san-kum/eostab/internal/sim"
)

const (
	canvasWidth     = 48
	canvasHeight    = 16
	historyCapacity = 600
	maxStepsPerTick = 1 << 12
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State       sim.State
	Time        float64
	Temperature float64
	HeatRelease float64
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model integrates a reactor frame by frame and draws its path through
// progress-variable space.
type Model struct {
	rc           *reactor.Reactor
	integrator   sim.Integrator
	title        string
	initialState sim.State
	state        sim.State
	t, dt        float64
	stepsPerTick int
	running      bool
	err          error
	canvas       *Canvas
	history      []Snapshot
	playHead     int
	showHelp     bool
}

func NewModel(rc *reactor.Reactor, integ sim.Integrator, x0 sim.State, dt float64, title string) Model {
	m := Model{
		rc:           rc,
		integrator:   integ,
		title:        title,
		initialState: x0.Clone(),
		state:        x0.Clone(),
		dt:           dt,
		stepsPerTick: 1,
		running:      true,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		history:      make([]Snapshot, 0, historyCapacity),
		playHead:     -1,
	}
	m.record()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// advance takes stepsPerTick integration steps, stopping on the first error.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		next, err := m.integrator.Step(m.rc, m.state, m.t, m.dt)
		if err == nil && !next.IsValid() {
			err = sim.ErrInvalidState
		}
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.state = next
		m.t += m.dt
	}
	m.record()
}

func (m *Model) record() {
	snap := Snapshot{State: m.state.Clone(), Time: m.t}
	snap.Temperature, _ = m.rc.Temperature(m.state)
	snap.HeatRelease, _ = m.rc.HeatRelease(m.state)
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) reset() {
	m.t = 0
	m.err = nil
	m.state = m.initialState.Clone()
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
}

// current returns the snapshot on screen: the replay position or the latest.
func (m Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.history[len(m.history)-1]
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.bad.Render("STOPPED")
	case m.playHead != -1:
		return st.warn.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.history)))
	case !m.running:
		return st.warn.Render("PAUSED")
	}
	return st.ok.Render("RUNNING")
}

// drawTrajectory plots the first two progress variables of the history.
func (m Model) drawTrajectory() string {
	m.canvas.Clear()
	n := m.rc.StateDim() - 3
	if n < 2 {
		return m.canvas.String()
	}
	upto := len(m.history)
	if m.playHead >= 0 {
		upto = m.playHead + 1
	}
	xs := make([]float64, upto)
	ys := make([]float64, upto)
	for i, s := range m.history[:upto] {
		rho := s.State[0]
		xs[i] = s.State[3] / rho
		ys[i] = s.State[4] / rho
	}
	xmin, xmax, ymin, ymax := m.canvas.PlotPath(xs, ys)
	names := m.rc.Model().ExtraVariables()
	return m.canvas.String() + fmt.Sprintf("%s [%.4g, %.4g]  %s [%.4g, %.4g]", names[0], xmin, xmax, names[1], ymin, ymax)
}

func (m Model) View() string {
	st := currentStyles()
	snap := m.current()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4g µs", snap.Time*1e6))
	row("Temperature", fmt.Sprintf("%.2f K", snap.Temperature))
	row("Heat release", fmt.Sprintf("%.4g W/m³", snap.HeatRelease))
	row("Clamped", fmt.Sprintf("%d", m.rc.ClampedDecodes()))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	row("dt", fmt.Sprintf("%.3g s", m.dt))
	if m.err != nil {
		s.WriteString("\n" + st.bad.Render(m.err.Error()) + "\n")
	}

	temps := make([]float64, 0, len(m.history))
	for _, h := range m.history {
		temps = append(temps, h.Temperature)
	}
	if len(temps) > 1 {
		chart := asciigraph.Plot(temps, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("Temperature [K]"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.muted.Render("SP:Pause R:Reset Q:Quit\nT:Theme +/-:Speed ?:Help\n[ ]:Time-Travel"))

	trajectory := st.panel.Render(m.drawTrajectory())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, trajectory, "  ", s.String())
	if m.showHelp {
		return st.panel.Render(strings.Join([]string{
			"Space  pause or resume",
			"R      reset to the initial state",
			"+ / -  double or halve steps per frame",
			"[ / ]  step through recorded history",
			"T      cycle themes",
			"Q      quit",
		}, "\n")) + "\n\n" + mainView
	}
	return mainView
}

func (m Model) State() sim.State { return m.state.Clone() }
func (m Model) Time() float64    { return m.t }
func (m Model) Err() error       { return m.err }
