package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/eostab/internal/config"
	"github.com/san-kum/eostab/internal/experiment"
	"github.com/sirupsen/logrus"
)

const (
	stateMenu = iota
	stateLive
)

type presetEntry struct {
	model, name string
	cfg         *config.Config
}

// App lists the reactor presets and opens a live view of the chosen one.
type App struct {
	state    int
	cursor   int
	entries  []presetEntry
	modelDir string
	log      logrus.FieldLogger
	err      error
	live     Model
}

// NewApp builds the preset menu. A non-empty modelDir replaces the model
// directory of every preset.
func NewApp(modelDir string, log logrus.FieldLogger) *App {
	a := &App{modelDir: modelDir, log: log}
	for _, model := range config.ListModels() {
		for _, name := range config.ListPresets(model) {
			a.entries = append(a.entries, presetEntry{model: model, name: name, cfg: config.GetPreset(model, name)})
		}
	}
	return a
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateLive {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.entries) == 0 {
			return a, nil
		}
		live, err := a.open(a.entries[a.cursor])
		if err != nil {
			a.err = err
			return a, nil
		}
		a.err = nil
		a.live = live
		a.state = stateLive
		return a, a.live.Init()
	}
	return a, nil
}

func (a App) open(e presetEntry) (Model, error) {
	cfg := *e.cfg
	if a.modelDir != "" {
		cfg.ModelDir = a.modelDir
	}
	exp := experiment.New(cfg, a.log)
	if err := exp.Setup(); err != nil {
		return Model{}, err
	}
	x0, err := exp.InitialState()
	if err != nil {
		return Model{}, err
	}
	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return Model{}, err
	}
	return NewModel(exp.Reactor(), integ, x0, cfg.Dt, e.model+"/"+e.name), nil
}

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View() + "\n" + currentStyles().muted.Render("Esc: back to presets")
	}

	st := currentStyles()
	var s strings.Builder
	s.WriteString(st.header.Render("REACTOR PRESETS") + "\n")
	for i, e := range a.entries {
		line := fmt.Sprintf("%-24s T=%-6.0f ρ=%-5.2f %s", e.model+"/"+e.name, e.cfg.Initial.Temperature, e.cfg.Initial.Density, e.cfg.Integrator)
		if i == a.cursor {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + st.bad.Render(a.err.Error()) + "\n")
	}
	s.WriteString("\n" + st.muted.Render("↑↓:Select Enter:Open Q:Quit"))
	return s.String()
}
