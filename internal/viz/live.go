package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
	"github.com/san-kum/heatsim/internal/sim"
)

const (
	DefaultInterval = 50 * time.Millisecond
	historyCapacity = 300
	maxCells        = 64
)

type TickMsg time.Time

// Model drives a simulation from bubbletea ticks. New sources are placed at
// the cursor with the configured power and temperature.
type Model struct {
	sim         *sim.Simulation
	interval    time.Duration
	power       float64
	temperature float64
	cursorX     int
	cursorY     int
	maxHistory  []float64
	err         error
	showHelp    bool
}

// NewModel wraps s. interval <= 0 uses DefaultInterval.
func NewModel(s *sim.Simulation, interval time.Duration, power, temperature float64) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	n := s.Config().GridSize
	return Model{
		sim:         s,
		interval:    interval,
		power:       power,
		temperature: temperature,
		cursorX:     n / 2,
		cursorY:     n / 2,
		maxHistory:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation while running.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.sim.Running() {
				m.sim.Stop()
			} else {
				m.sim.Start()
			}
		case "n":
			m.step()
		case "r":
			m.err = m.sim.Reset()
			m.maxHistory = m.maxHistory[:0]
		case "up", "k":
			m.moveCursor(-1, 0)
		case "down", "j":
			m.moveCursor(1, 0)
		case "left", "h":
			m.moveCursor(0, -1)
		case "right", "l":
			m.moveCursor(0, 1)
		case "enter", "s":
			m.toggleSource()
		case "m":
			m.cycleMaterial()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.sim.Running() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if _, err := m.sim.Step(); err != nil {
		m.err = err
		m.sim.Stop()
		return
	}
	m.err = nil
	if hi, err := m.sim.MaxTemperature(); err == nil {
		m.maxHistory = append(m.maxHistory, hi)
		if len(m.maxHistory) > historyCapacity {
			m.maxHistory = m.maxHistory[1:]
		}
	}
}

func (m *Model) moveCursor(dx, dy int) {
	n := m.sim.Config().GridSize
	m.cursorX = clamp(m.cursorX+dx, 0, n-1)
	m.cursorY = clamp(m.cursorY+dy, 0, n-1)
}

func (m *Model) toggleSource() {
	g := m.sim.Grid()
	if !g.InBounds(m.cursorX, m.cursorY) {
		return
	}
	if g[m.cursorX][m.cursorY].IsHeatSource {
		m.sim.RemoveHeatSource(m.cursorX, m.cursorY)
		return
	}
	m.sim.AddHeatSource(heat.Source{
		X:           m.cursorX,
		Y:           m.cursorY,
		Power:       m.power,
		Temperature: heat.Kelvin(m.temperature),
	})
}

func (m *Model) cycleMaterial() {
	ids := m.sim.Registry().IDs()
	current := m.sim.Config().Material
	next := ids[0]
	for i, id := range ids {
		if id == current {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	m.err = m.sim.UpdateConfig(sim.ConfigPatch{Material: &next})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View renders the heatmap beside the stats panel.
func (m Model) View() string {
	cfg := m.sim.Config()

	status := statusPaused.Render("PAUSED")
	if m.sim.Running() {
		status = statusRunning.Render("RUNNING")
	}

	opts := HeatmapOptions{MaxCells: maxCells}
	opts.Cursor.X, opts.Cursor.Y, opts.Cursor.Show = m.cursorX, m.cursorY, true
	grid := Heatmap(m.sim.Grid(), opts)

	var stats strings.Builder
	stats.WriteString(status + "\n\n")
	stats.WriteString(row("material", material.Name(cfg.Material)))
	stats.WriteString(row("grid", fmt.Sprintf("%d x %d", cfg.GridSize, cfg.GridSize)))
	stats.WriteString(row("dt", fmt.Sprintf("%g s", cfg.TimeStep)))
	stats.WriteString(row("time", fmt.Sprintf("%.2f s", m.sim.Time())))
	stats.WriteString(row("steps", fmt.Sprintf("%d", m.sim.Steps())))
	if hi, err := m.sim.MaxTemperature(); err == nil {
		stats.WriteString(row("max", fmt.Sprintf("%.3f K", hi)))
	}
	if lo, err := m.sim.MinTemperature(); err == nil {
		stats.WriteString(row("min", fmt.Sprintf("%.3f K", lo)))
	}
	stats.WriteString(row("sources", fmt.Sprintf("%d", len(m.sim.Sources()))))
	stats.WriteString(row("cursor", fmt.Sprintf("(%d,%d)", m.cursorX, m.cursorY)))
	if m.err != nil {
		stats.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("HEAT DIFFUSION") + "\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, statsStyle.Render(stats.String())))
	s.WriteString("\n")
	if graph := Sparkline(m.maxHistory, 60, 6, "max temperature (K)"); graph != "" {
		s.WriteString(graph + "\n")
	}

	help := "space start/stop  n step  r reset  arrows move  enter source  m material  ? help  q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"space   start or stop the timer",
			"n       advance one step",
			"r       clear sources and reset the grid",
			"arrows  move the cursor (hjkl also work)",
			"enter   add or remove a source at the cursor",
			"m       cycle the material",
			"q       quit",
		}, "\n")
	}
	s.WriteString(helpStyle.Render(help))
	return s.String()
}

// Run starts the live view on the terminal and blocks until it exits.
func Run(s *sim.Simulation, interval time.Duration, power, temperature float64) error {
	p := tea.NewProgram(NewModel(s, interval, power, temperature), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
