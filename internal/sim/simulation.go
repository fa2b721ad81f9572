// Package sim owns a heat grid and exposes its lifecycle to callers.
//
// A [Simulation] is driven from outside: the caller decides when to call
// [Simulation.Step], either directly, through [Simulation.Run], or from a
// UI tick. It is not safe for concurrent use.
package sim

import (
	"io"
	"log"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
)

// Simulation holds one grid, its config and its heat sources.
type Simulation struct {
	cfg     heat.Config
	sources []heat.Source
	grid    heat.Grid
	stepper *heat.Stepper
	logger  *log.Logger
	time    float64
	steps   int
	running bool
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRegistry resolves materials against r instead of material.Default().
func WithRegistry(r *material.Registry) Option {
	return func(s *Simulation) {
		st := heat.NewStepper(r)
		st.Workers = s.stepper.Workers
		s.stepper = st
	}
}

// WithLogger sends lifecycle messages to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers caps the goroutines used inside a single step.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.stepper.Workers = n }
}

// New builds a simulation and its initial grid. Sources are deduplicated by
// coordinate as AddHeatSource would.
func New(cfg heat.Config, sources []heat.Source, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		stepper: heat.NewStepper(nil),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, hs := range sources {
		s.upsert(hs)
	}
	if err := s.Initialize(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize rebuilds the grid from cfg and the current sources, and
// rewinds time. The material is checked up front so a bad config never
// produces a grid.
func (s *Simulation) Initialize(cfg heat.Config) error {
	if _, err := s.stepper.Registry().Resolve(cfg.Material, cfg.Custom); err != nil {
		return err
	}
	s.cfg = cfg
	s.grid = heat.Initialize(cfg, s.sources)
	s.time = 0
	s.steps = 0
	s.running = false
	s.logger.Printf("initialized %dx%d grid, material=%s, %d sources", cfg.GridSize, cfg.GridSize, cfg.Material, len(s.sources))
	return nil
}

// Step advances the grid by one time step and returns the new grid. On
// error the simulation is left untouched.
func (s *Simulation) Step() (heat.Grid, error) {
	next, err := s.stepper.Step(s.grid, s.sources, s.cfg)
	if err != nil {
		return nil, &heat.StepError{Step: s.steps, Time: s.time, Wrapped: err}
	}
	s.grid = next
	s.time += s.cfg.TimeStep
	s.steps++
	return next, nil
}

// AddHeatSource registers hs, replacing any source already at its
// coordinate, and applies it to the grid immediately when in bounds.
func (s *Simulation) AddHeatSource(hs heat.Source) {
	replaced := s.upsert(hs)
	s.grid = s.grid.Clone()
	applied := s.grid.ApplySource(hs)
	s.logger.Printf("source at (%d,%d) power=%g replaced=%t in_bounds=%t", hs.X, hs.Y, hs.Power, replaced, applied)
}

func (s *Simulation) upsert(hs heat.Source) bool {
	for i := range s.sources {
		if s.sources[i].At(hs.X, hs.Y) {
			s.sources[i] = hs
			return true
		}
	}
	s.sources = append(s.sources, hs)
	return false
}

// RemoveHeatSource drops every source at (x, y). The cell keeps its
// temperature and starts diffusing on the next step.
func (s *Simulation) RemoveHeatSource(x, y int) {
	kept := s.sources[:0]
	for _, hs := range s.sources {
		if !hs.At(x, y) {
			kept = append(kept, hs)
		}
	}
	removed := len(s.sources) - len(kept)
	s.sources = kept
	s.grid = s.grid.Clone()
	s.grid.ClearSource(x, y)
	s.logger.Printf("removed %d source(s) at (%d,%d)", removed, x, y)
}

// Reset clears all sources and rebuilds the grid from the current config.
func (s *Simulation) Reset() error {
	prev := s.sources
	s.sources = nil
	if err := s.Initialize(s.cfg); err != nil {
		s.sources = prev
		return err
	}
	s.logger.Printf("reset")
	return nil
}

// ConfigPatch lists config fields to change; nil fields are kept.
type ConfigPatch struct {
	GridSize           *int
	TimeStep           *float64
	InitialTemperature *float64
	Material           *material.ID
	Custom             *material.Properties
}

// UpdateConfig merges patch into the active config. A grid size change
// reinitializes the grid so the grid always matches the config; other
// fields take effect on the next step.
func (s *Simulation) UpdateConfig(patch ConfigPatch) error {
	cfg := s.cfg
	if patch.GridSize != nil {
		cfg.GridSize = *patch.GridSize
	}
	if patch.TimeStep != nil {
		cfg.TimeStep = *patch.TimeStep
	}
	if patch.InitialTemperature != nil {
		cfg.InitialTemperature = *patch.InitialTemperature
	}
	if patch.Material != nil {
		cfg.Material = *patch.Material
	}
	if patch.Custom != nil {
		c := *patch.Custom
		cfg.Custom = &c
	}

	if cfg.GridSize != s.cfg.GridSize {
		s.logger.Printf("grid size %d -> %d, reinitializing", s.cfg.GridSize, cfg.GridSize)
		return s.Initialize(cfg)
	}
	s.cfg = cfg
	return nil
}

// MaxTemperature returns the hottest cell's temperature.
func (s *Simulation) MaxTemperature() (float64, error) { return s.grid.Max() }

// MinTemperature returns the coldest cell's temperature.
func (s *Simulation) MinTemperature() (float64, error) { return s.grid.Min() }

// Grid returns the live grid. Callers must not modify it; source mutations
// swap in a new grid rather than editing one already handed out.
func (s *Simulation) Grid() heat.Grid { return s.grid }

// Config returns the active config.
func (s *Simulation) Config() heat.Config { return s.cfg }

// Sources returns a copy of the registered heat sources.
func (s *Simulation) Sources() []heat.Source {
	out := make([]heat.Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Registry returns the material table used to resolve the config.
func (s *Simulation) Registry() *material.Registry { return s.stepper.Registry() }

// Time returns the simulated seconds since the last (re)initialization.
func (s *Simulation) Time() float64 { return s.time }

// Steps returns the steps taken since the last (re)initialization.
func (s *Simulation) Steps() int { return s.steps }

func (s *Simulation) Start()        { s.running = true }
func (s *Simulation) Stop()         { s.running = false }
func (s *Simulation) Running() bool { return s.running }
