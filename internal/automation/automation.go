// Package automation replays scripted sequences of simulation operations
// and sweeps a single parameter across a range.
package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
	"github.com/san-kum/heatsim/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Config      *config.Config `yaml:"config"`
	Actions     []Action       `yaml:"actions"`
}

// Action is one scenario operation. Exactly one field must be set.
type Action struct {
	AddSource    *config.SourceConfig `yaml:"add_source,omitempty"`
	RemoveSource *Coord               `yaml:"remove_source,omitempty"`
	Step         int                  `yaml:"step,omitempty"`
	Update       *Update              `yaml:"update,omitempty"`
	Reset        bool                 `yaml:"reset,omitempty"`
}

type Coord struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Update mirrors sim.ConfigPatch with yaml names.
type Update struct {
	GridSize           *int                 `yaml:"grid_size,omitempty"`
	TimeStep           *float64             `yaml:"time_step,omitempty"`
	InitialTemperature *float64             `yaml:"initial_temperature,omitempty"`
	Material           *material.ID         `yaml:"material,omitempty"`
	CustomMaterial     *material.Properties `yaml:"custom_material,omitempty"`
}

func (a Action) kind() (string, error) {
	kinds := make([]string, 0, 1)
	if a.AddSource != nil {
		kinds = append(kinds, "add_source")
	}
	if a.RemoveSource != nil {
		kinds = append(kinds, "remove_source")
	}
	if a.Step != 0 {
		kinds = append(kinds, "step")
	}
	if a.Update != nil {
		kinds = append(kinds, "update")
	}
	if a.Reset {
		kinds = append(kinds, "reset")
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("%w: action must set exactly one operation, got %v", config.ErrInvalid, kinds)
	}
	return kinds[0], nil
}

// Checkpoint is the simulation state after one action.
type Checkpoint struct {
	Action  int
	Kind    string
	Time    float64
	Steps   int
	Sources int
	Max     float64
	Min     float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Config: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scenario, nil
}

func (sc *Scenario) Validate() error {
	if sc.Config == nil {
		return fmt.Errorf("%w: scenario has no config", config.ErrInvalid)
	}
	if err := sc.Config.Validate(); err != nil {
		return err
	}
	for i, a := range sc.Actions {
		if _, err := a.kind(); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
		if a.Step < 0 {
			return fmt.Errorf("%w: action %d: negative step count", config.ErrInvalid, i+1)
		}
	}
	return nil
}

// RunScenario executes all actions against a fresh simulation and returns a
// checkpoint per action. On error the checkpoints so far are returned.
func RunScenario(ctx context.Context, sc *Scenario, logger *log.Logger) ([]Checkpoint, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	s, err := sim.New(sc.Config.Heat(), sc.Config.HeatSources(), sim.WithLogger(logger), sim.WithWorkers(sc.Config.Workers))
	if err != nil {
		return nil, err
	}

	checkpoints := make([]Checkpoint, 0, len(sc.Actions))
	for i, a := range sc.Actions {
		kind, _ := a.kind()
		logger.Printf("scenario %q: action %d/%d: %s", sc.Name, i+1, len(sc.Actions), kind)

		if err := apply(ctx, s, a, kind); err != nil {
			return checkpoints, fmt.Errorf("action %d (%s): %w", i+1, kind, err)
		}

		cp := Checkpoint{Action: i + 1, Kind: kind, Time: s.Time(), Steps: s.Steps(), Sources: len(s.Sources())}
		cp.Max, _ = s.MaxTemperature()
		cp.Min, _ = s.MinTemperature()
		checkpoints = append(checkpoints, cp)
	}

	return checkpoints, nil
}

func apply(ctx context.Context, s *sim.Simulation, a Action, kind string) error {
	switch kind {
	case "add_source":
		src := a.AddSource
		s.AddHeatSource(heat.Source{X: src.X, Y: src.Y, Power: src.Power, Temperature: src.Temperature})
	case "remove_source":
		s.RemoveHeatSource(a.RemoveSource.X, a.RemoveSource.Y)
	case "step":
		_, err := s.Run(ctx, a.Step)
		return err
	case "update":
		u := a.Update
		return s.UpdateConfig(sim.ConfigPatch{
			GridSize:           u.GridSize,
			TimeStep:           u.TimeStep,
			InitialTemperature: u.InitialTemperature,
			Material:           u.Material,
			Custom:             u.CustomMaterial,
		})
	case "reset":
		return s.Reset()
	}
	return nil
}
