package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
)

const (
	DefaultGridSize           = 50
	DefaultTimeStep           = 0.1
	DefaultInitialTemperature = 293.15 // 20°C
	DefaultMaterial           = material.Copper
	DefaultSteps              = 200
	DefaultSourcePower        = 100.0
	DefaultSourceTemperature  = 373.15
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	GridSize           int                  `yaml:"grid_size"`
	TimeStep           float64              `yaml:"time_step"`
	InitialTemperature float64              `yaml:"initial_temperature"`
	Material           material.ID          `yaml:"material"`
	CustomMaterial     *material.Properties `yaml:"custom_material,omitempty"`
	Steps              int                  `yaml:"steps"`
	Workers            int                  `yaml:"workers,omitempty"`
	Sources            []SourceConfig       `yaml:"sources,omitempty"`
	Scatter            *ScatterConfig       `yaml:"scatter,omitempty"`
}

type SourceConfig struct {
	X           int      `yaml:"x"`
	Y           int      `yaml:"y"`
	Power       float64  `yaml:"power"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// ScatterConfig places Count sources on a seeded noise field.
type ScatterConfig struct {
	Seed        int64    `yaml:"seed"`
	Count       int      `yaml:"count"`
	Power       float64  `yaml:"power"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize:           DefaultGridSize,
		TimeStep:           DefaultTimeStep,
		InitialTemperature: DefaultInitialTemperature,
		Material:           DefaultMaterial,
		Steps:              DefaultSteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the ranges the engine relies on. Unknown materials are
// left to the registry.
func (c *Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("%w: grid_size must be positive, got %d", ErrInvalid, c.GridSize)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %g", ErrInvalid, c.TimeStep)
	}
	if c.InitialTemperature < 0 {
		return fmt.Errorf("%w: initial_temperature below absolute zero: %g", ErrInvalid, c.InitialTemperature)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalid, c.Steps)
	}
	if c.Material == material.Custom {
		if c.CustomMaterial == nil || !c.CustomMaterial.Valid() {
			return fmt.Errorf("%w: custom material needs positive k, rho and c", ErrInvalid)
		}
	}
	for i, s := range c.Sources {
		if s.Power < 0 {
			return fmt.Errorf("%w: source %d has negative power", ErrInvalid, i)
		}
		if s.Temperature != nil && *s.Temperature < 0 {
			return fmt.Errorf("%w: source %d below absolute zero", ErrInvalid, i)
		}
	}
	return nil
}

// Heat returns the engine config.
func (c *Config) Heat() heat.Config {
	cfg := heat.Config{
		GridSize:           c.GridSize,
		TimeStep:           c.TimeStep,
		InitialTemperature: c.InitialTemperature,
		Material:           c.Material,
	}
	if c.CustomMaterial != nil {
		p := *c.CustomMaterial
		cfg.Custom = &p
	}
	return cfg
}

// HeatSources returns the explicit sources followed by any scattered ones.
func (c *Config) HeatSources() []heat.Source {
	out := make([]heat.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, heat.Source{X: s.X, Y: s.Y, Power: s.Power, Temperature: s.Temperature})
	}
	if c.Scatter != nil {
		out = append(out, Scatter(c.Scatter.Seed, c.Scatter.Count, c.GridSize, c.Scatter.Power, c.Scatter.Temperature)...)
	}
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.CustomMaterial != nil {
		p := *c.CustomMaterial
		cp.CustomMaterial = &p
	}
	cp.Sources = append([]SourceConfig(nil), c.Sources...)
	if c.Scatter != nil {
		s := *c.Scatter
		cp.Scatter = &s
	}
	return &cp
}
