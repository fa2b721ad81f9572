package config

import (
	"sort"

	"github.com/san-kum/heatsim/internal/material"
)

func kelvin(t float64) *float64 { return &t }

var Presets = map[string]*Config{
	"center": {
		GridSize: 50, TimeStep: 0.1, InitialTemperature: 293.15, Material: material.Copper, Steps: 300,
		Sources: []SourceConfig{{X: 25, Y: 25, Power: 100, Temperature: kelvin(373.15)}},
	},
	"corners": {
		GridSize: 40, TimeStep: 0.1, InitialTemperature: 293.15, Material: material.Silicon, Steps: 400,
		Sources: []SourceConfig{
			{X: 1, Y: 1, Power: 200, Temperature: kelvin(450)},
			{X: 1, Y: 38, Power: 200, Temperature: kelvin(450)},
			{X: 38, Y: 1, Power: 200, Temperature: kelvin(450)},
			{X: 38, Y: 38, Power: 200, Temperature: kelvin(450)},
		},
	},
	"line": {
		GridSize: 30, TimeStep: 0.1, InitialTemperature: 273.15, Material: material.Copper, Steps: 200,
		Sources: []SourceConfig{
			{X: 15, Y: 5, Power: 50, Temperature: kelvin(350)},
			{X: 15, Y: 10, Power: 50, Temperature: kelvin(350)},
			{X: 15, Y: 15, Power: 50, Temperature: kelvin(350)},
			{X: 15, Y: 20, Power: 50, Temperature: kelvin(350)},
			{X: 15, Y: 25, Power: 50, Temperature: kelvin(350)},
		},
	},
	"graphene-chip": {
		GridSize: 32, TimeStep: 0.01, InitialTemperature: 300, Material: material.Graphene, Steps: 500,
		Sources: []SourceConfig{
			{X: 8, Y: 8, Power: 25},
			{X: 8, Y: 24, Power: 25},
			{X: 24, Y: 16, Power: 40, Temperature: kelvin(360)},
		},
	},
	"scatter": {
		GridSize: 60, TimeStep: 0.1, InitialTemperature: 293.15, Material: material.Copper, Steps: 300,
		Scatter: &ScatterConfig{Seed: 42, Count: 6, Power: 150, Temperature: kelvin(400)},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
