package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/material"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configFile, preset, sourceSpecs = "", "", nil
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestCommand(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.GridSize != config.DefaultGridSize || cfg.Material != config.DefaultMaterial {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFlagsOverridePreset(t *testing.T) {
	cmd := newTestCommand(t, "--preset", "center", "--size", "20", "--material", "silicon", "--source", "2,3,50")
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	p := config.GetPreset("center")
	if cfg.GridSize != 20 || cfg.Material != material.Silicon {
		t.Errorf("flags should win: %+v", cfg)
	}
	if cfg.TimeStep != p.TimeStep {
		t.Errorf("unset flags should keep the preset value, got dt=%g", cfg.TimeStep)
	}
	if len(cfg.Sources) != len(p.Sources)+1 {
		t.Errorf("--source should append, got %d sources", len(cfg.Sources))
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(path, []byte("grid_size: 12\nmaterial: air\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(newTestCommand(t, "--config", path, "--steps", "3"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.GridSize != 12 || cfg.Material != material.Air || cfg.Steps != 3 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "nope"}},
		{"config and preset", []string{"--preset", "center", "--config", "x.yaml"}},
		{"bad source", []string{"--source", "1,2"}},
		{"zero dt", []string{"--dt", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(newTestCommand(t, tt.args...)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	_, err := loadConfig(newTestCommand(t, "--size", "-1"))
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
