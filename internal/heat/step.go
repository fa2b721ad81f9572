package heat

import (
	"math"

	"github.com/san-kum/heatsim/internal/material"
)

const (
	// dx and dy are the grid spacing in meters.
	dx = 1.0
	dy = 1.0

	// sourceRadius is the distance, in cells, over which a source injects power.
	sourceRadius = 2.0

	defaultMinRows = 16
)

// Stepper advances a grid by one explicit time step.
type Stepper struct {
	registry *material.Registry

	// Workers caps the goroutines used per step; 0 uses GOMAXPROCS and 1
	// keeps the step on the calling goroutine.
	Workers int
	// MinRows is the smallest row chunk handed to a worker.
	MinRows int
}

// NewStepper returns a stepper resolving materials against registry. A nil
// registry falls back to material.Default().
func NewStepper(registry *material.Registry) *Stepper {
	if registry == nil {
		registry = material.Default()
	}
	return &Stepper{registry: registry, MinRows: defaultMinRows}
}

// Registry returns the material table the stepper resolves against.
func (s *Stepper) Registry() *material.Registry { return s.registry }

// Step returns the grid one time step after current. current is only read;
// every cell of the result is computed from the pre-step values.
func (s *Stepper) Step(current Grid, sources []Source, cfg Config) (Grid, error) {
	props, err := s.registry.Resolve(cfg.Material, cfg.Custom)
	if err != nil {
		return nil, err
	}

	k := kernel{
		alpha:    props.Diffusivity(),
		capacity: props.HeatCapacity(),
		dt:       cfg.TimeStep,
		sources:  sources,
	}

	n := len(current)
	next := NewGrid(n)
	ParallelFor(n, s.MinRows, s.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := range current[i] {
				next[i][j] = k.apply(current, i, j)
			}
		}
	})
	return next, nil
}

type kernel struct {
	alpha    float64
	capacity float64
	dt       float64
	sources  []Source
}

func (k kernel) apply(g Grid, i, j int) Cell {
	cell := g[i][j]
	if cell.IsHeatSource {
		return cell
	}

	t := cell.Temperature
	dT := 0.0

	if i > 0 && i < len(g)-1 {
		dT += (g[i+1][j].Temperature - 2*t + g[i-1][j].Temperature) / (dx * dx)
	}
	if j > 0 && j < len(g[i])-1 {
		dT += (g[i][j+1].Temperature - 2*t + g[i][j-1].Temperature) / (dy * dy)
	}

	injected := 0.0
	for _, hs := range k.sources {
		di, dj := float64(i-hs.X), float64(j-hs.Y)
		d := math.Sqrt(di*di + dj*dj)
		if d <= sourceRadius {
			injected += hs.Power * k.dt / (4*math.Pi*d + 1)
		}
	}
	dT += injected / k.capacity

	cell.Temperature = math.Max(0, t+k.alpha*k.dt*dT)
	return cell
}
