package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/heatsim/internal/heat"
)

// Observer is fed the grid after every step of Run.
type Observer interface {
	Name() string
	Observe(g heat.Grid, t float64)
	Value() float64
	Reset()
}

// Result summarizes a Run. Index 0 of each series is the state before the
// first step.
type Result struct {
	Times      []float64
	Max        []float64
	Min        []float64
	Mean       []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Run calls Step steps times, stopping early when ctx is done. The partial
// result is returned alongside ctx.Err() or the step error.
func (s *Simulation) Run(ctx context.Context, steps int, observers ...Observer) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("steps must be non-negative, got %d", steps)
	}
	if len(s.grid) == 0 {
		return nil, heat.ErrEmptyGrid
	}

	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Max:     make([]float64, 0, steps+1),
		Min:     make([]float64, 0, steps+1),
		Mean:    make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, o := range observers {
		o.Reset()
	}

	s.running = true
	defer func() { s.running = false }()

	s.record(result, observers)

	var err error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		default:
		}
		if err != nil {
			break
		}

		if _, err = s.Step(); err != nil {
			break
		}
		result.StepsTaken++
		s.record(result, observers)
	}

	for _, o := range observers {
		result.Metrics[o.Name()] = o.Value()
	}

	return result, err
}

func (s *Simulation) record(r *Result, observers []Observer) {
	hi, _ := s.grid.Max()
	lo, _ := s.grid.Min()
	mean, _ := s.grid.Mean()
	r.Times = append(r.Times, s.time)
	r.Max = append(r.Max, hi)
	r.Min = append(r.Min, lo)
	r.Mean = append(r.Mean, mean)
	for _, o := range observers {
		o.Observe(s.grid, s.time)
	}
}
