package automation

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/sim"
)

// Sweepable parameters.
const (
	ParamTimeStep           = "time_step"
	ParamInitialTemperature = "initial_temperature"
	ParamSourcePower        = "source_power"
)

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Max        float64
	Min        float64
	Mean       float64
	Err        error
}

// RunSweep executes a parameter sweep. A failing run is recorded in its
// SweepResult rather than aborting the sweep; cancellation aborts.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one value", config.ErrInvalid)
	}
	switch sweep.ParamName {
	case ParamTimeStep, ParamInitialTemperature, ParamSourcePower:
	default:
		return nil, fmt.Errorf("%w: unknown sweep parameter %q", config.ErrInvalid, sweep.ParamName)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		switch sweep.ParamName {
		case ParamTimeStep:
			cfg.TimeStep = paramVal
		case ParamInitialTemperature:
			cfg.InitialTemperature = paramVal
		case ParamSourcePower:
			for j := range cfg.Sources {
				cfg.Sources[j].Power = paramVal
			}
			if cfg.Scatter != nil {
				cfg.Scatter.Power = paramVal
			}
		}

		res := SweepResult{ParamValue: paramVal}
		if err := cfg.Validate(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		s, err := sim.New(cfg.Heat(), cfg.HeatSources(), sim.WithWorkers(cfg.Workers))
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		run, err := s.Run(ctx, cfg.Steps)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			res.Err = err
		}
		if run != nil && len(run.Times) > 0 {
			last := len(run.Times) - 1
			res.Max, res.Min, res.Mean = run.Max[last], run.Min[last], run.Mean[last]
		}
		results = append(results, res)

		logger.Printf("sweep %d/%d: %s=%.4g max=%.4f", i+1, sweep.NumSteps, sweep.ParamName, paramVal, res.Max)
	}

	return results, nil
}
