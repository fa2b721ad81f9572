package sim

import (
	"context"
	"sync"

	"github.com/san-kum/heatsim/internal/heat"
)

// Ensemble runs independent simulations that share a source layout, one
// goroutine per config. Each member owns its own grid, so members never
// share state.
type Ensemble struct {
	configs []heat.Config
	sources []heat.Source
	opts    []Option
}

func NewEnsemble(configs []heat.Config, sources []heat.Source, opts ...Option) *Ensemble {
	return &Ensemble{configs: configs, sources: sources, opts: opts}
}

// Run steps every member steps times. observers builds a fresh observer
// set per member. Results are in config order.
func (e *Ensemble) Run(ctx context.Context, steps int, observers func() []Observer) ([]*Result, error) {
	results := make([]*Result, len(e.configs))
	errs := make([]error, len(e.configs))

	var wg sync.WaitGroup
	for i := range e.configs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sources := make([]heat.Source, len(e.sources))
			copy(sources, e.sources)

			s, err := New(e.configs[idx], sources, e.opts...)
			if err != nil {
				errs[idx] = err
				return
			}

			var obs []Observer
			if observers != nil {
				obs = observers()
			}
			results[idx], errs[idx] = s.Run(ctx, steps, obs...)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
