// Package heat provides the grid state and the explicit finite-difference
// step for 2D heat diffusion.
//
// The package defines:
//
//   - [Config]: grid size, time step, initial temperature and material
//   - [Source]: a fixed-temperature, fixed-power cell
//   - [Cell] and [Grid]: the simulated domain, indexed grid[x][y]
//   - [Initialize]: builds the initial grid from a config and sources
//   - [Stepper]: computes the next grid from the current one
//
// # Example
//
//	cfg := heat.Config{GridSize: 50, TimeStep: 0.1, InitialTemperature: 293.15, Material: material.Copper}
//	g := heat.Initialize(cfg, sources)
//	st := heat.NewStepper(material.Default())
//	next, err := st.Step(g, sources, cfg)
//
// # Boundaries
//
// Edge cells get no stencil contribution along the axis they sit on, so
// corners only change through nearby sources. Temperatures are clamped at
// absolute zero.
//
// # Thread Safety
//
// [Stepper.Step] never writes to its input grid and may split rows across
// goroutines; the result does not depend on the split.
package heat
