package heat

import (
	"math"

	"github.com/san-kum/heatsim/internal/material"
)

// Config parameterizes a simulation.
type Config struct {
	GridSize           int
	TimeStep           float64 // seconds
	InitialTemperature float64 // Kelvin
	Material           material.ID
	Custom             *material.Properties
}

// Source holds a cell at a fixed temperature and injects power into the
// cells around it. A nil Temperature keeps the cell's current value.
type Source struct {
	X, Y        int
	Power       float64 // Watts
	Temperature *float64
}

// At reports whether the source sits on (x, y).
func (s Source) At(x, y int) bool { return s.X == x && s.Y == y }

// Kelvin is a helper for building a Source with a fixed temperature.
func Kelvin(t float64) *float64 { return &t }

// Cell is one grid point. Power is meaningful only when IsHeatSource.
type Cell struct {
	Temperature  float64
	IsHeatSource bool
	Material     material.ID
	Power        float64
}

// Grid is a square array of cells indexed grid[x][y].
type Grid [][]Cell

// NewGrid allocates an n×n grid backed by a single slice.
func NewGrid(n int) Grid {
	if n < 0 {
		n = 0
	}
	backing := make([]Cell, n*n)
	g := make(Grid, n)
	for i := range g {
		g[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return g
}

// Size returns the number of rows.
func (g Grid) Size() int { return len(g) }

// InBounds reports whether (x, y) addresses a cell.
func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && x < len(g) && y >= 0 && y < len(g[x])
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	c := NewGrid(len(g))
	for i := range g {
		copy(c[i], g[i])
	}
	return c
}

// Equal reports whether both grids hold identical cells.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Max returns the highest temperature in the grid.
func (g Grid) Max() (float64, error) {
	return g.reduce(math.Max)
}

// Min returns the lowest temperature in the grid.
func (g Grid) Min() (float64, error) {
	return g.reduce(math.Min)
}

// Mean returns the average temperature in the grid.
func (g Grid) Mean() (float64, error) {
	sum, n := 0.0, 0
	for i := range g {
		for j := range g[i] {
			sum += g[i][j].Temperature
			n++
		}
	}
	if n == 0 {
		return 0, ErrEmptyGrid
	}
	return sum / float64(n), nil
}

func (g Grid) reduce(pick func(a, b float64) float64) (float64, error) {
	found := false
	v := 0.0
	for i := range g {
		for j := range g[i] {
			if !found {
				v, found = g[i][j].Temperature, true
				continue
			}
			v = pick(v, g[i][j].Temperature)
		}
	}
	if !found {
		return 0, ErrEmptyGrid
	}
	return v, nil
}

// Temperatures copies the temperature field into a plain matrix.
func (g Grid) Temperatures() [][]float64 {
	out := make([][]float64, len(g))
	for i := range g {
		out[i] = make([]float64, len(g[i]))
		for j := range g[i] {
			out[i][j] = g[i][j].Temperature
		}
	}
	return out
}
