package heat

// Initialize builds the starting grid for cfg. Cells under a source take the
// source's temperature when it has one; with several sources on the same
// coordinate the last one wins.
func Initialize(cfg Config, sources []Source) Grid {
	g := NewGrid(cfg.GridSize)
	for i := range g {
		for j := range g[i] {
			g[i][j] = Cell{
				Temperature: cfg.InitialTemperature,
				Material:    cfg.Material,
			}
		}
	}
	for _, hs := range sources {
		if !g.InBounds(hs.X, hs.Y) {
			continue
		}
		c := &g[hs.X][hs.Y]
		c.IsHeatSource = true
		c.Power = hs.Power
		c.Temperature = cfg.InitialTemperature
		if hs.Temperature != nil {
			c.Temperature = *hs.Temperature
		}
	}
	return g
}

// ApplySource marks the cell under hs as a source in place. It returns false
// when the coordinate is outside the grid.
func (g Grid) ApplySource(hs Source) bool {
	if !g.InBounds(hs.X, hs.Y) {
		return false
	}
	c := &g[hs.X][hs.Y]
	c.IsHeatSource = true
	c.Power = hs.Power
	if hs.Temperature != nil {
		c.Temperature = *hs.Temperature
	}
	return true
}

// ClearSource removes the source flags from (x, y), leaving its temperature.
func (g Grid) ClearSource(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	c := &g[x][y]
	c.IsHeatSource = false
	c.Power = 0
	return true
}
