package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatsim/internal/sim"
)

// PlotHistory charts max, mean and min temperature for every recorded step.
func PlotHistory(res *sim.Result, width, height int) string {
	if res == nil || len(res.Max) == 0 {
		return ""
	}
	caption := fmt.Sprintf("temperature (K) over %d steps: max / mean / min", res.StepsTaken)
	return asciigraph.PlotMany([][]float64{res.Max, res.Mean, res.Min},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
	)
}

// Sparkline charts a single series, as used by the live view.
func Sparkline(data []float64, width, height int, caption string) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
