// Package export writes grids and temperature histories as SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/viz"
)

// palette runs cold to hot; it matches the terminal ramp.
var palette = []string{
	"#00005f", "#0000af", "#005fff", "#0087ff", "#00afff",
	"#00ffaf", "#afff00", "#ffaf00", "#ff5f00", "#ff0000",
}

// GridToSVG draws one rect per cell, colored between the grid's own min and
// max. Source cells get a white outline.
func GridToSVG(g heat.Grid, cellSize float64) string {
	lo, err := g.Min()
	if err != nil {
		return ""
	}
	hi, _ := g.Max()
	if cellSize <= 0 {
		cellSize = 8
	}

	n := g.Size()
	side := float64(n) * cellSize

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, side, side, side, side))

	// Row i is drawn at y = i so the picture matches the terminal heatmap.
	for i := range g {
		for j, c := range g[i] {
			fill := palette[viz.Shade(c.Temperature, lo, hi, len(palette))]
			x, y := float64(j)*cellSize, float64(i)*cellSize
			if c.IsHeatSource {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#ffffff" stroke-width="%.1f"/>
`, x, y, cellSize, cellSize, fill, cellSize*0.15))
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x, y, cellSize, cellSize, fill))
		}
	}

	sb.WriteString(fmt.Sprintf(`<text x="4" y="%.0f" fill="#cccccc" font-family="monospace" font-size="10">%.2f K - %.2f K</text>
`, side-4, lo, hi))
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots values against times as a single polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := range times {
		minX, maxX = min(minX, times[i]), max(maxX, times[i])
		minY, maxY = min(minY, values[i]), max(maxY, values[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range times {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
