package viz

import (
	"math"
	"strings"

	"github.com/san-kum/heatsim/internal/heat"
)

// Shade maps t into a ramp band in [0, bands) relative to [lo, hi].
func Shade(t, lo, hi float64, bands int) int {
	if bands <= 1 || hi <= lo {
		return 0
	}
	f := (t - lo) / (hi - lo)
	b := int(math.Floor(f * float64(bands)))
	if b < 0 {
		return 0
	}
	if b >= bands {
		return bands - 1
	}
	return b
}

// HeatmapOptions controls Heatmap output.
type HeatmapOptions struct {
	// MaxCells caps the glyphs per row; larger grids are block-sampled,
	// keeping the hottest cell of each block.
	MaxCells int
	// Cursor highlights a cell when Show is set.
	Cursor struct {
		X, Y int
		Show bool
	}
}

// Heatmap renders g scaled between its own min and max.
func Heatmap(g heat.Grid, opts HeatmapOptions) string {
	lo, err := g.Min()
	if err != nil {
		return ""
	}
	hi, _ := g.Max()

	n := g.Size()
	block := 1
	if opts.MaxCells > 0 && n > opts.MaxCells {
		block = (n + opts.MaxCells - 1) / opts.MaxCells
	}

	var b strings.Builder
	for i := 0; i < n; i += block {
		for j := 0; j < n; j += block {
			t, source, cursor := sample(g, i, j, block, opts)
			switch {
			case cursor:
				b.WriteString(cursorStyle.Render(glyph(t, lo, hi, source)))
			case source:
				b.WriteString(sourceStyle.Render("●"))
			default:
				band := Shade(t, lo, hi, len(rampGlyphs))
				b.WriteString(rampStyles[band].Render(string(rampGlyphs[band])))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sample(g heat.Grid, i, j, block int, opts HeatmapOptions) (t float64, source, cursor bool) {
	t = math.Inf(-1)
	for x := i; x < i+block && x < len(g); x++ {
		for y := j; y < j+block && y < len(g[x]); y++ {
			c := g[x][y]
			t = math.Max(t, c.Temperature)
			source = source || c.IsHeatSource
			if opts.Cursor.Show && opts.Cursor.X == x && opts.Cursor.Y == y {
				cursor = true
			}
		}
	}
	return t, source, cursor
}

func glyph(t, lo, hi float64, source bool) string {
	if source {
		return "●"
	}
	return string(rampGlyphs[Shade(t, lo, hi, len(rampGlyphs))])
}
