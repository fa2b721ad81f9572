package export

import (
	"strings"
	"testing"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
)

func TestGridToSVG(t *testing.T) {
	cfg := heat.Config{GridSize: 4, TimeStep: 0.1, InitialTemperature: 293.15, Material: material.Copper}
	g := heat.Initialize(cfg, []heat.Source{{X: 1, Y: 2, Power: 10, Temperature: heat.Kelvin(400)}})

	svg := GridToSVG(g, 10)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed document: %q", svg[:40])
	}
	// background plus one rect per cell
	if got := strings.Count(svg, "<rect"); got != 1+16 {
		t.Errorf("expected 17 rects, got %d", got)
	}
	if strings.Count(svg, `stroke="#ffffff"`) != 1 {
		t.Error("expected exactly one outlined source cell")
	}
	if !strings.Contains(svg, palette[len(palette)-1]) || !strings.Contains(svg, palette[0]) {
		t.Error("hottest and coldest cells should use the ends of the palette")
	}
	if !strings.Contains(svg, `width="40"`) {
		t.Error("document should be gridSize*cellSize wide")
	}
}

func TestGridToSVGEmpty(t *testing.T) {
	if GridToSVG(nil, 10) != "" {
		t.Error("empty grid should produce no document")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 0.1, 0.2}, []float64{300, 310, 305}, 200, 100, "#ff5f00")
	if !strings.Contains(svg, `stroke="#ff5f00"`) {
		t.Error("stroke color missing")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}

	if SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "red") != "" {
		t.Error("a single point has nothing to draw")
	}
	if SeriesToSVG([]float64{0, 1}, []float64{1}, 10, 10, "red") != "" {
		t.Error("mismatched series should be rejected")
	}
}
