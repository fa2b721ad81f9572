package metrics

import (
	"math"

	"github.com/san-kum/heatsim/internal/heat"
)

// PeakTemperature records the hottest cell seen across all observations.
type PeakTemperature struct {
	name    string
	peak    float64
	samples int
}

func NewPeakTemperature() *PeakTemperature {
	return &PeakTemperature{name: "peak_temperature"}
}

func (p *PeakTemperature) Name() string { return p.name }

func (p *PeakTemperature) Observe(g heat.Grid, t float64) {
	hi, err := g.Max()
	if err != nil {
		return
	}
	if p.samples == 0 {
		p.peak = hi
	}
	p.peak = math.Max(p.peak, hi)
	p.samples++
}

func (p *PeakTemperature) Value() float64 { return p.peak }

func (p *PeakTemperature) Reset() {
	p.peak = 0
	p.samples = 0
}

// MeanTemperature reports the grid average at the latest observation.
type MeanTemperature struct {
	name string
	mean float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(g heat.Grid, t float64) {
	if mean, err := g.Mean(); err == nil {
		m.mean = mean
	}
}

func (m *MeanTemperature) Value() float64 { return m.mean }

func (m *MeanTemperature) Reset() { m.mean = 0 }

// HeatedCells counts non-source cells warmer than a threshold at the latest
// observation.
type HeatedCells struct {
	name      string
	threshold float64
	count     int
}

func NewHeatedCells(threshold float64) *HeatedCells {
	return &HeatedCells{name: "heated_cells", threshold: threshold}
}

func (h *HeatedCells) Name() string { return h.name }

func (h *HeatedCells) Observe(g heat.Grid, t float64) {
	h.count = 0
	for i := range g {
		for j := range g[i] {
			if !g[i][j].IsHeatSource && g[i][j].Temperature > h.threshold {
				h.count++
			}
		}
	}
}

func (h *HeatedCells) Value() float64 { return float64(h.count) }

func (h *HeatedCells) Reset() { h.count = 0 }

// HeatContent tracks the heat stored above a reference temperature,
// sum(rho*c*(T-ref)) over unit-volume cells, in Joules.
type HeatContent struct {
	name      string
	capacity  float64
	reference float64
	joules    float64
}

func NewHeatContent(capacity, reference float64) *HeatContent {
	return &HeatContent{name: "heat_content", capacity: capacity, reference: reference}
}

func (h *HeatContent) Name() string { return h.name }

func (h *HeatContent) Observe(g heat.Grid, t float64) {
	sum := 0.0
	for i := range g {
		for j := range g[i] {
			sum += g[i][j].Temperature - h.reference
		}
	}
	h.joules = h.capacity * sum
}

func (h *HeatContent) Value() float64 { return h.joules }

func (h *HeatContent) Reset() { h.joules = 0 }
