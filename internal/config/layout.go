package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/heatsim/internal/heat"
)

const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
	noiseScale   = 4.0
	// minSpacing keeps scattered sources outside each other's injection radius.
	minSpacing = 3
)

// Scatter picks count sources at the highest points of a Perlin noise field
// over a size×size grid. The layout depends only on its arguments.
func Scatter(seed int64, count, size int, power float64, temp *float64) []heat.Source {
	if count <= 0 || size <= 0 {
		return nil
	}

	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)

	type peak struct {
		x, y int
		v    float64
	}
	peaks := make([]peak, 0, size*size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			v := p.Noise2D(float64(x)/float64(size)*noiseScale, float64(y)/float64(size)*noiseScale)
			peaks = append(peaks, peak{x, y, v})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].v > peaks[j].v })

	out := make([]heat.Source, 0, count)
	for _, pk := range peaks {
		if len(out) == count {
			break
		}
		if crowded(out, pk.x, pk.y) {
			continue
		}
		var t *float64
		if temp != nil {
			v := *temp
			t = &v
		}
		out = append(out, heat.Source{X: pk.x, Y: pk.y, Power: power, Temperature: t})
	}
	return out
}

func crowded(placed []heat.Source, x, y int) bool {
	for _, s := range placed {
		dx, dy := s.X-x, s.Y-y
		if dx*dx+dy*dy < minSpacing*minSpacing {
			return true
		}
	}
	return false
}

// ParseSource parses "x,y,power" or "x,y,power,temperature".
func ParseSource(s string) (SourceConfig, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return SourceConfig{}, fmt.Errorf("%w: source %q: want x,y,power[,temperature]", ErrInvalid, s)
	}

	var sc SourceConfig
	var err error
	if sc.X, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return SourceConfig{}, fmt.Errorf("%w: source %q: x: %v", ErrInvalid, s, err)
	}
	if sc.Y, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return SourceConfig{}, fmt.Errorf("%w: source %q: y: %v", ErrInvalid, s, err)
	}
	if sc.Power, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err != nil {
		return SourceConfig{}, fmt.Errorf("%w: source %q: power: %v", ErrInvalid, s, err)
	}
	if sc.Power < 0 {
		return SourceConfig{}, fmt.Errorf("%w: source %q: negative power", ErrInvalid, s)
	}
	if len(parts) == 4 {
		t, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return SourceConfig{}, fmt.Errorf("%w: source %q: temperature: %v", ErrInvalid, s, err)
		}
		sc.Temperature = &t
	}
	return sc, nil
}
