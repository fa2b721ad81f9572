// Package material holds the thermal properties that parameterize diffusion.
//
// A [Registry] is an immutable table from [ID] to [Properties]. The engine
// receives a registry explicitly; [Default] returns the built-in table
// (copper, silicon, graphene, air). The [Custom] identifier is never stored
// in a table and is resolved from a caller-supplied override instead.
package material

import (
	"errors"
	"fmt"
	"sort"
)

// ID identifies a material in a registry.
type ID string

const (
	Copper   ID = "copper"
	Silicon  ID = "silicon"
	Graphene ID = "graphene"
	Air      ID = "air"
	Custom   ID = "custom"
)

// ErrUnknownMaterial is returned when an identifier has no properties.
var ErrUnknownMaterial = errors.New("material: unknown material")

// Properties describes a material. Alpha may be zero, in which case it is
// derived from K, Rho and C.
type Properties struct {
	K     float64 `yaml:"k" json:"k"`         // thermal conductivity (W/m·K)
	Rho   float64 `yaml:"rho" json:"rho"`     // density (kg/m³)
	C     float64 `yaml:"c" json:"c"`         // specific heat (J/kg·K)
	Alpha float64 `yaml:"alpha" json:"alpha"` // diffusivity (m²/s)
}

// NewProperties returns properties with Alpha derived as k/(rho*c).
func NewProperties(k, rho, c float64) Properties {
	return Properties{K: k, Rho: rho, C: c, Alpha: k / (rho * c)}
}

// Diffusivity returns Alpha when supplied, otherwise k/(rho*c).
func (p Properties) Diffusivity() float64 {
	if p.Alpha > 0 {
		return p.Alpha
	}
	return p.K / (p.Rho * p.C)
}

// HeatCapacity returns the volumetric heat capacity rho*c.
func (p Properties) HeatCapacity() float64 { return p.Rho * p.C }

// Valid reports whether the properties are physically meaningful.
func (p Properties) Valid() bool {
	return p.K > 0 && p.Rho > 0 && p.C > 0 && p.Alpha >= 0
}

var displayNames = map[ID]string{
	Copper:   "Copper",
	Silicon:  "Silicon",
	Graphene: "Graphene",
	Air:      "Air",
	Custom:   "Custom",
}

// Name returns a human readable name for id, or the id itself.
func Name(id ID) string {
	if n, ok := displayNames[id]; ok {
		return n
	}
	return string(id)
}

// Registry is a read-only material table.
type Registry struct {
	table map[ID]Properties
}

// NewRegistry copies table into a new registry.
func NewRegistry(table map[ID]Properties) *Registry {
	r := &Registry{table: make(map[ID]Properties, len(table))}
	for id, p := range table {
		r.table[id] = p
	}
	return r
}

var defaultRegistry = NewRegistry(map[ID]Properties{
	Copper:   NewProperties(400, 8960, 385),
	Silicon:  NewProperties(148, 2330, 700),
	Graphene: NewProperties(5000, 2200, 700),
	Air:      NewProperties(0.024, 1.225, 1005),
})

// Default returns the built-in registry.
func Default() *Registry { return defaultRegistry }

// Lookup returns the properties registered for id.
func (r *Registry) Lookup(id ID) (Properties, error) {
	p, ok := r.table[id]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, id)
	}
	return p, nil
}

// Resolve is Lookup, except that Custom resolves to the supplied override.
func (r *Registry) Resolve(id ID, custom *Properties) (Properties, error) {
	if id == Custom {
		if custom == nil {
			return Properties{}, fmt.Errorf("%w: %q selected without properties", ErrUnknownMaterial, id)
		}
		return *custom, nil
	}
	return r.Lookup(id)
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.table))
	for id := range r.table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
