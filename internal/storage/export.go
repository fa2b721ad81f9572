package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/heatsim/internal/heat"
)

type ExportData struct {
	Metadata     Metadata    `json:"metadata"`
	Temperatures [][]float64 `json:"temperatures"`
}

// ExportJSON writes a snapshot as a single JSON document.
func ExportJSON(w io.Writer, meta Metadata, g heat.Grid) error {
	data := ExportData{
		Metadata:     meta,
		Temperatures: g.Temperatures(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
