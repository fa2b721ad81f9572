package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
)

const (
	metadataFile = "metadata.json"
	gridFile     = "grid.csv"
)

// Store keeps one directory per saved snapshot under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SourceRecord struct {
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Power       float64  `json:"power"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Metadata describes a saved snapshot.
type Metadata struct {
	ID                 string             `json:"id"`
	Timestamp          time.Time          `json:"timestamp"`
	GridSize           int                `json:"grid_size"`
	TimeStep           float64            `json:"time_step"`
	InitialTemperature float64            `json:"initial_temperature"`
	Material           material.ID        `json:"material"`
	Steps              int                `json:"steps"`
	SimTime            float64            `json:"sim_time"`
	Sources            []SourceRecord     `json:"sources"`
	Metrics            map[string]float64 `json:"metrics"`
}

// NewMetadata fills the config-derived fields of a snapshot record.
func NewMetadata(cfg heat.Config, sources []heat.Source, steps int, simTime float64, metrics map[string]float64) Metadata {
	meta := Metadata{
		GridSize:           cfg.GridSize,
		TimeStep:           cfg.TimeStep,
		InitialTemperature: cfg.InitialTemperature,
		Material:           cfg.Material,
		Steps:              steps,
		SimTime:            simTime,
		Sources:            make([]SourceRecord, 0, len(sources)),
		Metrics:            metrics,
	}
	for _, hs := range sources {
		meta.Sources = append(meta.Sources, SourceRecord{X: hs.X, Y: hs.Y, Power: hs.Power, Temperature: hs.Temperature})
	}
	return meta
}

// Save writes meta and the grid's temperatures. The returned id is derived
// from the material and the save time.
func (s *Store) Save(meta Metadata, g heat.Grid) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Material, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, gridFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	for i := range g {
		row := make([]string, len(g[i]))
		for j := range g[i] {
			row[j] = strconv.FormatFloat(g[i][j].Temperature, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable snapshot, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadGrid rebuilds a grid from a snapshot. Source flags come from the
// metadata; the temperatures come from the CSV as saved.
func (s *Store) LoadGrid(runID string) (heat.Grid, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, gridFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) != meta.GridSize {
		return nil, fmt.Errorf("snapshot %s: expected %d rows, got %d", runID, meta.GridSize, len(records))
	}

	g := heat.NewGrid(meta.GridSize)
	for i, record := range records {
		if len(record) != meta.GridSize {
			return nil, fmt.Errorf("snapshot %s: row %d has %d cells", runID, i, len(record))
		}
		for j, field := range record {
			t, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: cell (%d,%d): %w", runID, i, j, err)
			}
			g[i][j] = heat.Cell{Temperature: t, Material: meta.Material}
		}
	}
	for _, src := range meta.Sources {
		if g.InBounds(src.X, src.Y) {
			g[src.X][src.Y].IsHeatSource = true
			g[src.X][src.Y].Power = src.Power
		}
	}
	return g, nil
}
