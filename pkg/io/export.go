package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// Report is the JSON document describing one solve.
type Report struct {
	RunID       string          `json:"run_id"`
	Instance    InstanceInfo    `json:"instance"`
	Metric      distance.Metric `json:"metric"`
	Params      colony.Config   `json:"params"`
	Length      float64         `json:"length"`
	Tour        []int           `json:"tour"`
	Found       Found           `json:"found"`
	History     []float64       `json:"history"`
	Cached      bool            `json:"cached"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// InstanceInfo identifies the solved instance.
type InstanceInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Cities int    `json:"cities"`
}

// Found locates where the best tour was first built.
type Found struct {
	Iteration int `json:"iteration"`
	Ant       int `json:"ant"`
}

// NewReport builds a report for sol. The 0-based tour is stored 1-based.
func NewReport(runID, path string, inst *tsplib.Instance, metric distance.Metric, params colony.Config, sol *colony.Solution) *Report {
	tour := make([]int, len(sol.Tour))
	for i, c := range sol.Tour {
		tour[i] = c + 1
	}
	return &Report{
		RunID:    runID,
		Instance: InstanceInfo{Name: inst.Name, Path: path, Cities: len(inst.Cities)},
		Metric:   metric,
		Params:   params,
		Length:   sol.Length,
		Tour:     tour,
		Found:    Found{Iteration: sol.Iteration, Ant: sol.Ant},
		History:  append([]float64(nil), sol.History...),
	}
}

// Order returns the tour as 0-based city indices.
func (r *Report) Order() []int {
	order := make([]int, len(r.Tour))
	for i, c := range r.Tour {
		order[i] = c - 1
	}
	return order
}

// WriteReport encodes r as indented JSON and writes it to w.
func WriteReport(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportReport writes r to a JSON file at path. The file is written under a
// temporary name and renamed into place, so path never holds a partial report.
func ExportReport(r *Report, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReport(r, f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}
