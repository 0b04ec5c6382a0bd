package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/antour/pkg/tsplib"
)

// ErrInvalidReport is wrapped by every structural problem in a report.
var ErrInvalidReport = errors.New("io: invalid report")

// ReadReport decodes a report from r.
//
// ReadReport returns an error if:
//   - The JSON is malformed
//   - The tour is not a permutation of 1..instance.cities
//   - The history is longer than the configured iterations
//
// ReadReport does not close r.
func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := tsplib.CheckTour(rep.Instance.Cities, rep.Order()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if rep.Params.Iterations > 0 && len(rep.History) > rep.Params.Iterations {
		return nil, fmt.Errorf("%w: %d history entries for %d iterations",
			ErrInvalidReport, len(rep.History), rep.Params.Iterations)
	}
	return &rep, nil
}

// ImportReport reads a JSON report file at path.
func ImportReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadReport(f)
}
