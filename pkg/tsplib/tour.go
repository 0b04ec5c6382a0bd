package tsplib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TourSuffix is appended to the instance path to name the default output.
const TourSuffix = ".opt.tour"

// Tour is a TSPLIB tour file. Order holds 0-based city indices.
type Tour struct {
	Name    string
	Comment string
	Order   []int
}

// NewTour describes order as the best tour found for the instance at input.
func NewTour(input string, order []int, length float64) *Tour {
	return &Tour{
		Name:    filepath.Base(input) + TourSuffix,
		Comment: "Length " + FormatLength(length),
		Order:   order,
	}
}

// DefaultTourPath returns the output path used when none is given.
func DefaultTourPath(input string) string {
	return input + TourSuffix
}

// FormatLength prints a tour length without a trailing fraction when it is
// integral, which every rounded TSPLIB metric is.
func FormatLength(length float64) string {
	return strconv.FormatFloat(length, 'f', -1, 64)
}

// WriteTour writes t in TSPLIB TOUR format.
func WriteTour(w io.Writer, t *Tour) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NAME: %s\n", t.Name)
	if t.Comment != "" {
		fmt.Fprintf(bw, "COMMENT: %s\n", t.Comment)
	}
	fmt.Fprintf(bw, "TYPE: TOUR\n")
	fmt.Fprintf(bw, "DIMENSION: %d\n", len(t.Order))
	fmt.Fprintf(bw, "%s\n", tourSection)
	for _, city := range t.Order {
		fmt.Fprintf(bw, "%d\n", city+1)
	}
	fmt.Fprintf(bw, "%s\n%s\n", sentinel, eofMarker)
	return bw.Flush()
}

// SaveTour writes t to path, replacing any existing file. The tour is written
// under a temporary name and renamed into place.
func SaveTour(path string, t *Tour) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tour-*")
	if err != nil {
		return err
	}
	if err := WriteTour(f, t); err != nil {
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

// ReadTour parses a TSPLIB tour. Identifiers may be spread over any number
// of lines and are converted to 0-based indices.
func ReadTour(r io.Reader) (*Tour, error) {
	t := &Tour{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	dimension := 0
	inTour := false
	done := false
	lineNo := 0

	for !done && sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !inTour {
			if strings.HasPrefix(line, tourSection) {
				inTour = true
				continue
			}
			if line == eofMarker {
				break
			}
			key, value, ok := splitHeader(line)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: expected KEY : VALUE, got %q", ErrMalformedLine, lineNo, line)
			}
			switch key {
			case keyName:
				t.Name = value
			case keyComment:
				t.Comment = value
			case keyType:
				if strings.ToUpper(value) != "TOUR" {
					return nil, fmt.Errorf("%w: TYPE %s", ErrUnsupported, value)
				}
			case keyDimension:
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: line %d: DIMENSION %q", ErrMalformedLine, lineNo, value)
				}
				dimension = n
			}
			continue
		}

		if line == eofMarker {
			break
		}
		for _, field := range strings.Fields(line) {
			id, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: city id %q", ErrMalformedLine, lineNo, field)
			}
			if id == -1 {
				done = true
				break
			}
			if id < 1 {
				return nil, fmt.Errorf("%w: line %d: city id %d", ErrMalformedLine, lineNo, id)
			}
			t.Order = append(t.Order, id-1)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !inTour {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, tourSection)
	}
	if dimension > 0 && dimension != len(t.Order) {
		return nil, fmt.Errorf("%w: DIMENSION %d, found %d cities", ErrDimensionMismatch, dimension, len(t.Order))
	}
	return t, nil
}

// CheckTour verifies that order visits each of n cities exactly once.
func CheckTour(n int, order []int) error {
	if len(order) != n {
		return fmt.Errorf("%w: tour has %d cities, instance has %d", ErrTourMismatch, len(order), n)
	}
	seen := make([]bool, n)
	for _, c := range order {
		if c < 0 || c >= n {
			return fmt.Errorf("%w: city %d out of range", ErrTourMismatch, c+1)
		}
		if seen[c] {
			return fmt.Errorf("%w: city %d visited twice", ErrTourMismatch, c+1)
		}
		seen[c] = true
	}
	return nil
}

// LoadTour reads a tour file from path.
func LoadTour(path string) (*Tour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadTour(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
