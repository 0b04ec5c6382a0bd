package tsplib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/antour/pkg/distance"
)

// Sentinel errors for malformed input.
var (
	ErrMissingSection    = errors.New("tsplib: missing section")
	ErrMalformedLine     = errors.New("tsplib: malformed line")
	ErrUnsupported       = errors.New("tsplib: unsupported instance")
	ErrDimensionMismatch = errors.New("tsplib: dimension mismatch")
	ErrTourMismatch      = errors.New("tsplib: tour does not match instance")
)

const (
	keyName           = "NAME"
	keyComment        = "COMMENT"
	keyType           = "TYPE"
	keyDimension      = "DIMENSION"
	keyEdgeWeightType = "EDGE_WEIGHT_TYPE"

	nodeCoordSection = "NODE_COORD_SECTION"
	tourSection      = "TOUR_SECTION"
	eofMarker        = "EOF"
	sentinel         = "-1"
)

// City is one coordinate line.
type City struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Instance is a parsed TSPLIB problem.
type Instance struct {
	Name    string
	Comment string
	Type    string
	// Dimension is the declared DIMENSION, 0 when absent.
	Dimension int
	// EdgeWeightType is empty when the header does not declare one.
	EdgeWeightType distance.Metric
	Cities         []City
}

// Points returns the city coordinates in index order.
func (inst *Instance) Points() []distance.Point {
	pts := make([]distance.Point, len(inst.Cities))
	for i, c := range inst.Cities {
		pts[i] = distance.Point{X: c.X, Y: c.Y}
	}
	return pts
}

// Load reads an instance from path, gunzipping files that end in .gz.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	inst, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if inst.Name == "" {
		inst.Name = baseName(path)
	}
	return inst, nil
}

// Read parses an instance from r.
func Read(r io.Reader) (*Instance, error) {
	inst := &Instance{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	inCoords := false
	sawSection := false

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !inCoords {
			if strings.HasPrefix(line, nodeCoordSection) {
				inCoords, sawSection = true, true
				continue
			}
			if line == eofMarker {
				break
			}
			if err := inst.header(line, lineNo); err != nil {
				return nil, err
			}
			continue
		}

		if line == eofMarker || strings.HasPrefix(line, sentinel) {
			break
		}
		if strings.HasSuffix(strings.Fields(line)[0], "_SECTION") {
			break
		}
		city, err := parseCity(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, lineNo, err)
		}
		inst.Cities = append(inst.Cities, city)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !sawSection {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, nodeCoordSection)
	}
	if inst.Dimension > 0 && inst.Dimension != len(inst.Cities) {
		return nil, fmt.Errorf("%w: DIMENSION %d, found %d cities", ErrDimensionMismatch, inst.Dimension, len(inst.Cities))
	}
	return inst, nil
}

// header applies one "KEY : VALUE" line. Unknown keys are ignored.
func (inst *Instance) header(line string, lineNo int) error {
	key, value, ok := splitHeader(line)
	if !ok {
		return fmt.Errorf("%w: line %d: expected KEY : VALUE, got %q", ErrMalformedLine, lineNo, line)
	}

	switch key {
	case keyName:
		inst.Name = value
	case keyComment:
		if inst.Comment != "" {
			inst.Comment += "; "
		}
		inst.Comment += value
	case keyType:
		inst.Type = value
		if strings.ToUpper(value) != "TSP" {
			return fmt.Errorf("%w: TYPE %s", ErrUnsupported, value)
		}
	case keyDimension:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: line %d: DIMENSION %q", ErrMalformedLine, lineNo, value)
		}
		inst.Dimension = n
	case keyEdgeWeightType:
		m, err := distance.ParseMetric(value)
		if err != nil {
			return fmt.Errorf("%w: EDGE_WEIGHT_TYPE %s", ErrUnsupported, value)
		}
		inst.EdgeWeightType = m
	}
	return nil
}

func splitHeader(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.ToUpper(strings.TrimSpace(key)), strings.TrimSpace(value), true
}

func parseCity(line string) (City, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return City{}, fmt.Errorf("want \"id x y\", got %q", line)
	}
	id, err := parseID(fields[0])
	if err != nil {
		return City{}, err
	}
	x, err := parseCoord(fields[1])
	if err != nil {
		return City{}, fmt.Errorf("x coordinate %q", fields[1])
	}
	y, err := parseCoord(fields[2])
	if err != nil {
		return City{}, fmt.Errorf("y coordinate %q", fields[2])
	}
	return City{ID: id, X: x, Y: y}, nil
}

// parseCoord parses a finite coordinate. ParseFloat alone would accept
// "NaN" and "Inf".
func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}

// parseID accepts integral identifiers, including the "12.0" some
// generators write.
func parseID(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("city id %q", s)
	}
	return int(f), nil
}

// InferMetric picks the edge weight type for inst: the declared
// EDGE_WEIGHT_TYPE when present, otherwise a guess from the file name
// ("att" selects ATT, "geo" selects GEO, anything else EUC_2D).
func InferMetric(inst *Instance, path string) distance.Metric {
	if inst != nil && inst.EdgeWeightType != "" {
		return inst.EdgeWeightType
	}
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "att"):
		return distance.ATT
	case strings.Contains(name, "geo"):
		return distance.GEO
	default:
		return distance.EUC2D
	}
}

// baseName strips directories and the .gz and .tsp extensions.
func baseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, ".tsp")
}
