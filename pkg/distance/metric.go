package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownMetric is returned by [ParseMetric] for an unsupported tag.
var ErrUnknownMetric = errors.New("distance: unknown metric")

// Point is a city position. For [GEO] X is the latitude and Y the longitude,
// both in degrees.
type Point struct {
	X, Y float64
}

// Metric names a TSPLIB EDGE_WEIGHT_TYPE.
type Metric string

// Supported metrics.
const (
	EUC2D Metric = "EUC_2D"
	ATT   Metric = "ATT"
	GEO   Metric = "GEO"
)

// Func maps two points to an edge weight.
type Func func(a, b Point) float64

// Constants of the GEO metric. geoPI is the truncated value TSPLIB uses.
// Coordinates are taken as plain decimal degrees without the TSPLIB DDD.MM
// conversion, so lengths follow that simpler reading and do not reproduce the
// published GEO optima.
const (
	geoPI     = 3.141592
	geoRadius = 6378.388
)

// ParseMetric converts a TSPLIB tag (case-insensitive) into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToUpper(strings.TrimSpace(s))); m {
	case EUC2D, ATT, GEO:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (must be one of: EUC_2D, ATT, GEO)", ErrUnknownMetric, s)
	}
}

// String returns the TSPLIB tag.
func (m Metric) String() string { return string(m) }

// Func returns the distance function for m.
// Unknown metrics fall back to [EUC2D].
func (m Metric) Func() Func {
	switch m {
	case ATT:
		return Att
	case GEO:
		return Geo
	default:
		return Euclidean
	}
}

// Euclidean is the EUC_2D metric: round(sqrt(dx²+dy²)).
func Euclidean(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Round(math.Sqrt(dx*dx + dy*dy))
}

// Att is the ATT pseudo-Euclidean metric: ceil(sqrt((dx²+dy²)/10)).
func Att(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Ceil(math.Sqrt((dx*dx + dy*dy) / 10.0))
}

// Geo is the GEO great-circle metric.
// The arc-cosine argument is clamped to [-1, 1]; for a == b it is exactly 1
// and the result is floor(0 + 1) = 1.
func Geo(a, b Point) float64 {
	lat1, lon1 := geoPI*(a.X/180), geoPI*(a.Y/180)
	lat2, lon2 := geoPI*(b.X/180), geoPI*(b.Y/180)

	q1 := math.Cos(lon1 - lon2)
	q2 := math.Cos(lat1 - lat2)
	q3 := math.Cos(lat1 + lat2)

	arg := 0.5 * ((1+q1)*q2 - (1-q1)*q3)
	return math.Floor(geoRadius*math.Acos(clamp(arg, -1, 1)) + 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
