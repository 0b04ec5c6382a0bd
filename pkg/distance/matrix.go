package distance

import (
	"errors"
	"fmt"
	"math"
)

// MinCities is the smallest instance that admits a meaningful tour.
// With two cities both tour edges coincide, so such instances are rejected
// together with the empty and single-city cases.
const MinCities = 3

// ErrDegenerateInstance is returned by [NewMatrix] when fewer than
// [MinCities] points are supplied.
var ErrDegenerateInstance = errors.New("distance: degenerate instance")

// ErrNonFinite is returned by [NewMatrix] when an edge weight is NaN or
// infinite, as happens for coordinates whose squared difference overflows.
var ErrNonFinite = errors.New("distance: non-finite edge weight")

// Matrix is a dense symmetric distance table with a zero diagonal.
type Matrix struct {
	n      int
	metric Metric
	d      []float64
}

// NewMatrix computes all pairwise distances of points under metric.
// Every weight must be finite.
//
// Complexity: O(n²) time and space.
func NewMatrix(points []Point, metric Metric) (*Matrix, error) {
	n := len(points)
	if n < MinCities {
		return nil, fmt.Errorf("%w: %d cities (need at least %d)", ErrDegenerateInstance, n, MinCities)
	}

	dist := metric.Func()
	m := &Matrix{n: n, metric: metric, d: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := dist(points[i], points[j])
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: cities %d and %d", ErrNonFinite, i+1, j+1)
			}
			m.d[i*n+j] = w
			m.d[j*n+i] = w
		}
	}
	return m, nil
}

// Len returns the number of cities.
func (m *Matrix) Len() int { return m.n }

// Metric returns the metric the matrix was built with.
func (m *Matrix) Metric() Metric { return m.metric }

// At returns the distance between cities i and j.
func (m *Matrix) At(i, j int) float64 { return m.d[i*m.n+j] }

// Row returns the distances from city i. The slice aliases the matrix and
// must not be modified.
func (m *Matrix) Row(i int) []float64 { return m.d[i*m.n : (i+1)*m.n] }

// TourLength returns the length of the closed tour, including the edge from
// the last city back to the first. Tours shorter than two cities have length 0.
func (m *Matrix) TourLength(tour []int) float64 {
	if len(tour) < 2 {
		return 0
	}
	var total float64
	for i := 0; i < len(tour)-1; i++ {
		total += m.At(tour[i], tour[i+1])
	}
	return total + m.At(tour[len(tour)-1], tour[0])
}
