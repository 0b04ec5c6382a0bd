package colony

import (
	"math"

	"github.com/matzehuels/antour/pkg/distance"
)

// MinDistance replaces zero-length edges before inversion, so duplicate
// coordinates yield a large finite heuristic instead of +Inf.
const MinDistance = 1e-6

// AntResult is the tour built by one ant in one generation.
type AntResult struct {
	Ant    int
	Tour   []int
	Length float64
	// Fallbacks counts selections resolved by the first-candidate fallback.
	Fallbacks int
}

// heuristic precomputes (1/max(d, MinDistance))^beta for every edge.
func heuristic(dist *distance.Matrix, beta float64) []float64 {
	n := dist.Len()
	eta := make([]float64, n*n)
	for i := 0; i < n; i++ {
		row := dist.Row(i)
		for j, d := range row {
			if d < MinDistance {
				d = MinDistance
			}
			eta[i*n+j] = math.Pow(1/d, beta)
		}
	}
	return eta
}

// scratch holds per-ant buffers sized to the instance.
type scratch struct {
	visited []bool
	weights []float64
}

func newScratch(n int) *scratch {
	return &scratch{visited: make([]bool, n), weights: make([]float64, n)}
}

// builder constructs tours for one colony. It only reads shared state.
type builder struct {
	dist  *distance.Matrix
	eta   []float64
	alpha float64
}

// build constructs one Hamiltonian cycle starting from a uniformly random city.
func (b *builder) build(field *Field, rng Source, s *scratch) ([]int, float64, int) {
	n := b.dist.Len()
	for i := range s.visited {
		s.visited[i] = false
	}

	tour := make([]int, 0, n)
	cur := rng.Intn(n)
	tour = append(tour, cur)
	s.visited[cur] = true

	fallbacks := 0
	for len(tour) < n {
		next, fallback := selectNext(field.Row(cur), b.eta[cur*n:(cur+1)*n], b.alpha, s.visited, s.weights, rng)
		if fallback {
			fallbacks++
		}
		tour = append(tour, next)
		s.visited[next] = true
		cur = next
	}
	return tour, b.dist.TourLength(tour), fallbacks
}

// selectNext performs roulette-wheel selection over the unvisited candidates,
// enumerated in ascending index order. tau and eta are the rows of the
// current city. weights is scratch space of the same length.
//
// The second result reports that the draw was resolved by the fallback:
//   - the running sum never reached the draw (rounding at the tail), or the
//     total weight is zero or NaN: the first unvisited candidate is chosen;
//   - the total overflowed to +Inf: the first candidate with the largest
//     weight is chosen.
//
// It returns -1 when every city is visited.
func selectNext(tau, eta []float64, alpha float64, visited []bool, weights []float64, rng Source) (int, bool) {
	first := -1
	total := 0.0
	for i, seen := range visited {
		if seen {
			weights[i] = 0
			continue
		}
		if first < 0 {
			first = i
		}
		w := math.Pow(tau[i], alpha) * eta[i]
		weights[i] = w
		total += w
	}

	switch {
	case first < 0:
		return -1, false
	case math.IsInf(total, 1):
		return argmax(weights, visited), true
	case !(total > 0):
		return first, true
	}

	draw := rng.Float64() * total
	sum := 0.0
	for i, seen := range visited {
		if seen {
			continue
		}
		sum += weights[i]
		if sum >= draw {
			return i, false
		}
	}
	return first, true
}

func argmax(weights []float64, visited []bool) int {
	best := -1
	for i, seen := range visited {
		if seen {
			continue
		}
		if best < 0 || weights[i] > weights[best] {
			best = i
		}
	}
	return best
}
