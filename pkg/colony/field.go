package colony

// Pheromone bounds.
const (
	// InitialPheromone is the uniform intensity of the first generation.
	InitialPheromone = 1.0
	// MinPheromone floors every entry so repeated evaporation of unused edges
	// cannot underflow to zero.
	MinPheromone = 1e-100
)

// Field is an n×n symmetric table of strictly positive pheromone intensities.
// A Field is immutable once published to a generation; [Field.Next] returns
// a new one.
type Field struct {
	n int
	v []float64
}

// NewField returns an n×n field filled with initial.
func NewField(n int, initial float64) *Field {
	if initial < MinPheromone {
		initial = MinPheromone
	}
	f := &Field{n: n, v: make([]float64, n*n)}
	for i := range f.v {
		f.v[i] = initial
	}
	return f
}

// Len returns the number of cities.
func (f *Field) Len() int { return f.n }

// At returns the intensity on edge (i, j).
func (f *Field) At(i, j int) float64 { return f.v[i*f.n+j] }

// Row returns the intensities from city i. The slice aliases the field and
// must not be modified.
func (f *Field) Row(i int) []float64 { return f.v[i*f.n : (i+1)*f.n] }

// Next applies one evaporation/deposit cycle and returns the resulting field.
// The receiver is not modified, so ants still reading it are unaffected.
//
//  1. Every entry, the diagonal included, is scaled by (1 - evaporation).
//  2. Each tour adds deposit/length to both directions of every edge it
//     uses, the closing edge included. Deposits accumulate.
//  3. Entries below MinPheromone are raised to MinPheromone.
func (f *Field) Next(results []AntResult, evaporation, deposit float64) *Field {
	next := &Field{n: f.n, v: make([]float64, len(f.v))}

	keep := 1 - evaporation
	for i, x := range f.v {
		next.v[i] = x * keep
	}

	for _, r := range results {
		m := len(r.Tour)
		if m < 2 {
			continue
		}
		length := r.Length
		if length < MinDistance {
			length = MinDistance
		}
		amount := deposit / length

		for k := 0; k < m; k++ {
			a, b := r.Tour[k], r.Tour[(k+1)%m]
			next.v[a*f.n+b] += amount
			next.v[b*f.n+a] += amount
		}
	}

	for i, x := range next.v {
		if x < MinPheromone {
			next.v[i] = MinPheromone
		}
	}
	return next
}
