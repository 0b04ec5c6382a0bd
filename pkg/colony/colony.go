package colony

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/antour/pkg/distance"
)

// ErrNilMatrix is returned by [New] without a distance matrix.
var ErrNilMatrix = errors.New("colony: nil distance matrix")

// ErrNoTour is returned by [Colony.Run] when a generation ends without any
// tour of finite length.
var ErrNoTour = errors.New("colony: no finite tour")

// Solution is the best tour found by a run.
type Solution struct {
	// Tour is a permutation of [0, n); the cycle closes implicitly.
	Tour   []int   `json:"tour"`
	Length float64 `json:"length"`
	// Iteration and Ant identify where Tour was first found.
	Iteration int `json:"iteration"`
	Ant       int `json:"ant"`
	// History[g] is the best-so-far length after generation g.
	History []float64 `json:"history"`
}

// Option configures a [Colony].
type Option func(*Colony)

// WithObserver registers an observer for progress events.
func WithObserver(o Observer) Option {
	return func(c *Colony) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithSource replaces the random source factory.
func WithSource(f SourceFactory) Option {
	return func(c *Colony) {
		if f != nil {
			c.newSource = f
		}
	}
}

// Colony is a configured search session over one distance matrix.
// A Colony may be run more than once; every run starts from a fresh field.
type Colony struct {
	dist      *distance.Matrix
	cfg       Config
	builder   builder
	observer  Observer
	newSource SourceFactory
	scratch   sync.Pool
}

// New validates cfg and prepares a colony for dist.
func New(dist *distance.Matrix, cfg Config, opts ...Option) (*Colony, error) {
	if dist == nil {
		return nil, ErrNilMatrix
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Colony{
		dist:      dist,
		cfg:       cfg,
		observer:  NopObserver{},
		newSource: NewSource,
		builder: builder{
			dist:  dist,
			eta:   heuristic(dist, cfg.Beta),
			alpha: cfg.Alpha,
		},
	}
	n := dist.Len()
	c.scratch.New = func() any { return newScratch(n) }

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the colony was built with.
func (c *Colony) Config() Config { return c.cfg }

// Run executes the full generation budget and returns the best tour.
//
// The global best is replaced only by a strictly shorter tour, scanning each
// generation in ant order, so ties keep the earliest tour found.
//
// The context is checked before every generation. On cancellation Run
// returns the best solution so far (nil if no generation finished) together
// with the context error.
func (c *Colony) Run(ctx context.Context) (*Solution, error) {
	n := c.dist.Len()
	field := NewField(n, InitialPheromone)
	best := &Solution{
		Length:    math.Inf(1),
		Iteration: -1,
		Ant:       -1,
		History:   make([]float64, 0, c.cfg.Iterations),
	}
	results := make([]AntResult, c.cfg.Ants)

	for gen := 0; gen < c.cfg.Iterations; gen++ {
		if err := ctx.Err(); err != nil {
			if best.Tour == nil {
				return nil, err
			}
			return best, err
		}

		start := time.Now()
		if err := c.generation(gen, field, results); err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}

		stats := Generation{Iteration: gen, GenerationBest: math.Inf(1)}
		for _, r := range results {
			stats.Mean += r.Length
			stats.Fallbacks += r.Fallbacks
			if r.Length < stats.GenerationBest {
				stats.GenerationBest = r.Length
			}
			if best.offer(gen, r) {
				c.observer.OnImprovement(Improvement{Iteration: gen, Ant: r.Ant, Length: r.Length})
			}
		}
		if err := best.check(n); err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		stats.Mean /= float64(len(results))
		best.History = append(best.History, best.Length)

		field = field.Next(results, c.cfg.Evaporation, c.cfg.Deposit)

		stats.Best = best.Length
		stats.Duration = time.Since(start)
		c.observer.OnGeneration(stats)
	}
	return best, nil
}

// offer replaces the best tour with r when r is strictly shorter.
// NaN lengths never win.
func (s *Solution) offer(gen int, r AntResult) bool {
	if !(r.Length < s.Length) {
		return false
	}
	s.Tour = slices.Clone(r.Tour)
	s.Length = r.Length
	s.Iteration = gen
	s.Ant = r.Ant
	return true
}

// check reports whether s holds a complete tour of n cities.
func (s *Solution) check(n int) error {
	if len(s.Tour) != n || math.IsInf(s.Length, 0) || math.IsNaN(s.Length) {
		return ErrNoTour
	}
	return nil
}

// generation builds every ant's tour against the frozen field and returns
// once all of them are stored in results.
func (c *Colony) generation(gen int, field *Field, results []AntResult) error {
	var g errgroup.Group
	g.SetLimit(c.cfg.workers())

	for k := range results {
		g.Go(func() error {
			rng := c.newSource(antSeed(c.cfg.Seed, gen, c.cfg.Ants, k))
			s := c.scratch.Get().(*scratch)
			defer c.scratch.Put(s)

			tour, length, fallbacks := c.builder.build(field, rng, s)
			results[k] = AntResult{Ant: k, Tour: tour, Length: length, Fallbacks: fallbacks}
			return nil
		})
	}
	return g.Wait()
}
