// Package pipeline provides the solve pipeline shared by every antour
// command.
//
// # Architecture
//
// A run goes through five stages:
//
//  1. Load: read the TSPLIB instance (plain or .gz)
//  2. Prepare: choose the metric and build the distance matrix
//  3. Solve: answer from the cache or run the ant colony
//  4. Write: save the tour file
//  5. Draw: optionally render the tour to SVG, PNG or PDF, and export a
//     JSON report
//
// Input errors abort the run before anything is written.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "att532.tsp",
//	    Colony:  colony.DefaultConfig(),
//	    SeedSet: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Solution.Length, result.TourPath)
//
// # Caching
//
// Only reproducible runs are cached: the seed must have been chosen
// explicitly ([Options.SeedSet]). Without one the pipeline picks a
// time-based seed, reports it in [Result.Seed] and skips the cache.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/antour/pkg/cache"
	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// DefaultInput is solved when no instance is named.
const DefaultInput = "att532.tsp"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one solve.
type Options struct {
	// Input is the instance path (.tsp or .tsp.gz).
	Input string `json:"input"`
	// Output is the tour path; empty means <Input>.opt.tour.
	Output string `json:"output,omitempty"`
	// Metric overrides the instance header and file name convention.
	Metric distance.Metric `json:"metric,omitempty"`
	// Colony holds the search parameters.
	Colony colony.Config `json:"colony"`
	// SeedSet marks Colony.Seed as chosen by the user.
	SeedSet bool `json:"seed_set,omitempty"`
	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`
	// NoWrite skips writing the tour file.
	NoWrite bool `json:"no_write,omitempty"`
	// Image, when set, receives a drawing of the tour (.svg, .png or .pdf).
	Image string `json:"image,omitempty"`
	// Labels draws city identifiers in the image.
	Labels bool `json:"labels,omitempty"`
	// Report, when set, receives a JSON report of the run.
	Report string `json:"report,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger     `json:"-"`
	Observer colony.Observer `json:"-"`
	// now is replaced in tests.
	now func() time.Time

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and cache entries.
	RunID string

	Instance *tsplib.Instance
	Metric   distance.Metric
	// Seed is the seed the search used, explicit or picked by the pipeline.
	Seed     int64
	Solution *colony.Solution

	// TourPath, ImagePath and ReportPath are empty when nothing was written.
	TourPath   string
	ImagePath  string
	ReportPath string

	Stats Stats

	// CacheHit reports that Solution came from the cache.
	CacheHit bool
	// CachedRunID is the run that originally produced a cached solution.
	CachedRunID string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cities       int
	Generations  int
	Improvements int
	LoadTime     time.Duration
	SolveTime    time.Duration
	RenderTime   time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		o.Input = DefaultInput
	}
	if err := errors.ValidatePath(o.Input); err != nil {
		return err
	}
	if o.Output == "" {
		o.Output = tsplib.DefaultTourPath(o.Input)
	}
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	for _, p := range []string{o.Image, o.Report} {
		if p == "" {
			continue
		}
		if err := errors.ValidateOutputPath(p); err != nil {
			return err
		}
	}
	if o.Metric != "" {
		m, err := distance.ParseMetric(string(o.Metric))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMetric, err, "metric %q", o.Metric)
		}
		o.Metric = m
	}

	if o.now == nil {
		o.now = time.Now
	}
	if !o.SeedSet {
		o.Colony.Seed = timeSeed(o.now())
	}
	if err := o.Colony.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "colony parameters")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Cacheable reports whether the run's result is reproducible and may be
// cached.
func (o *Options) Cacheable() bool {
	return o.SeedSet
}

// SolutionKeyOpts returns cache key options for a solve under metric.
func (o *Options) SolutionKeyOpts(metric distance.Metric) cache.SolutionKeyOpts {
	c := o.Colony
	return cache.SolutionKeyOpts{
		Metric:      string(metric),
		Ants:        c.Ants,
		Iterations:  c.Iterations,
		Alpha:       c.Alpha,
		Beta:        c.Beta,
		Evaporation: c.Evaporation,
		Deposit:     c.Deposit,
		Seed:        c.Seed,
	}
}

// timeSeed derives a non-zero seed from t.
func timeSeed(t time.Time) int64 {
	s := t.UnixNano()
	if s == 0 {
		return 1
	}
	return s
}

// metricSource describes where the metric came from, for logging.
func metricSource(opts *Options, inst *tsplib.Instance) string {
	switch {
	case opts.Metric != "":
		return "flag"
	case inst.EdgeWeightType != "":
		return "header"
	default:
		return "filename"
	}
}
