package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/antour/pkg/cache"
	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	pkgio "github.com/matzehuels/antour/pkg/io"
	"github.com/matzehuels/antour/pkg/observability"
	"github.com/matzehuels/antour/pkg/tsplib"
)

const solutionKeyType = "solution"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of cached solutions; 0 means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedSolution is the JSON stored under a solution key.
type cachedSolution struct {
	RunID    string           `json:"run_id"`
	Instance string           `json:"instance"`
	Metric   distance.Metric  `json:"metric"`
	Solution *colony.Solution `json:"solution"`
	SolvedAt time.Time        `json:"solved_at"`
}

// Execute runs load → prepare → solve → write → draw → report.
//
// On cancellation the returned Result carries the best solution found so
// far together with an ErrCodeCanceled error. No files are written unless
// every stage succeeds.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	result := &Result{RunID: runID, Seed: opts.Colony.Seed}

	// Stage 1: Load
	loadStart := time.Now()
	inst, err := tsplib.Load(opts.Input)
	result.Stats.LoadTime = time.Since(loadStart)
	cities := 0
	if inst != nil {
		cities = len(inst.Cities)
	}
	observability.Solver().OnLoadComplete(ctx, opts.Input, cities, result.Stats.LoadTime, err)
	if err != nil {
		return nil, loadError(opts.Input, err)
	}
	result.Instance = inst
	result.Stats.Cities = cities

	logger.Info("loaded instance",
		"name", inst.Name,
		"cities", cities,
		"duration", result.Stats.LoadTime)

	// Stage 2: Prepare
	metric := opts.Metric
	if metric == "" {
		metric = tsplib.InferMetric(inst, opts.Input)
	}
	result.Metric = metric
	logger.Debug("selected metric", "metric", metric, "source", metricSource(&opts, inst))

	dist, err := distance.NewMatrix(inst.Points(), metric)
	if err != nil {
		return nil, matrixError(opts.Input, err)
	}

	// Stage 3: Solve
	solveStart := time.Now()
	sol, err := r.solve(ctx, logger, &opts, inst, dist, result)
	result.Stats.SolveTime = time.Since(solveStart)
	result.Solution = sol
	if sol != nil {
		result.Stats.Generations = len(sol.History)
	}
	if err != nil {
		return result, err
	}

	logger.Info("search finished",
		"length", tsplib.FormatLength(sol.Length),
		"iteration", sol.Iteration,
		"cached", result.CacheHit,
		"duration", result.Stats.SolveTime)

	// Stages 4-6 stage their files and commit them together, so a failure
	// leaves no output behind.
	var out outputs
	defer out.discard()

	// Stage 4: Write
	if !opts.NoWrite {
		tour := tsplib.NewTour(opts.Input, sol.Tour, sol.Length)
		err := out.create(opts.Output, func(w io.Writer) error { return tsplib.WriteTour(w, tour) })
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeInternal, err, "write tour %s", opts.Output)
		}
	}

	// Stage 5: Draw
	if opts.Image != "" {
		renderStart := time.Now()
		data, err := drawTour(ctx, opts.Image, inst, sol, metric, opts.Labels)
		if err == nil {
			err = out.create(opts.Image, writeBytes(data))
		}
		result.Stats.RenderTime = time.Since(renderStart)
		observability.Solver().OnRenderComplete(ctx, imageFormat(opts.Image), result.Stats.RenderTime, err)
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeInternal, err, "draw tour %s", opts.Image)
		}
		logger.Debug("drew tour", "path", opts.Image, "duration", result.Stats.RenderTime)
	}

	// Stage 6: Report
	if opts.Report != "" {
		report := pkgio.NewReport(runID, opts.Input, inst, metric, opts.Colony, sol)
		report.Cached = result.CacheHit
		report.GeneratedAt = opts.now().UTC()
		err := out.create(opts.Report, func(w io.Writer) error { return pkgio.WriteReport(report, w) })
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeInternal, err, "write report %s", opts.Report)
		}
	}

	if err := out.commit(); err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, err, "write outputs")
	}
	if !opts.NoWrite {
		result.TourPath = opts.Output
		logger.Debug("wrote tour", "path", opts.Output)
	}
	if opts.Image != "" {
		result.ImagePath = opts.Image
	}
	if opts.Report != "" {
		result.ReportPath = opts.Report
		logger.Debug("wrote report", "path", opts.Report)
	}

	return result, nil
}

// solve answers from the cache when allowed, otherwise runs the colony and
// stores the result.
func (r *Runner) solve(ctx context.Context, logger *log.Logger, opts *Options, inst *tsplib.Instance, dist *distance.Matrix, result *Result) (*colony.Solution, error) {
	key := ""
	if opts.Cacheable() {
		instHash, err := cache.HashJSON(inst.Points())
		if err == nil {
			key = r.Keyer.SolutionKey(instHash, opts.SolutionKeyOpts(result.Metric))
		}
	} else {
		logger.Info("using time-based seed", "seed", opts.Colony.Seed)
	}

	if key != "" && !opts.Refresh {
		if cached := r.lookup(ctx, logger, key, dist); cached != nil {
			result.CacheHit = true
			result.CachedRunID = cached.RunID
			logger.Info("cache hit", "from_run", shortID(cached.RunID))
			return cached.Solution, nil
		}
	}

	var improvements int
	progress := colony.ObserverFuncs{
		Improvement: func(imp colony.Improvement) {
			improvements++
			logger.Info("improved",
				"iteration", imp.Iteration,
				"ant", imp.Ant,
				"length", tsplib.FormatLength(imp.Length))
		},
		Generation: func(g colony.Generation) {
			logger.Debug("generation",
				"iteration", g.Iteration,
				"best", tsplib.FormatLength(g.Best),
				"mean", fmt.Sprintf("%.1f", g.Mean),
				"fallbacks", g.Fallbacks,
				"duration", g.Duration)
		},
	}
	observers := colony.Observers{progress}
	if opts.Observer != nil {
		observers = append(observers, opts.Observer)
	}

	c, err := colony.New(dist, opts.Colony, colony.WithObserver(observers))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "colony parameters")
	}

	observability.Solver().OnSolveStart(ctx, result.RunID, dist.Len(), opts.Colony.Ants, opts.Colony.Iterations)
	start := time.Now()
	sol, err := c.Run(ctx)
	length := math.Inf(1)
	if sol != nil {
		length = sol.Length
	}
	observability.Solver().OnSolveComplete(ctx, result.RunID, length, time.Since(start), err)
	result.Stats.Improvements = improvements

	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return sol, errors.Wrap(errors.ErrCodeCanceled, err, "search interrupted")
		}
		return sol, errors.Wrap(errors.ErrCodeInternal, err, "search failed")
	}

	if key != "" {
		r.store(ctx, logger, key, cachedSolution{
			RunID:    result.RunID,
			Instance: inst.Name,
			Metric:   result.Metric,
			Solution: sol,
			SolvedAt: opts.now().UTC(),
		})
	}
	return sol, nil
}

// lookup returns a cached solution that is a valid tour of dist, or nil.
// Cache failures are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, logger *log.Logger, key string, dist *distance.Matrix) *cachedSolution {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", errors.Wrap(errors.ErrCodeCache, err, "get %s", shortKey(key)))
		return nil
	}
	if !hit {
		logger.Debug("cache miss", "key", shortKey(key))
		observability.Cache().OnCacheMiss(ctx, solutionKeyType)
		return nil
	}

	var entry cachedSolution
	if err := json.Unmarshal(data, &entry); err != nil || entry.Solution == nil {
		logger.Warn("discarding unreadable cache entry", "key", shortKey(key))
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, solutionKeyType)
		return nil
	}
	if err := tsplib.CheckTour(dist.Len(), entry.Solution.Tour); err != nil {
		logger.Warn("discarding mismatched cache entry", "key", shortKey(key), "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, solutionKeyType)
		return nil
	}
	// Recompute rather than trust the stored length.
	entry.Solution.Length = dist.TourLength(entry.Solution.Tour)

	observability.Cache().OnCacheHit(ctx, solutionKeyType)
	return &entry
}

func (r *Runner) store(ctx context.Context, logger *log.Logger, key string, entry cachedSolution) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("cache encode failed", "err", err)
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "err", errors.Wrap(errors.ErrCodeCache, err, "set %s", shortKey(key)))
		return
	}
	observability.Cache().OnCacheSet(ctx, solutionKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// matrixError maps a distance matrix failure for the instance at path.
func matrixError(path string, err error) error {
	if stderrors.Is(err, distance.ErrDegenerateInstance) {
		return errors.Wrap(errors.ErrCodeDegenerateInstance, err, "%s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidInstance, err, "%s", path)
}

// loadError classifies an instance loading failure.
func loadError(path string, err error) error {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "instance %s not found", path)
	case stderrors.Is(err, tsplib.ErrMalformedLine),
		stderrors.Is(err, tsplib.ErrMissingSection),
		stderrors.Is(err, tsplib.ErrDimensionMismatch),
		stderrors.Is(err, tsplib.ErrUnsupported):
		return errors.Wrap(errors.ErrCodeInvalidInstance, err, "invalid instance")
	default:
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read instance %s", path)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortKey(key string) string {
	if len(key) > 21 {
		return key[:21]
	}
	return key
}
