package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	"github.com/matzehuels/antour/pkg/pipeline"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// solveFlags holds the raw flag values of the solve command. Only flags the
// user actually set override the configured parameters.
type solveFlags struct {
	output  string
	metric  string
	image   string
	report  string
	labels  bool
	noCache bool
	refresh bool
	noWrite bool
	tui     bool

	ants        int
	iterations  int
	workers     int
	alpha       float64
	beta        float64
	evaporation float64
	deposit     float64
	seed        int64
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var f solveFlags

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Search for a short tour of a TSPLIB instance",
		Long: `Search for a short closed tour through every city of a TSPLIB instance.

The instance may be plain or gzip-compressed (.tsp.gz). The distance metric is
taken from --metric, then the EDGE_WEIGHT_TYPE header, then the file name
(att* → ATT, *geo* → GEO, otherwise EUC_2D).

The best tour is written to <file>.opt.tour unless --output or --no-write is
given. Runs with an explicit seed are reproducible and cached.`,
		Example: `  # Solve the default instance with the reference parameters
  antour solve

  # A longer, reproducible run with a drawing of the result
  antour solve data/berlin52.tsp -i 500 -a 50 --seed 7 --image berlin52.svg

  # Watch the search live
  antour solve data/att48.tsp --tui`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := pipeline.DefaultInput
			if len(args) == 1 {
				input = args[0]
			}
			opts := c.solveOptions(cmd, input, &f)
			if f.tui {
				return c.runSolveTUI(cmd.Context(), opts, f.noCache)
			}
			return c.runSolve(cmd.Context(), opts, f.noCache)
		},
	}

	bindSolveFlags(cmd, &f)
	return cmd
}

// bindSolveFlags registers the solve flags on cmd, backed by f.
func bindSolveFlags(cmd *cobra.Command, f *solveFlags) {
	def := colony.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "tour output path (default <file>.opt.tour)")
	flags.StringVarP(&f.metric, "metric", "m", "", "distance metric: EUC_2D, ATT or GEO")
	flags.StringVar(&f.image, "image", "", "also draw the tour to this .svg, .png or .pdf file")
	flags.BoolVar(&f.labels, "labels", false, "label cities in the drawing")
	flags.StringVar(&f.report, "report", "", "write a JSON report of the run to this file")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the solution cache")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached solutions and search again")
	flags.BoolVar(&f.noWrite, "no-write", false, "do not write the tour file")
	flags.BoolVar(&f.tui, "tui", false, "show an interactive progress view")

	flags.IntVarP(&f.ants, "ants", "a", def.Ants, "ants per generation")
	flags.IntVarP(&f.iterations, "iterations", "i", def.Iterations, "number of generations")
	flags.IntVarP(&f.workers, "workers", "w", def.Workers, "goroutines building tours (does not change results)")
	flags.Float64Var(&f.alpha, "alpha", def.Alpha, "pheromone exponent")
	flags.Float64Var(&f.beta, "beta", def.Beta, "heuristic exponent")
	flags.Float64Var(&f.evaporation, "evaporation", def.Evaporation, "pheromone evaporation rate in [0, 1)")
	flags.Float64Var(&f.deposit, "deposit", def.Deposit, "pheromone deposit numerator")
	flags.Int64Var(&f.seed, "seed", 0, "random seed; without one a time-based seed is used and nothing is cached")
}

// solveOptions layers defaults, configuration and changed flags.
func (c *CLI) solveOptions(cmd *cobra.Command, input string, f *solveFlags) pipeline.Options {
	settings := c.config()
	cfg := colony.DefaultConfig()
	settings.Apply(&cfg)

	changed := cmd.Flags().Changed
	if changed("ants") {
		cfg.Ants = f.ants
	}
	if changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("alpha") {
		cfg.Alpha = f.alpha
	}
	if changed("beta") {
		cfg.Beta = f.beta
	}
	if changed("evaporation") {
		cfg.Evaporation = f.evaporation
	}
	if changed("deposit") {
		cfg.Deposit = f.deposit
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}

	return pipeline.Options{
		Input:   input,
		Output:  f.output,
		Metric:  distance.Metric(strings.ToUpper(f.metric)),
		Colony:  cfg,
		SeedSet: changed("seed") || settings.HasSeed(),
		Refresh: f.refresh,
		NoWrite: f.noWrite,
		Image:   f.image,
		Labels:  f.labels,
		Report:  f.report,
		Logger:  loggerFromContext(cmd.Context()),
	}
}

// runSolve executes one solve with log output.
func (c *CLI) runSolve(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(opts.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		reportPartial(result, err)
		return err
	}
	prog.done("Search finished")

	printSolveResult(opts.Input, result, prog.elapsed())
	return nil
}

// runSolveTUI executes one solve behind the interactive progress view.
func (c *CLI) runSolveTUI(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Records would tear the view; warnings still reach the user afterwards.
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})

	prog := newProgress(c.Logger)
	result, err := runSolveView(ctx, runner, opts)
	if err != nil {
		reportPartial(result, err)
		return err
	}
	printSolveResult(opts.Input, result, prog.elapsed())
	return nil
}

// reportPartial tells the user about the best tour of an interrupted run.
func reportPartial(result *pipeline.Result, err error) {
	if !errors.Is(err, errors.ErrCodeCanceled) || result == nil || result.Solution == nil {
		return
	}
	sol := result.Solution
	printWarning("Interrupted after %d generations; best length %s was not written",
		len(sol.History), tsplib.FormatLength(sol.Length))
}

// printSolveResult prints the summary of a finished solve.
func printSolveResult(input string, result *pipeline.Result, elapsed time.Duration) {
	sol := result.Solution
	printSuccess("Best tour %s", StyleNumber.Render(tsplib.FormatLength(sol.Length)))
	printKeyValue("Instance", result.Instance.Name)
	printKeyValue("Metric", result.Metric.String())
	printKeyValue("Seed", strconv.FormatInt(result.Seed, 10))
	printKeyValue("Found", fmt.Sprintf("iteration %d, ant %d", sol.Iteration, sol.Ant))
	if result.CacheHit && result.CachedRunID != "" {
		printKeyValue("Run", result.CachedRunID+" (cached)")
	} else {
		printKeyValue("Run", result.RunID)
	}
	printStats(result.Stats.Cities, result.Stats.Generations, elapsed, result.CacheHit)

	if result.TourPath != "" {
		printFile(result.TourPath)
	}
	if result.ImagePath != "" {
		printFile(result.ImagePath)
	}
	if result.ReportPath != "" {
		printFile(result.ReportPath)
	}
	if result.TourPath != "" && result.ImagePath == "" {
		printNewline()
		printNextStep("Draw it", fmt.Sprintf("antour render %s %s -o tour.svg", input, result.TourPath))
	}
}
