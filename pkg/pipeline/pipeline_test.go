package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/antour/pkg/cache"
	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	pkgio "github.com/matzehuels/antour/pkg/io"
	"github.com/matzehuels/antour/pkg/tsplib"
)

const squareTSP = `NAME : square
TYPE : TSP
DIMENSION : 4
EDGE_WEIGHT_TYPE : EUC_2D
NODE_COORD_SECTION
1 0 0
2 10 0
3 10 10
4 0 10
EOF
`

func writeInstance(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func smallColony() colony.Config {
	cfg := colony.DefaultConfig()
	cfg.Ants = 6
	cfg.Iterations = 8
	cfg.Seed = 11
	return cfg
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Colony: smallColony(), SeedSet: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Input != DefaultInput {
		t.Errorf("Input = %q, want %q", opts.Input, DefaultInput)
	}
	if opts.Output != DefaultInput+".opt.tour" {
		t.Errorf("Output = %q", opts.Output)
	}
	if opts.Colony.Seed != 11 {
		t.Errorf("explicit seed replaced: %d", opts.Colony.Seed)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if !opts.Cacheable() {
		t.Error("explicit seed should be cacheable")
	}

	// Idempotent
	opts.Input = ""
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Input != "" {
		t.Error("second call should be a no-op")
	}
}

func TestValidateAndSetDefaults_TimeSeed(t *testing.T) {
	now := time.Unix(0, 123456789)
	opts := Options{Input: "x.tsp", Colony: smallColony(), now: func() time.Time { return now }}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Colony.Seed != 123456789 {
		t.Errorf("Seed = %d, want time-based 123456789", opts.Colony.Seed)
	}
	if opts.Cacheable() {
		t.Error("time-seeded runs must not be cached")
	}

	if got := timeSeed(time.Unix(0, 0)); got == 0 {
		t.Error("timeSeed should never return 0")
	}
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	badColony := smallColony()
	badColony.Evaporation = 1

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"blank input", Options{Input: "  ", Colony: smallColony()}, errors.ErrCodeInvalidPath},
		{"control char output", Options{Input: "a.tsp", Output: "a\x01", Colony: smallColony()}, errors.ErrCodeInvalidPath},
		{"directory image", Options{Input: "a.tsp", Image: "out/", Colony: smallColony()}, errors.ErrCodeInvalidPath},
		{"metric", Options{Input: "a.tsp", Metric: "MAN_2D", Colony: smallColony()}, errors.ErrCodeInvalidMetric},
		{"colony", Options{Input: "a.tsp", Colony: badColony, SeedSet: true}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateAndSetDefaults_NormalizesMetric(t *testing.T) {
	opts := Options{Input: "a.tsp", Metric: "geo", Colony: smallColony()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Metric != distance.GEO {
		t.Errorf("Metric = %q, want GEO", opts.Metric)
	}
}

func TestSolutionKeyOpts(t *testing.T) {
	opts := Options{Colony: smallColony()}
	opts.Colony.Workers = 3
	k := opts.SolutionKeyOpts(distance.ATT)
	if k.Metric != "ATT" || k.Ants != 6 || k.Iterations != 8 || k.Seed != 11 {
		t.Errorf("unexpected key opts: %+v", k)
	}

	other := opts
	other.Colony.Workers = 1
	keyer := cache.NewDefaultKeyer()
	if keyer.SolutionKey("h", k) != keyer.SolutionKey("h", other.SolutionKeyOpts(distance.ATT)) {
		t.Error("worker count must not change the cache key")
	}
}

func TestExecute(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	runner := NewRunner(nil, nil, quietLogger())

	var improvements []colony.Improvement
	result, err := runner.Execute(context.Background(), Options{
		Input:   input,
		Colony:  smallColony(),
		SeedSet: true,
		Observer: colony.ObserverFuncs{Improvement: func(i colony.Improvement) {
			improvements = append(improvements, i)
		}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Metric != distance.EUC2D {
		t.Errorf("Metric = %q, want EUC_2D", result.Metric)
	}
	if result.Solution.Length != 40 {
		t.Errorf("Length = %v, want 40", result.Solution.Length)
	}
	if result.Stats.Cities != 4 || result.Stats.Generations != 8 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if len(improvements) == 0 || result.Stats.Improvements != len(improvements) {
		t.Errorf("observer saw %d improvements, stats report %d", len(improvements), result.Stats.Improvements)
	}

	want := input + ".opt.tour"
	if result.TourPath != want {
		t.Errorf("TourPath = %q, want %q", result.TourPath, want)
	}
	tour, err := tsplib.LoadTour(want)
	if err != nil {
		t.Fatalf("LoadTour: %v", err)
	}
	if tour.Comment != "Length 40" {
		t.Errorf("Comment = %q", tour.Comment)
	}
	if tour.Name != "square.tsp.opt.tour" {
		t.Errorf("Name = %q", tour.Name)
	}
	if err := tsplib.CheckTour(4, tour.Order); err != nil {
		t.Errorf("written tour invalid: %v", err)
	}
}

func TestExecute_InputErrors(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.tsp")
	if err := os.WriteFile(malformed, []byte("NODE_COORD_SECTION\n1 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	degenerate := filepath.Join(dir, "two.tsp")
	if err := os.WriteFile(degenerate, []byte("NODE_COORD_SECTION\n1 0 0\n2 1 1\nEOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	notANumber := filepath.Join(dir, "nan.tsp")
	if err := os.WriteFile(notANumber, []byte("NODE_COORD_SECTION\n1 0 0\n2 NaN 1\n3 1 1\n4 1 0\nEOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	overflow := filepath.Join(dir, "huge.tsp")
	if err := os.WriteFile(overflow, []byte("NODE_COORD_SECTION\n1 0 0\n2 1e200 0\n3 0 1e200\nEOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"missing", filepath.Join(dir, "missing.tsp"), errors.ErrCodeFileNotFound},
		{"malformed", malformed, errors.ErrCodeInvalidInstance},
		{"degenerate", degenerate, errors.ErrCodeDegenerateInstance},
		{"non-finite coordinate", notANumber, errors.ErrCodeInvalidInstance},
		{"overflowing distances", overflow, errors.ErrCodeInvalidInstance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, nil, quietLogger())
			_, err := runner.Execute(context.Background(), Options{Input: tt.input, Colony: smallColony(), SeedSet: true})
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
			if fileExists(tt.input + ".opt.tour") {
				t.Error("no tour file should be written on input errors")
			}
		})
	}
}

func TestExecute_MetricOverride(t *testing.T) {
	input := writeInstance(t, "att_square.tsp", strings.Replace(squareTSP, "EDGE_WEIGHT_TYPE : EUC_2D\n", "", 1))
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metric != distance.ATT {
		t.Errorf("file name convention: Metric = %q, want ATT", result.Metric)
	}
	if result.TourPath != "" || fileExists(input+".opt.tour") {
		t.Error("NoWrite should skip the tour file")
	}

	result, err = runner.Execute(context.Background(), Options{Input: input, Metric: distance.EUC2D, Colony: smallColony(), SeedSet: true, NoWrite: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metric != distance.EUC2D {
		t.Errorf("flag should win: Metric = %q", result.Metric)
	}
}

func TestExecute_Cache(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("first run should miss")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	if second.CachedRunID != first.RunID {
		t.Errorf("CachedRunID = %q, want %q", second.CachedRunID, first.RunID)
	}
	if second.Solution.Length != first.Solution.Length {
		t.Errorf("cached length %v != %v", second.Solution.Length, first.Solution.Length)
	}
	for i := range first.Solution.Tour {
		if first.Solution.Tour[i] != second.Solution.Tour[i] {
			t.Fatalf("cached tour differs: %v vs %v", second.Solution.Tour, first.Solution.Tour)
		}
	}

	refreshed := opts
	refreshed.Refresh = true
	third, err := runner.Execute(ctx, refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache lookup")
	}

	unseeded := opts
	unseeded.SeedSet = false
	fourth, err := runner.Execute(ctx, unseeded)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheHit {
		t.Error("time-seeded runs should never hit the cache")
	}
}

func TestExecute_CorruptCacheEntry(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	opts := Options{Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	inst, err := tsplib.Load(input)
	if err != nil {
		t.Fatal(err)
	}
	hash, _ := cache.HashJSON(inst.Points())
	key := runner.Keyer.SolutionKey(hash, opts.SolutionKeyOpts(distance.EUC2D))

	entries := []string{
		"not json",
		`{"run_id":"x","solution":{"tour":[0,1,1,2],"length":1}}`,
	}
	for _, entry := range entries {
		if err := fc.Set(ctx, key, []byte(entry), 0); err != nil {
			t.Fatal(err)
		}
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			t.Fatal(err)
		}
		if result.CacheHit {
			t.Errorf("entry %q should be rejected", entry)
		}
		if result.Solution.Length != 40 {
			t.Errorf("Length = %v, want 40", result.Solution.Length)
		}
	}
}

func TestExecute_Canceled(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	runner := NewRunner(nil, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Execute(ctx, Options{Input: input, Colony: smallColony(), SeedSet: true})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("error = %v, want CANCELED", err)
	}
	if result == nil || result.Instance == nil {
		t.Fatal("canceled run should still report what was loaded")
	}
	if fileExists(input + ".opt.tour") {
		t.Error("canceled run should not write a tour")
	}
}

func TestExecute_Image(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	image := filepath.Join(t.TempDir(), "square.svg")
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true, Image: image,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ImagePath != image {
		t.Errorf("ImagePath = %q", result.ImagePath)
	}
	data, err := os.ReadFile(image)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("image is not an SVG")
	}
}

func TestExecute_Report(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	report := filepath.Join(t.TempDir(), "run.json")
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true, Report: report,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ReportPath != report {
		t.Errorf("ReportPath = %q", result.ReportPath)
	}

	got, err := pkgio.ImportReport(report)
	if err != nil {
		t.Fatalf("ImportReport: %v", err)
	}
	if got.RunID != result.RunID || got.Length != result.Solution.Length {
		t.Errorf("report %+v does not match result", got)
	}
	if len(got.History) != smallColony().Iterations {
		t.Errorf("history = %d entries, want %d", len(got.History), smallColony().Iterations)
	}
	if got.Params.Seed != 11 || got.Instance.Cities != 4 {
		t.Errorf("params = %+v, instance = %+v", got.Params, got.Instance)
	}
}

func TestExecute_FailedStageWritesNothing(t *testing.T) {
	input := writeInstance(t, "square.tsp", squareTSP)
	output := input + ".opt.tour"
	if err := os.WriteFile(output, []byte("previous run"), 0o644); err != nil {
		t.Fatal(err)
	}
	report := filepath.Join(t.TempDir(), "missing", "run.json")
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		Input: input, Colony: smallColony(), SeedSet: true, Report: report,
	})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("error = %v, want INTERNAL_ERROR", err)
	}
	if result == nil || result.Solution == nil {
		t.Fatal("result should carry the solution")
	}
	if result.TourPath != "" || result.ReportPath != "" {
		t.Errorf("no output paths expected, got %q and %q", result.TourPath, result.ReportPath)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous run" {
		t.Errorf("existing tour replaced by a failed run: %q", data)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(input), ".antour-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestRenderTour(t *testing.T) {
	dir := t.TempDir()
	input := writeInstance(t, "square.tsp", squareTSP)
	tourPath := filepath.Join(dir, "square.tour")
	if err := tsplib.SaveTour(tourPath, tsplib.NewTour(input, []int{0, 1, 2, 3}, 40)); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "square.svg")

	res, err := RenderTour(context.Background(), RenderOptions{Instance: input, Tour: tourPath, Output: out})
	if err != nil {
		t.Fatalf("RenderTour: %v", err)
	}
	if res.Length != 40 || res.Metric != distance.EUC2D || res.Path != out {
		t.Errorf("result = %+v", res)
	}
	if !fileExists(out) {
		t.Error("drawing not written")
	}
}

func TestRenderTour_FromReport(t *testing.T) {
	dir := t.TempDir()
	input := writeInstance(t, "square.tsp", squareTSP)
	report := filepath.Join(dir, "run.json")
	runner := NewRunner(nil, nil, quietLogger())
	if _, err := runner.Execute(context.Background(), Options{
		Input: input, Colony: smallColony(), SeedSet: true, NoWrite: true, Report: report,
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := filepath.Join(dir, "run.svg")

	res, err := RenderTour(context.Background(), RenderOptions{Instance: input, Report: report, Output: out})
	if err != nil {
		t.Fatalf("RenderTour: %v", err)
	}
	if res.Length != 40 || res.Metric != distance.EUC2D {
		t.Errorf("result = %+v", res)
	}
	if !fileExists(out) {
		t.Error("drawing not written")
	}
}

func TestRenderTour_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeInstance(t, "square.tsp", squareTSP)
	short := filepath.Join(dir, "short.tour")
	if err := tsplib.SaveTour(short, tsplib.NewTour(input, []int{0, 1, 2}, 0)); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "good.tour")
	if err := tsplib.SaveTour(good, tsplib.NewTour(input, []int{0, 1, 2, 3}, 0)); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.svg")

	tests := []struct {
		name string
		opts RenderOptions
		code errors.Code
	}{
		{"missing instance", RenderOptions{Instance: filepath.Join(dir, "none.tsp"), Tour: good, Output: out}, errors.ErrCodeFileNotFound},
		{"missing tour", RenderOptions{Instance: input, Tour: filepath.Join(dir, "none.tour"), Output: out}, errors.ErrCodeFileNotFound},
		{"short tour", RenderOptions{Instance: input, Tour: short, Output: out}, errors.ErrCodeInvalidInput},
		{"bad metric", RenderOptions{Instance: input, Tour: good, Output: out, Metric: "MAN_2D"}, errors.ErrCodeInvalidMetric},
		{"output is a directory", RenderOptions{Instance: input, Tour: good, Output: dir + "/"}, errors.ErrCodeInvalidPath},
		{"no tour source", RenderOptions{Instance: input, Output: out}, errors.ErrCodeInvalidInput},
		{"tour and report", RenderOptions{Instance: input, Tour: good, Report: good, Output: out}, errors.ErrCodeInvalidInput},
		{"missing report", RenderOptions{Instance: input, Report: filepath.Join(dir, "none.json"), Output: out}, errors.ErrCodeFileNotFound},
		{"report is not JSON", RenderOptions{Instance: input, Report: good, Output: out}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderTour(context.Background(), tt.opts)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
	if fileExists(out) {
		t.Error("failed renders should not write output")
	}
}

func TestDraw_RejectsMismatchedTour(t *testing.T) {
	inst, err := tsplib.Read(strings.NewReader(squareTSP))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Draw(context.Background(), inst, []int{0, 1, 2}, DrawOptions{}); err == nil {
		t.Error("Draw should reject a tour of the wrong size")
	}
}

func TestLoadError(t *testing.T) {
	tests := []struct {
		err  error
		code errors.Code
	}{
		{os.ErrNotExist, errors.ErrCodeFileNotFound},
		{tsplib.ErrMissingSection, errors.ErrCodeInvalidInstance},
		{tsplib.ErrUnsupported, errors.ErrCodeInvalidInstance},
		{io.ErrUnexpectedEOF, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		if got := errors.GetCode(loadError("x.tsp", tt.err)); got != tt.code {
			t.Errorf("loadError(%v) code = %s, want %s", tt.err, got, tt.code)
		}
	}
}
