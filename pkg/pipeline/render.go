package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/matzehuels/antour/pkg/colony"
	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	pkgio "github.com/matzehuels/antour/pkg/io"
	"github.com/matzehuels/antour/pkg/observability"
	"github.com/matzehuels/antour/pkg/render"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// DrawOptions configures [Draw].
type DrawOptions struct {
	Metric distance.Metric
	Labels bool
	Title  string
}

// Draw renders tour over inst as SVG.
func Draw(ctx context.Context, inst *tsplib.Instance, tour []int, opts DrawOptions) ([]byte, error) {
	if err := tsplib.CheckTour(len(inst.Cities), tour); err != nil {
		return nil, err
	}
	dot := render.ToDOT(inst, tour, render.Options{
		Labels: opts.Labels,
		Title:  opts.Title,
		Metric: opts.Metric,
	})
	return render.RenderSVG(ctx, dot)
}

// WriteImage renders tour and writes it to path as SVG, PNG or PDF.
// The file at path is replaced only once the drawing is complete.
func WriteImage(ctx context.Context, path string, inst *tsplib.Instance, tour []int, opts DrawOptions) error {
	data, err := drawImage(ctx, path, inst, tour, opts)
	if err != nil {
		return err
	}
	var out outputs
	if err := out.create(path, writeBytes(data)); err != nil {
		return err
	}
	return out.commit()
}

// drawImage renders tour in the format path's extension names.
func drawImage(ctx context.Context, path string, inst *tsplib.Instance, tour []int, opts DrawOptions) ([]byte, error) {
	svg, err := Draw(ctx, inst, tour, opts)
	if err != nil {
		return nil, err
	}
	return render.Convert(svg, render.FormatFromPath(path))
}

func drawTour(ctx context.Context, path string, inst *tsplib.Instance, sol *colony.Solution, metric distance.Metric, labels bool) ([]byte, error) {
	return drawImage(ctx, path, inst, sol.Tour, DrawOptions{
		Metric: metric,
		Labels: labels,
		Title:  fmt.Sprintf("%s: %s", inst.Name, tsplib.FormatLength(sol.Length)),
	})
}

func writeBytes(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}

func imageFormat(path string) string {
	return render.FormatFromPath(path)
}

// RenderOptions configures [RenderTour].
type RenderOptions struct {
	// Instance and Tour are the TSPLIB instance and tour file paths.
	Instance string
	Tour     string
	// Report names a JSON run report to take the tour from instead of Tour.
	// Its metric is used unless Metric is set.
	Report string
	// Output receives the drawing; its extension picks the format.
	Output string
	// Metric overrides the inferred metric used for the tour length.
	Metric distance.Metric
	Labels bool
}

// RenderResult describes a drawn tour file.
type RenderResult struct {
	Instance *tsplib.Instance
	Metric   distance.Metric
	Length   float64
	Path     string
	Duration time.Duration
}

// RenderTour draws an existing tour over its instance. The tour comes from
// opts.Tour or, when set, from the run report opts.Report; exactly one of
// them must be given.
func RenderTour(ctx context.Context, opts RenderOptions) (*RenderResult, error) {
	if (opts.Tour == "") == (opts.Report == "") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "need exactly one of a tour file or a report")
	}
	for _, p := range []string{opts.Instance, opts.Tour + opts.Report} {
		if err := errors.ValidatePath(p); err != nil {
			return nil, err
		}
	}
	if err := errors.ValidateOutputPath(opts.Output); err != nil {
		return nil, err
	}

	inst, err := tsplib.Load(opts.Instance)
	if err != nil {
		return nil, loadError(opts.Instance, err)
	}
	source, order, reported, err := loadRenderTour(opts)
	if err != nil {
		return nil, err
	}
	if err := tsplib.CheckTour(len(inst.Cities), order); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "tour %s does not fit %s", source, opts.Instance)
	}

	if opts.Metric == "" {
		opts.Metric = reported
	}
	metric := opts.Metric
	if metric != "" {
		if metric, err = distance.ParseMetric(string(metric)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetric, err, "metric %q", opts.Metric)
		}
	} else {
		metric = tsplib.InferMetric(inst, opts.Instance)
	}
	dist, err := distance.NewMatrix(inst.Points(), metric)
	if err != nil {
		return nil, matrixError(opts.Instance, err)
	}
	length := dist.TourLength(order)

	start := time.Now()
	err = WriteImage(ctx, opts.Output, inst, order, DrawOptions{
		Metric: metric,
		Labels: opts.Labels,
		Title:  fmt.Sprintf("%s: %s", inst.Name, tsplib.FormatLength(length)),
	})
	took := time.Since(start)
	observability.Solver().OnRenderComplete(ctx, imageFormat(opts.Output), took, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw tour %s", opts.Output)
	}

	return &RenderResult{
		Instance: inst,
		Metric:   metric,
		Length:   length,
		Path:     opts.Output,
		Duration: took,
	}, nil
}

// loadRenderTour reads the tour named by opts and returns its source path,
// the 0-based order and the metric a report recorded.
func loadRenderTour(opts RenderOptions) (string, []int, distance.Metric, error) {
	if opts.Report != "" {
		rep, err := pkgio.ImportReport(opts.Report)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return "", nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "report %s not found", opts.Report)
			}
			return "", nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid report")
		}
		return opts.Report, rep.Order(), rep.Metric, nil
	}

	tour, err := tsplib.LoadTour(opts.Tour)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "tour %s not found", opts.Tour)
		}
		return "", nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tour")
	}
	return opts.Tour, tour.Order, "", nil
}
