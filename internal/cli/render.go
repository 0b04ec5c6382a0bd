package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/errors"
	"github.com/matzehuels/antour/pkg/pipeline"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output string // drawing path; the extension picks svg, png or pdf
	metric string // overrides the inferred metric for the title length
	labels bool   // label cities with their TSPLIB ids
	report string // JSON run report to take the tour from
}

// renderCommand creates the render command for drawing tour files.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <instance> [tour]",
		Short: "Draw a tour file as SVG, PNG or PDF",
		Long: `Draw a TSPLIB tour over the cities of its instance.

Cities are placed at their coordinates and joined in tour order. The tour is
read from a TSPLIB tour file or, with --report, from a run report written by
solve --report. PNG and PDF output require rsvg-convert on the PATH.`,
		Example: `  antour render data/att48.tsp data/att48.tsp.opt.tour -o att48.svg
  antour render data/berlin52.tsp berlin.tour -o berlin.png --labels
  antour render data/att48.tsp --report att48.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tour := ""
			if len(args) == 2 {
				tour = args[1]
			}
			if (tour == "") == (f.report == "") {
				return errors.New(errors.ErrCodeInvalidInput, "pass either a tour file or --report")
			}
			output := f.output
			if output == "" {
				output = defaultRenderOutput(tour, f.report)
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Drawing tour...")
			spinner.Start()
			res, err := pipeline.RenderTour(cmd.Context(), pipeline.RenderOptions{
				Instance: args[0],
				Tour:     tour,
				Report:   f.report,
				Output:   output,
				Metric:   distance.Metric(strings.ToUpper(f.metric)),
				Labels:   f.labels,
			})
			if err != nil {
				spinner.StopWithError("Drawing failed")
				return err
			}

			loggerFromContext(cmd.Context()).Debug("rendered", "path", res.Path, "duration", res.Duration)
			spinner.StopWithSuccess(fmt.Sprintf("Drew %s tour of length %s", res.Instance.Name, StyleNumber.Render(tsplib.FormatLength(res.Length))))
			printDetail("%d cities · %s · %s", len(res.Instance.Cities), res.Metric, res.Duration.Round(time.Millisecond))
			printFile(res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path (default <tour>.svg)")
	cmd.Flags().StringVar(&f.report, "report", "", "take the tour from a run report instead of a tour file")
	cmd.Flags().StringVarP(&f.metric, "metric", "m", "", "distance metric: EUC_2D, ATT or GEO")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "label cities with their ids")

	return cmd
}

// defaultRenderOutput names the drawing after the tour file or report.
func defaultRenderOutput(tour, report string) string {
	if report != "" {
		return strings.TrimSuffix(report, ".json") + ".svg"
	}
	return strings.TrimSuffix(tour, ".tour") + ".svg"
}
