package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/antour/pkg/distance"
	"github.com/matzehuels/antour/pkg/tsplib"
)

// DefaultWidth is the drawing width in inches.
const DefaultWidth = 10.0

// Options configures tour drawings.
type Options struct {
	// Width of the drawing in inches; 0 means DefaultWidth.
	Width float64
	// Labels shows city identifiers next to each point.
	Labels bool
	// Title is printed above the drawing when set.
	Title string
	// Metric selects the coordinate orientation (GEO swaps axes).
	Metric distance.Metric
}

// ToDOT converts a tour over inst to Graphviz DOT source. Tour legs naming
// cities outside inst are skipped; callers validate with [tsplib.CheckTour].
func ToDOT(inst *tsplib.Instance, tour []int, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	pts := orient(inst.Points(), opts.Metric)
	scale, minX, minY := fit(pts, width*72)

	var buf bytes.Buffer
	buf.WriteString("graph T {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=18;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, width=0.06, height=0.06, fixedsize=true, style=filled, fillcolor=\"#1f2937\", color=\"#1f2937\", label=\"\", fontsize=8];\n")
	buf.WriteString("  edge [color=\"#2563eb\", penwidth=1.2];\n")
	buf.WriteString("\n")

	for i, c := range inst.Cities {
		x := (pts[i].X - minX) * scale
		y := (pts[i].Y - minY) * scale
		attrs := fmt.Sprintf("pos=\"%s,%s!\"", fmtPt(x), fmtPt(y))
		if opts.Labels {
			attrs += fmt.Sprintf(", xlabel=%q", strconv.Itoa(c.ID))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	n := len(inst.Cities)
	for k := range tour {
		a, b := tour[k], tour[(k+1)%len(tour)]
		if a < 0 || a >= n || b < 0 || b >= n || a == b {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", a, b)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func orient(pts []distance.Point, m distance.Metric) []distance.Point {
	if m != distance.GEO {
		return pts
	}
	out := make([]distance.Point, len(pts))
	for i, p := range pts {
		out[i] = distance.Point{X: p.Y, Y: p.X}
	}
	return out
}

// fit returns the factor that maps the bounding box of pts onto a square of
// side points, and the box origin.
func fit(pts []distance.Point, points float64) (scale, minX, minY float64) {
	if len(pts) == 0 {
		return 1, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		return 1, minX, minY
	}
	return points / span, minX, minY
}

func fmtPt(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
