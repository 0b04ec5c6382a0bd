// Package render draws a tour over its instance as an SVG image.
//
// [ToDOT] produces Graphviz DOT source with every city pinned at its
// coordinates (scaled to fit [Options.Width]) and one undirected edge per
// tour leg. [RenderSVG] lays it out in-process with neato, which honours
// pinned positions, so the picture is the tour itself rather than a
// force-directed approximation:
//
//	dot := render.ToDOT(inst, sol.Tour, render.Options{Title: "att48"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// GEO instances store latitude in X and longitude in Y; they are drawn with
// longitude on the horizontal axis so maps come out the right way up.
//
// [Convert] turns the SVG into PNG or PDF with rsvg-convert, which must be
// on the PATH for those formats.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package render
