package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Output formats understood by [Convert].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// FormatFromPath picks the output format from a file extension, defaulting
// to SVG.
func FormatFromPath(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case FormatPNG:
		return FormatPNG
	case FormatPDF:
		return FormatPDF
	default:
		return FormatSVG
	}
}

// Convert returns svg unchanged for FormatSVG and shells out to
// rsvg-convert for PNG and PDF.
func Convert(svg []byte, format string) ([]byte, error) {
	switch format {
	case FormatSVG, "":
		return svg, nil
	case FormatPNG:
		return rsvgConvert(svg, FormatPNG, "-z", "2.00")
	case FormatPDF:
		return rsvgConvert(svg, FormatPDF)
	default:
		return nil, fmt.Errorf("unsupported format %q (want svg, png or pdf)", format)
	}
}

func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
