package tsplib_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/antour/pkg/tsplib"
)

func TestWriteTour(t *testing.T) {
	tour := tsplib.NewTour("data/att5.tsp", []int{0, 2, 4, 1, 3}, 10628)

	var buf bytes.Buffer
	require.NoError(t, tsplib.WriteTour(&buf, tour))

	want := strings.Join([]string{
		"NAME: att5.tsp.opt.tour",
		"COMMENT: Length 10628",
		"TYPE: TOUR",
		"DIMENSION: 5",
		"TOUR_SECTION",
		"1", "3", "5", "2", "4",
		"-1",
		"EOF",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestTourRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tour")
	order := []int{3, 0, 4, 2, 1, 5}
	require.NoError(t, tsplib.SaveTour(path, tsplib.NewTour("x.tsp", order, 12.5)))

	got, err := tsplib.LoadTour(path)
	require.NoError(t, err)
	assert.Equal(t, order, got.Order)
	assert.Equal(t, "x.tsp.opt.tour", got.Name)
	assert.Equal(t, "Length 12.5", got.Comment)
}

func TestReadTour_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"one per line", "TOUR_SECTION\n1\n3\n2\n-1\nEOF\n"},
		{"one line", "DIMENSION: 3\nTOUR_SECTION\n1 3 2 -1\n"},
		{"no sentinel", "TOUR_SECTION\n1\n3\n2\nEOF\n"},
		{"end of input", "TOUR_SECTION\n1\n3\n2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tsplib.ReadTour(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, []int{0, 2, 1}, got.Order)
		})
	}
}

func TestReadTour_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no section", "NAME: x\nEOF\n", tsplib.ErrMissingSection},
		{"zero id", "TOUR_SECTION\n0\n-1\n", tsplib.ErrMalformedLine},
		{"word", "TOUR_SECTION\none\n", tsplib.ErrMalformedLine},
		{"wrong type", "TYPE: TSP\nTOUR_SECTION\n1\n", tsplib.ErrUnsupported},
		{"dimension mismatch", "DIMENSION: 4\nTOUR_SECTION\n1\n2\n3\n-1\n", tsplib.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tsplib.ReadTour(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSaveTour_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tour")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0o644))
	require.NoError(t, tsplib.SaveTour(path, tsplib.NewTour("a.tsp", []int{0, 1, 2}, 3)))

	got, err := tsplib.LoadTour(path)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got.Order)
}

func TestSaveTour_NoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tsplib.SaveTour(filepath.Join(dir, "a.tour"), tsplib.NewTour("a.tsp", []int{0, 1, 2}, 3)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.tour", entries[0].Name())

	assert.Error(t, tsplib.SaveTour(filepath.Join(dir, "missing", "b.tour"), tsplib.NewTour("b.tsp", []int{0, 1, 2}, 3)))
}

func TestDefaultTourPath(t *testing.T) {
	assert.Equal(t, "data/att532.tsp.opt.tour", tsplib.DefaultTourPath("data/att532.tsp"))
}

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "33523", tsplib.FormatLength(33523))
	assert.Equal(t, "1000000", tsplib.FormatLength(1e6))
	assert.Equal(t, "0.5", tsplib.FormatLength(0.5))
}

func TestCheckTour(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		order []int
		ok    bool
	}{
		{"valid", 4, []int{2, 0, 3, 1}, true},
		{"short", 4, []int{0, 1, 2}, false},
		{"long", 2, []int{0, 1, 0}, false},
		{"duplicate", 3, []int{0, 1, 1}, false},
		{"out of range", 3, []int{0, 1, 3}, false},
		{"negative", 3, []int{0, -1, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tsplib.CheckTour(tt.n, tt.order)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tsplib.ErrTourMismatch)
			}
		})
	}
}
