package distance_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/antour/pkg/distance"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    distance.Metric
		wantErr bool
	}{
		{"EUC_2D", distance.EUC2D, false},
		{"euc_2d", distance.EUC2D, false},
		{" ATT ", distance.ATT, false},
		{"geo", distance.GEO, false},
		{"EXPLICIT", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := distance.ParseMetric(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, distance.ErrUnknownMetric)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name string
		a, b distance.Point
		want float64
	}{
		{"pythagorean", distance.Point{0, 0}, distance.Point{3, 4}, 5},
		{"unit", distance.Point{0, 0}, distance.Point{0, 1}, 1},
		{"round down", distance.Point{0, 0}, distance.Point{1, 1}, 1},
		{"half rounds up", distance.Point{0, 0}, distance.Point{0.5, 0}, 1},
		{"below half", distance.Point{0, 0}, distance.Point{0.4, 0}, 0},
		{"same point", distance.Point{7, -2}, distance.Point{7, -2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, distance.Euclidean(tt.a, tt.b))
			assert.Equal(t, tt.want, distance.Euclidean(tt.b, tt.a))
		})
	}
}

func TestAtt(t *testing.T) {
	tests := []struct {
		name string
		a, b distance.Point
		want float64
	}{
		{"ceil not nearest", distance.Point{0, 0}, distance.Point{3, 4}, 2},   // sqrt(2.5)=1.58
		{"ceil small fraction", distance.Point{0, 0}, distance.Point{10, 0}, 4}, // sqrt(10)=3.16
		{"larger", distance.Point{0, 0}, distance.Point{30, 40}, 16},           // sqrt(250)=15.81
		{"same point", distance.Point{6734, 1453}, distance.Point{6734, 1453}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, distance.Att(tt.a, tt.b))
		})
	}
}

func TestGeo(t *testing.T) {
	t.Run("same point is one", func(t *testing.T) {
		for _, p := range []distance.Point{{0, 0}, {38.24, 20.42}, {-33.87, 151.21}, {90, 180}} {
			got := distance.Geo(p, p)
			require.False(t, math.IsNaN(got), "Geo(%v, %v) is NaN", p, p)
			assert.Equal(t, 1.0, got)
		}
	})

	t.Run("nearly coincident points do not overshoot acos", func(t *testing.T) {
		a := distance.Point{X: 41.2345678901, Y: 2.1734034}
		b := distance.Point{X: 41.2345678902, Y: 2.1734035}
		got := distance.Geo(a, b)
		require.False(t, math.IsNaN(got))
		assert.Equal(t, 1.0, got)
	})

	t.Run("symmetric and monotone along a meridian", func(t *testing.T) {
		origin := distance.Point{X: 0, Y: 0}
		prev := distance.Geo(origin, origin)
		for lat := 1.0; lat <= 80; lat += 1 {
			p := distance.Point{X: lat, Y: 0}
			d := distance.Geo(origin, p)
			assert.Equal(t, d, distance.Geo(p, origin))
			assert.GreaterOrEqual(t, d, prev)
			prev = d
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// 6378.388 * (3.141592/180) = 111.32 km, floor(111.32 + 1) = 112
		got := distance.Geo(distance.Point{X: 0, Y: 0}, distance.Point{X: 1, Y: 0})
		assert.Equal(t, 112.0, got)
	})
}

func TestMetricsNonNegative(t *testing.T) {
	points := []distance.Point{{0, 0}, {1, 1}, {-5, 3}, {100, -40}, {0.2, 0.1}, {45, 90}}
	for _, m := range []distance.Metric{distance.EUC2D, distance.ATT, distance.GEO} {
		fn := m.Func()
		for _, a := range points {
			for _, b := range points {
				assert.GreaterOrEqual(t, fn(a, b), 0.0, "%s(%v, %v)", m, a, b)
			}
		}
	}
}
