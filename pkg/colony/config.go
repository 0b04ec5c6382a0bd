package colony

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

// ErrInvalidConfig is wrapped by every [Config.Validate] failure.
var ErrInvalidConfig = errors.New("colony: invalid config")

// Default parameters.
const (
	DefaultAnts        = 100
	DefaultIterations  = 200
	DefaultAlpha       = 0.8
	DefaultBeta        = 5.0
	DefaultEvaporation = 0.7
	DefaultDeposit     = 500.0
	DefaultSeed        = int64(1)
)

// Config holds the search parameters. It is passed by value into [New] and
// never read from process-wide state.
type Config struct {
	// Ants is the population size of every generation.
	Ants int `json:"ants" toml:"ants"`
	// Iterations is the generation budget. There is no early stop.
	Iterations int `json:"iterations" toml:"iterations"`
	// Alpha is the pheromone exponent.
	Alpha float64 `json:"alpha" toml:"alpha"`
	// Beta is the heuristic (inverse distance) exponent.
	Beta float64 `json:"beta" toml:"beta"`
	// Evaporation is the fraction of pheromone lost per generation, in [0, 1).
	Evaporation float64 `json:"evaporation" toml:"evaporation"`
	// Deposit is the numerator of the per-edge deposit Deposit/length.
	Deposit float64 `json:"deposit" toml:"deposit"`
	// Workers bounds the goroutines building tours; 0 means GOMAXPROCS.
	// It does not affect results.
	Workers int `json:"-" toml:"workers"`
	// Seed drives every per-ant random stream.
	Seed int64 `json:"seed" toml:"seed"`
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		Ants:        DefaultAnts,
		Iterations:  DefaultIterations,
		Alpha:       DefaultAlpha,
		Beta:        DefaultBeta,
		Evaporation: DefaultEvaporation,
		Deposit:     DefaultDeposit,
		Workers:     runtime.GOMAXPROCS(0),
		Seed:        DefaultSeed,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	switch {
	case c.Ants < 1:
		return fmt.Errorf("%w: ants must be >= 1, got %d", ErrInvalidConfig, c.Ants)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations must be >= 1, got %d", ErrInvalidConfig, c.Iterations)
	case c.Alpha < 0 || !finite(c.Alpha):
		return fmt.Errorf("%w: alpha must be a finite value >= 0, got %v", ErrInvalidConfig, c.Alpha)
	case c.Beta < 0 || !finite(c.Beta):
		return fmt.Errorf("%w: beta must be a finite value >= 0, got %v", ErrInvalidConfig, c.Beta)
	case !(c.Evaporation >= 0 && c.Evaporation < 1):
		return fmt.Errorf("%w: evaporation must be in [0, 1), got %v", ErrInvalidConfig, c.Evaporation)
	case !(c.Deposit > 0) || !finite(c.Deposit):
		return fmt.Errorf("%w: deposit must be > 0, got %v", ErrInvalidConfig, c.Deposit)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	w := c.Workers
	if w == 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > c.Ants {
		w = c.Ants
	}
	return w
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
