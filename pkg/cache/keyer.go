package cache

// Keyer builds cache keys.
type Keyer interface {
	SolutionKey(instanceHash string, opts SolutionKeyOpts) string
}

// SolutionKeyOpts lists every input that changes the solver's output.
// The worker count is absent because it never does.
type SolutionKeyOpts struct {
	Metric      string  `json:"metric"`
	Ants        int     `json:"ants"`
	Iterations  int     `json:"iterations"`
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	Evaporation float64 `json:"evaporation"`
	Deposit     float64 `json:"deposit"`
	Seed        int64   `json:"seed"`
}

// solutionKeyVersion is bumped whenever the solver's output for a given
// key changes.
const solutionKeyVersion = 1

// DefaultKeyer hashes every input into a versioned key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolutionKey returns "solution:<sha256>".
func (DefaultKeyer) SolutionKey(instanceHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", solutionKeyVersion, instanceHash, opts)
}
