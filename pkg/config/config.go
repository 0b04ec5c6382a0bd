// Package config loads user settings for antour.
//
// Settings come from four layers, later ones winning:
//
//  1. built-in defaults ([colony.DefaultConfig])
//  2. a TOML file ($XDG_CONFIG_HOME/antour/config.toml or --config)
//  3. ANTOUR_* environment variables, optionally from a .env file
//  4. command-line flags (applied by the CLI)
//
// Example file:
//
//	[colony]
//	ants = 50
//	iterations = 500
//	beta = 4.0
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/antour/pkg/colony"
)

// Environment variables read by [File.ApplyEnv].
const (
	EnvCache      = "ANTOUR_CACHE"
	EnvRedisURL   = "ANTOUR_REDIS_URL"
	EnvAnts       = "ANTOUR_ANTS"
	EnvIterations = "ANTOUR_ITERATIONS"
	EnvWorkers    = "ANTOUR_WORKERS"
	EnvSeed       = "ANTOUR_SEED"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// File is the decoded configuration. Unset colony fields are nil so that
// only the values a user wrote override the defaults.
type File struct {
	Colony ColonySection `toml:"colony"`
	Cache  CacheSection  `toml:"cache"`
}

// ColonySection mirrors [colony.Config].
type ColonySection struct {
	Ants        *int     `toml:"ants"`
	Iterations  *int     `toml:"iterations"`
	Alpha       *float64 `toml:"alpha"`
	Beta        *float64 `toml:"beta"`
	Evaporation *float64 `toml:"evaporation"`
	Deposit     *float64 `toml:"deposit"`
	Workers     *int     `toml:"workers"`
	Seed        *int64   `toml:"seed"`
}

// CacheSection selects and configures the solution cache.
type CacheSection struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
}

// DefaultPath returns $XDG_CONFIG_HOME/antour/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "antour", "config.toml"), nil
}

// Load decodes the TOML file at path. An empty path means [DefaultPath],
// which may be absent; an explicit path must exist. Unknown keys are
// rejected.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &File{}, nil
		}
		path = p
	}

	f := &File{}
	md, err := toml.DecodeFile(path, f)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadDotEnv copies variables from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays ANTOUR_* variables read through getenv.
func (f *File) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvCache)); v != "" {
		f.Cache.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		f.Cache.RedisURL = v
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{EnvAnts, &f.Colony.Ants},
		{EnvIterations, &f.Colony.Iterations},
		{EnvWorkers, &f.Colony.Workers},
	}
	for _, e := range ints {
		v := strings.TrimSpace(getenv(e.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, e.name, v)
		}
		*e.dst = &n
	}

	if v := strings.TrimSpace(getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvSeed, v)
		}
		f.Colony.Seed = &seed
	}
	return f.Validate()
}

// Validate checks the cache section. Colony values are checked by
// [colony.Config.Validate] once every layer has been applied.
func (f *File) Validate() error {
	switch f.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("%w: cache backend %q (want file, redis or none)", ErrInvalid, f.Cache.Backend)
	}
	if f.Cache.Backend == BackendRedis && f.Cache.RedisURL == "" {
		return fmt.Errorf("%w: cache backend redis needs redis_url or %s", ErrInvalid, EnvRedisURL)
	}
	if _, err := f.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses the cache ttl; zero means the cache default.
func (f *File) CacheTTL() (time.Duration, error) {
	if f.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Cache.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: cache ttl %q", ErrInvalid, f.Cache.TTL)
	}
	return d, nil
}

// HasSeed reports whether a seed was configured.
func (f *File) HasSeed() bool {
	return f.Colony.Seed != nil
}

// Apply copies every configured colony value into cfg.
func (f *File) Apply(cfg *colony.Config) {
	s := f.Colony
	if s.Ants != nil {
		cfg.Ants = *s.Ants
	}
	if s.Iterations != nil {
		cfg.Iterations = *s.Iterations
	}
	if s.Alpha != nil {
		cfg.Alpha = *s.Alpha
	}
	if s.Beta != nil {
		cfg.Beta = *s.Beta
	}
	if s.Evaporation != nil {
		cfg.Evaporation = *s.Evaporation
	}
	if s.Deposit != nil {
		cfg.Deposit = *s.Deposit
	}
	if s.Workers != nil {
		cfg.Workers = *s.Workers
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
}
