package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/antour/pkg/colony"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.toml", `
[colony]
ants = 50
iterations = 500
beta = 4.0
seed = 42

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "168h"
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Colony.Ants == nil || *f.Colony.Ants != 50 {
		t.Errorf("ants = %v, want 50", f.Colony.Ants)
	}
	if f.Colony.Alpha != nil {
		t.Errorf("alpha should be unset, got %v", *f.Colony.Alpha)
	}
	if !f.HasSeed() {
		t.Error("seed should be set")
	}
	if f.Cache.Backend != BackendRedis {
		t.Errorf("backend = %q, want redis", f.Cache.Backend)
	}
	ttl, err := f.CacheTTL()
	if err != nil || ttl != 168*time.Hour {
		t.Errorf("CacheTTL = %v, %v; want 168h", ttl, err)
	}
}

func TestLoadDefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	f, err := Load("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if f.Colony.Ants != nil || f.Cache.Backend != "" {
		t.Error("missing default config should decode to an empty File")
	}
}

func TestLoadDefaultPresent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "antour"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "antour", "config.toml"), []byte("[colony]\nants = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Colony.Ants == nil || *f.Colony.Ants != 7 {
		t.Errorf("ants = %v, want 7", f.Colony.Ants)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"syntax", "[colony\nants = 1", false},
		{"wrong type", "[colony]\nants = \"many\"\n", false},
		{"unknown key", "[colony]\nantz = 5\n", true},
		{"unknown section", "[server]\nport = 80\n", true},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", true},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", true},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.toml", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	ants := 10
	f := &File{Colony: ColonySection{Ants: &ants}}

	err := f.ApplyEnv(envMap(map[string]string{
		EnvAnts:       "25",
		EnvIterations: " 300 ",
		EnvCache:      "NONE",
		EnvSeed:       "-3",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if *f.Colony.Ants != 25 {
		t.Errorf("env should override file: ants = %d", *f.Colony.Ants)
	}
	if *f.Colony.Iterations != 300 {
		t.Errorf("iterations = %d, want 300", *f.Colony.Iterations)
	}
	if f.Colony.Workers != nil {
		t.Error("unset variables should leave fields alone")
	}
	if f.Cache.Backend != BackendNone {
		t.Errorf("backend = %q, want none", f.Cache.Backend)
	}
	if *f.Colony.Seed != -3 {
		t.Errorf("seed = %d, want -3", *f.Colony.Seed)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"ants", map[string]string{EnvAnts: "lots"}},
		{"workers", map[string]string{EnvWorkers: "1.5"}},
		{"seed", map[string]string{EnvSeed: "abc"}},
		{"backend", map[string]string{EnvCache: "disk"}},
		{"redis without url", map[string]string{EnvCache: "redis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{}
			if err := f.ApplyEnv(envMap(tt.env)); !errors.Is(err, ErrInvalid) {
				t.Errorf("ApplyEnv = %v, want ErrInvalid", err)
			}
		})
	}

	f := &File{}
	if err := f.ApplyEnv(envMap(map[string]string{EnvCache: "redis", EnvRedisURL: "redis://h:6379"})); err != nil {
		t.Errorf("redis with url should pass: %v", err)
	}
}

func TestApply(t *testing.T) {
	alpha, workers := 1.5, 3
	f := &File{Colony: ColonySection{Alpha: &alpha, Workers: &workers}}

	cfg := colony.DefaultConfig()
	f.Apply(&cfg)

	if cfg.Alpha != 1.5 || cfg.Workers != 3 {
		t.Errorf("configured values not applied: %+v", cfg)
	}
	def := colony.DefaultConfig()
	if cfg.Ants != def.Ants || cfg.Beta != def.Beta || cfg.Seed != def.Seed {
		t.Errorf("unset values should keep defaults: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "ANTOUR_DOTENV_TEST"
	path := writeFile(t, ".env", key+"=from-file\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}

	os.Setenv(key, "from-env")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(key); got != "from-env" {
		t.Errorf(".env must not override the environment, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}
