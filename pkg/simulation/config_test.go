package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "flock.json", `{
		"world": {"xMin": -10, "xMax": 10, "yMin": -5, "yMax": 5},
		"population": 25,
		"seed": 9,
		"policy": "sequential",
		"flock": {"maxSpeed": 3, "cohesionWeight": 0.5}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Population != 25 || cfg.Seed != 9 || cfg.Policy != "sequential" {
		t.Errorf("population/seed/policy = %d/%d/%s; want 25/9/sequential", cfg.Population, cfg.Seed, cfg.Policy)
	}
	if cfg.World.XMax != 10 || cfg.World.YMin != -5 {
		t.Errorf("World = %v; want [-10..10]x[-5..5]", cfg.World)
	}
	if cfg.Flock.MaxSpeed != 3 || cfg.Flock.CohesionWeight != 0.5 {
		t.Errorf("Flock = %+v; want maxSpeed 3 and cohesionWeight 0.5", cfg.Flock)
	}
	// untouched keys keep their defaults
	if cfg.Flock.AlignmentWeight != flock.DefaultParams().AlignmentWeight {
		t.Errorf("alignmentWeight = %v; want default %v", cfg.Flock.AlignmentWeight, flock.DefaultParams().AlignmentWeight)
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeConfig(t, "flock.toml", `
population = 40
placement = "noise"
noiseScale = 2.5
workers = 2

[world]
xMin = 0.0
xMax = 200.0
yMin = 0.0
yMax = 100.0

[flock]
separationDistance = 1.5
neighborDistance = 8.0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Population != 40 || cfg.Placement != PlacementNoise || cfg.NoiseScale != 2.5 || cfg.Workers != 2 {
		t.Errorf("cfg = %+v; want population 40, noise placement, scale 2.5, 2 workers", cfg)
	}
	if cfg.World.XMax != 200 || cfg.Flock.NeighborDistance != 8 {
		t.Errorf("World/Flock = %v/%+v; want xMax 200, neighborDistance 8", cfg.World, cfg.Flock)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		invalid bool // wraps flock.ErrInvalidConfig
	}{
		{"schema: negative population", "a.json", `{"population": -3}`, false},
		{"schema: unknown key", "b.json", `{"populaton": 3}`, false},
		{"schema: unknown policy", "c.json", `{"policy": "random"}`, false},
		{"schema: negative weight", "d.json", `{"flock": {"separationWeight": -1}}`, false},
		{"malformed json", "e.json", `{"population": `, false},
		{"degenerate world", "f.json", `{"world": {"xMin": 5, "xMax": 5, "yMin": 0, "yMax": 1}}`, true},
		{"toml negative radius", "g.toml", "[flock]\nneighborDistance = -2.0\n", true},
		{"toml unknown key", "h.toml", "colour = \"red\"\n", false},
		{"unsupported extension", "i.yaml", "population: 3\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatalf("LoadConfig() = %+v; want an error", cfg)
			}
			if tt.invalid && !errors.Is(err, flock.ErrInvalidConfig) {
				t.Errorf("LoadConfig() error = %v; want it to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(absent) error = %v; want os.ErrNotExist", err)
	}
}

func TestConfig_NewFlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 30
	cfg.Placement = PlacementNoise

	f, err := cfg.NewFlock(nil)
	if err != nil {
		t.Fatalf("NewFlock() error = %v", err)
	}
	if f.Len() != 30 {
		t.Errorf("Len() = %d; want 30", f.Len())
	}
	for i, a := range f.Agents() {
		if !cfg.World.Contains(a.Position) {
			t.Errorf("agent %d outside world: %v", i, a.Position)
		}
	}

	cfg.Workers = -1
	if _, err := cfg.NewFlock(nil); !errors.Is(err, flock.ErrInvalidConfig) {
		t.Errorf("NewFlock() with negative workers error = %v; want ErrInvalidConfig", err)
	}
}

func TestLoadConfig_ShippedExamples(t *testing.T) {
	for _, name := range []string{"flock.json", "flock.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("..", "..", "configs", name))
			if err != nil {
				t.Fatalf("LoadConfig(%s) error = %v", name, err)
			}
			if _, err := cfg.NewFlock(nil); err != nil {
				t.Errorf("NewFlock() from %s error = %v", name, err)
			}
		})
	}
}
