package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "config.schema.json"

// Placement names accepted in config files.
const (
	PlacementUniform = "uniform"
	PlacementNoise   = "noise"
)

type Config struct {
	// World bounds, used for spawning and for wraparound
	World geometry.Rect `json:"world" toml:"world"`

	// Population
	Population    int     `json:"population" toml:"population"`
	Seed          int64   `json:"seed" toml:"seed"`
	Placement     string  `json:"placement" toml:"placement"`   // "uniform" or "noise"
	NoiseScale    float64 `json:"noiseScale" toml:"noiseScale"` // noise periods across the world
	NoiseContrast float64 `json:"noiseContrast" toml:"noiseContrast"`

	// Tick scheduling
	Policy    string  `json:"policy" toml:"policy"` // "double-buffered" or "sequential"
	Workers   int     `json:"workers" toml:"workers"`
	DeltaTime float64 `json:"deltaTime" toml:"deltaTime"` // headless runs only
	Steps     int     `json:"steps" toml:"steps"`         // headless runs only

	// Steering rules
	Flock flock.Params `json:"flock" toml:"flock"`
}

// DefaultConfig mirrors the reference scene: 100 boids in a 100x100 world.
func DefaultConfig() *Config {
	params := flock.DefaultParams()
	params.InitialSpeed = 1.0
	return &Config{
		World:         geometry.NewRect(-50, 50, -50, 50),
		Population:    100,
		Seed:          1,
		Placement:     PlacementUniform,
		NoiseScale:    3,
		NoiseContrast: 2,
		Policy:        flock.DoubleBuffered.String(),
		Workers:       runtime.NumCPU(),
		DeltaTime:     1.0 / 60,
		Steps:         600,
		Flock:         params,
	}
}

// LoadConfig reads a .json or .toml file over DefaultConfig.
// JSON files are validated against the embedded schema first.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
		err = decodeJSON(b, cfg)
	case ".toml":
		err = decodeTOML(b, cfg)
	default:
		err = fmt.Errorf("unsupported config extension %q (want .json or .toml)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func decodeJSON(b []byte, cfg *Config) error {
	// 1. Compile Schema
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, strings.NewReader(configSchema)); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Validate the raw document
	var v interface{}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}

	// 3. Unmarshal over the defaults
	if err := json.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func decodeTOML(b []byte, cfg *Config) error {
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return fmt.Errorf("failed to decode config toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return nil
}

// Validate checks everything the flock will check at construction, plus the
// scheduling fields, so a bad file fails before anything starts.
func (c *Config) Validate() error {
	if c.Population < 0 {
		return fmt.Errorf("%w: population must be >= 0, got %d", flock.ErrInvalidConfig, c.Population)
	}
	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("%w: world: %w", flock.ErrInvalidConfig, err)
	}
	if err := c.Flock.Validate(); err != nil {
		return err
	}
	if _, err := flock.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Placement != PlacementUniform && c.Placement != PlacementNoise {
		return fmt.Errorf("%w: unknown placement %q", flock.ErrInvalidConfig, c.Placement)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", flock.ErrInvalidConfig, c.Workers)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0, got %d", flock.ErrInvalidConfig, c.Steps)
	}
	if err := flock.CheckDeltaTime(c.DeltaTime); err != nil {
		return fmt.Errorf("%w: %w", flock.ErrInvalidConfig, err)
	}
	return nil
}

// FlockOptions translates the scheduling and placement fields.
func (c *Config) FlockOptions(logger log.Logger) ([]flock.Option, error) {
	policy, err := flock.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	opts := []flock.Option{
		flock.WithPolicy(policy),
		flock.WithWorkers(c.Workers),
		flock.WithLogger(logger),
	}
	if c.Placement == PlacementNoise {
		pl, err := flock.NewNoisePlacement(c.Seed, c.NoiseScale, c.NoiseContrast)
		if err != nil {
			return nil, err
		}
		opts = append(opts, flock.WithPlacement(pl))
	}
	return opts, nil
}

// NewFlock builds the flock described by the config.
func (c *Config) NewFlock(logger log.Logger) (*flock.Flock, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.FlockOptions(logger)
	if err != nil {
		return nil, err
	}
	return flock.New(c.Population, c.World, c.Flock, c.Seed, opts...)
}
