package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "path to a .json or .toml config file")
	steps := flag.Int("steps", -1, "number of ticks, overrides the config when >= 0")
	every := flag.Int("every", 60, "log flock stats every n ticks")
	snapshotFile := flag.String("snapshot", "", "write the final state (protobuf wire format) to this file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			logger.Fatalf("failed to load config: %v", err)
		}
	}
	if *steps >= 0 {
		cfg.Steps = *steps
	}

	ctx := context.Background()
	engine, err := simulation.NewEngine(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to start engine: %v", err)
	}
	defer engine.Stop(ctx)

	start := time.Now()
	snap, err := engine.State(ctx)
	if err != nil {
		logger.Fatalf("failed to read initial state: %v", err)
	}
	for i := 1; i <= cfg.Steps; i++ {
		if snap, err = engine.Step(ctx, cfg.DeltaTime); err != nil {
			logger.Fatalf("tick %d failed: %v", i, err)
		}
		if *every > 0 && i%*every == 0 {
			s := snap.Stats()
			logger.Infof("tick %d | agents %d | mean speed %.3f | max speed %.3f | order %.3f | centroid %s",
				snap.Tick, s.Count, s.MeanSpeed, s.MaxSpeed, s.Order, s.Centroid)
		}
	}
	logger.Infof("ran %d ticks of %d agents in %s", cfg.Steps, len(snap.Agents), time.Since(start))

	if *snapshotFile != "" {
		if err := os.WriteFile(*snapshotFile, snap.Marshal(), 0o644); err != nil {
			logger.Fatalf("failed to write snapshot: %v", err)
		}
		logger.Infof("snapshot written to %s", *snapshotFile)
	}
}
