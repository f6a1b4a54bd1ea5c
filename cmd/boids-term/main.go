package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

const frameInterval = 33 * time.Millisecond // ~30 FPS

type termHost struct {
	ctx    context.Context
	screen tcell.Screen
	engine *simulation.Engine
	offset float64
	state  *simulation.Snapshot
	paused bool
}

func newTermHost(ctx context.Context, engine *simulation.Engine, params flock.Params) (*termHost, error) {
	state, err := engine.State(ctx)
	if err != nil {
		return nil, err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	return &termHost{
		ctx:    ctx,
		screen: screen,
		engine: engine,
		offset: params.HeadingOffset,
		state:  state,
	}, nil
}

// handleInput returns false when the user asked to quit
func (h *termHost) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
			h.paused = !h.paused
		}
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

func (h *termHost) run() error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				// screen finalized
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !h.handleInput(ev) {
				return nil
			}

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if !h.paused {
				snap, err := h.engine.Step(h.ctx, elapsed.Seconds())
				if err != nil {
					return err
				}
				h.state = snap
			}
			h.draw()
		}
	}
}

func (h *termHost) draw() {
	h.screen.Clear()
	cols, rows := h.screen.Size()
	if rows < 2 || cols < 1 {
		h.screen.Show()
		return
	}
	field := rows - 1 // last row is the status line

	style := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	for _, a := range h.state.Agents {
		col, row := cellFor(a.Position, h.state.Bounds, cols, field)
		h.screen.SetContent(col, row, glyphFor(a, h.offset), nil, style)
	}

	stats := h.state.Stats()
	status := fmt.Sprintf(" tick %d | agents %d | speed %.2f | order %.3f | space: pause  q: quit ",
		h.state.Tick, stats.Count, stats.MeanSpeed, stats.Order)
	if h.paused {
		status = " PAUSED" + status
	}
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	for i, r := range []rune(status) {
		if i >= cols {
			break
		}
		h.screen.SetContent(i, rows-1, r, nil, statusStyle)
	}
	h.screen.Show()
}

func main() {
	configFile := flag.String("config", "", "path to a .json or .toml config file")
	logFile := flag.String("log", "", "write logs to this file, discarded when empty")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// the terminal is owned by tcell, logs go elsewhere
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, out)

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	engine, err := simulation.NewEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Stop(ctx)

	host, err := newTermHost(ctx, engine, cfg.Flock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	runErr := host.run()
	host.screen.Fini()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Simulation stopped: %v\n", runErr)
		os.Exit(1)
	}
}
