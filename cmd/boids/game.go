package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

const (
	screenWidth  = 960
	screenHeight = 720
	panelWidth   = 240
	boidSize     = 7.0
)

var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// paramSlider binds a panel slider to one flock parameter
type paramSlider struct {
	slider *ui.Slider
	field  *float64
}

type Game struct {
	ctx       context.Context
	engine    *simulation.Engine
	logger    log.Logger
	params    flock.Params
	lastState *simulation.Snapshot

	panel   *ui.Panel
	sliders []paramSlider
	pause   *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

func NewGame(ctx context.Context, engine *simulation.Engine, params flock.Params, logger log.Logger) (*Game, error) {
	state, err := engine.State(ctx)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctx:       ctx,
		engine:    engine,
		logger:    logger,
		params:    params,
		lastState: state,
		panel:     ui.NewPanel(10, 10, panelWidth, "Flock"),
	}

	g.addSlider("Separation weight", 0, 5, &g.params.SeparationWeight)
	g.addSlider("Alignment weight", 0, 5, &g.params.AlignmentWeight)
	g.addSlider("Cohesion weight", 0, 5, &g.params.CohesionWeight)
	g.addSlider("Separation distance", 0, 20, &g.params.SeparationDistance)
	g.addSlider("Neighbor distance", 0, 50, &g.params.NeighborDistance)
	g.addSlider("Max speed", 0, 20, &g.params.MaxSpeed)
	g.addSlider("Max steer force", 0, 10, &g.params.MaxSteerForce)
	g.pause = g.panel.AddCheckbox("Paused (space)", false)
	return g, nil
}

func (g *Game) addSlider(label string, min, max float64, field *float64) {
	s := g.panel.AddSlider(label, min, math.Max(max, *field), *field)
	g.sliders = append(g.sliders, paramSlider{slider: s, field: field})
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.pause.Toggle()
	}
	g.panel.Update()

	changed := false
	for _, ps := range g.sliders {
		if ps.slider.Changed() {
			*ps.field = ps.slider.Value
			changed = true
		}
	}
	if changed {
		if err := g.engine.UpdateParams(g.ctx, g.params); err != nil {
			g.logger.Warnf("params rejected: %v", err)
		}
	}

	// Keep only the freshest snapshot
Loop:
	for {
		select {
		case snap := <-g.engine.Snapshots():
			g.lastState = snap
		default:
			break Loop
		}
	}

	if !g.pause.Value {
		frame := time.Second / time.Duration(ebiten.TPS())
		if err := g.engine.Tick(g.ctx, frame); err != nil {
			return fmt.Errorf("tick failed: %w", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	view := newViewport(g.lastState.Bounds, screenWidth, screenHeight)
	vertices := make([]ebiten.Vertex, 0, 3*len(g.lastState.Agents))
	indices := make([]uint16, 0, 3*len(g.lastState.Agents))
	for _, a := range g.lastState.Agents {
		// uint16 indices cap a single batch
		if len(vertices)+3 > math.MaxUint16 {
			screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
			vertices, indices = vertices[:0], indices[:0]
		}
		vertices, indices = appendBoid(vertices, indices, view, a, a.Heading-g.params.HeadingOffset)
	}
	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})

	g.panel.Draw(screen)

	stats := g.lastState.Stats()
	msg := fmt.Sprintf("TPS %.0f  FPS %.0f  update %.2fms  draw %.2fms\ntick %d  agents %d  mean speed %.2f  order %.3f",
		ebiten.ActualTPS(), ebiten.ActualFPS(), g.updateAvg, g.drawAvg,
		g.lastState.Tick, stats.Count, stats.MeanSpeed, stats.Order)
	ebitenutil.DebugPrintAt(screen, msg, 10, screenHeight-40)
}

func (g *Game) Layout(w, h int) (int, int) { return screenWidth, screenHeight }

// viewport maps world coordinates to screen pixels, +Y up, aspect preserved
type viewport struct {
	bounds           geometry.Rect
	scale            float64
	offsetX, offsetY float64
}

func newViewport(bounds geometry.Rect, w, h float64) viewport {
	scale := math.Min(w/bounds.Width(), h/bounds.Height())
	return viewport{
		bounds:  bounds,
		scale:   scale,
		offsetX: (w - bounds.Width()*scale) / 2,
		offsetY: (h - bounds.Height()*scale) / 2,
	}
}

func (v viewport) toScreen(p geometry.Vector2D) (float64, float64) {
	return v.offsetX + (p.X-v.bounds.XMin)*v.scale,
		v.offsetY + (v.bounds.YMax-p.Y)*v.scale
}

// appendBoid adds a triangle pointing along angle (world radians from +X)
func appendBoid(vertices []ebiten.Vertex, indices []uint16, v viewport, a flock.Agent, angle float64) ([]ebiten.Vertex, []uint16) {
	x, y := v.toScreen(a.Position)
	// screen Y grows downward
	angle = -angle
	speed := math.Min(1, a.Velocity.Len()/2)
	base := uint16(len(vertices))
	for _, p := range [3][2]float64{
		{math.Cos(angle) * boidSize, math.Sin(angle) * boidSize},
		{math.Cos(angle+2.5) * boidSize * 0.7, math.Sin(angle+2.5) * boidSize * 0.7},
		{math.Cos(angle-2.5) * boidSize * 0.7, math.Sin(angle-2.5) * boidSize * 0.7},
	} {
		vertices = append(vertices, ebiten.Vertex{
			DstX: float32(x + p[0]), DstY: float32(y + p[1]),
			SrcX: 1, SrcY: 1,
			ColorR: float32(0.4 + 0.6*speed), ColorG: 0.8, ColorB: 1, ColorA: 1,
		})
	}
	return vertices, append(indices, base, base+1, base+2)
}
