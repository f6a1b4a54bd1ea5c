package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	margin      = 10.0
	titleHeight = 24.0
	labelHeight = 16.0 // debug font line
	rowGap      = 8.0
)

// Widget is anything the panel can stack
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	// place moves the widget top-left corner, returns the row height
	place(x, y float64) float64
	text() string
}

func (s *Slider) place(x, y float64) float64 {
	s.X, s.Y = x, y+labelHeight
	return labelHeight + s.H
}

func (s *Slider) text() string { return s.Text() }

func (c *Checkbox) place(x, y float64) float64 {
	c.X, c.Y = x, y
	return c.Size
}

func (c *Checkbox) text() string { return c.Label }

// Panel stacks widgets vertically on a translucent background
type Panel struct {
	X, Y  float64
	Width float64
	Title string

	widgets []Widget
	height  float64

	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates an empty panel
func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Title:       title,
		height:      titleHeight,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 200},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSlider appends a slider row
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	p.add(s)
	return s
}

// AddCheckbox appends a checkbox row
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) add(w Widget) {
	p.height += w.place(p.X+margin, p.Y+p.height) + rowGap
	p.widgets = append(p.widgets, w)
}

// Height is the panel height including every row
func (p *Panel) Height() float64 {
	return p.height
}

// Update handles input for all widgets
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+4))

	for _, w := range p.widgets {
		w.Draw(screen)
		switch w := w.(type) {
		case *Slider:
			ebitenutil.DebugPrintAt(screen, w.text(), int(w.X), int(w.Y-labelHeight))
		case *Checkbox:
			ebitenutil.DebugPrintAt(screen, w.text(), int(w.X+w.Size+6), int(w.Y-2))
		}
	}
}
