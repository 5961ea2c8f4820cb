package visualizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/binviz/internal/phase"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Each braille cell is a 2x4 dot grid.
const (
	DotsPerCol = 2
	DotsPerRow = 4
)

// cell layers, lowest first. A cell takes the color of its highest layer.
const (
	layerEmpty uint8 = iota
	layerAxis
	layerLine
	layerParticle
	layerText
)

type cell struct {
	bits  uint8
	layer uint8
	color colorRGB
	// particle color accumulator
	r, g, b float64
	n       int
	text    rune
}

// Field renders the particle population on a braille canvas whose dot grid
// is the logical surface of the animation.
type Field struct {
	cols, rows int
	cells      []cell
	profile    colorProfile
	palette    Palette
	output     string
}

// NewField returns an empty field. Call Resize before the first Render.
func NewField() *Field {
	return &Field{profile: currentColorProfile()}
}

func (f *Field) Name() string { return "field" }

// SurfaceSize converts a cell area to the dot surface the controller runs on.
func SurfaceSize(cols, rows int) (float64, float64) {
	return float64(cols * DotsPerCol), float64(rows * DotsPerRow)
}

// Layout is the field layout scaled down to braille dots. Stacks are
// denser than on the pixel canvas so a full bin fits in a short terminal.
func Layout() phase.Layout {
	return phase.Layout{
		Baseline:  8,
		ViewRange: 2,
		Radius:    0.6,
		Overlap:   3,
		Spread:    6,
	}
}

// Resize reallocates the backing cells for a dot surface of width x height.
func (f *Field) Resize(width, height float64) {
	cols := int(width) / DotsPerCol
	rows := int(height) / DotsPerRow
	if cols == f.cols && rows == f.rows {
		return
	}
	f.cols, f.rows = max(cols, 0), max(rows, 0)
	f.cells = make([]cell, f.cols*f.rows)
}

func (f *Field) Render(fr phase.Frame) error {
	if f.cols == 0 || f.rows == 0 {
		f.Resize(fr.Geometry.Width, fr.Geometry.Height)
	}
	if f.cols == 0 || f.rows == 0 {
		f.output = ""
		return nil
	}
	clear(f.cells)

	g := fr.Geometry
	f.drawAxes(g)
	if fr.ShowLine() {
		f.drawCutoff(fr)
	}
	for _, p := range fr.Particles {
		f.plotParticle(p.Pos.X, p.Pos.Y, f.palette.Particle(p.Positive, p.Blend))
	}
	if fr.ShowCounts() {
		f.drawCounts(fr)
	}
	if a := fr.LabelAlpha(); a > 0 {
		f.drawLabels(fr, a)
	}

	f.output = f.compose()
	return nil
}

func (f *Field) View() string {
	return f.output
}

func (f *Field) drawAxes(g phase.Geometry) {
	axis := toRGB(f.palette.Axis())
	floor := int(math.Floor(g.Floor()))
	for x := 0; x < f.cols*DotsPerCol; x += 2 {
		f.setDot(x, floor, layerAxis, axis)
	}
	zero := int(math.Floor(g.MapX(0)))
	for y := 0; y < f.rows*DotsPerRow; y += 2 {
		f.setDot(zero, y, layerAxis, axis)
	}
}

// drawCutoff draws the dashed threshold line growing up from the bottom edge.
func (f *Field) drawCutoff(fr phase.Frame) {
	g := fr.Geometry
	c := f.palette.Faded(f.palette.Strategy(fr.Strategy), fr.Anim.ThresholdOpacity)
	col := toRGB(c)
	x := int(math.Floor(g.MapX(fr.Anim.VisualThreshold)))
	top := g.Height - g.Height*fr.Anim.LineProgress
	for y := int(g.Height) - 1; float64(y) >= top && y >= 0; y-- {
		// 2 on, 2 off
		if (int(g.Height)-1-y)%4 < 2 {
			f.setDot(x, y, layerLine, col)
		}
	}
}

func (f *Field) plotParticle(x, y float64, c colorful.Color) {
	dx, dy := int(math.Floor(x)), int(math.Floor(y))
	ce := f.cellAt(dx, dy)
	if ce == nil {
		return
	}
	ce.bits |= 1 << brailleBits[dx%DotsPerCol][dy%DotsPerRow]
	ce.r += c.R
	ce.g += c.G
	ce.b += c.B
	ce.n++
	if ce.layer < layerParticle {
		ce.layer = layerParticle
	}
}

func (f *Field) drawCounts(fr phase.Frame) {
	g := fr.Geometry
	p := fr.Params
	row := func(n int) int {
		return int(math.Floor(g.StackTop(n)/DotsPerRow)) - 1
	}
	neg := toRGB(f.palette.Particle(false, 1))
	pos := toRGB(f.palette.Particle(true, 1))
	f.text(row(p.Negative), f.centerCol(g.MapX(p.Low()), p.Negative), fmt.Sprint(p.Negative), neg)
	f.text(row(p.Positive), f.centerCol(g.MapX(p.High()), p.Positive), fmt.Sprint(p.Positive), pos)
}

func (f *Field) centerCol(x float64, n int) int {
	return int(math.Floor(x/DotsPerCol)) - len(fmt.Sprint(n))/2
}

// drawLabels writes the strategy name, α and L2 error to the right of the
// cutoff line, wrapping to its left when the line sits near the edge.
func (f *Field) drawLabels(fr phase.Frame, alpha float64) {
	lines := []struct {
		s string
		c colorful.Color
	}{
		{fr.Strategy.Label(), f.palette.Strategy(fr.Strategy)},
		{fmt.Sprintf("α = %.3f", fr.Params.Scale), f.palette.Label()},
		{fmt.Sprintf("L2 Error: %.2f", fr.Params.Error), f.palette.Error()},
	}
	lineCol := int(math.Floor(fr.Geometry.MapX(fr.Anim.VisualThreshold) / DotsPerCol))
	for i, l := range lines {
		col := lineCol + 2
		if n := len([]rune(l.s)); col+n > f.cols {
			col = lineCol - 1 - n
		}
		f.text(i, col, l.s, toRGB(f.palette.Faded(l.c, alpha)))
	}
}

func (f *Field) text(row, col int, s string, c colorRGB) {
	if row < 0 || row >= f.rows {
		return
	}
	for i, r := range []rune(s) {
		x := col + i
		if x < 0 || x >= f.cols {
			continue
		}
		ce := &f.cells[row*f.cols+x]
		ce.text = r
		ce.layer = layerText
		ce.color = c
	}
}

func (f *Field) setDot(x, y int, layer uint8, c colorRGB) {
	ce := f.cellAt(x, y)
	if ce == nil {
		return
	}
	ce.bits |= 1 << brailleBits[x%DotsPerCol][y%DotsPerRow]
	if layer > ce.layer {
		ce.layer = layer
		ce.color = c
	}
}

func (f *Field) cellAt(x, y int) *cell {
	if x < 0 || y < 0 {
		return nil
	}
	col, row := x/DotsPerCol, y/DotsPerRow
	if col >= f.cols || row >= f.rows {
		return nil
	}
	return &f.cells[row*f.cols+col]
}

func (f *Field) compose() string {
	var sb strings.Builder
	color := newANSIState(f.profile)
	for row := range f.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range f.cols {
			ce := &f.cells[row*f.cols+col]
			switch {
			case ce.layer == layerText:
				color.set(&sb, ce.color)
				sb.WriteRune(ce.text)
				continue
			case ce.layer == layerParticle:
				n := float64(ce.n)
				color.set(&sb, toRGB(colorful.Color{R: ce.r / n, G: ce.g / n, B: ce.b / n}))
			case ce.layer != layerEmpty:
				color.set(&sb, ce.color)
			}
			sb.WriteRune(rune(0x2800 + int(ce.bits)))
		}
		color.reset(&sb)
	}
	return sb.String()
}
