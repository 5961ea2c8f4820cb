package phase

// Layout holds the render-space constants of the field. Units are whatever
// the surface measures in: pixels for the PNG exporter, braille dots for the
// terminal.
type Layout struct {
	Baseline  float64 // distance of the floor line above the bottom edge
	ViewRange float64 // values in [-ViewRange*2, ViewRange*2] span the width
	Radius    float64 // particle radius
	Overlap   float64 // stacking density; rank step is diameter/Overlap
	Spread    float64 // horizontal amplitude of the in-bin offset
}

// DefaultLayout is the pixel layout of an 800x550 canvas.
func DefaultLayout() Layout {
	return Layout{
		Baseline:  100,
		ViewRange: 2,
		Radius:    3,
		Overlap:   3,
		Spread:    24,
	}
}

// RankStep is the vertical distance between consecutive particles in a bin.
func (l Layout) RankStep() float64 {
	if l.Overlap <= 0 {
		return 2 * l.Radius
	}
	return 2 * l.Radius / l.Overlap
}

// Geometry is the resolved drawing surface for one tick.
type Geometry struct {
	Width  float64
	Height float64
	Layout Layout
}

// Valid reports whether the surface has been laid out.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Floor is the y coordinate particles land on.
func (g Geometry) Floor() float64 {
	return g.Height - g.Layout.Baseline
}

// MapX maps a sample value to its x coordinate.
func (g Geometry) MapX(v float64) float64 {
	r := g.Layout.ViewRange
	if r <= 0 {
		r = 1
	}
	return (v/(r*2) + 0.5) * g.Width
}

// StackTop is the y coordinate just above a bin holding n particles.
func (g Geometry) StackTop(n int) float64 {
	return g.Floor() - float64(n)*g.Layout.RankStep()
}
