// Package motion moves particles toward targets by exponential smoothing and
// adds the idle "breathing" offset.
package motion

import (
	"math"
	"time"
)

// Vec is a point or offset in render space.
type Vec struct {
	X, Y float64
}

// Add, Sub and Scale are the usual vector arithmetic.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Dist is the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Finite reports whether both coordinates are finite.
func (v Vec) Finite() bool { return finite(v.X) && finite(v.Y) }

// Near reports whether v is within eps of o on both axes.
func (v Vec) Near(o Vec, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Step moves pos a fraction rate of the way to target. Rates outside (0,1]
// or non-finite targets leave pos untouched, so a finite position stays
// finite and never overshoots.
func Step(pos *Vec, target Vec, rate float64) {
	if !validRate(rate) || !target.Finite() {
		return
	}
	*pos = pos.Add(target.Sub(*pos).Scale(rate))
}

// StepAxis is Step on a single coordinate.
func StepAxis(x *float64, target, rate float64) {
	if !validRate(rate) || !finite(target) {
		return
	}
	*x += (target - *x) * rate
}

func validRate(rate float64) bool {
	return rate > 0 && rate <= 1
}

// Axes selects which coordinates Jitter perturbs.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY

	AxisXY = AxisX | AxisY
)

// Clock carries the two independent time sources of a tick: Wall drives
// jitter, Tick counts update steps and drives phase pacing.
type Clock struct {
	Wall time.Time
	Tick uint64
}

// jitterSpeed converts wall milliseconds to radians.
const jitterSpeed = 0.002

// Angle returns the global jitter angle for the wall time.
func (c Clock) Angle() float64 {
	return float64(c.Wall.UnixMilli()) * jitterSpeed
}

// Jitter adds sin(t+phase)*amplitude on x and cos(t+phase)*amplitude on y.
func Jitter(pos *Vec, c Clock, phase, amplitude float64, axes Axes) {
	a := c.Angle() + phase
	if axes&AxisX != 0 {
		pos.X += math.Sin(a) * amplitude
	}
	if axes&AxisY != 0 {
		pos.Y += math.Cos(a) * amplitude
	}
}
