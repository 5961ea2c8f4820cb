package phase

import (
	"math"

	"github.com/olivier-w/binviz/internal/motion"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/sample"
)

// Smoothing rates per phase.
const (
	entryRate           = 0.07
	holdRate            = 0.1
	ungroupRate         = 0.08
	clusterRate         = 0.03
	visualThresholdRate = 0.1
)

// Per-tick steps and limits. Phase pacing is counted in ticks, never in
// wall time.
const (
	settledFraction = 0.95

	lineShrinkStep   = 0.04
	opacityFadeStep  = 0.05
	colorFadeStep    = 0.15
	ungroupLine      = 0.1 // particles leave their bins once the line is this short
	ungroupEpsilon   = 1.0
	lineGrowStep     = 0.05
	colorMixStep     = 0.015
	colorMixCeiling  = 1.5
	clusterDelay     = 0.5 // colorMix at which regrouping starts
	revealSharpness  = 2.0
	idleEpsilon      = 5.0
	idleJitter       = 0.05
	waitJitter       = 0.02
	negativeSpreadHz = 123.1
	positiveSpreadHz = 321.3
)

func (c *Controller) stepEntry(s entry) state {
	floor := c.geom.Floor()
	parts := c.pop.Particles
	settled := 0
	for i := range parts {
		p := &parts[i]
		tx := c.geom.MapX(p.Value)
		if !p.Placed {
			p.Pos.X = tx
			p.Placed = true
		} else {
			motion.StepAxis(&p.Pos.X, tx, entryRate)
		}
		p.Pos.Y += p.VelocityY
		if p.Pos.Y >= floor {
			p.Pos.Y = floor
			settled++
		}
	}
	if float64(settled) >= float64(len(parts))*settledFraction {
		return clustered{}
	}
	return s
}

func (c *Controller) stepClustered(s clustered) state {
	c.assignBins(c.params)
	parts := c.pop.Particles
	for i := range parts {
		p := &parts[i]
		motion.Step(&p.Pos, p.Bin, clusterRate)
		if p.Pos.Near(p.Bin, idleEpsilon) {
			motion.Jitter(&p.Pos, c.clock, p.JitterPhase, idleJitter, motion.AxisXY)
		}
	}
	return s
}

func (c *Controller) stepScattering(s scattering) state {
	a := &c.anim
	a.LineProgress = math.Max(0, a.LineProgress-lineShrinkStep)
	a.ThresholdOpacity = math.Max(0, a.ThresholdOpacity-opacityFadeStep)

	ungroup := a.LineProgress <= ungroupLine
	lineTop := c.geom.Height - c.geom.Height*a.LineProgress
	floor := c.geom.Floor()

	ready := true
	parts := c.pop.Particles
	for i := range parts {
		p := &parts[i]
		home := motion.Vec{X: c.geom.MapX(p.Value), Y: floor}

		if p.Pos.Y < lineTop {
			p.ColorBlend = math.Max(0, p.ColorBlend-colorFadeStep)
		}

		if ungroup {
			motion.Step(&p.Pos, home, ungroupRate)
		} else {
			motion.Step(&p.Pos, p.Bin, holdRate)
			motion.Jitter(&p.Pos, c.clock, p.JitterPhase, idleJitter, motion.AxisXY)
		}

		if !p.Pos.Near(home, ungroupEpsilon) {
			ready = false
		}
	}

	if !ready || a.LineProgress > 0 {
		return s
	}

	c.active = s.next
	c.params = quant.Evaluate(c.pop.Values(), c.active)
	a.LineProgress = 0
	a.ColorMix = 0
	a.ThresholdOpacity = 1
	a.VisualThreshold = c.params.Threshold
	return revealing{}
}

func (c *Controller) stepRevealing(s revealing) state {
	a := &c.anim
	a.LineProgress = math.Min(1, a.LineProgress+lineGrowStep)
	a.ColorMix = math.Min(colorMixCeiling, a.ColorMix+colorMixStep)

	c.assignBins(c.params)
	parts := c.pop.Particles
	if a.ColorMix > clusterDelay {
		for i := range parts {
			motion.Step(&parts[i].Pos, parts[i].Bin, clusterRate)
		}
	} else {
		for i := range parts {
			motion.Jitter(&parts[i].Pos, c.clock, parts[i].JitterPhase, waitJitter, motion.AxisX)
		}
	}

	if a.LineProgress < 1 || a.ColorMix < colorMixCeiling {
		return s
	}
	for i := range parts {
		parts[i].ColorBlend = 1
	}
	return clustered{}
}

// assignBins stacks each group above the reconstruction value of its bin.
// The horizontal offset depends only on rank, so targets are stable between
// ticks for an unchanged population.
func (c *Controller) assignBins(params quant.Params) {
	lowX := c.geom.MapX(params.Low())
	highX := c.geom.MapX(params.High())
	step := c.layout.RankStep()
	base := c.geom.Floor() - c.layout.Radius

	var neg, pos int
	parts := c.pop.Particles
	for i := range parts {
		p := &parts[i]
		if params.IsPositive(p.Value) {
			p.Bin = binTarget(highX, base, pos, positiveSpreadHz, step, c.layout.Spread)
			pos++
		} else {
			p.Bin = binTarget(lowX, base, neg, negativeSpreadHz, step, c.layout.Spread)
			neg++
		}
	}
}

func binTarget(centerX, base float64, rank int, hz, step, spread float64) motion.Vec {
	r := float64(rank)
	return motion.Vec{
		X: centerX + math.Sin(r*hz)*spread,
		Y: base - r*step,
	}
}

// revealBlend is the displayed classification strength of p during a reveal.
func revealBlend(colorMix float64, p *sample.Particle) float64 {
	t := (colorMix - p.RevealDelay) * revealSharpness
	return math.Max(0, math.Min(1, t))
}
