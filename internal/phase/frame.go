package phase

import (
	"github.com/google/uuid"
	"github.com/olivier-w/binviz/internal/motion"
	"github.com/olivier-w/binviz/internal/quant"
)

// ParticleView is the renderer's copy of one particle.
type ParticleView struct {
	Value    float64
	Pos      motion.Vec
	Positive bool
	Blend    float64 // 0 = neutral, 1 = fully classified
}

// Frame is a read-only snapshot of one tick, detached from the controller.
type Frame struct {
	PopulationID uuid.UUID
	Tick         uint64
	Strategy     quant.Strategy
	Params       quant.Params
	Anim         Anim
	Geometry     Geometry
	Particles    []ParticleView
}

// Frame copies the state left by the last tick.
func (c *Controller) Frame() Frame {
	f := Frame{
		PopulationID: c.pop.ID,
		Tick:         c.clock.Tick,
		Strategy:     c.active,
		Params:       c.params,
		Anim:         c.anim,
		Geometry:     c.geom,
		Particles:    make([]ParticleView, len(c.pop.Particles)),
	}
	_, reveal := c.state.(revealing)
	for i := range c.pop.Particles {
		p := &c.pop.Particles[i]
		blend := p.ColorBlend
		if reveal {
			blend = revealBlend(c.anim.ColorMix, p)
		}
		f.Particles[i] = ParticleView{
			Value:    p.Value,
			Pos:      p.Pos,
			Positive: c.params.IsPositive(p.Value),
			Blend:    blend,
		}
	}
	return f
}

// ShowCounts reports whether bin counts should be drawn.
func (f Frame) ShowCounts() bool {
	return f.Anim.Mode == ModeClustered && f.Anim.ThresholdOpacity > 0.8
}

// ShowLine reports whether the cutoff line is visible.
func (f Frame) ShowLine() bool {
	return f.Anim.ThresholdOpacity > 0.01 || f.Anim.Mode == ModeRevealing
}

// LabelAlpha is the opacity of the strategy labels next to the line; they
// fade in over the last fifth of the line's growth.
func (f Frame) LabelAlpha() float64 {
	if f.Anim.LineProgress <= 0.8 {
		return 0
	}
	return min(1, (f.Anim.LineProgress-0.8)*5) * f.Anim.ThresholdOpacity
}
