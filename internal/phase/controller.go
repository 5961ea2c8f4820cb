// Package phase sequences a particle population through the entry,
// clustered, scattering and revealing phases of the binarization demo.
//
// A Controller has exactly one mutator, Tick. Generate and SwitchStrategy
// may be called from any goroutine; they only queue a request that the next
// Tick applies before doing anything else.
package phase

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/olivier-w/binviz/internal/motion"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/sample"
)

// Config configures a Controller.
type Config struct {
	Count     int
	Strategy  quant.Strategy
	Layout    Layout
	Generator *sample.Generator
}

// Input is what a tick needs from the outside world.
type Input struct {
	Width  float64
	Height float64
	Clock  motion.Clock
}

type requestKind uint8

const (
	reqGenerate requestKind = iota
	reqSwitch
)

type request struct {
	kind     requestKind
	strategy quant.Strategy
}

// Controller owns the population and the phase state machine.
type Controller struct {
	mu    sync.Mutex
	inbox []request

	gen    *sample.Generator
	count  int
	layout Layout

	pop    *sample.Population
	active quant.Strategy
	state  state
	anim   Anim
	params quant.Params
	geom   Geometry
	clock  motion.Clock
}

// New creates a controller and generates its first population.
func New(cfg Config) *Controller {
	if cfg.Generator == nil {
		cfg.Generator = sample.NewGenerator(nil)
	}
	if cfg.Count < 1 {
		cfg.Count = sample.DefaultCount
	}
	if cfg.Layout == (Layout{}) {
		cfg.Layout = DefaultLayout()
	}
	if !cfg.Strategy.Valid() {
		cfg.Strategy = quant.Standard
	}

	c := &Controller{
		gen:    cfg.Generator,
		count:  cfg.Count,
		layout: cfg.Layout,
		active: cfg.Strategy,
	}
	c.regenerate()
	return c
}

// Generate requests a fresh population. Switch requests queued before it
// are dropped.
func (c *Controller) Generate() {
	c.mu.Lock()
	c.inbox = append(c.inbox[:0], request{kind: reqGenerate})
	c.mu.Unlock()
}

// SwitchStrategy requests a change of the active strategy. Requests that
// cannot be honored when applied are ignored.
func (c *Controller) SwitchStrategy(s quant.Strategy) {
	if !s.Valid() {
		slog.Debug("switch ignored", "strategy", s, "reason", "unknown strategy")
		return
	}
	c.mu.Lock()
	c.inbox = append(c.inbox, request{kind: reqSwitch, strategy: s})
	c.mu.Unlock()
}

// SwitchStrategyNamed is SwitchStrategy by name. Unknown names are ignored.
func (c *Controller) SwitchStrategyNamed(name string) {
	s, ok := quant.ParseStrategy(name)
	if !ok {
		slog.Debug("switch ignored", "name", name, "reason", "unknown strategy")
		return
	}
	c.SwitchStrategy(s)
}

// Active returns the strategy whose parameters are currently displayed.
func (c *Controller) Active() quant.Strategy { return c.active }

// Mode returns the current phase.
func (c *Controller) Mode() Mode { return c.state.mode() }

// Anim returns a copy of the animation state.
func (c *Controller) Anim() Anim { return c.anim }

// Params returns the parameters computed by the last tick.
func (c *Controller) Params() quant.Params { return c.params }

// PopulationID identifies the current population.
func (c *Controller) PopulationID() uuid.UUID { return c.pop.ID }

// Population exposes the population for tests and renderers that need raw
// access. Only Tick may mutate it.
func (c *Controller) Population() *sample.Population { return c.pop }

// Tick applies pending requests, then advances the state machine one step.
// A tick with an unresolved surface does nothing; requests stay queued for
// the first tick that has one.
func (c *Controller) Tick(in Input) {
	geom := Geometry{Width: in.Width, Height: in.Height, Layout: c.layout}
	if !geom.Valid() {
		return
	}
	c.drain()
	c.geom = geom
	c.clock = in.Clock

	c.params = quant.Evaluate(c.pop.Values(), c.active)
	if _, ok := c.state.(revealing); ok {
		c.anim.VisualThreshold = c.params.Threshold
	} else {
		c.anim.VisualThreshold += (c.params.Threshold - c.anim.VisualThreshold) * visualThresholdRate
	}

	next := c.advance()
	if next.mode() != c.state.mode() {
		slog.Debug("phase transition",
			"from", c.state.mode(),
			"to", next.mode(),
			"strategy", c.active,
			"tick", in.Clock.Tick,
		)
	}
	c.setState(next)
}

// advance is the transition function of the state machine.
func (c *Controller) advance() state {
	switch s := c.state.(type) {
	case entry:
		return c.stepEntry(s)
	case clustered:
		return c.stepClustered(s)
	case scattering:
		return c.stepScattering(s)
	case revealing:
		return c.stepRevealing(s)
	default:
		panic("phase: unknown state")
	}
}

func (c *Controller) setState(s state) {
	c.state = s
	c.anim.Mode = s.mode()
	if sc, ok := s.(scattering); ok {
		c.anim.Pending = sc.next
		c.anim.HasPending = true
	} else {
		c.anim.Pending = c.active
		c.anim.HasPending = false
	}
}

func (c *Controller) drain() {
	c.mu.Lock()
	reqs := c.inbox
	c.inbox = nil
	c.mu.Unlock()

	for _, r := range reqs {
		switch r.kind {
		case reqGenerate:
			c.regenerate()
		case reqSwitch:
			c.applySwitch(r.strategy)
		}
	}
}

func (c *Controller) regenerate() {
	visual := c.anim.VisualThreshold
	c.pop = c.gen.Generate(c.count)
	c.anim = initialAnim(visual)
	c.setState(entry{})
	slog.Debug("population generated",
		"population", c.pop.ID,
		"count", c.pop.Len(),
		"bias", c.pop.Bias,
	)
}

func (c *Controller) applySwitch(s quant.Strategy) {
	reason := ""
	switch {
	case s == c.active:
		reason = "already active"
	case c.state.mode() == ModeEntry:
		reason = "population still settling"
	case c.state.mode() == ModeScattering:
		reason = "switch in progress"
	}
	if reason != "" {
		slog.Debug("switch ignored", "strategy", s, "active", c.active, "reason", reason)
		return
	}
	slog.Debug("switch accepted", "from", c.active, "to", s)
	c.setState(scattering{next: s})
}
