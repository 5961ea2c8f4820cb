package frame

import (
	"log/slog"
	"slices"

	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/quant"
)

// Cue is one scripted request, issued once the given tick has rendered.
type Cue struct {
	Tick     uint64
	Generate bool
	Strategy quant.Strategy
}

// Script replays cues against a controller. It is registered as a renderer
// so requests are issued in tick order; they take effect on the next tick.
type Script struct {
	ctrl *phase.Controller
	cues []Cue
	next int
}

// NewScript returns a script over a copy of cues, sorted by tick.
func NewScript(ctrl *phase.Controller, cues []Cue) *Script {
	sorted := slices.Clone(cues)
	slices.SortStableFunc(sorted, func(a, b Cue) int {
		switch {
		case a.Tick < b.Tick:
			return -1
		case a.Tick > b.Tick:
			return 1
		}
		return 0
	})
	return &Script{ctrl: ctrl, cues: sorted}
}

func (s *Script) Render(f phase.Frame) error {
	for s.next < len(s.cues) && s.cues[s.next].Tick <= f.Tick {
		c := s.cues[s.next]
		s.next++
		if c.Generate {
			slog.Debug("script: generate", "tick", f.Tick)
			s.ctrl.Generate()
			continue
		}
		slog.Debug("script: switch", "tick", f.Tick, "strategy", c.Strategy)
		s.ctrl.SwitchStrategy(c.Strategy)
	}
	return nil
}

// Done reports whether every cue has been issued.
func (s *Script) Done() bool { return s.next >= len(s.cues) }
