package phase

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/olivier-w/binviz/internal/motion"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/sample"
)

const (
	testWidth  = 800
	testHeight = 550
)

type harness struct {
	t    *testing.T
	c    *Controller
	tick uint64
}

func newHarness(t *testing.T, s quant.Strategy) *harness {
	t.Helper()
	c := New(Config{
		Count:     60,
		Strategy:  s,
		Generator: sample.NewSeeded(5),
	})
	return &harness{t: t, c: c}
}

func (h *harness) input() Input {
	return Input{
		Width:  testWidth,
		Height: testHeight,
		Clock:  motion.Clock{Wall: time.UnixMilli(int64(h.tick) * 16), Tick: h.tick},
	}
}

func (h *harness) step() {
	h.tick++
	h.c.Tick(h.input())
}

// until ticks until the controller reaches m and returns the ticks spent.
func (h *harness) until(m Mode, limit int) int {
	h.t.Helper()
	for n := 0; n < limit; n++ {
		if h.c.Mode() == m {
			return n
		}
		h.step()
	}
	h.t.Fatalf("mode %s not reached within %d ticks (stuck in %s)", m, limit, h.c.Mode())
	return 0
}

func TestNewStartsInEntry(t *testing.T) {
	h := newHarness(t, quant.Standard)
	if h.c.Mode() != ModeEntry {
		t.Fatalf("expected entry, got %s", h.c.Mode())
	}
	a := h.c.Anim()
	if a.ThresholdOpacity != 1 || a.LineProgress != 1 {
		t.Fatalf("expected full opacity and line, got %+v", a)
	}
}

func TestEntrySettlesIntoClustered(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)

	floor := Geometry{Width: testWidth, Height: testHeight, Layout: DefaultLayout()}.Floor()
	settled := 0
	for _, p := range h.c.Population().Particles {
		if p.Pos.Y == floor {
			settled++
		}
	}
	if float64(settled) < 0.95*float64(h.c.Population().Len()) {
		t.Fatalf("expected at least 95%% settled, got %d of %d", settled, h.c.Population().Len())
	}
}

func TestEntryPlacesParticlesOnFirstTick(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.step()
	g := Geometry{Width: testWidth, Height: testHeight, Layout: DefaultLayout()}
	for i, p := range h.c.Population().Particles {
		if !p.Placed || p.Pos.X != g.MapX(p.Value) {
			t.Fatalf("particle %d not placed at its mapped x", i)
		}
	}
}

func TestTickSkipsUnresolvedSurface(t *testing.T) {
	h := newHarness(t, quant.Standard)
	before := append([]sample.Particle(nil), h.c.Population().Particles...)
	h.c.Tick(Input{})
	h.c.Tick(Input{Width: 800})
	for i, p := range h.c.Population().Particles {
		if p.Pos != before[i].Pos {
			t.Fatalf("particle %d moved without a surface", i)
		}
	}
}

func TestUnresolvedTickKeepsRequestsQueued(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	before := h.c.PopulationID()

	h.c.SwitchStrategy(quant.Adaptive)
	h.c.Tick(Input{})
	if h.c.Mode() != ModeClustered || h.c.Anim().HasPending {
		t.Fatalf("expected the switch to wait for a surface, got %s (has=%v)", h.c.Mode(), h.c.Anim().HasPending)
	}

	h.c.Generate()
	h.c.Tick(Input{Height: 550})
	if h.c.PopulationID() != before {
		t.Fatal("expected the population to survive a tick without a surface")
	}

	h.step()
	if h.c.PopulationID() == before {
		t.Fatal("expected the queued generate to apply on the first resolved tick")
	}
	if h.c.Mode() != ModeEntry {
		t.Fatalf("expected entry after the queued generate, got %s", h.c.Mode())
	}
}

func TestPendingTracksActiveOutsideScatter(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.until(ModeScattering, 10)
	if a := h.c.Anim(); a.Pending != quant.Adaptive || !a.HasPending {
		t.Fatalf("expected pending adaptive, got %s (has=%v)", a.Pending, a.HasPending)
	}

	h.until(ModeRevealing, 2000)
	if a := h.c.Anim(); a.HasPending || a.Pending != h.c.Active() {
		t.Fatalf("expected pending to match active %s, got %s (has=%v)", h.c.Active(), a.Pending, a.HasPending)
	}

	h.c.Generate()
	h.step()
	if a := h.c.Anim(); a.Pending != quant.Adaptive {
		t.Fatalf("expected pending adaptive after generate, got %s", a.Pending)
	}
}

func TestSwitchIgnoredDuringEntry(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.c.SwitchStrategy(quant.Adaptive)
	h.step()
	if h.c.Mode() != ModeEntry || h.c.Active() != quant.Standard {
		t.Fatalf("expected entry/standard, got %s/%s", h.c.Mode(), h.c.Active())
	}
}

func TestSwitchToActiveIsNoop(t *testing.T) {
	h := newHarness(t, quant.Optimized)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Optimized)
	h.c.SwitchStrategyNamed("optimized")
	h.c.SwitchStrategyNamed("bogus")
	h.c.SwitchStrategy(quant.Strategy(9))
	h.step()
	if h.c.Mode() != ModeClustered || h.c.Active() != quant.Optimized {
		t.Fatalf("expected clustered/optimized, got %s/%s", h.c.Mode(), h.c.Active())
	}
}

func TestSwitchIgnoredDuringScattering(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.step()
	if h.c.Mode() != ModeScattering {
		t.Fatalf("expected scattering, got %s", h.c.Mode())
	}
	h.c.SwitchStrategy(quant.Optimized)
	h.step()
	a := h.c.Anim()
	if h.c.Mode() != ModeScattering || h.c.Active() != quant.Standard {
		t.Fatalf("expected scattering/standard, got %s/%s", h.c.Mode(), h.c.Active())
	}
	if !a.HasPending || a.Pending != quant.Adaptive {
		t.Fatalf("expected pending adaptive, got %+v", a)
	}
}

func TestSwitchRunsFullCycle(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	for range 50 {
		h.step()
	}

	h.c.SwitchStrategyNamed("adaptive")
	h.step()
	if h.c.Mode() != ModeScattering {
		t.Fatalf("expected scattering, got %s", h.c.Mode())
	}

	scatterTicks := 1
	g := Geometry{Width: testWidth, Height: testHeight, Layout: DefaultLayout()}
	for h.c.Mode() == ModeScattering {
		prev := h.c.Anim()
		if h.c.Active() != quant.Standard {
			t.Fatal("strategy switched before reveal")
		}
		h.step()
		scatterTicks++
		if scatterTicks > 2000 {
			t.Fatal("scattering never finished")
		}
		if h.c.Mode() != ModeRevealing {
			if h.c.Anim().LineProgress > prev.LineProgress {
				t.Fatal("line grew while scattering")
			}
			continue
		}
		for i, p := range h.c.Population().Particles {
			home := motion.Vec{X: g.MapX(p.Value), Y: g.Floor()}
			if !p.Pos.Near(home, ungroupEpsilon) {
				t.Fatalf("particle %d revealed %v away from floor", i, p.Pos.Dist(home))
			}
		}
	}
	if minTicks := int(math.Ceil(1 / lineShrinkStep)); scatterTicks < minTicks {
		t.Fatalf("scatter finished in %d ticks, line needs at least %d", scatterTicks, minTicks)
	}

	a := h.c.Anim()
	if h.c.Active() != quant.Adaptive {
		t.Fatalf("expected adaptive after reveal, got %s", h.c.Active())
	}
	if a.LineProgress != 0 || a.ColorMix != 0 || a.ThresholdOpacity != 1 || a.HasPending {
		t.Fatalf("unexpected reveal start state %+v", a)
	}
	if a.VisualThreshold != h.c.Params().Threshold {
		t.Fatalf("visual threshold must snap on reveal")
	}

	h.until(ModeClustered, 1000)
	for i, p := range h.c.Population().Particles {
		if p.ColorBlend != 1 {
			t.Fatalf("particle %d blend %v after reveal", i, p.ColorBlend)
		}
	}
	if a := h.c.Anim(); a.LineProgress != 1 || a.ColorMix != colorMixCeiling {
		t.Fatalf("expected completed reveal, got %+v", a)
	}
}

func TestRevealBlendIsStaggered(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Optimized)
	h.until(ModeRevealing, 2000)
	for range 20 {
		h.step()
	}
	f := h.c.Frame()
	mix := f.Anim.ColorMix
	for i, pv := range f.Particles {
		want := math.Max(0, math.Min(1, (mix-h.c.Population().Particles[i].RevealDelay)*2))
		if pv.Blend != want {
			t.Fatalf("particle %d blend %v, want %v", i, pv.Blend, want)
		}
	}
}

func TestSwitchAcceptedWhileRevealing(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.until(ModeRevealing, 2000)
	for range 5 {
		h.step()
	}
	if lp := h.c.Anim().LineProgress; lp <= 0 {
		t.Fatalf("expected the cutoff line to be growing, got %v", lp)
	}
	h.c.SwitchStrategy(quant.Optimized)
	h.step()
	if h.c.Mode() != ModeScattering {
		t.Fatalf("expected scattering, got %s", h.c.Mode())
	}
	if a := h.c.Anim(); a.Pending != quant.Optimized || !a.HasPending {
		t.Fatalf("expected pending optimized, got %s (has=%v)", a.Pending, a.HasPending)
	}
	h.until(ModeRevealing, 2000)
	if h.c.Active() != quant.Optimized {
		t.Fatalf("expected optimized after the scatter, got %s", h.c.Active())
	}
}

// A switch on the first reveal tick finds the line at zero and every particle
// home, so the scatter completes within the same tick.
func TestSwitchAtRevealStartScattersInstantly(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.until(ModeRevealing, 2000)
	h.c.SwitchStrategy(quant.Optimized)
	h.step()
	if h.c.Mode() != ModeRevealing {
		t.Fatalf("expected revealing, got %s", h.c.Mode())
	}
	if h.c.Active() != quant.Optimized {
		t.Fatalf("expected optimized, got %s", h.c.Active())
	}
	a := h.c.Anim()
	if a.LineProgress != 0 || a.ColorMix != 0 {
		t.Fatalf("expected a fresh reveal, got line=%v mix=%v", a.LineProgress, a.ColorMix)
	}
	if a.HasPending || a.Pending != quant.Optimized {
		t.Fatalf("expected no switch in flight, got pending=%s has=%v", a.Pending, a.HasPending)
	}
}

func TestVisualThresholdEases(t *testing.T) {
	h := newHarness(t, quant.Optimized)
	h.step()
	target := h.c.Params().Threshold
	got := h.c.Anim().VisualThreshold
	if want := target * visualThresholdRate; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected first eased value %v, got %v", want, got)
	}
}

func TestGenerateTwiceResetsToEntry(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.step()
	if h.c.Mode() != ModeScattering {
		t.Fatalf("expected scattering, got %s", h.c.Mode())
	}

	first := h.c.Population()
	h.c.Generate()
	h.step()
	second := h.c.Population()
	h.c.Generate()
	h.step()
	third := h.c.Population()

	if h.c.Mode() != ModeEntry {
		t.Fatalf("expected entry, got %s", h.c.Mode())
	}
	if h.c.Active() != quant.Standard || h.c.Anim().HasPending {
		t.Fatal("pending switch must be dropped on regenerate")
	}
	if first.ID == second.ID || second.ID == third.ID {
		t.Fatal("expected new population identities")
	}
	if &second.Particles[0] == &third.Particles[0] {
		t.Fatal("particles survived regeneration")
	}
	if h.c.Anim().ThresholdOpacity != 1 {
		t.Fatal("expected full opacity after regenerate")
	}
}

func TestGenerateDropsEarlierSwitches(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.c.SwitchStrategy(quant.Adaptive)
	h.c.Generate()
	h.step()
	if h.c.Mode() != ModeEntry || h.c.Active() != quant.Standard {
		t.Fatalf("expected entry/standard, got %s/%s", h.c.Mode(), h.c.Active())
	}
}

func TestCountsCoverPopulationEveryTick(t *testing.T) {
	h := newHarness(t, quant.Standard)
	sw := []quant.Strategy{quant.Adaptive, quant.Optimized, quant.Standard}
	for i := range 1500 {
		if i%300 == 299 {
			h.c.SwitchStrategy(sw[(i/300)%len(sw)])
		}
		h.step()
		p := h.c.Params()
		if p.Negative+p.Positive != h.c.Population().Len() {
			t.Fatalf("tick %d: counts %d+%d != %d", i, p.Negative, p.Positive, h.c.Population().Len())
		}
		for _, pt := range h.c.Population().Particles {
			if !pt.Pos.Finite() {
				t.Fatalf("tick %d: non-finite position", i)
			}
		}
	}
}

func TestBinTargetsAreStable(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.until(ModeClustered, 1000)
	h.step()
	before := make([]motion.Vec, h.c.Population().Len())
	for i, p := range h.c.Population().Particles {
		before[i] = p.Bin
	}
	h.step()
	for i, p := range h.c.Population().Particles {
		if p.Bin != before[i] {
			t.Fatalf("bin target %d moved between ticks", i)
		}
	}
}

func TestRequestsAreSafeAcrossGoroutines(t *testing.T) {
	h := newHarness(t, quant.Standard)
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				if j%25 == 0 {
					h.c.Generate()
				}
				h.c.SwitchStrategy(quant.Strategies[(i+j)%len(quant.Strategies)])
			}
		}()
	}
	for range 200 {
		h.step()
	}
	wg.Wait()
	h.step()
	if n := h.c.Population().Len(); n != 60 {
		t.Fatalf("expected population of 60, got %d", n)
	}
}

func TestFrameIsDetached(t *testing.T) {
	h := newHarness(t, quant.Standard)
	h.step()
	f := h.c.Frame()
	f.Particles[0].Pos.X = -1e9
	if h.c.Population().Particles[0].Pos.X == -1e9 {
		t.Fatal("frame shares particle storage with the controller")
	}
	if f.PopulationID != h.c.PopulationID() || f.Tick != h.tick {
		t.Fatal("frame metadata mismatch")
	}
}
