// Package sample generates the particle population shown by the animation.
package sample

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/olivier-w/binviz/internal/motion"
)

// DefaultCount is the population size used when none is configured.
const DefaultCount = 200

const (
	variance     = 2.0
	spawnTop     = -20.0 // highest spawn height above the surface
	spawnSpread  = 200.0
	fallMin      = 8.0
	fallRange    = 10.0
	fallDamping  = 0.7
	maxRevealLag = 0.5
)

// Particle is one sample of the population and its render state.
type Particle struct {
	Value       float64
	Pos         motion.Vec
	Bin         motion.Vec
	VelocityY   float64
	JitterPhase float64
	ColorBlend  float64
	RevealDelay float64

	// Placed is false until the particle has been given its first
	// horizontal position on the surface.
	Placed bool
}

// Population is an ordered set of particles with a stable identity.
type Population struct {
	ID        uuid.UUID
	Bias      float64
	Particles []Particle
	values    []float64
}

// Len returns the number of particles.
func (p *Population) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Particles)
}

// Values returns the sample values in particle order. Values never change
// after generation; callers must not modify the slice.
func (p *Population) Values() []float64 {
	if p == nil {
		return nil
	}
	return p.values
}

// Generator draws populations from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by rng. A nil rng selects a
// randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// NewSeeded returns a generator with a deterministic PCG source.
func NewSeeded(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate builds a fresh population of count particles sharing one bias.
// Counts below 1 fall back to DefaultCount.
func (g *Generator) Generate(count int) *Population {
	if count < 1 {
		count = DefaultCount
	}

	z := g.bias()
	pop := &Population{
		ID:        uuid.New(),
		Bias:      z,
		Particles: make([]Particle, count),
		values:    make([]float64, count),
	}

	for i := range pop.Particles {
		v := g.normal()*math.Sqrt(variance) + z
		pop.values[i] = v
		pop.Particles[i] = Particle{
			Value:       v,
			Pos:         motion.Vec{Y: spawnTop - g.rng.Float64()*spawnSpread},
			VelocityY:   (fallMin + g.rng.Float64()*fallRange) * fallDamping,
			JitterPhase: g.rng.Float64() * 2 * math.Pi,
			ColorBlend:  1,
			RevealDelay: g.rng.Float64() * maxRevealLag,
		}
	}
	return pop
}

// bias draws the shared population offset from (-1, 1), retrying while it
// lands on the closed lower end or in either dead zone.
func (g *Generator) bias() float64 {
	z := 0.0
	for !acceptBias(z) {
		z = g.rng.Float64()*2 - 1
	}
	return z
}

func acceptBias(z float64) bool {
	return z > -1 && z < 1 && !rejectBias(z)
}

func rejectBias(z float64) bool {
	return (z >= -0.2 && z <= 0.2) || (z >= -0.05 && z <= 0.05)
}

// normal returns a standard normal variate via the Box–Muller transform.
func (g *Generator) normal() float64 {
	u, v := g.open01(), g.open01()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

func (g *Generator) open01() float64 {
	x := g.rng.Float64()
	for x == 0 {
		x = g.rng.Float64()
	}
	return x
}
