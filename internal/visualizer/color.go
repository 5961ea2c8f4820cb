package visualizer

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/binviz/internal/quant"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type colorRGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			profile = colorNone
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			profile = colorTrueColor
		case strings.Contains(term, "256color"):
			profile = colorANSI256
		case term == "", term == "dumb":
			profile = colorNone
		default:
			profile = colorANSI16
		}
	})
	return profile
}

// Palette colors, shared with the PNG exporter through Palette.
var (
	neutralColor  = mustHex("#6b7280")
	negativeColor = mustHex("#f43f5e")
	positiveColor = mustHex("#38bdf8")
	axisColor     = mustHex("#4d4d4d")
	backdropColor = mustHex("#0b0b0f")
	labelColor    = mustHex("#9ca3af")
	errorColor    = mustHex("#ffffff")

	strategyColors = map[quant.Strategy]colorful.Color{
		quant.Standard:  mustHex("#9ca3af"),
		quant.Adaptive:  mustHex("#38bdf8"),
		quant.Optimized: mustHex("#4ade80"),
	}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette exposes the field colors to other renderers.
type Palette struct{}

// Particle returns the displayed color of a particle: neutral gray blended
// toward red (negative) or blue (positive) by blend.
func (Palette) Particle(positive bool, blend float64) colorful.Color {
	target := negativeColor
	if positive {
		target = positiveColor
	}
	return neutralColor.BlendRgb(target, clamp01(blend)).Clamped()
}

// Strategy returns the cutoff line color of s.
func (Palette) Strategy(s quant.Strategy) colorful.Color {
	if c, ok := strategyColors[s]; ok {
		return c
	}
	return labelColor
}

// Faded blends c toward the backdrop; alpha 1 keeps c.
func (Palette) Faded(c colorful.Color, alpha float64) colorful.Color {
	return backdropColor.BlendRgb(c, clamp01(alpha)).Clamped()
}

func (Palette) Axis() colorful.Color { return axisColor }

func (Palette) Backdrop() colorful.Color { return backdropColor }

func (Palette) Label() colorful.Color { return labelColor }

func (Palette) Error() colorful.Color { return errorColor }

func toRGB(c colorful.Color) colorRGB {
	r, g, b := c.Clamped().RGB255()
	return colorRGB{R: r, G: g, B: b}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type ansiState struct {
	profile colorProfile
	current uint32
}

func newANSIState(p colorProfile) ansiState {
	return ansiState{profile: p, current: ^uint32(0)}
}

func (s *ansiState) set(sb *strings.Builder, c colorRGB) {
	if s.profile == colorNone {
		return
	}
	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if key == s.current {
		return
	}
	sb.WriteString(colorSequence(s.profile, c))
	s.current = key
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == colorNone || s.current == ^uint32(0) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.current = ^uint32(0)
}

func colorSequence(profile colorProfile, c colorRGB) string {
	key := uint32(profile)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	switch profile {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		idx := 16 + 36*r + 6*g + b
		seq = fmt.Sprintf("\x1b[38;5;%dm", idx)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, p := range ansi16 {
			dr := float64(c.R) - float64(p.R)
			dg := float64(c.G) - float64(p.G)
			db := float64(c.B) - float64(p.B)
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", 30+best)
	default:
		seq = ""
	}

	seqCache.Store(key, seq)
	return seq
}

var ansi16 = []colorRGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}
