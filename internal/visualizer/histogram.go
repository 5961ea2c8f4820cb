package visualizer

import (
	"math"
	"strings"

	"github.com/olivier-w/binviz/internal/phase"
)

var densityRamp = []byte(" .:-=+*#%@")

// Histogram renders the value distribution as a filled area chart using ASCII
// density characters, colored by the side of the threshold each column falls
// on, with the two reconstruction levels marked on the bottom row.
type Histogram struct {
	cols, rows int
	profile    colorProfile
	palette    Palette
	output     string
}

func NewHistogram() *Histogram {
	return &Histogram{profile: currentColorProfile()}
}

func (h *Histogram) Name() string { return "histogram" }

func (h *Histogram) Resize(width, height float64) {
	h.cols = int(width) / DotsPerCol
	h.rows = int(height) / DotsPerRow
}

func (h *Histogram) Render(fr phase.Frame) error {
	if h.cols == 0 || h.rows == 0 {
		h.Resize(fr.Geometry.Width, fr.Geometry.Height)
	}
	height := h.rows - 1 // bottom row holds the markers
	cols := h.cols
	if height < 1 || cols < 4 {
		h.output = ""
		return nil
	}

	g := fr.Geometry
	// Bucket values by the column their mapped x falls in.
	counts := make([]float64, cols)
	for _, p := range fr.Particles {
		c := int(math.Floor(g.MapX(p.Value) / DotsPerCol))
		if c >= 0 && c < cols {
			counts[c]++
		}
	}
	levels := smooth(counts)
	peak := 0.0
	for _, v := range levels {
		peak = math.Max(peak, v)
	}
	if peak > 0 {
		for i := range levels {
			levels[i] /= peak
		}
	}

	thresholdCol := int(math.Floor(g.MapX(fr.Params.Threshold) / DotsPerCol))
	lowCol := int(math.Floor(g.MapX(fr.Params.Low()) / DotsPerCol))
	highCol := int(math.Floor(g.MapX(fr.Params.High()) / DotsPerCol))
	neg := toRGB(h.palette.Particle(false, 1))
	pos := toRGB(h.palette.Particle(true, 1))
	line := toRGB(h.palette.Strategy(fr.Strategy))

	rampLen := len(densityRamp)
	rows := make([]string, 0, h.rows)
	for row := range height {
		var sb strings.Builder
		color := newANSIState(h.profile)
		rowFromBottom := float64(height - 1 - row)
		for c := range cols {
			if c == thresholdCol {
				color.set(&sb, line)
				sb.WriteByte('|')
				continue
			}
			level := levels[c] * float64(height)
			dist := level - rowFromBottom

			var ch byte
			if dist <= 0 {
				ch = ' '
			} else if dist >= 1 {
				// Below the surface: density based on depth
				depth := dist / float64(height)
				idx := min(int(depth*float64(rampLen-1)), rampLen-1)
				ch = densityRamp[idx]
			} else {
				// At the surface edge: partial fill
				idx := min(int(dist*float64(rampLen-1)), rampLen-1)
				ch = densityRamp[idx]
			}
			if c < thresholdCol {
				color.set(&sb, neg)
			} else {
				color.set(&sb, pos)
			}
			sb.WriteByte(ch)
		}
		color.reset(&sb)
		rows = append(rows, sb.String())
	}
	rows = append(rows, h.markers(cols, lowCol, highCol, neg, pos))

	h.output = strings.Join(rows, "\n")
	return nil
}

func (h *Histogram) markers(cols, lowCol, highCol int, neg, pos colorRGB) string {
	var sb strings.Builder
	color := newANSIState(h.profile)
	for c := range cols {
		switch c {
		case lowCol:
			color.set(&sb, neg)
			sb.WriteRune('▲')
		case highCol:
			color.set(&sb, pos)
			sb.WriteRune('▲')
		default:
			sb.WriteByte(' ')
		}
	}
	color.reset(&sb)
	return sb.String()
}

func (h *Histogram) View() string {
	return h.output
}

// smooth applies a 1-2-1 kernel so sparse columns read as a curve.
func smooth(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		sum, w := 2*v[i], 2.0
		if i > 0 {
			sum += v[i-1]
			w++
		}
		if i+1 < len(v) {
			sum += v[i+1]
			w++
		}
		out[i] = sum / w
	}
	return out
}
