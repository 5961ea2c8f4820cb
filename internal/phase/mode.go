package phase

import "github.com/olivier-w/binviz/internal/quant"

// Mode names the controller's current phase.
type Mode uint8

const (
	ModeEntry Mode = iota
	ModeClustered
	ModeScattering
	ModeRevealing
)

func (m Mode) String() string {
	switch m {
	case ModeEntry:
		return "entry"
	case ModeClustered:
		return "clustered"
	case ModeScattering:
		return "scattering"
	case ModeRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// state is the closed set of phases. Phase-specific data lives on the
// variant that owns it.
type state interface {
	mode() Mode
}

type entry struct{}

type clustered struct{}

// scattering carries the strategy that becomes active on reveal.
type scattering struct {
	next quant.Strategy
}

type revealing struct{}

func (entry) mode() Mode      { return ModeEntry }
func (clustered) mode() Mode  { return ModeClustered }
func (scattering) mode() Mode { return ModeScattering }
func (revealing) mode() Mode  { return ModeRevealing }

// Anim is the animation state visible to renderers.
type Anim struct {
	Mode             Mode
	LineProgress     float64 // cutoff line height as a fraction of the surface
	ColorMix         float64 // reveal clock, overshoots to colorMixCeiling
	ThresholdOpacity float64
	VisualThreshold  float64 // eased threshold used to place the cutoff line
	// Pending is the switch target while scattering, else the active strategy.
	Pending    quant.Strategy
	HasPending bool
}

func initialAnim(visual float64) Anim {
	return Anim{
		Mode:             ModeEntry,
		LineProgress:     1,
		ColorMix:         1,
		ThresholdOpacity: 1,
		VisualThreshold:  visual,
	}
}
