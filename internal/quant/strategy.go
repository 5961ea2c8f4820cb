package quant

import "strings"

// Strategy selects how threshold and scale are derived from a population.
type Strategy uint8

const (
	Standard Strategy = iota
	Adaptive
	Optimized
)

// Strategies lists every strategy in selector order.
var Strategies = []Strategy{Standard, Adaptive, Optimized}

func (s Strategy) String() string {
	switch s {
	case Standard:
		return "standard"
	case Adaptive:
		return "adaptive"
	case Optimized:
		return "optimized"
	default:
		return "unknown"
	}
}

// Label returns the long name shown next to the cutoff line.
func (s Strategy) Label() string {
	switch s {
	case Adaptive:
		return "Adaptive (Learnable)"
	case Optimized:
		return "Optimized (Analytical)"
	default:
		return "Standard"
	}
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s <= Optimized
}

// Next cycles to the following strategy.
func (s Strategy) Next() Strategy {
	return Strategy((int(s) + 1) % len(Strategies))
}

// ParseStrategy resolves a strategy name. "adabin" is accepted for adaptive.
func ParseStrategy(name string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standard":
		return Standard, true
	case "adaptive", "adabin":
		return Adaptive, true
	case "optimized":
		return Optimized, true
	}
	return Standard, false
}
