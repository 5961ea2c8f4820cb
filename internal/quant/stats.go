// Package quant computes binarization parameters for a sample population.
//
// A binarizer maps each value v to β+α when v ≥ β and to β−α otherwise.
// The three strategies differ only in how β and α are chosen; the reported
// error is always the squared (L2) reconstruction error, including for
// Optimized, whose α is the L1-optimal choice.
package quant

import "math"

// Summary holds the aggregates computed for every population regardless of
// the active strategy.
type Summary struct {
	Mean    float64
	MeanAbs float64 // mean of |v|
	MAD     float64 // mean absolute deviation from Mean
	StdDev  float64 // population standard deviation
}

// Params is the result of evaluating a strategy against a population.
type Params struct {
	Strategy  Strategy
	Threshold float64 // β
	Scale     float64 // α
	Error     float64 // Σ (v - reconstructed)²
	Negative  int
	Positive  int
	Summary   Summary
}

// Low is the reconstruction value of the negative bin.
func (p Params) Low() float64 { return p.Threshold - p.Scale }

// High is the reconstruction value of the positive bin.
func (p Params) High() float64 { return p.Threshold + p.Scale }

// IsPositive reports which bin v falls into.
func (p Params) IsPositive(v float64) bool { return v >= p.Threshold }

// Reconstruct returns the binarized value for v.
func (p Params) Reconstruct(v float64) float64 {
	if p.IsPositive(v) {
		return p.High()
	}
	return p.Low()
}

// Summarize computes the strategy-independent aggregates of values.
func Summarize(values []float64) Summary {
	n := float64(len(values))
	if n == 0 {
		return Summary{}
	}

	var sum, sumAbs float64
	for _, v := range values {
		sum += v
		sumAbs += math.Abs(v)
	}
	mean := sum / n

	var absDiff, sqDiff float64
	for _, v := range values {
		d := v - mean
		absDiff += math.Abs(d)
		sqDiff += d * d
	}

	return Summary{
		Mean:    mean,
		MeanAbs: sumAbs / n,
		MAD:     absDiff / n,
		StdDev:  math.Sqrt(sqDiff / n),
	}
}

// Evaluate derives threshold, scale and error metrics for s. It does not
// modify values and returns the zero Params for an empty population.
func Evaluate(values []float64, s Strategy) Params {
	if len(values) == 0 {
		return Params{Strategy: s}
	}

	sum := Summarize(values)
	p := Params{Strategy: s, Summary: sum}

	switch s {
	case Adaptive:
		p.Threshold = sum.Mean
		p.Scale = sum.StdDev
	case Optimized:
		p.Threshold = sum.Mean
		p.Scale = sum.MAD
	default:
		p.Threshold = 0
		p.Scale = sum.MeanAbs
	}

	for _, v := range values {
		d := v - p.Reconstruct(v)
		p.Error += d * d
		if p.IsPositive(v) {
			p.Positive++
		} else {
			p.Negative++
		}
	}
	return p
}
