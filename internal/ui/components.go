package ui

import "github.com/charmbracelet/bubbles/progress"

const meterWidth = 10

// newMeter returns the bar tracking the cutoff line's growth.
func newMeter() progress.Model {
	return progress.New(
		progress.WithScaledGradient("#F43F5E", "#38BDF8"),
		progress.WithoutPercentage(),
		progress.WithWidth(meterWidth),
	)
}
