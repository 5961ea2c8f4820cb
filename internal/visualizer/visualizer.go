package visualizer

import "github.com/olivier-w/binviz/internal/phase"

// Visualizer renders animation frames as terminal text.
type Visualizer interface {
	Name() string
	Resize(width, height float64)
	Render(f phase.Frame) error
	View() string
}

// Modes returns all available visualizers.
func Modes() []Visualizer {
	return []Visualizer{
		NewField(),
		NewHistogram(),
	}
}
