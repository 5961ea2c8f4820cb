package ui

import (
	"log/slog"

	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/visualizer"
)

// screen forwards scheduler frames to the visualizer on display. It is
// shared by pointer because bubbletea copies the Model on every update.
type screen struct {
	views  []visualizer.Visualizer
	active int
	width  float64
	height float64
	last   phase.Frame
}

func newScreen(views []visualizer.Visualizer) *screen {
	return &screen{views: views}
}

func (s *screen) current() visualizer.Visualizer {
	return s.views[s.active]
}

// next switches to the following visualizer and redraws the last frame.
func (s *screen) next() {
	s.active = (s.active + 1) % len(s.views)
	if s.width > 0 && s.height > 0 {
		if err := s.current().Render(s.last); err != nil {
			slog.Warn("render failed", "view", s.current().Name(), "error", err)
		}
	}
}

func (s *screen) Resize(width, height float64) {
	s.width, s.height = width, height
	for _, v := range s.views {
		v.Resize(width, height)
	}
}

func (s *screen) Render(f phase.Frame) error {
	s.last = f
	return s.current().Render(f)
}

func (s *screen) View() string {
	return s.current().View()
}
