package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/binviz/internal/quant"
)

const tabWidth = 24

// tabs is the strategy selector. The underline glides to the selected tab
// on a critically damped spring.
type tabs struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newTabs(fps int, start quant.Strategy) tabs {
	return tabs{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		pos:    float64(start),
	}
}

func (t *tabs) step(target quant.Strategy) {
	t.pos, t.vel = t.spring.Update(t.pos, t.vel, float64(target))
}

// settled reports whether the underline rests on target.
func (t tabs) settled(target quant.Strategy) bool {
	return math.Abs(t.pos-float64(target)) < 0.01 && math.Abs(t.vel) < 0.01
}

func (t tabs) view(selected quant.Strategy) string {
	var labels strings.Builder
	for _, s := range quant.Strategies {
		label := lipgloss.PlaceHorizontal(tabWidth, lipgloss.Left, s.Label())
		if s == selected {
			labels.WriteString(activeTabStyle.Foreground(strategyColors[s]).Render(label))
		} else {
			labels.WriteString(tabStyle.Render(label))
		}
	}

	// Each rendered tab is tabWidth plus two columns of padding.
	offset := int(math.Round(t.pos * float64(tabWidth+2)))
	offset = max(0, min(offset, (len(quant.Strategies)-1)*(tabWidth+2)))
	near := quant.Strategy(max(0, min(int(math.Round(t.pos)), len(quant.Strategies)-1)))
	bar := lipgloss.NewStyle().Foreground(strategyColors[near]).
		Render(strings.Repeat("▔", tabWidth+2))

	return labels.String() + "\n" + spaces(offset) + bar
}
