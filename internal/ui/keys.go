package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/binviz/internal/quant"
)

type keyMap struct {
	Standard   key.Binding
	Adaptive   key.Binding
	Optimized  key.Binding
	Cycle      key.Binding
	Regenerate key.Binding
	View       key.Binding
	Pause      key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Standard: key.NewBinding(
			key.WithKeys("1", "s"),
			key.WithHelp("1/s", "standard"),
		),
		Adaptive: key.NewBinding(
			key.WithKeys("2", "a"),
			key.WithHelp("2/a", "adaptive"),
		),
		Optimized: key.NewBinding(
			key.WithKeys("3", "o"),
			key.WithHelp("3/o", "optimized"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r", "g"),
			key.WithHelp("r", "resample"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Standard, k.Adaptive, k.Optimized, k.Regenerate, k.View, k.Pause, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Standard, k.Adaptive, k.Optimized, k.Cycle},
		{k.Regenerate, k.View, k.Pause, k.Quit},
	}
}

// strategyFor returns the strategy bound to msg, if any.
func (k keyMap) strategyFor(msg tea.KeyMsg) (quant.Strategy, bool) {
	switch {
	case key.Matches(msg, k.Standard):
		return quant.Standard, true
	case key.Matches(msg, k.Adaptive):
		return quant.Adaptive, true
	case key.Matches(msg, k.Optimized):
		return quant.Optimized, true
	}
	return quant.Standard, false
}
