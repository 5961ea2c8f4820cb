package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/binviz/internal/frame"
	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/util"
	"github.com/olivier-w/binviz/internal/visualizer"
)

const (
	defaultFPS = 60

	// Rows around the canvas: blank, header, blank, tabs, underline, stats,
	// caption, blank, help.
	chromeRows = 9
	marginCols = 2
)

// Options configures the TUI.
type Options struct {
	FPS   int
	Views []visualizer.Visualizer
}

// Model is the Bubbletea model for the binviz TUI. It hosts the frame
// scheduler: each tick message advances the animation by one frame.
type Model struct {
	sched    *frame.Scheduler
	ctrl     *phase.Controller
	screen   *screen
	keys     keyMap
	help     help.Model
	meter    progress.Model
	tabs     tabs
	interval time.Duration
	started  time.Time

	last     phase.Frame
	width    int
	height   int
	paused   bool
	quitting bool
}

// New creates a Model driving ctrl.
func New(ctrl *phase.Controller, opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	views := opts.Views
	if len(views) == 0 {
		views = visualizer.Modes()
	}
	scr := newScreen(views)
	return Model{
		sched:    frame.NewScheduler(ctrl, nil, scr),
		ctrl:     ctrl,
		screen:   scr,
		keys:     defaultKeys(),
		help:     help.New(),
		meter:    newMeter(),
		tabs:     newTabs(fps, ctrl.Active()),
		interval: time.Second / time.Duration(fps),
		started:  time.Now(),
		last:     ctrl.Frame(),
	}
}

// Scheduler exposes the frame scheduler for teardown by the caller.
func (m Model) Scheduler() *frame.Scheduler { return m.sched }

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.interval), tea.SetWindowTitle("binviz"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cols, rows := canvasSize(msg.Width, msg.Height)
		w, h := visualizer.SurfaceSize(cols, rows)
		m.sched.Resize(w, h)
		slog.Debug("window resized", "cols", cols, "rows", rows)
		return m, nil

	case tickMsg:
		if m.sched.Stopped() {
			return m, nil
		}
		if !m.paused {
			if f, ok := m.sched.Tick(time.Time(msg)); ok {
				m.last = f
			}
		}
		if sel := m.selected(); !m.tabs.settled(sel) {
			m.tabs.step(sel)
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		if err := m.sched.Stop(); err != nil {
			slog.Warn("renderer shutdown failed", "err", err)
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	if s, ok := m.keys.strategyFor(msg); ok {
		m.ctrl.SwitchStrategy(s)
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cycle):
		m.ctrl.SwitchStrategy(m.selected().Next())
	case key.Matches(msg, m.keys.Regenerate):
		m.ctrl.Generate()
	case key.Matches(msg, m.keys.View):
		m.screen.next()
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	}
	return m, nil
}

// selected is the strategy the tabs highlight: the pending one while a
// switch is in flight.
func (m Model) selected() quant.Strategy {
	if m.last.Anim.HasPending {
		return m.last.Anim.Pending
	}
	return m.last.Strategy
}

func canvasSize(width, height int) (int, int) {
	return max(width-2*marginCols, 0), max(height-chromeRows, 0)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	indent := spaces(marginCols)

	b.WriteString("\n")
	b.WriteString(indent + m.headerLine() + "\n")
	b.WriteString("\n")
	for _, l := range strings.Split(m.tabs.view(m.selected()), "\n") {
		b.WriteString(indent + l + "\n")
	}

	_, rows := canvasSize(m.width, m.height)
	canvas := m.screen.View()
	var lines []string
	if canvas != "" {
		lines = strings.Split(canvas, "\n")
	}
	for i := range rows {
		if i < len(lines) {
			b.WriteString(indent + lines[i])
		}
		b.WriteString("\n")
	}

	b.WriteString(indent + m.statusLine() + "\n")
	b.WriteString(indent + captionStyle.Render("Quantization error = Σ (full precision − binary reconstruction)²") + "\n")
	b.WriteString("\n")
	b.WriteString(indent + m.help.View(m.keys))
	return b.String()
}

func (m Model) headerLine() string {
	line := headerStyle.Render("binviz")
	id := m.last.PopulationID.String()
	if len(id) >= 8 {
		line += "  " + captionStyle.Render("population "+id[:8])
	}
	if v := m.screen.current(); v != nil {
		line += "  " + captionStyle.Render("["+v.Name()+"]")
	}
	return line
}

func (m Model) statusLine() string {
	p := m.last.Params
	mode := m.last.Anim.Mode.String()
	if m.paused {
		mode = "paused"
	}
	parts := []string{
		statusStyle.Render("β ") + valueStyle.Render(util.FormatSigned(p.Threshold, 3)),
		statusStyle.Render("α ") + valueStyle.Render(fmt.Sprintf("%.3f", p.Scale)),
		statusStyle.Render("L2 ") + valueStyle.Render(fmt.Sprintf("%.2f", p.Error)),
		negativeStyle.Render(fmt.Sprintf("−α×%d", p.Negative)),
		positiveStyle.Render(fmt.Sprintf("+α×%d", p.Positive)),
		statusStyle.Render(mode) + " " + m.meter.ViewAs(m.last.Anim.LineProgress),
		statusStyle.Render("tick " + util.FormatCount(m.last.Tick)),
		statusStyle.Render(util.FormatDuration(time.Since(m.started))),
	}
	return strings.Join(parts, "  ")
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
