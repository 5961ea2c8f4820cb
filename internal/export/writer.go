// Package export writes animation frames as PNG images.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/visualizer"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	// ErrNoDir is returned when no output directory is configured.
	ErrNoDir = errors.New("export: output directory required")
	// ErrNoFont is returned when the label font cannot be loaded.
	ErrNoFont = errors.New("export: font unavailable")
	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("export: writer closed")
)

const (
	DefaultWidth  = 800
	DefaultHeight = 550
)

// Options configures a Writer.
type Options struct {
	Dir    string
	Every  int // write every Nth frame; values below 1 mean every frame
	Width  int
	Height int
}

// Writer renders frames to numbered PNG files. It doubles as the fixed
// surface the scheduler lays the field out on.
type Writer struct {
	dir     string
	every   uint64
	width   int
	height  int
	font    *text.FontSource
	label   text.Face
	small   text.Face
	palette visualizer.Palette

	seen    uint64
	written int
	closed  bool
}

// New creates the output directory and loads the label font.
func New(opts Options) (*Writer, error) {
	if opts.Dir == "" {
		return nil, ErrNoDir
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Every < 1 {
		opts.Every = 1
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", opts.Dir, err)
	}
	src, err := text.NewFontSource(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFont, err)
	}
	return &Writer{
		dir:    opts.Dir,
		every:  uint64(opts.Every),
		width:  opts.Width,
		height: opts.Height,
		font:   src,
		label:  src.Face(14),
		small:  src.Face(11),
	}, nil
}

// Size implements frame.Surface.
func (w *Writer) Size() (float64, float64, bool) {
	return float64(w.width), float64(w.height), !w.closed
}

// Written returns the number of files written so far.
func (w *Writer) Written() int { return w.written }

// Path returns the file name of the i-th written frame.
func (w *Writer) Path(i int) string {
	return filepath.Join(w.dir, fmt.Sprintf("frame-%05d.png", i))
}

// Render implements frame.Renderer.
func (w *Writer) Render(f phase.Frame) error {
	if w.closed {
		return ErrClosed
	}
	w.seen++
	if (w.seen-1)%w.every != 0 || !f.Geometry.Valid() {
		return nil
	}

	dc := gg.NewContext(w.width, w.height)
	defer dc.Close()
	if err := w.draw(dc, f); err != nil {
		return err
	}

	path := w.Path(w.written)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	w.written++
	slog.Debug("frame exported", "path", path, "tick", f.Tick)
	return nil
}

// Close releases the font. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.font.Close()
}

// canvas maps frame coordinates onto the image.
type canvas struct {
	dc     *gg.Context
	sx, sy float64
}

func (c canvas) x(v float64) float64 { return v * c.sx }
func (c canvas) y(v float64) float64 { return v * c.sy }

func (c canvas) color(col colorful.Color, alpha float64) {
	c.dc.SetRGBA(col.R, col.G, col.B, alpha)
}

func (w *Writer) draw(dc *gg.Context, f phase.Frame) error {
	g := f.Geometry
	c := canvas{dc: dc, sx: float64(w.width) / g.Width, sy: float64(w.height) / g.Height}

	bg := w.palette.Backdrop()
	dc.ClearWithColor(gg.RGB(bg.R, bg.G, bg.B))

	c.color(w.palette.Axis(), 1)
	dc.SetLineWidth(1)
	dc.DrawLine(0, c.y(g.Floor()), float64(w.width), c.y(g.Floor()))
	zero := c.x(g.MapX(0))
	dc.DrawLine(zero, 0, zero, float64(w.height))
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("export: axes: %w", err)
	}

	if f.ShowLine() {
		x := c.x(g.MapX(f.Anim.VisualThreshold))
		bottom := float64(w.height)
		c.color(w.palette.Strategy(f.Strategy), f.Anim.ThresholdOpacity)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.DrawLine(x, bottom, x, bottom-bottom*f.Anim.LineProgress)
		err := dc.Stroke()
		dc.SetDash()
		if err != nil {
			return fmt.Errorf("export: cutoff: %w", err)
		}
	}

	r := g.Layout.Radius * c.sx
	for _, p := range f.Particles {
		if !p.Pos.Finite() {
			continue
		}
		c.color(w.palette.Particle(p.Positive, p.Blend), 0.9)
		dc.DrawCircle(c.x(p.Pos.X), c.y(p.Pos.Y), r)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("export: particle: %w", err)
		}
	}

	if f.ShowCounts() {
		dc.SetFont(w.small)
		p := f.Params
		c.color(w.palette.Particle(false, 1), 1)
		dc.DrawStringAnchored(fmt.Sprint(p.Negative), c.x(g.MapX(p.Low())), c.y(g.StackTop(p.Negative))-8, 0.5, 0)
		c.color(w.palette.Particle(true, 1), 1)
		dc.DrawStringAnchored(fmt.Sprint(p.Positive), c.x(g.MapX(p.High())), c.y(g.StackTop(p.Positive))-8, 0.5, 0)
	}

	if a := f.LabelAlpha(); a > 0 {
		x := c.x(g.MapX(f.Anim.VisualThreshold)) + 10
		dc.SetFont(w.label)
		c.color(w.palette.Strategy(f.Strategy), a)
		dc.DrawString(f.Strategy.Label(), x, 30)
		dc.SetFont(w.small)
		c.color(w.palette.Label(), a)
		dc.DrawString(fmt.Sprintf("α = %.3f", f.Params.Scale), x, 50)
		c.color(w.palette.Error(), a)
		dc.DrawString(fmt.Sprintf("L2 Error: %.2f", f.Params.Error), x, 68)
	}
	return nil
}
