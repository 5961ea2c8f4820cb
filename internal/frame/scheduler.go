// Package frame drives a phase.Controller once per frame and hands each
// resulting snapshot to the renderers.
package frame

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/olivier-w/binviz/internal/motion"
	"github.com/olivier-w/binviz/internal/phase"
)

// Renderer consumes one frame per tick.
type Renderer interface {
	Render(f phase.Frame) error
}

// Resizer is implemented by renderers that keep a backing buffer sized to
// the surface.
type Resizer interface {
	Resize(width, height float64)
}

// Surface reports the logical drawing size. ok is false until the surface
// has been laid out.
type Surface interface {
	Size() (width, height float64, ok bool)
}

// FixedSurface is a surface of constant size.
type FixedSurface struct {
	Width, Height float64
}

func (s FixedSurface) Size() (float64, float64, bool) {
	return s.Width, s.Height, s.Width > 0 && s.Height > 0
}

// Scheduler ticks a controller. Tick must only be called from one goroutine
// at a time; Stop and Resize may be called from anywhere.
type Scheduler struct {
	ctrl      *phase.Controller
	surface   Surface
	renderers []Renderer

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
	width   float64
	height  float64
	resized bool
	err     error

	ticks uint64
	last  phase.Frame
}

// NewScheduler returns a scheduler for ctrl. A nil surface means the size
// comes only from Resize notifications.
func NewScheduler(ctrl *phase.Controller, surface Surface, renderers ...Renderer) *Scheduler {
	return &Scheduler{
		ctrl:      ctrl,
		surface:   surface,
		renderers: renderers,
		stopCh:    make(chan struct{}),
	}
}

// Controller returns the driven controller.
func (s *Scheduler) Controller() *phase.Controller { return s.ctrl }

// Resize records a new logical size. Renderers are resynchronized on the
// next tick; animation state is untouched.
func (s *Scheduler) Resize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.resized = true
}

// size resolves the surface for this tick. A resolved surface query
// overrides the last Resize notification.
func (s *Scheduler) size() (float64, float64, bool, bool) {
	s.mu.Lock()
	w, h, resized := s.width, s.height, s.resized
	s.resized = false
	s.mu.Unlock()

	if s.surface != nil {
		sw, sh, ok := s.surface.Size()
		if ok && (sw != w || sh != h) {
			s.mu.Lock()
			s.width, s.height = sw, sh
			s.mu.Unlock()
			w, h, resized = sw, sh, true
		}
	}
	return w, h, w > 0 && h > 0, resized
}

// Tick runs one frame at wall time now. It reports false when the
// scheduler is stopped or the surface is not yet laid out; in that case
// nothing is advanced or rendered.
func (s *Scheduler) Tick(now time.Time) (phase.Frame, bool) {
	if s.Stopped() {
		return s.last, false
	}
	w, h, ok, resized := s.size()
	if !ok {
		return s.last, false
	}
	if resized {
		for _, r := range s.renderers {
			if rz, ok := r.(Resizer); ok {
				rz.Resize(w, h)
			}
		}
		slog.Debug("surface resized", "width", w, "height", h)
	}

	s.ticks++
	s.ctrl.Tick(phase.Input{
		Width:  w,
		Height: h,
		Clock:  motion.Clock{Wall: now, Tick: s.ticks},
	})
	s.last = s.ctrl.Frame()

	for _, r := range s.renderers {
		if err := r.Render(s.last); err != nil {
			s.setErr(err)
		}
	}
	return s.last, true
}

// Ticks returns the number of frames advanced so far.
func (s *Scheduler) Ticks() uint64 { return s.ticks }

// Last returns the most recent frame.
func (s *Scheduler) Last() phase.Frame { return s.last }

func (s *Scheduler) setErr(err error) {
	slog.Warn("render failed", "tick", s.ticks, "error", err)
	s.mu.Lock()
	s.err = errors.Join(s.err, err)
	s.mu.Unlock()
}

// Err returns the accumulated renderer errors.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Run ticks every interval until ctx is done, Stop is called or limit
// frames have been advanced (limit 0 means no limit).
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, limit uint64) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case now := <-ticker.C:
			s.Tick(now)
			if limit > 0 && s.ticks >= limit {
				return nil
			}
		}
	}
}

// Stop halts scheduling and closes renderers that implement io.Closer.
// It is safe to call more than once. Renderers are closed immediately, so
// Stop from another goroutine should be followed by waiting for Run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	var errs []error
	for _, r := range s.renderers {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	slog.Debug("scheduler stopped")
	return errors.Join(errs...)
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
