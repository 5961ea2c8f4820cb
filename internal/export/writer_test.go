package export

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olivier-w/binviz/internal/frame"
	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/sample"
)

func newController() *phase.Controller {
	return phase.New(phase.Config{
		Count:     50,
		Strategy:  quant.Adaptive,
		Layout:    phase.DefaultLayout(),
		Generator: sample.NewSeeded(3),
	})
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir, got %v", err)
	}
}

func TestWriterExportsEveryNthFrame(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Dir: dir, Every: 2, Width: 200, Height: 150})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s := frame.NewScheduler(newController(), w, w)

	now := time.UnixMilli(0)
	for i := range 5 {
		if _, ok := s.Tick(now.Add(time.Duration(i) * 16 * time.Millisecond)); !ok {
			t.Fatalf("tick %d skipped", i)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("render error = %v", err)
	}
	if w.Written() != 3 {
		t.Fatalf("expected 3 files, got %d", w.Written())
	}
	for i := range 3 {
		if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("frame-%05d.png", i))); err != nil {
			t.Fatalf("expected frame %d on disk: %v", i, err)
		}
	}
}

func TestWriterImageSizeAndBackdrop(t *testing.T) {
	w, err := New(Options{Dir: t.TempDir(), Width: 160, Height: 120})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
	s := frame.NewScheduler(newController(), w, w)
	s.Tick(time.UnixMilli(0))

	fh, err := os.Open(w.Path(0))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fh.Close()
	img, err := png.Decode(fh)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Fatalf("expected 160x120, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 > 13 || g>>8 > 13 || b>>8 > 17 {
		t.Fatalf("expected dark backdrop at corner, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestWriterClose(t *testing.T) {
	w, err := New(Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := w.Render(phase.Frame{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, _, ok := w.Size(); ok {
		t.Fatal("expected closed writer to report no surface")
	}
}

func TestSchedulerStopClosesWriter(t *testing.T) {
	w, err := New(Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s := frame.NewScheduler(newController(), w, w)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !w.closed {
		t.Fatal("expected scheduler stop to close the writer")
	}
}
